// Package composer renders decisions into grounded Indonesian answers and optionally
// polishes them through a rephrasing model that may not add facts.
package composer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/agent/scoring"
)

const (
	planQuoteLen   = 220
	planLeadLen    = 120
	claimQuoteLen  = 420
	fallbackAnswer = "Maaf, saya belum bisa menjawab dari database yang tersedia. Bisa jelaskan maksudnya sedikit? 😊"
)

// ApologyAnswer is shown when a turn fails as a whole.
const ApologyAnswer = "Maaf, sedang ada kendala di sistem kami. Silakan coba lagi sebentar lagi ya 🙏"

// Render maps (intent, status) to its grounded template. It never consults anything
// but d.
func Render(d *model.Decision) string {
	if d == nil {
		return fallbackAnswer
	}

	switch d.Status {
	case model.StatusNeedInput:
		return needInput(d.Need)
	case model.StatusNeedChoice:
		return fmt.Sprintf("Siap 😊 No polis **%s** sudah saya catat.\nMau dicek: **status / plan / cashless**?", d.PolicyNumber)
	}

	switch d.Intent {
	case model.IntentPolicyStatus:
		if d.Status == model.StatusFound {
			return fmt.Sprintf("Status polis **%s** (database nasabah): **%s**.", d.PolicyNumber, d.PolicyStatus)
		}
		if d.Status == model.StatusMissingField {
			return fmt.Sprintf("Data polis **%s** ditemukan, tapi **status/masa berlaku** tidak tersedia di database nasabah.", d.PolicyNumber)
		}
		return notFoundCustomer(d)

	case model.IntentPolicyPlanLookup:
		if d.Status == model.StatusFound {
			return fmt.Sprintf("Plan polis **%s** (database nasabah): **%s**.", d.PolicyNumber, d.Plan)
		}
		if d.Status == model.StatusMissingField {
			return fmt.Sprintf("Data polis **%s** ditemukan, tapi field **plan** kosong di database nasabah.", d.PolicyNumber)
		}
		return notFoundCustomer(d)

	case model.IntentCashlessPolicy:
		if d.Status == model.StatusFound {
			can := "tidak"
			if d.CanCashless != nil && *d.CanCashless {
				can = "bisa"
			}
			return fmt.Sprintf("Metode klaim polis **%s** (database nasabah): **%s**. Kesimpulan: **%s cashless**.",
				d.PolicyNumber, d.ClaimMethod, can)
		}
		if d.Status == model.StatusMissingField {
			return "Data polis ditemukan, tapi **metode klaim** kosong di database sehingga cashless belum bisa dipastikan."
		}
		return notFoundCustomer(d)

	case model.IntentRSSearch:
		if d.Status != model.StatusFound {
			return fmt.Sprintf("Maaf, saya belum menemukan RS rekanan di database untuk kota **%s**.", d.City)
		}
		lines := []string{fmt.Sprintf("RS rekanan di **%s** (%s) (database):", d.City, modeText(d.RSMode))}
		for _, h := range d.Hospitals {
			lines = append(lines, fmt.Sprintf("- %s | cashless: %s", h.Name, h.Cashless))
		}
		return strings.Join(lines, "\n")

	case model.IntentLimitPlan:
		if d.Status != model.StatusFound {
			return "Maaf, bagian limit plan tersebut **belum ditemukan** di buku polis pada data yang tersimpan."
		}
		return fmt.Sprintf("Limit plan **%s** (rujukan buku polis):\n- Hal: %s | Sumber: %s\n- Kutipan: %s",
			d.Plan, d.Page, d.Source, planQuote(d.Quote, d.Plan))

	case model.IntentPlanBenefit:
		if d.Status != model.StatusFound {
			return "Maaf, bagian manfaat plan tersebut **belum ditemukan** di buku polis pada data yang tersimpan."
		}
		return fmt.Sprintf("Manfaat/ketentuan terkait plan **%s** (rujukan buku polis):\n- Hal: %s | Sumber: %s\n- Kutipan: %s",
			d.Plan, d.Page, d.Source, planQuote(d.Quote, d.Plan))

	case model.IntentClaimRequirements:
		if d.Status != model.StatusFound {
			return "Maaf, bagian **cara/ketentuan klaim** belum ditemukan di buku polis pada data yang tersimpan."
		}
		return fmt.Sprintf("Cara/ketentuan klaim (rujukan buku polis):\n- Hal: %s | Sumber: %s\n- Kutipan: %s",
			d.Page, d.Source, scoring.Truncate(collapse(d.Quote), claimQuoteLen))
	}

	return fallbackAnswer
}

func needInput(need []model.SlotName) string {
	for _, n := range need {
		switch n {
		case model.SlotCity:
			return "Boleh sebutkan **kota** yang ingin dicek RS rekanannya? 😊"
		case model.SlotPolicyNumber:
			return "Untuk saya cek di database, saya perlu **nomor polis**. Boleh kirim ya 😊"
		case model.SlotPlanTier:
			return "Anda ingin plan yang mana? **Silver / Gold / Platinum** 😊"
		}
	}
	names := make([]string, 0, len(need))
	for _, n := range need {
		names = append(names, string(n))
	}
	return "Saya perlu data: " + strings.Join(names, ", ")
}

func notFoundCustomer(d *model.Decision) string {
	return fmt.Sprintf("Maaf, **%s** tidak ditemukan di database nasabah.", d.PolicyNumber)
}

func modeText(m model.RSMode) string {
	switch m {
	case model.RSModeCashless:
		return "cashless"
	case model.RSModeNonCashless:
		return "non-cashless (reimburse)"
	}
	return "semua"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlanSection quotes only the row of one plan: "<PLAN> <next 220 chars>", else a
// window around the first mention, else "".
func PlanSection(text, plan string) string {
	t := collapse(text)
	planU := strings.ToUpper(strings.TrimSpace(plan))
	if t == "" || planU == "" {
		return ""
	}

	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(planU) + `\b\s+(.{0,220})`)
	if m := re.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(planU + " " + m[1])
	}

	runes := []rune(t)
	idx := runeIndex([]rune(strings.ToLower(t)), []rune(strings.ToLower(strings.TrimSpace(plan))))
	if idx < 0 {
		return ""
	}
	start := max(0, idx-planLeadLen)
	end := min(len(runes), idx+planQuoteLen)
	return strings.TrimSpace(string(runes[start:end]))
}

func planQuote(quote, plan string) string {
	if s := PlanSection(quote, plan); s != "" {
		return s
	}
	return scoring.Truncate(collapse(quote), planQuoteLen)
}

func runeIndex(hay, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j := range needle {
			if hay[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
