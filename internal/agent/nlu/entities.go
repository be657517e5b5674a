package nlu

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

var (
	policyPattern      = regexp.MustCompile(`\b([A-Z]{2,6}-?\d{2,6}-?\d{0,4}|\d{6,})\b`)
	compactPolicyShape = regexp.MustCompile(`^([A-Z]{2,6})(\d+)$`)

	reimburseMisspellings = regexp.MustCompile(`\b(?:rembures|reimbures|remburse|rembers|reimbus|reimburs)e?(?:ment)?\b`)

	planPatterns = []struct {
		plan string
		re   *regexp.Regexp
	}{
		{model.PlanPlatinum, regexp.MustCompile(`(?i)\bplatinum\b`)},
		{model.PlanGold, regexp.MustCompile(`(?i)\bgold\b`)},
		{model.PlanSilver, regexp.MustCompile(`(?i)\bsilver\b`)},
	}
)

// KnownCities is the gazetteer of cities with partner hospitals.
var KnownCities = []string{"jakarta", "bandung", "surabaya", "medan", "semarang", "yogyakarta", "makassar", "denpasar"}

var cityAliases = map[string]string{
	"dki jakarta": "jakarta",
	"jogjakarta":  "yogyakarta",
	"jogja":       "yogyakarta",
}

var cityPatterns = buildCityPatterns()

func buildCityPatterns() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(KnownCities)+len(cityAliases))
	for _, c := range KnownCities {
		out[c] = regexp.MustCompile(`\b` + regexp.QuoteMeta(c) + `\b`)
	}
	for alias := range cityAliases {
		out[alias] = regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\b`)
	}
	return out
}

var nonCashlessPhrases = []string{
	"gak cashless", "ga cashless", "nggak cashless", "tidak cashless", "bukan cashless",
	"non cashless", "non-cashless", "reimburse", "refund",
}

// Entities are the best-effort slot candidates of one utterance.
type Entities struct {
	PolicyNumber string
	City         string
	PlanTier     string
	RSMode       model.RSMode // empty means no signal
}

// Extract runs every slot extractor independently.
func Extract(text string) Entities {
	mode, _ := DetectRSMode(text)
	return Entities{
		PolicyNumber: ExtractPolicyNumber(text),
		City:         ExtractCity(text),
		PlanTier:     ExtractPlanTier(text),
		RSMode:       mode,
	}
}

// Get returns the candidate for a slot name.
func (e Entities) Get(name model.SlotName) string {
	switch name {
	case model.SlotPolicyNumber:
		return e.PolicyNumber
	case model.SlotCity:
		return e.City
	case model.SlotPlanTier:
		return e.PlanTier
	case model.SlotRSMode:
		return string(e.RSMode)
	}
	return ""
}

// ExtractPolicyNumber returns the first policy-number-shaped token of the uppercased text.
func ExtractPolicyNumber(text string) string {
	m := policyPattern.FindStringSubmatch(strings.ToUpper(text))
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractCity matches the gazetteer on word boundaries and returns the title-cased city.
func ExtractCity(text string) string {
	t := Lower(text)
	for _, c := range KnownCities {
		if cityPatterns[c].MatchString(t) {
			return titleCase(c)
		}
	}
	for alias, canonical := range cityAliases {
		if cityPatterns[alias].MatchString(t) {
			return titleCase(canonical)
		}
	}
	return ""
}

func titleCase(s string) string {
	// cases.Caser is stateful; one per call.
	return cases.Title(language.Indonesian).String(s)
}

// ExtractPlanTier returns Platinum, Gold or Silver (in that priority) when named as a whole word.
func ExtractPlanTier(text string) string {
	for _, p := range planPatterns {
		if p.re.MatchString(text) {
			return p.plan
		}
	}
	return ""
}

// NormalizeReimburse lowercases text and folds colloquial misspellings of "reimburse".
func NormalizeReimburse(text string) string {
	return reimburseMisspellings.ReplaceAllString(Lower(text), "reimburse")
}

// DetectRSMode classifies the hospital claim-method cue. ok is false when the text
// carries no signal, in which case the caller keeps its sticky default.
func DetectRSMode(text string) (mode model.RSMode, ok bool) {
	t := NormalizeReimburse(text)
	if containsAny(t, nonCashlessPhrases) {
		return model.RSModeNonCashless, true
	}
	if strings.Contains(t, "cashless") {
		return model.RSModeCashless, true
	}
	return "", false
}

// PolicyNumberVariants lists plausible stored spellings of a policy number, in lookup order:
// raw uppercased, compacted, then dash-segmented forms of <letters><digits>.
func PolicyNumberVariants(raw string) []string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return nil
	}
	c := Compact(raw)
	out := make([]string, 0, 5)
	seen := map[string]bool{}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	add(raw)
	add(c)

	if m := compactPolicyShape.FindStringSubmatch(c); m != nil {
		prefix, digits := m[1], m[2]
		if len(digits) >= 7 {
			add(fmt.Sprintf("%s-%s-%s", prefix, digits[:3], digits[3:]))
			add(prefix + digits)
		}
		if len(digits) >= 6 {
			add(fmt.Sprintf("%s-%s-%s", prefix, digits[:2], digits[2:]))
		}
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
