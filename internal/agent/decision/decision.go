// Package decision turns a resolved turn into an intent-tagged Decision.
package decision

import (
	"fmt"
	"strings"
	"time"

	"github.com/cso-health-insurance/server/internal/agent/lookup"
	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/agent/nlu"
	"github.com/cso-health-insurance/server/internal/agent/scoring"
)

const maxHospitalItems = 5

// Synthesizer applies the per-intent business rules. Now is the clock used for
// expiry-based policy status; nil means time.Now.
type Synthesizer struct {
	Now func() time.Time
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Now: time.Now}
}

// Synthesize is a pure function of the turn state, apart from the clock.
func (s *Synthesizer) Synthesize(st *model.TurnState) *model.Decision {
	d := &model.Decision{Intent: st.Intent}

	if len(st.MissingFields) > 0 {
		d.Status = model.StatusNeedInput
		d.Need = append([]model.SlotName(nil), st.MissingFields...)
		return d
	}

	switch st.Intent {
	case model.IntentProvidePolicyNumber:
		d.Status = model.StatusNeedChoice
		d.PolicyNumber = st.Slots.PolicyNumber
	case model.IntentPolicyStatus:
		s.policyStatus(st, d)
	case model.IntentPolicyPlanLookup:
		customerField(st, d, nlu.PlanAliases, func(v any) { d.Plan = nlu.Normalize(v) })
	case model.IntentCashlessPolicy:
		customerField(st, d, nlu.ClaimMethodAliases, func(v any) {
			d.ClaimMethod = nlu.Normalize(v)
			can := CanCashless(v)
			d.CanCashless = &can
		})
	case model.IntentRSSearch:
		hospitals(st, d)
	case model.IntentClaimRequirements, model.IntentLimitPlan, model.IntentPlanBenefit:
		evidence(st, d)
	default:
		d.Status = model.StatusUnknown
	}
	return d
}

func (s *Synthesizer) policyStatus(st *model.TurnState, d *model.Decision) {
	d.PolicyNumber = st.Slots.PolicyNumber
	if len(st.Customer) == 0 {
		d.Status = model.StatusNotFound
		return
	}
	if m := nlu.FieldAlias(st.Customer, nlu.StatusAliases); m.Present() {
		d.Status = model.StatusFound
		d.PolicyStatus = nlu.Normalize(m.Value)
		return
	}
	if end, ok := nlu.ParseDate(nlu.FieldAlias(st.Customer, nlu.ExpiryAliases).Value); ok {
		d.Status = model.StatusFound
		d.PolicyStatus = ExpiryStatus(end, s.today())
		return
	}
	d.Status = model.StatusMissingField
}

func (s *Synthesizer) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	y, m, dd := now().Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// ExpiryStatus renders activity derived from an expiry date; the policy is active
// through its last day.
func ExpiryStatus(end, today time.Time) string {
	day := end.Format(time.DateOnly)
	if !end.Before(today) {
		return fmt.Sprintf("Aktif (berdasarkan tanggal akhir %s)", day)
	}
	return fmt.Sprintf("Tidak aktif (berdasarkan tanggal akhir %s)", day)
}

func customerField(st *model.TurnState, d *model.Decision, aliases []string, set func(any)) {
	d.PolicyNumber = st.Slots.PolicyNumber
	if len(st.Customer) == 0 {
		d.Status = model.StatusNotFound
		return
	}
	m := nlu.FieldAlias(st.Customer, aliases)
	if !m.Present() {
		d.Status = model.StatusMissingField
		return
	}
	d.Status = model.StatusFound
	set(m.Value)
}

// CanCashless reports whether a claim-method value allows cashless claims.
func CanCashless(v any) bool {
	s := nlu.Lower(v)
	if strings.Contains(s, "cashless") {
		return true
	}
	switch s {
	case "ya", "true", "1":
		return true
	}
	return false
}

// YaTidak maps a hospital cashless flag to Ya, Tidak or "-".
func YaTidak(v any) string {
	switch nlu.Lower(v) {
	case "ya", "y", "true", "1":
		return "Ya"
	case "tidak", "t", "no", "false", "0":
		return "Tidak"
	}
	return "-"
}

func hospitals(st *model.TurnState, d *model.Decision) {
	d.City = st.Slots.City
	d.RSMode = st.Slots.RSMode
	if d.RSMode == "" {
		d.RSMode = model.RSModeAll
	}
	for _, h := range st.Hospitals {
		if len(d.Hospitals) == maxHospitalItems {
			break
		}
		d.Hospitals = append(d.Hospitals, model.HospitalItem{
			Name:     lookup.HospitalName(h),
			Cashless: YaTidak(h["cashless"]),
		})
	}
	if len(d.Hospitals) > 0 {
		d.Status = model.StatusFound
	} else {
		d.Status = model.StatusNotFound
	}
}

func evidence(st *model.TurnState, d *model.Decision) {
	plan := st.Slots.PlanTier
	best, _, ok := scoring.Best(st.Intent, st.Evidence, plan)
	if !ok {
		d.Status = model.StatusNotFound
		return
	}
	d.Status = model.StatusFound
	d.Source = best.Source
	d.Page = best.Page
	d.Quote = scoring.Truncate(nlu.Normalize(best.Text), scoring.QuoteLimit)
	if st.Intent != model.IntentClaimRequirements {
		d.Plan = plan
	}
}

// Topic is the memo label recorded when a decision for intent is made, or "".
func Topic(intent model.Intent) string {
	switch intent {
	case model.IntentPolicyStatus:
		return "Status polis"
	case model.IntentPolicyPlanLookup:
		return "Plan polis"
	case model.IntentCashlessPolicy:
		return "Cashless"
	case model.IntentRSSearch:
		return "RS rekanan"
	}
	return ""
}
