package nlu

import (
	"regexp"
	"strings"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

var (
	fillerWords = map[string]bool{
		"klo": true, "kalau": true, "kalo": true, "ini": true, "itu": true, "ya": true, "yah": true,
		"deh": true, "dong": true, "nih": true, "gimana": true, "maksudnya": true,
	}
	nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s\-]`)

	benefitPhrases    = []string{"manfaat plan", "benefit plan", "dapet apa", "dapat apa", "benefitnya", "manfaatnya", "manfaat"}
	claimPhrases      = []string{"persyaratan klaim", "syarat klaim", "dokumen klaim", "cara klaim", "klaim", "claim"}
	reimbursePhrases  = []string{"reimburse"}
	statusPhrases     = []string{"masih hidup", "masih aktif", "aktif?", "status polis", "polis saya aktif", "apakah masih aktif", "masih berlaku"}
	hospitalPhrases   = []string{"rumah sakit", "rs rekanan", "rekomendasi rs", "hospital"}
	hospitalWord      = regexp.MustCompile(`\brs\b`)
	planLookupPhrases = []string{"plan apa", "termasuk plan", "plan saya", "masuk plan apa"}
)

// Context is the Session Memory view the classifier depends on. PendingSlot must be
// the slot armed before this turn's slot filling.
type Context struct {
	PendingSlot model.SlotName
	LastIntent  model.Intent
}

type utterance struct {
	text     string // lowercased, reimburse misspellings folded
	entities Entities
}

type rule struct {
	intent model.Intent
	match  func(u utterance) bool
}

// cascade is evaluated top to bottom and the first match wins. The keyword sets overlap
// on purpose; do not reorder.
var cascade = []rule{
	{model.IntentProvidePolicyNumber, func(u utterance) bool { return IsPolicyOnly(u.text, u.entities.PolicyNumber) }},
	{model.IntentPlanBenefit, func(u utterance) bool {
		return containsAny(u.text, benefitPhrases) && u.entities.PlanTier != ""
	}},
	{model.IntentClaimRequirements, func(u utterance) bool {
		if containsAny(u.text, claimPhrases) {
			return true
		}
		return containsAny(u.text, reimbursePhrases) && !mentionsHospital(u.text)
	}},
	{model.IntentPolicyStatus, func(u utterance) bool { return containsAny(u.text, statusPhrases) }},
	{model.IntentRSSearch, func(u utterance) bool { return mentionsHospital(u.text) }},
	{model.IntentPolicyPlanLookup, func(u utterance) bool { return containsAny(u.text, planLookupPhrases) }},
	{model.IntentCashlessPolicy, func(u utterance) bool { return strings.Contains(u.text, "cashless") }},
	{model.IntentLimitPlan, func(u utterance) bool {
		return strings.Contains(u.text, "limit") && u.entities.PlanTier != ""
	}},
}

// Classify maps an utterance to exactly one intent. An armed pending slot skips the
// cascade and continues the previous intent.
func Classify(text string, c Context) model.Intent {
	if c.PendingSlot != "" {
		if c.LastIntent.Valid() && c.LastIntent != "" {
			return c.LastIntent
		}
		return model.IntentUnknown
	}
	u := utterance{text: NormalizeReimburse(text), entities: Extract(text)}
	for _, r := range cascade {
		if r.match(u) {
			return r.intent
		}
	}
	return model.IntentUnknown
}

// IsPolicyOnly reports whether text, minus filler words and punctuation, is nothing
// but the policy number (allowing two stray characters).
func IsPolicyOnly(text, policyNumber string) bool {
	if policyNumber == "" {
		return false
	}
	core := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(core) {
		if !fillerWords[tok] {
			kept = append(kept, tok)
		}
	}
	cc := Compact(strings.Join(kept, " "))
	np := Compact(policyNumber)
	if cc == "" || np == "" {
		return false
	}
	return strings.Contains(cc, np) && len(cc) <= len(np)+2
}

func mentionsHospital(text string) bool {
	return containsAny(text, hospitalPhrases) || hospitalWord.MatchString(text)
}
