// Package scoring ranks retrieved policy-document chunks with fixed per-intent keyword rubrics.
package scoring

import (
	"strings"

	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/agent/nlu"
)

// Empirically tuned floors.
const (
	ClaimFloor        = 3
	PlanFloor         = 1
	LimitRequeryFloor = 4
)

// QuoteLimit caps the quote copied into a decision, in characters.
const QuoteLimit = 900

const (
	longChunk = 300
	noScore   = -10
)

var claimKeywords = []string{
	"klaim", "claim", "cashless", "reimbursement", "dokumen", "formulir",
	"kwitansi", "resume", "verifikasi", "pengajuan", "batas waktu",
}

var (
	limitKeywords   = []string{"limit", "tahunan", "rawat", "icu", "rp"}
	benefitKeywords = []string{"manfaat", "rawat", "icu", "persalinan", "kritis"}
)

// Score applies the rubric of intent to one chunk text. plan is the requested tier,
// if any. Intents without a rubric only receive the length bonus.
func Score(intent model.Intent, text, plan string) int {
	txt := nlu.Lower(text)
	planL := nlu.Lower(plan)
	score := 0

	switch intent {
	case model.IntentClaimRequirements:
		score += 2 * countContained(txt, claimKeywords)
		if strings.Contains(txt, "limit") && strings.Contains(txt, "plan") {
			score -= 4
		}
		if strings.Contains(txt, "bab iv") || strings.Contains(txt, "limit dan plan") {
			score -= 6
		}
	case model.IntentLimitPlan:
		if planL != "" && strings.Contains(txt, planL) {
			score += 4
		}
		score += 2 * countContained(txt, limitKeywords)
	case model.IntentPlanBenefit:
		if planL != "" && strings.Contains(txt, planL) {
			score += 3
		}
		score += 2 * countContained(txt, benefitKeywords)
		if strings.Contains(txt, "limit dan plan") && !strings.Contains(txt, "manfaat") {
			score -= 2
		}
	}

	if len([]rune(txt)) > longChunk {
		score++
	}
	return score
}

// Floor is the minimum score a chunk needs to be cited for intent.
func Floor(intent model.Intent) int {
	if intent == model.IntentClaimRequirements {
		return ClaimFloor
	}
	return PlanFloor
}

// Best returns the highest-scoring chunk, the first one on ties. ok is false when no
// chunk has text or the best score is below Floor(intent).
func Best(intent model.Intent, chunks []model.EvidenceChunk, plan string) (best model.EvidenceChunk, score int, ok bool) {
	score = noScore
	found := false
	for _, c := range chunks {
		if nlu.Normalize(c.Text) == "" {
			continue
		}
		if s := Score(intent, c.Text, plan); s > score {
			best, score, found = c, s, true
		}
	}
	if !found || score < Floor(intent) {
		return model.EvidenceChunk{}, score, false
	}
	return best, score, true
}

// PreselectLimit scores first-pass limit retrieval with a lighter rubric. ok is false
// when nothing reaches LimitRequeryFloor, meaning the caller should query again.
func PreselectLimit(chunks []model.EvidenceChunk, plan string) (model.EvidenceChunk, bool) {
	planL := nlu.Lower(plan)
	var best model.EvidenceChunk
	bestScore := -1
	for _, c := range chunks {
		txt := nlu.Lower(c.Text)
		if txt == "" {
			continue
		}
		score := 0
		if planL != "" && strings.Contains(txt, planL) {
			score += 3
		}
		if strings.Contains(txt, "limit") {
			score += 2
		}
		if strings.Contains(txt, "tahunan") {
			score += 2
		}
		if strings.Contains(txt, "rawat") || strings.Contains(txt, "icu") {
			score++
		}
		if strings.Contains(txt, "rp") {
			score += 2
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= LimitRequeryFloor
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func countContained(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
