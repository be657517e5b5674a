package nodes

import (
	"context"

	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

// Retrieval queries per document intent. %s is the plan tier.
const (
	claimQuery = "prosedur klaim cara klaim langkah klaim dokumen klaim formulir klaim " +
		"resume medis kwitansi rincian biaya batas waktu pengajuan " +
		"klaim cashless verifikasi rumah sakit rekanan klaim reimbursement"
	limitQuery   = "BAB IV LIMIT DAN PLAN %s Limit Tahunan Rawat Inap ICU Rawat Jalan Rp"
	limitRequery = "LIMIT DAN PLAN %s Limit Tahunan Rp Rawat"
	benefitQuery = "manfaat %s plan %s rawat inap rawat jalan icu manfaat tambahan"

	claimK        = 35
	limitK        = 35
	limitRequeryK = 40
	benefitK      = 40
	defaultK      = 30
)

// NewVisitPreHandler records node in AppState.Visited and fails the turn if the
// node already ran in this invocation.
func NewVisitPreHandler[I any](node string) func(context.Context, I, *model.AppState) (I, error) {
	return func(ctx context.Context, in I, s *model.AppState) (I, error) {
		if s.Seen(node) {
			return in, errx.ContractViolation(node, "node revisited within one turn")
		}
		s.Visited = append(s.Visited, node)
		return in, nil
	}
}

// checkState rejects a turn state that lost its memory or session on the way.
func checkState(node string, st *model.TurnState) error {
	if st == nil {
		return errx.ContractViolation(node, "nil turn state")
	}
	if st.Memory == nil {
		return errx.ContractViolation(node, "turn state without session memory")
	}
	return nil
}
