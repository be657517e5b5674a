package composer

import (
	"context"

	"github.com/cso-health-insurance/server/internal/agent/model"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

// Composer renders decisions and, when a Rephraser is set, tries to polish them.
type Composer struct {
	rephraser *Rephraser
}

// New returns a Composer. A nil rephraser disables the rephrasing pass.
func New(rephraser *Rephraser) *Composer {
	return &Composer{rephraser: rephraser}
}

// Compose never fails: rephrase errors fall back to the grounded answer.
func (c *Composer) Compose(ctx context.Context, d *model.Decision) string {
	grounded := Render(d)
	if c == nil || c.rephraser == nil || grounded == "" {
		return grounded
	}
	polished, err := c.rephraser.Rephrase(ctx, grounded)
	if err != nil {
		logx.Warn().Err(err).Msg("rephrase skipped, using grounded answer")
		return grounded
	}
	return polished
}
