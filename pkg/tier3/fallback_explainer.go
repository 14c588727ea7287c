package tier3

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jihwankim/beaconwatch/pkg/tier1"
	"github.com/jihwankim/beaconwatch/pkg/tier2"
)

// FallbackExplainer wraps a primary Explainer (typically LLM-backed) with
// RuleTemplateExplainer as a safety net. Any error from the primary — a
// timeout, a malformed model response, a network failure — is swallowed and
// the key is explained with the deterministic rule templates instead. Every
// key still tries Primary first. Only the first fallback of a
// FallbackExplainer is logged, not one per key, so a sustained outage
// doesn't flood the log.
type FallbackExplainer struct {
	Primary  Explainer
	fallback *RuleTemplateExplainer
	log      zerolog.Logger

	warnOnce sync.Once
}

// WithFallback builds a FallbackExplainer around primary.
func WithFallback(primary Explainer, log zerolog.Logger) *FallbackExplainer {
	return &FallbackExplainer{
		Primary:  primary,
		fallback: NewRuleTemplateExplainer(),
		log:      log,
	}
}

// Explain tries Primary first; on any error it logs once at warn level and
// falls back to the rule templates for this key. The rule templates never
// error, so Explain itself never returns one.
func (e *FallbackExplainer) Explain(ctx context.Context, f1 *tier1.Finding, f2 *tier2.Finding) (Narrative, error) {
	n, err := e.Primary.Explain(ctx, f1, f2)
	if err == nil {
		return n, nil
	}

	e.warnOnce.Do(func() {
		e.log.Warn().Err(err).Msg("tier3 explainer failed, falling back to rule templates for this key; later failures are not logged")
	})

	return e.fallback.Explain(ctx, f1, f2)
}
