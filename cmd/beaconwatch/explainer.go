package main

import (
	"context"
	"fmt"
	"os"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/rs/zerolog"

	"github.com/jihwankim/beaconwatch/pkg/config"
	"github.com/jihwankim/beaconwatch/pkg/tier3"
)

// buildExplainer returns the configured Tier 3 Explainer. "llm" is wrapped
// in FallbackExplainer so a model outage never aborts a run; "rule" (the
// default) is used bare since it cannot fail.
func buildExplainer(cfg *config.Config, logger zerolog.Logger) (tier3.Explainer, error) {
	switch cfg.Explainer.Kind {
	case "llm":
		apiKey := os.Getenv("GOOGLE_GENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("explainer.kind is \"llm\" but GOOGLE_GENAI_API_KEY is unset")
		}
		g := genkit.Init(
			context.Background(),
			genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: apiKey}),
			genkit.WithDefaultModel(cfg.Explainer.ModelName),
		)
		llm := tier3.NewLLMExplainer(g, cfg.Explainer.ModelName)
		return tier3.WithFallback(llm, logger), nil
	default:
		return tier3.NewRuleTemplateExplainer(), nil
	}
}
