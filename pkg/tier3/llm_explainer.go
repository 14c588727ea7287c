package tier3

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	genkitcore "github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"

	"github.com/jihwankim/beaconwatch/pkg/tier1"
	"github.com/jihwankim/beaconwatch/pkg/tier2"
)

// narrativeRequest is the genkit flow's input: the evidence available for
// one fused key.
type narrativeRequest struct {
	SrcIP        string   `json:"src_ip"`
	Domain       string   `json:"domain"`
	MethodsFired []string `json:"methods_fired,omitempty"`
	TopFeatures  []string `json:"top_features,omitempty"`
	Confidence   float64  `json:"confidence"`
	RequestCount int      `json:"request_count"`
}

// narrativeResponse mirrors Narrative with JSON tags genkit can bind to.
type narrativeResponse struct {
	ThreatSummary     string `json:"threat_summary"`
	WhatHappened      string `json:"what_happened"`
	WhySuspicious     string `json:"why_suspicious"`
	RecommendedAction string `json:"recommended_action"`
}

// LLMExplainer generates free-form narratives via a genkit flow. A model or
// context failure is returned from Explain as an error; wrapped in
// WithFallback, that error is absorbed and never reaches Fuse.
type LLMExplainer struct {
	g         *genkit.Genkit
	flow      *genkitcore.Flow[*narrativeRequest, *narrativeResponse, struct{}]
	modelName string
}

// NewLLMExplainer defines the narrative-generation flow against an
// already-initialised genkit instance.
func NewLLMExplainer(g *genkit.Genkit, modelName string) *LLMExplainer {
	e := &LLMExplainer{g: g, modelName: modelName}
	e.flow = genkit.DefineFlow(g, "tier3NarrativeFlow", e.run)
	return e
}

func (e *LLMExplainer) run(ctx context.Context, req *narrativeRequest) (*narrativeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before narrative generation: %w", err)
	}

	prompt := buildNarrativePrompt(req)

	resp, _, err := genkit.GenerateData[narrativeResponse](
		ctx,
		e.g,
		ai.WithModelName(e.modelName),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("narrative LLM failed: %w", err)
	}
	return resp, nil
}

// Explain adapts Tier 1/Tier 2 evidence into a flow request and invokes it.
func (e *LLMExplainer) Explain(ctx context.Context, f1 *tier1.Finding, f2 *tier2.Finding) (Narrative, error) {
	req := toNarrativeRequest(f1, f2)

	resp, err := e.flow.Run(ctx, req)
	if err != nil {
		return Narrative{}, err
	}

	return Narrative{
		ThreatSummary:     resp.ThreatSummary,
		WhatHappened:      resp.WhatHappened,
		WhySuspicious:     resp.WhySuspicious,
		RecommendedAction: resp.RecommendedAction,
	}, nil
}

func toNarrativeRequest(f1 *tier1.Finding, f2 *tier2.Finding) *narrativeRequest {
	req := &narrativeRequest{}
	if f1 != nil {
		req.SrcIP = f1.Key.SrcIP
		req.Domain = f1.Key.Domain
		req.MethodsFired = f1.MethodsFired
		req.RequestCount = f1.RequestCount
	}
	if f2 != nil {
		req.SrcIP = f2.Key.SrcIP
		req.Domain = f2.Key.Domain
		req.TopFeatures = f2.TopFeatures
		req.Confidence = f2.Confidence
		if req.RequestCount == 0 {
			req.RequestCount = f2.Vector.RequestCnt
		}
	}
	return req
}

func buildNarrativePrompt(req *narrativeRequest) string {
	return fmt.Sprintf(
		"You are a security analyst. A host %s made %d requests to %s. "+
			"Statistical rules fired: %v. Anomaly-model confidence: %.2f. "+
			"Top deviating features: %v. Write a short threat_summary, what_happened, "+
			"why_suspicious, and recommended_action, each one or two sentences.",
		req.SrcIP, req.RequestCount, req.Domain, req.MethodsFired, req.Confidence, req.TopFeatures,
	)
}
