package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"aks-health-guardian/internal/cluster"
	"aks-health-guardian/internal/logs"
	"aks-health-guardian/internal/metrics"
)

const systemPrompt = "You are a Kubernetes expert providing cluster health analysis. Always respond with valid JSON."

const promptTemplate = `You are an expert Kubernetes cluster administrator. Analyze this AKS cluster health data and provide:

1. Overall Health Score (0-100)
2. Top 3 Issues Detected (with severity: Critical/Warning/Info)
3. Predicted Problems (in next 24-48 hours)
4. Actionable Recommendations (specific kubectl commands or Azure portal actions)

Cluster Data:
%s

Provide your analysis in JSON format:
{
  "health_score": <number>,
  "summary": "<brief overall assessment>",
  "issues": [
    {"severity": "<level>", "title": "<issue>", "description": "<details>"}
  ],
  "predictions": [
    {"timeframe": "<when>", "issue": "<what>", "probability": "<likelihood>"}
  ],
  "recommendations": [
    {"priority": "<high/medium/low>", "action": "<what to do>", "command": "<kubectl or az command>"}
  ]
}`

// How much of a bad completion response to keep in the logs.
const maxResponseExcerpt = 500

// Analyzer turns a snapshot into a Result. The remote completion path is
// attempted once; every failure mode degrades to the fallback scorer, so
// Analyze never fails outward.
type Analyzer struct {
	client   CompletionClient // nil runs the fallback path only
	fallback *FallbackScorer
	endpoint *EndpointTracker
	logger   *logs.Logger
	metrics  *metrics.Registry
}

// NewAnalyzer creates an analyzer. A nil client means no completion endpoint
// is configured and every run scores via rules.
func NewAnalyzer(client CompletionClient, endpoint *EndpointTracker, logger *logs.Logger, reg *metrics.Registry) *Analyzer {
	return &Analyzer{
		client:   client,
		fallback: NewFallbackScorer(),
		endpoint: endpoint,
		logger:   logger,
		metrics:  reg,
	}
}

// Analyze produces a fully populated Result for the snapshot and reports
// which path produced it.
func (a *Analyzer) Analyze(ctx context.Context, snap *cluster.Snapshot) (Result, Source) {
	if a.client == nil {
		a.metrics.Inc(metrics.FallbackUsedTotal)
		return a.fallback.Score(snap), SourceFallback
	}

	prompt := fmt.Sprintf(promptTemplate, Summarize(snap))

	a.metrics.Inc(metrics.CompletionRequestsTotal)
	text, err := a.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		a.endpoint.MarkFailure()
		a.metrics.Inc(metrics.CompletionFailuresTotal)
		a.metrics.Inc(metrics.FallbackUsedTotal)
		a.logger.Error("completion request failed, using rule-based fallback", zap.Error(err))
		return a.fallback.Score(snap), SourceFallback
	}
	a.endpoint.MarkSuccess()

	result, err := extractResult(text)
	if err != nil {
		a.metrics.Inc(metrics.ExtractionFailuresTotal)
		a.metrics.Inc(metrics.FallbackUsedTotal)
		a.logger.Warn("no usable analysis in completion response, using rule-based fallback",
			zap.Error(err),
			zap.String("response_excerpt", excerpt(text, maxResponseExcerpt)),
		)
		return a.fallback.Score(snap), SourceFallback
	}
	return result, SourceRemote
}

// extractResult locates the first balanced-looking JSON object in free-form
// text (first '{' to last '}') and decodes it into a Result. The decoded
// value must carry the required fields; anything less is an extraction
// failure, never partially-shaped data.
func extractResult(text string) (Result, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Result{}, errors.New("no JSON object in response text")
	}

	var result Result
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return Result{}, fmt.Errorf("decode analysis object: %w", err)
	}

	if result.Summary == "" {
		return Result{}, errors.New("analysis object missing summary")
	}
	if len(result.Issues) == 0 {
		return Result{}, errors.New("analysis object missing issues")
	}
	if len(result.Recommendations) == 0 {
		return Result{}, errors.New("analysis object missing recommendations")
	}

	if result.HealthScore < 0 {
		result.HealthScore = 0
	}
	if result.HealthScore > 100 {
		result.HealthScore = 100
	}
	if result.Predictions == nil {
		result.Predictions = []Prediction{}
	}
	return result, nil
}

func excerpt(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
