package analysis

import "aks-health-guardian/internal/cluster"

// Summary bands by final score.
const (
	summaryHealthy     = "Cluster is healthy with minor issues"
	summarySomeIssues  = "Cluster has some issues requiring attention"
	summarySignificant = "Cluster has significant issues requiring immediate attention"
)

// FallbackScorer derives a result from a snapshot with no network calls.
// It is a pure function of the snapshot: same input, same output.
type FallbackScorer struct {
	rules []Rule
}

// NewFallbackScorer creates a scorer with the standard rule set.
func NewFallbackScorer() *FallbackScorer {
	return &FallbackScorer{
		rules: []Rule{
			FailedPodsRule,
			HighCPURule,
			HighMemoryRule,
			PendingPodsRule,
		},
	}
}

// Score evaluates every rule independently: each triggered rule lowers the
// score and appends its issue (and recommendation, if any); none blocks the
// others. The final score is clamped at 0.
func (s *FallbackScorer) Score(snap *cluster.Snapshot) Result {
	score := 100
	issues := []Issue{}
	recommendations := []Recommendation{}

	for _, rule := range s.rules {
		result := rule(snap)
		if !result.Triggered {
			continue
		}
		score -= result.Deduction
		issues = append(issues, result.Issue)
		if result.Recommendation != nil {
			recommendations = append(recommendations, *result.Recommendation)
		}
	}

	if score < 0 {
		score = 0
	}

	var summary string
	switch {
	case score >= 90:
		summary = summaryHealthy
	case score >= 70:
		summary = summarySomeIssues
	default:
		summary = summarySignificant
	}

	if len(issues) == 0 {
		issues = append(issues, Issue{
			Severity:    SeverityInfo,
			Title:       "No Issues Detected",
			Description: "Cluster appears healthy",
		})
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, Recommendation{
			Priority: PriorityLow,
			Action:   "Continue monitoring",
			Command:  "kubectl get pods --all-namespaces",
		})
	}

	return Result{
		HealthScore:     score,
		Summary:         summary,
		Issues:          issues,
		Predictions:     []Prediction{},
		Recommendations: recommendations,
	}
}
