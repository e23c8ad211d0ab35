package analysis

// Issue severities used in analysis results.
const (
	SeverityCritical = "Critical"
	SeverityWarning  = "Warning"
	SeverityInfo     = "Info"
)

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Source marks which path produced a result.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Issue is one detected problem.
type Issue struct {
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Prediction is a problem expected within the next 24-48 hours.
// Only the remote path produces predictions.
type Prediction struct {
	Timeframe   string `json:"timeframe"`
	Issue       string `json:"issue"`
	Probability string `json:"probability"`
}

// Recommendation is an actionable remediation step.
type Recommendation struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Command  string `json:"command"`
}

// Result is the normalized health assessment handed to reporting.
// Every field is always populated, by either the remote or fallback path.
type Result struct {
	HealthScore     int              `json:"health_score"`
	Summary         string           `json:"summary"`
	Issues          []Issue          `json:"issues"`
	Predictions     []Prediction     `json:"predictions"`
	Recommendations []Recommendation `json:"recommendations"`
}
