package report

import (
	"fmt"
	"strings"

	"aks-health-guardian/internal/analysis"
	"aks-health-guardian/internal/cluster"
	"aks-health-guardian/internal/store"
)

// How many failed pods the cluster overview section lists.
const maxRenderedFailedPods = 10

// Subject builds the email subject line for a run.
func Subject(rec store.Record) string {
	return fmt.Sprintf("Cluster Health Report: score %d/100", rec.Result.HealthScore)
}

// Render produces the plain-text report body for a completed run.
// Rendering makes no assumptions about delivery; the same body is usable in
// an email or an API response.
func Render(rec store.Record, snap *cluster.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Cluster Health Report\n")
	fmt.Fprintf(&b, "Generated: %s (run %s)\n\n", rec.FinishedAt.Format("2006-01-02 15:04:05 UTC"), rec.ID)

	fmt.Fprintf(&b, "Health Score: %d/100\n", rec.Result.HealthScore)
	fmt.Fprintf(&b, "Summary: %s\n", rec.Result.Summary)
	if rec.Source == analysis.SourceFallback {
		fmt.Fprintf(&b, "Note: analysis service unavailable, rule-based assessment used\n")
	}

	fmt.Fprintf(&b, "\nIssues:\n")
	for _, issue := range rec.Result.Issues {
		fmt.Fprintf(&b, "  [%s] %s - %s\n", issue.Severity, issue.Title, issue.Description)
	}

	if len(rec.Result.Predictions) > 0 {
		fmt.Fprintf(&b, "\nPredicted Problems:\n")
		for _, p := range rec.Result.Predictions {
			fmt.Fprintf(&b, "  %s: %s (probability: %s)\n", p.Timeframe, p.Issue, p.Probability)
		}
	}

	fmt.Fprintf(&b, "\nRecommendations:\n")
	for _, r := range rec.Result.Recommendations {
		fmt.Fprintf(&b, "  [%s] %s\n", r.Priority, r.Action)
		if r.Command != "" {
			fmt.Fprintf(&b, "      %s\n", r.Command)
		}
	}

	fmt.Fprintf(&b, "\nCluster Overview:\n")
	fmt.Fprintf(&b, "  Pods: %d total, %d running, %d failed, %d pending\n",
		snap.Pods.Total, snap.Pods.Running, snap.Pods.Failed, snap.Pods.Pending)
	fmt.Fprintf(&b, "  Nodes: %d\n", len(snap.Nodes))
	fmt.Fprintf(&b, "  Warning events (last 24h): %d\n", snap.WarningEvents())

	if len(snap.FailedPods) > 0 {
		fmt.Fprintf(&b, "  Failed pods:\n")
		for _, p := range snap.FailedPods[:min(len(snap.FailedPods), maxRenderedFailedPods)] {
			fmt.Fprintf(&b, "    %s/%s: %s\n", p.Namespace, p.Name, p.Reason)
		}
	}

	if snap.ResourceUsage.Error != "" {
		fmt.Fprintf(&b, "  Resource usage: unavailable (%s)\n", snap.ResourceUsage.Error)
	} else {
		fmt.Fprintf(&b, "  Resource usage: %.0fm CPU, %.0fMi memory across %d pods\n",
			snap.ResourceUsage.TotalCPUMillicores, snap.ResourceUsage.TotalMemoryMi, snap.ResourceUsage.PodCount)
	}

	return b.String()
}
