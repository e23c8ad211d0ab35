package analysis

import (
	"fmt"

	"aks-health-guardian/internal/cluster"
)

// RuleResult is the outcome of a single fallback rule.
// A triggered rule lowers the score and contributes exactly one issue;
// a recommendation is optional.
type RuleResult struct {
	Triggered      bool
	Deduction      int
	Issue          Issue
	Recommendation *Recommendation
}

// Rule evaluates one health signal on a snapshot.
type Rule func(snap *cluster.Snapshot) RuleResult

// ---------- RULES ----------

// Failed pods are the strongest health signal.
func FailedPodsRule(snap *cluster.Snapshot) RuleResult {
	failed := snap.Pods.Failed
	if failed > 0 {
		return RuleResult{
			Triggered: true,
			Deduction: 20,
			Issue: Issue{
				Severity:    SeverityCritical,
				Title:       fmt.Sprintf("%d Failed Pods", failed),
				Description: "Pods are in failed state and need investigation",
			},
			Recommendation: &Recommendation{
				Priority: PriorityHigh,
				Action:   "Investigate failed pods",
				Command:  "kubectl get pods --all-namespaces --field-selector=status.phase=Failed",
			},
		}
	}
	return RuleResult{}
}

// Pods above the CPU threshold suggest missing or undersized limits.
func HighCPURule(snap *cluster.Snapshot) RuleResult {
	high := len(snap.ResourceUsage.HighCPUPods)
	if high > 0 {
		return RuleResult{
			Triggered: true,
			Deduction: 10,
			Issue: Issue{
				Severity:    SeverityWarning,
				Title:       "High CPU Usage Detected",
				Description: fmt.Sprintf("%d pods using >500m CPU", high),
			},
			Recommendation: &Recommendation{
				Priority: PriorityMedium,
				Action:   "Review pod resource limits",
				Command:  "kubectl top pods --all-namespaces --sort-by=cpu",
			},
		}
	}
	return RuleResult{}
}

// High memory deliberately emits no recommendation, matching the CPU rule's
// issue shape only.
func HighMemoryRule(snap *cluster.Snapshot) RuleResult {
	high := len(snap.ResourceUsage.HighMemoryPods)
	if high > 0 {
		return RuleResult{
			Triggered: true,
			Deduction: 10,
			Issue: Issue{
				Severity:    SeverityWarning,
				Title:       "High Memory Usage Detected",
				Description: fmt.Sprintf("%d pods using >1Gi memory", high),
			},
		}
	}
	return RuleResult{}
}

// Pending pods are informational; the scheduler usually resolves them.
func PendingPodsRule(snap *cluster.Snapshot) RuleResult {
	pending := snap.Pods.Pending
	if pending > 0 {
		return RuleResult{
			Triggered: true,
			Deduction: 5,
			Issue: Issue{
				Severity:    SeverityInfo,
				Title:       fmt.Sprintf("%d Pods Pending", pending),
				Description: "Pods waiting to be scheduled",
			},
		}
	}
	return RuleResult{}
}
