package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"aks-health-guardian/internal/analysis"
	"aks-health-guardian/internal/cluster"
	"aks-health-guardian/internal/store"
)

func sampleRun(source analysis.Source) (store.Record, *cluster.Snapshot) {
	rec := store.Record{
		ID:         "run-42",
		FinishedAt: time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC),
		Source:     source,
		Result: analysis.Result{
			HealthScore: 80,
			Summary:     "Cluster has some issues requiring attention",
			Issues: []analysis.Issue{
				{Severity: analysis.SeverityCritical, Title: "2 Failed Pods", Description: "Pods are in failed state and need investigation"},
			},
			Predictions: []analysis.Prediction{
				{Timeframe: "24-48h", Issue: "disk pressure on node-1", Probability: "medium"},
			},
			Recommendations: []analysis.Recommendation{
				{Priority: analysis.PriorityHigh, Action: "Investigate failed pods", Command: "kubectl get pods --all-namespaces --field-selector=status.phase=Failed"},
			},
		},
	}
	snap := &cluster.Snapshot{
		Pods:  cluster.PodSummary{Total: 12, Running: 9, Failed: 2, Pending: 1},
		Nodes: []cluster.NodeInfo{{Name: "node-1"}, {Name: "node-2"}},
		Events: []cluster.EventRecord{
			{Type: "Warning"}, {Type: "Normal"},
		},
		FailedPods: []cluster.FailedPodDetail{
			{Name: "web-1", Namespace: "default", Reason: "Evicted"},
			{Name: "web-2", Namespace: "default", Reason: "OOMKilled"},
		},
		ResourceUsage: cluster.ResourceUsageSummary{
			TotalCPUMillicores: 1250,
			TotalMemoryMi:      4096,
			PodCount:           12,
		},
	}
	return rec, snap
}

func TestRender_ContainsAssessment(t *testing.T) {
	rec, snap := sampleRun(analysis.SourceRemote)
	body := Render(rec, snap)

	assert.Contains(t, body, "Health Score: 80/100")
	assert.Contains(t, body, "Cluster has some issues requiring attention")
	assert.Contains(t, body, "[Critical] 2 Failed Pods")
	assert.Contains(t, body, "24-48h: disk pressure on node-1 (probability: medium)")
	assert.Contains(t, body, "kubectl get pods --all-namespaces --field-selector=status.phase=Failed")
	assert.Contains(t, body, "Pods: 12 total, 9 running, 2 failed, 1 pending")
	assert.Contains(t, body, "default/web-2: OOMKilled")
	assert.NotContains(t, body, "rule-based assessment")
}

func TestRender_MarksFallbackRuns(t *testing.T) {
	rec, snap := sampleRun(analysis.SourceFallback)
	body := Render(rec, snap)

	assert.Contains(t, body, "rule-based assessment used")
}

func TestRender_MetricsUnavailable(t *testing.T) {
	rec, snap := sampleRun(analysis.SourceRemote)
	snap.ResourceUsage = cluster.ResourceUsageSummary{Error: "metrics API timeout"}

	body := Render(rec, snap)
	assert.Contains(t, body, "Resource usage: unavailable (metrics API timeout)")
}

func TestSubject(t *testing.T) {
	rec, _ := sampleRun(analysis.SourceRemote)
	assert.Equal(t, "Cluster Health Report: score 80/100", Subject(rec))
}
