package analysis

import (
	"fmt"
	"strings"

	"aks-health-guardian/internal/cluster"
)

// Bounds that keep the prompt digest small no matter how large the cluster is.
const (
	maxDigestEvents     = 5
	maxDigestFailedPods = 3
	maxEventMessageLen  = 100
)

// Summarize reduces a snapshot to a short text digest for the completion
// prompt. Pure function; the truncation bounds above keep the output at a
// fixed maximum size regardless of cluster size.
func Summarize(snap *cluster.Snapshot) string {
	parts := []string{}

	parts = append(parts, fmt.Sprintf(
		"Pod Summary: %d total, %d running, %d failed, %d pending",
		snap.Pods.Total, snap.Pods.Running, snap.Pods.Failed, snap.Pods.Pending,
	))

	parts = append(parts, fmt.Sprintf(
		"\nFailed Pods: %d pods in failed state", len(snap.FailedPods),
	))

	parts = append(parts, fmt.Sprintf(
		"High Resource Usage: %d pods with high CPU, %d pods with high memory",
		len(snap.ResourceUsage.HighCPUPods), len(snap.ResourceUsage.HighMemoryPods),
	))

	warnings := 0
	normal := 0
	for _, e := range snap.Events {
		switch e.Type {
		case "Warning":
			warnings++
		case "Normal":
			normal++
		}
	}
	parts = append(parts, fmt.Sprintf(
		"\nRecent Events: %d warnings, %d normal", warnings, normal,
	))

	if len(snap.Events) > 0 {
		parts = append(parts, "\nTop Recent Events:")
		for _, e := range snap.Events[:min(len(snap.Events), maxDigestEvents)] {
			msg := e.Message
			if len(msg) > maxEventMessageLen {
				msg = msg[:maxEventMessageLen]
			}
			parts = append(parts, fmt.Sprintf("  - [%s] %s: %s", e.Type, e.Reason, msg))
		}
	}

	if len(snap.FailedPods) > 0 {
		parts = append(parts, "\nFailed Pod Details:")
		for _, p := range snap.FailedPods[:min(len(snap.FailedPods), maxDigestFailedPods)] {
			parts = append(parts, fmt.Sprintf("  - %s/%s: %s", p.Namespace, p.Name, p.Reason))
		}
	}

	return strings.Join(parts, "\n")
}
