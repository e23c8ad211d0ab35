package cluster

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"aks-health-guardian/internal/logs"
)

const (
	maxEvents    = 50
	highCPUMilli = 500.0
	highMemoryMi = 1024.0
)

// Collector builds cluster snapshots from the Kubernetes API and metrics.k8s.io.
type Collector struct {
	core        kubernetes.Interface
	metrics     metricsclient.Interface
	logger      *logs.Logger
	eventWindow time.Duration
}

// NewCollector connects to the cluster, preferring in-cluster credentials
// and falling back to the given kubeconfig.
func NewCollector(kubeconfigPath string, eventWindow time.Duration, logger *logs.Logger) (*Collector, error) {
	cfg, err := loadRESTConfig(kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("load kubernetes config: %w", err)
	}
	cfg.QPS = 30
	cfg.Burst = 60

	core, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create core client: %w", err)
	}
	m, err := metricsclient.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create metrics client: %w", err)
	}
	return newCollector(core, m, eventWindow, logger), nil
}

func newCollector(core kubernetes.Interface, metrics metricsclient.Interface, eventWindow time.Duration, logger *logs.Logger) *Collector {
	if eventWindow <= 0 {
		eventWindow = 24 * time.Hour
	}
	return &Collector{
		core:        core,
		metrics:     metrics,
		logger:      logger,
		eventWindow: eventWindow,
	}
}

func loadRESTConfig(kubeconfigPath string) (*rest.Config, error) {
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfigPath}
	if kubeconfigPath == "" {
		loadingRules = clientcmd.NewDefaultClientConfigLoadingRules()
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules,
		&clientcmd.ConfigOverrides{},
	).ClientConfig()
}

// Collect builds a fresh snapshot. The snapshot is owned by the caller and
// never shared across runs.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	pods, err := c.core.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}

	nodes, err := c.nodeInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	events, err := c.recentEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return &Snapshot{
		Timestamp:     time.Now().UTC(),
		Pods:          c.podSummary(pods.Items),
		Nodes:         nodes,
		Events:        events,
		ResourceUsage: c.resourceUsage(ctx),
		FailedPods:    c.failedPods(pods.Items),
	}, nil
}

func (c *Collector) podSummary(pods []corev1.Pod) PodSummary {
	summary := PodSummary{Details: make([]PodDetail, 0, len(pods))}

	for _, p := range pods {
		summary.Total++

		switch strings.ToLower(string(p.Status.Phase)) {
		case "running":
			summary.Running++
		case "pending":
			summary.Pending++
		case "failed":
			summary.Failed++
		case "unknown":
			summary.Unknown++
		default:
			if summary.Other == nil {
				summary.Other = make(map[string]int)
			}
			summary.Other[strings.ToLower(string(p.Status.Phase))]++
		}

		var restarts int32
		for _, cs := range p.Status.ContainerStatuses {
			restarts += cs.RestartCount
		}

		summary.Details = append(summary.Details, PodDetail{
			Name:      p.Name,
			Namespace: p.Namespace,
			Status:    string(p.Status.Phase),
			Restarts:  restarts,
			AgeDays:   int(time.Since(p.CreationTimestamp.Time).Hours() / 24),
		})
	}
	return summary
}

func (c *Collector) nodeInfo(ctx context.Context) ([]NodeInfo, error) {
	nodes, err := c.core.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	out := make([]NodeInfo, 0, len(nodes.Items))
	for _, n := range nodes.Items {
		conditions := make([]NodeCondition, 0, len(n.Status.Conditions))
		for _, cond := range n.Status.Conditions {
			conditions = append(conditions, NodeCondition{
				Type:   string(cond.Type),
				Status: string(cond.Status),
			})
		}
		out = append(out, NodeInfo{
			Name:              n.Name,
			CPUCapacity:       n.Status.Capacity.Cpu().String(),
			MemoryCapacity:    n.Status.Capacity.Memory().String(),
			CPUAllocatable:    n.Status.Allocatable.Cpu().String(),
			MemoryAllocatable: n.Status.Allocatable.Memory().String(),
			Conditions:        conditions,
		})
	}
	return out, nil
}

func (c *Collector) recentEvents(ctx context.Context) ([]EventRecord, error) {
	events, err := c.core.CoreV1().Events(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-c.eventWindow)
	out := make([]EventRecord, 0, len(events.Items))
	for _, e := range events.Items {
		if e.LastTimestamp.IsZero() || !e.LastTimestamp.Time.After(cutoff) {
			continue
		}
		out = append(out, EventRecord{
			Type:      e.Type,
			Reason:    e.Reason,
			Message:   e.Message,
			Object:    e.InvolvedObject.Kind + "/" + e.InvolvedObject.Name,
			Namespace: e.Namespace,
			Count:     e.Count,
			Timestamp: e.LastTimestamp.Time,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > maxEvents {
		out = out[:maxEvents]
	}
	return out, nil
}

// resourceUsage reads per-container usage from metrics.k8s.io.
// Metrics unavailability is not fatal: the summary carries the error and
// the usage fields stay empty.
func (c *Collector) resourceUsage(ctx context.Context) ResourceUsageSummary {
	podMetrics, err := c.metrics.MetricsV1beta1().PodMetricses(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		c.logger.Error("fetching pod metrics failed", zap.Error(err))
		return ResourceUsageSummary{Error: err.Error()}
	}

	usage := ResourceUsageSummary{
		HighCPUPods:    []HighCPUPod{},
		HighMemoryPods: []HighMemoryPod{},
	}

	for _, pm := range podMetrics.Items {
		for _, container := range pm.Containers {
			cu := container.Usage
			cpuRaw := cu.Cpu().String()
			memRaw := cu.Memory().String()

			cpuMilli, ok := ParseCPU(cpuRaw)
			if !ok {
				c.logger.Debug("unrecognized cpu quantity",
					zap.String("pod", pm.Name), zap.String("quantity", cpuRaw))
			}
			memMi, ok := ParseMemory(memRaw)
			if !ok {
				c.logger.Debug("unrecognized memory quantity",
					zap.String("pod", pm.Name), zap.String("quantity", memRaw))
			}

			usage.TotalCPUMillicores += cpuMilli
			usage.TotalMemoryMi += memMi
			usage.PodCount++

			if cpuMilli > highCPUMilli {
				usage.HighCPUPods = append(usage.HighCPUPods, HighCPUPod{
					Pod:           pm.Name,
					Namespace:     pm.Namespace,
					CPUMillicores: round2(cpuMilli),
				})
			}
			if memMi > highMemoryMi {
				usage.HighMemoryPods = append(usage.HighMemoryPods, HighMemoryPod{
					Pod:       pm.Name,
					Namespace: pm.Namespace,
					MemoryMi:  round2(memMi),
				})
			}
		}
	}
	return usage
}

func (c *Collector) failedPods(pods []corev1.Pod) []FailedPodDetail {
	failed := make([]FailedPodDetail, 0)
	for _, p := range pods {
		if p.Status.Phase != corev1.PodFailed && p.Status.Phase != corev1.PodUnknown {
			continue
		}

		reason := p.Status.Reason
		if reason == "" {
			reason = "Unknown"
		}
		message := p.Status.Message
		if message == "" {
			message = "No message"
		}

		statuses := make([]ContainerStatus, 0, len(p.Status.ContainerStatuses))
		for _, cs := range p.Status.ContainerStatuses {
			statuses = append(statuses, ContainerStatus{
				Name:         cs.Name,
				Ready:        cs.Ready,
				RestartCount: cs.RestartCount,
				State:        describeState(cs.State),
			})
		}

		failed = append(failed, FailedPodDetail{
			Name:              p.Name,
			Namespace:         p.Namespace,
			Status:            string(p.Status.Phase),
			Reason:            reason,
			Message:           message,
			ContainerStatuses: statuses,
		})
	}
	return failed
}

func describeState(state corev1.ContainerState) string {
	switch {
	case state.Waiting != nil:
		return "waiting: " + state.Waiting.Reason
	case state.Running != nil:
		return "running"
	case state.Terminated != nil:
		return "terminated: " + state.Terminated.Reason
	default:
		return "unknown"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
