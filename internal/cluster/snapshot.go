package cluster

import "time"

// Snapshot is one point-in-time capture of cluster health signals.
// It is built once per run, read-only afterwards, and discarded with the run.
type Snapshot struct {
	Timestamp     time.Time            `json:"timestamp"`
	Pods          PodSummary           `json:"pods"`
	Nodes         []NodeInfo           `json:"nodes"`
	Events        []EventRecord        `json:"events"`
	ResourceUsage ResourceUsageSummary `json:"resource_usage"`
	FailedPods    []FailedPodDetail    `json:"failed_pods"`
}

// PodSummary aggregates pod counts by phase.
// Total always equals the sum of the per-phase counts, and Details has one
// entry per counted pod.
type PodSummary struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Unknown int `json:"unknown"`

	// Other holds counts for phases outside the four common ones,
	// keyed by lowercased phase name (e.g. "succeeded").
	Other map[string]int `json:"other,omitempty"`

	Details []PodDetail `json:"details"`
}

// PodDetail is one pod's summary line.
type PodDetail struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Status    string `json:"status"`
	Restarts  int32  `json:"restarts"`
	AgeDays   int    `json:"age"`
}

// NodeInfo carries raw capacity/allocatable quantity strings and conditions.
type NodeInfo struct {
	Name              string          `json:"name"`
	CPUCapacity       string          `json:"cpu_capacity"`
	MemoryCapacity    string          `json:"memory_capacity"`
	CPUAllocatable    string          `json:"cpu_allocatable"`
	MemoryAllocatable string          `json:"memory_allocatable"`
	Conditions        []NodeCondition `json:"conditions"`
}

// NodeCondition is a (type, status) pair from the node status.
type NodeCondition struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// EventRecord is one cluster event inside the capture window.
// Snapshots hold at most 50, most recent first.
type EventRecord struct {
	Type      string    `json:"type"`
	Reason    string    `json:"reason"`
	Message   string    `json:"message"`
	Object    string    `json:"object"` // kind/name of the involved object
	Namespace string    `json:"namespace"`
	Count     int32     `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// ResourceUsageSummary aggregates pod usage from the metrics API.
// When the metrics source is unavailable only Error is set.
type ResourceUsageSummary struct {
	TotalCPUMillicores float64         `json:"total_cpu_usage"`
	TotalMemoryMi      float64         `json:"total_memory_usage"`
	PodCount           int             `json:"pod_count"`
	HighCPUPods        []HighCPUPod    `json:"high_cpu_pods"`
	HighMemoryPods     []HighMemoryPod `json:"high_memory_pods"`
	Error              string          `json:"error,omitempty"`
}

// HighCPUPod flags a container using more than 500 millicores.
type HighCPUPod struct {
	Pod           string  `json:"pod"`
	Namespace     string  `json:"namespace"`
	CPUMillicores float64 `json:"cpu_millicores"`
}

// HighMemoryPod flags a container using more than 1024 MiB.
type HighMemoryPod struct {
	Pod       string  `json:"pod"`
	Namespace string  `json:"namespace"`
	MemoryMi  float64 `json:"memory_mi"`
}

// FailedPodDetail describes a pod in Failed or Unknown phase.
type FailedPodDetail struct {
	Name              string            `json:"name"`
	Namespace         string            `json:"namespace"`
	Status            string            `json:"status"`
	Reason            string            `json:"reason"`
	Message           string            `json:"message"`
	ContainerStatuses []ContainerStatus `json:"container_statuses"`
}

// ContainerStatus is a per-container status summary for a failed pod.
type ContainerStatus struct {
	Name         string `json:"name"`
	Ready        bool   `json:"ready"`
	RestartCount int32  `json:"restart_count"`
	State        string `json:"state"`
}

// WarningEvents counts events of type Warning in the snapshot.
func (s *Snapshot) WarningEvents() int {
	n := 0
	for _, e := range s.Events {
		if e.Type == "Warning" {
			n++
		}
	}
	return n
}
