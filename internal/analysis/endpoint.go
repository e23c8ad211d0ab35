package analysis

import "sync"

// EndpointState is the observed health of the completion endpoint.
type EndpointState string

const (
	EndpointHealthy  EndpointState = "healthy"
	EndpointDegraded EndpointState = "degraded"
)

// EndpointTracker records consecutive completion outcomes and flips the
// endpoint state on configured thresholds. It only informs the health
// surface and logs; the analyzer always makes its single attempt regardless
// of the tracked state.
type EndpointTracker struct {
	mu               sync.Mutex
	state            EndpointState
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
}

// NewEndpointTracker creates a tracker. Thresholds below 1 are raised to 1.
func NewEndpointTracker(failureThreshold, successThreshold int) *EndpointTracker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if successThreshold < 1 {
		successThreshold = 1
	}
	return &EndpointTracker{
		state:            EndpointHealthy,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
	}
}

// MarkFailure records a failed completion attempt.
func (t *EndpointTracker) MarkFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failureCount++
	t.successCount = 0
	if t.failureCount >= t.failureThreshold {
		t.state = EndpointDegraded
	}
}

// MarkSuccess records a successful completion attempt.
func (t *EndpointTracker) MarkSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.successCount++
	t.failureCount = 0
	if t.successCount >= t.successThreshold {
		t.state = EndpointHealthy
	}
}

// State returns the current endpoint state.
func (t *EndpointTracker) State() EndpointState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
