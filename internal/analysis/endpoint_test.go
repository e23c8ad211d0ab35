package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointTracker_DegradesAfterThreshold(t *testing.T) {
	tracker := NewEndpointTracker(3, 2)

	tracker.MarkFailure()
	tracker.MarkFailure()
	assert.Equal(t, EndpointHealthy, tracker.State())

	tracker.MarkFailure()
	assert.Equal(t, EndpointDegraded, tracker.State())
}

func TestEndpointTracker_RecoversAfterThreshold(t *testing.T) {
	tracker := NewEndpointTracker(1, 2)

	tracker.MarkFailure()
	assert.Equal(t, EndpointDegraded, tracker.State())

	tracker.MarkSuccess()
	assert.Equal(t, EndpointDegraded, tracker.State())

	tracker.MarkSuccess()
	assert.Equal(t, EndpointHealthy, tracker.State())
}

func TestEndpointTracker_FailureResetsSuccessStreak(t *testing.T) {
	tracker := NewEndpointTracker(1, 2)
	tracker.MarkFailure()

	tracker.MarkSuccess()
	tracker.MarkFailure()
	tracker.MarkSuccess()
	assert.Equal(t, EndpointDegraded, tracker.State())
}

func TestNewEndpointTracker_RaisesBadThresholds(t *testing.T) {
	tracker := NewEndpointTracker(0, 0)

	tracker.MarkFailure()
	assert.Equal(t, EndpointDegraded, tracker.State())
	tracker.MarkSuccess()
	assert.Equal(t, EndpointHealthy, tracker.State())
}
