package jobmodels

import (
	"testing"
)

// TestCanTransition_Monotonic kiểm tra state machine của delivery job:
// không bao giờ quay lại trạng thái trước, terminal không mở lại.
func TestCanTransition_Monotonic(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{JobStatusPending, JobStatusInProgress, true},
		{JobStatusPending, JobStatusSucceeded, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusInProgress, JobStatusSucceeded, true},
		{JobStatusInProgress, JobStatusFailed, true},

		// Không quay lại trạng thái trước
		{JobStatusInProgress, JobStatusPending, false},

		// Terminal không bao giờ mở lại
		{JobStatusSucceeded, JobStatusPending, false},
		{JobStatusSucceeded, JobStatusInProgress, false},
		{JobStatusSucceeded, JobStatusFailed, false},
		{JobStatusFailed, JobStatusPending, false},
		{JobStatusFailed, JobStatusInProgress, false},
		{JobStatusFailed, JobStatusSucceeded, false},

		// Set lại cùng trạng thái là idempotent
		{JobStatusPending, JobStatusPending, true},
		{JobStatusSucceeded, JobStatusSucceeded, true},

		// Trạng thái ngoài vocabulary
		{JobStatusPending, "Cancelled", false},
		{"Unknown", JobStatusPending, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, muốn %v", tc.from, tc.to, got, tc.want)
		}
	}
}

// TestIsTerminalJobStatus kiểm tra phân loại trạng thái terminal
func TestIsTerminalJobStatus(t *testing.T) {
	if IsTerminalJobStatus(JobStatusPending) || IsTerminalJobStatus(JobStatusInProgress) {
		t.Error("Pending/InProgress không phải terminal")
	}
	if !IsTerminalJobStatus(JobStatusSucceeded) || !IsTerminalJobStatus(JobStatusFailed) {
		t.Error("Succeeded/Failed phải là terminal")
	}
}
