package cbt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sankore/school-portal/cbt"
)

var (
	opens  = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	closes = time.Date(2026, time.March, 10, 17, 0, 0, 0, time.UTC)
)

func mathTest() cbt.Test {
	return cbt.Test{
		ID: "cbt-1", Title: "Mid-term Mathematics", Subject: "Mathematics",
		OpensAt: opens, ClosesAt: closes, DurationMinutes: 60, QuestionCount: 40,
	}
}

func TestEvaluate_DecisionTable(t *testing.T) {
	started := opens.Add(30 * time.Minute)
	submitted := started.Add(45 * time.Minute)
	lateStart := closes.Add(-10 * time.Minute)

	cases := []struct {
		name          string
		attempt       *cbt.Attempt
		now           time.Time
		want          cbt.State
		canStart      bool
		autoSubmitDue bool
	}{
		{
			name: "before window is scheduled",
			now:  opens.Add(-time.Hour),
			want: cbt.StateScheduled,
		},
		{
			name:     "inside window without attempt is available",
			now:      opens.Add(time.Hour),
			want:     cbt.StateAvailable,
			canStart: true,
		},
		{
			name: "after window without attempt is closed",
			now:  closes.Add(time.Minute),
			want: cbt.StateClosed,
		},
		{
			name:    "open attempt with time left is in progress",
			attempt: &cbt.Attempt{TestID: "cbt-1", StartedAt: started},
			now:     started.Add(20 * time.Minute),
			want:    cbt.StateInProgress,
		},
		{
			name:          "open attempt past duration is closed with auto-submit",
			attempt:       &cbt.Attempt{TestID: "cbt-1", StartedAt: started},
			now:           started.Add(61 * time.Minute),
			want:          cbt.StateClosed,
			autoSubmitDue: true,
		},
		{
			name:          "open attempt past window close is closed even within duration",
			attempt:       &cbt.Attempt{TestID: "cbt-1", StartedAt: lateStart},
			now:           closes.Add(time.Minute),
			want:          cbt.StateClosed,
			autoSubmitDue: true,
		},
		{
			name:    "submitted attempt is completed",
			attempt: &cbt.Attempt{TestID: "cbt-1", StartedAt: started, SubmittedAt: &submitted},
			now:     closes.Add(24 * time.Hour),
			want:    cbt.StateCompleted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := cbt.Evaluate(mathTest(), tc.attempt, tc.now)
			assert.Equal(t, tc.want, ev.State)
			assert.Equal(t, tc.canStart, ev.CanStart)
			assert.Equal(t, tc.autoSubmitDue, ev.AutoSubmitDue)
		})
	}
}

func TestEvaluate_DeadlineIsEarlierOfDurationAndWindowClose(t *testing.T) {
	// Started 30 minutes before close with a 60-minute duration: the
	// window close wins.
	started := closes.Add(-30 * time.Minute)

	ev := cbt.Evaluate(mathTest(), &cbt.Attempt{TestID: "cbt-1", StartedAt: started}, started.Add(5*time.Minute))

	assert.Equal(t, cbt.StateInProgress, ev.State)
	assert.Equal(t, closes, ev.Deadline)
}
