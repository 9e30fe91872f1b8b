/*
Package cbt derives the availability state of computer-based tests.

PURPOSE:
  A test is visible to a student before, during, and after its window;
  what the student may do depends on the clock, the window, and their
  attempt. This package is the pure decision table mapping those three
  inputs to one of five states. Persistence of tests and attempts lives
  in the store; this package never does I/O.

DECISION TABLE:
  attempt submitted                       -> Completed
  attempt open, time remaining            -> InProgress
  attempt open, duration or window over   -> Closed (auto-submit due)
  no attempt, now before window           -> Scheduled
  no attempt, now after window            -> Closed
  no attempt, inside window               -> Available
*/
package cbt

import "time"

// State is the derived availability of a test for one student.
type State string

const (
	StateScheduled  State = "scheduled"
	StateAvailable  State = "available"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateClosed     State = "closed"
)

// Test is one computer-based test with its availability window.
type Test struct {
	ID              string
	Title           string
	Subject         string
	OpensAt         time.Time
	ClosesAt        time.Time
	DurationMinutes int
	QuestionCount   int
}

// Attempt is a student's attempt at a test. SubmittedAt is nil while
// the attempt is still open.
type Attempt struct {
	TestID      string
	StudentID   string
	StartedAt   time.Time
	SubmittedAt *time.Time
	Score       *float64
}

// Evaluation is the resolved state plus flags the caller acts on.
type Evaluation struct {
	State State

	// CanStart: the student may begin a new attempt now.
	CanStart bool

	// AutoSubmitDue: an open attempt ran out of time and should be
	// force-submitted by the caller.
	AutoSubmitDue bool

	// Deadline is when the current attempt runs out: the earlier of
	// started+duration and the window close. Zero unless InProgress.
	Deadline time.Time
}

// Evaluate derives the state of t for a student at the given time.
// attempt is nil when the student has not started the test.
func Evaluate(t Test, attempt *Attempt, now time.Time) Evaluation {
	if attempt != nil {
		if attempt.SubmittedAt != nil {
			return Evaluation{State: StateCompleted}
		}
		deadline := attemptDeadline(t, *attempt)
		if now.After(deadline) {
			return Evaluation{State: StateClosed, AutoSubmitDue: true}
		}
		return Evaluation{State: StateInProgress, Deadline: deadline}
	}

	switch {
	case now.Before(t.OpensAt):
		return Evaluation{State: StateScheduled}
	case now.After(t.ClosesAt):
		return Evaluation{State: StateClosed}
	default:
		return Evaluation{State: StateAvailable, CanStart: true}
	}
}

func attemptDeadline(t Test, a Attempt) time.Time {
	deadline := a.StartedAt.Add(time.Duration(t.DurationMinutes) * time.Minute)
	if t.ClosesAt.Before(deadline) {
		return t.ClosesAt
	}
	return deadline
}
