package task

import (
	"testing"
	"time"
)

func validTask() Task {
	return Task{
		ID:        "t1",
		SchoolID:  "s1",
		CadetID:   "cd1",
		Title:     "Inventory the supply room",
		Status:    StatusOpen,
		CreatedBy: "acct1",
		CreatedAt: time.Now(),
	}
}

// TestTask_Validate tests Task validation rules.
func TestTask_Validate(t *testing.T) {
	v := validTask()
	if err := v.Validate(); err != nil {
		t.Fatalf("expected valid task, got: %v", err)
	}

	tests := []struct {
		name   string
		modify func(tk *Task)
		want   error
	}{
		{"empty title", func(tk *Task) { tk.Title = "" }, ErrEmptyTitle},
		{"empty cadet", func(tk *Task) { tk.CadetID = "" }, ErrEmptyCadetID},
		{"empty school", func(tk *Task) { tk.SchoolID = "" }, ErrEmptySchoolID},
		{"bad status", func(tk *Task) { tk.Status = "snoozed" }, ErrInvalidStatus},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tk := validTask()
			tc.modify(&tk)
			if err := tk.Validate(); err != tc.want {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

// TestTask_Complete tests the open -> completed transition.
func TestTask_Complete(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tk := validTask()
	if err := tk.Complete(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tk.Status != StatusCompleted || !tk.CompletedAt.Equal(now) {
		t.Errorf("complete did not set status/timestamp: %+v", tk)
	}
	if err := tk.Complete(now); err != ErrAlreadyCompleted {
		t.Fatalf("expected ErrAlreadyCompleted, got: %v", err)
	}

	cancelled := validTask()
	cancelled.Status = StatusCancelled
	if err := cancelled.Complete(now); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen, got: %v", err)
	}
}

// TestTask_IsOverdue tests overdue detection.
func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tk := validTask()
	if tk.IsOverdue(now) {
		t.Error("task with no due date should never be overdue")
	}

	tk.DueDate = now.Add(-time.Hour)
	if !tk.IsOverdue(now) {
		t.Error("open task past due date should be overdue")
	}

	tk.Status = StatusCompleted
	if tk.IsOverdue(now) {
		t.Error("completed task should not be overdue")
	}
}
