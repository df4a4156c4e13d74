package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cadethq/internal/domain/task"
)

// TaskStoreForOrchestrator defines the store interface needed by task orchestrators.
type TaskStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (task.Task, error)
	Save(ctx context.Context, t task.Task) error
}

// --- Assign Task ---

// AssignTaskInput carries input for the assign task orchestrator.
type AssignTaskInput struct {
	SchoolID  string
	CadetID   string
	Title     string
	Details   string
	DueDate   time.Time // zero means no due date
	CreatedBy string    // account ID of the assigner
}

// AssignTaskDeps holds dependencies for AssignTask.
type AssignTaskDeps struct {
	TaskStore  TaskStoreForOrchestrator
	CadetStore CadetStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteAssignTask assigns a task to a cadet.
// PRE: Title non-empty; cadet exists, belongs to the school and is not archived
// POST: Task created in open status
func ExecuteAssignTask(ctx context.Context, input AssignTaskInput, deps AssignTaskDeps) (task.Task, error) {
	if input.CadetID == "" {
		return task.Task{}, errors.New("cadet ID is required")
	}

	c, err := deps.CadetStore.GetByID(ctx, input.CadetID)
	if err != nil {
		return task.Task{}, errors.New("cadet not found")
	}
	if input.SchoolID != "" && c.SchoolID != input.SchoolID {
		return task.Task{}, errors.New("cadet belongs to a different school")
	}
	if c.IsArchived() {
		return task.Task{}, errors.New("cannot assign a task to an archived cadet")
	}

	t := task.Task{
		ID:        deps.GenerateID(),
		SchoolID:  c.SchoolID,
		CadetID:   input.CadetID,
		Title:     input.Title,
		Details:   input.Details,
		DueDate:   input.DueDate,
		Status:    task.StatusOpen,
		CreatedBy: input.CreatedBy,
		CreatedAt: deps.Now(),
	}

	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	if err := deps.TaskStore.Save(ctx, t); err != nil {
		return task.Task{}, err
	}

	slog.Info("task_event", "event", "task_assigned", "task_id", t.ID, "cadet_id", t.CadetID, "created_by", input.CreatedBy)
	return t, nil
}

// --- Complete Task ---

// CompleteTaskInput carries input for the complete task orchestrator.
type CompleteTaskInput struct {
	TaskID   string
	SchoolID string
}

// CompleteTaskDeps holds dependencies for CompleteTask.
type CompleteTaskDeps struct {
	TaskStore TaskStoreForOrchestrator
	Now       func() time.Time
}

// ExecuteCompleteTask marks an open task as completed.
// PRE: TaskID non-empty; task exists, belongs to the school and is open
// POST: Task status is completed with CompletedAt set
func ExecuteCompleteTask(ctx context.Context, input CompleteTaskInput, deps CompleteTaskDeps) (task.Task, error) {
	if input.TaskID == "" {
		return task.Task{}, errors.New("task ID is required")
	}

	t, err := deps.TaskStore.GetByID(ctx, input.TaskID)
	if err != nil {
		return task.Task{}, err
	}
	if input.SchoolID != "" && t.SchoolID != input.SchoolID {
		return task.Task{}, errors.New("task belongs to a different school")
	}

	if err := t.Complete(deps.Now()); err != nil {
		return task.Task{}, err
	}

	if err := deps.TaskStore.Save(ctx, t); err != nil {
		return task.Task{}, err
	}

	slog.Info("task_event", "event", "task_completed", "task_id", t.ID, "cadet_id", t.CadetID)
	return t, nil
}

// --- Cancel Task ---

// CancelTaskInput carries input for the cancel task orchestrator.
type CancelTaskInput struct {
	TaskID   string
	SchoolID string
}

// CancelTaskDeps holds dependencies for CancelTask.
type CancelTaskDeps struct {
	TaskStore TaskStoreForOrchestrator
}

// ExecuteCancelTask cancels an open task.
// PRE: TaskID non-empty; task exists and is open
// POST: Task status is cancelled
func ExecuteCancelTask(ctx context.Context, input CancelTaskInput, deps CancelTaskDeps) error {
	if input.TaskID == "" {
		return errors.New("task ID is required")
	}

	t, err := deps.TaskStore.GetByID(ctx, input.TaskID)
	if err != nil {
		return err
	}
	if input.SchoolID != "" && t.SchoolID != input.SchoolID {
		return errors.New("task belongs to a different school")
	}
	if t.Status != task.StatusOpen {
		return task.ErrNotOpen
	}

	t.Status = task.StatusCancelled
	if err := deps.TaskStore.Save(ctx, t); err != nil {
		return err
	}

	slog.Info("task_event", "event", "task_cancelled", "task_id", t.ID)
	return nil
}
