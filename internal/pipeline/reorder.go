package pipeline

import (
	"fmt"
	"sort"

	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

// Direction is a move command from the board UI.
type Direction int

const (
	MoveLeft Direction = iota
	MoveRight
	MoveUp
	MoveDown
)

// Reorder runs the reorder/move pipeline (C7).
type Reorder struct {
	Store *store.Store
}

// Move applies dir to taskID. Moving past the first/last category, or the
// first/last task within a category, is a no-op rather than an error.
func (r *Reorder) Move(taskID string, dir Direction) error {
	task, err := r.Store.GetTask(taskID)
	if err != nil {
		return fmt.Errorf("pipeline: load task: %w", err)
	}

	switch dir {
	case MoveLeft, MoveRight:
		return r.moveCategory(task, dir)
	case MoveUp, MoveDown:
		return r.moveWithinCategory(task, dir)
	default:
		return fmt.Errorf("pipeline: unknown move direction %d", dir)
	}
}

func (r *Reorder) moveCategory(task types.Task, dir Direction) error {
	categories, err := r.Store.ListCategories()
	if err != nil {
		return fmt.Errorf("pipeline: list categories: %w", err)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Position < categories[j].Position })

	idx := -1
	for i, c := range categories {
		if c.ID == task.CategoryID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("pipeline: task's category %q not found", task.CategoryID)
	}

	var targetIdx int
	if dir == MoveLeft {
		targetIdx = idx - 1
	} else {
		targetIdx = idx + 1
	}
	if targetIdx < 0 || targetIdx >= len(categories) {
		return nil
	}

	if err := r.Store.UpdateTaskCategory(task.ID, categories[targetIdx].ID, 0); err != nil {
		return fmt.Errorf("pipeline: move task to category: %w", err)
	}
	return nil
}

func (r *Reorder) moveWithinCategory(task types.Task, dir Direction) error {
	all, err := r.Store.ListTasks()
	if err != nil {
		return fmt.Errorf("pipeline: list tasks: %w", err)
	}

	var column []types.Task
	for _, t := range all {
		if t.CategoryID == task.CategoryID {
			column = append(column, t)
		}
	}
	sort.Slice(column, func(i, j int) bool { return column[i].Position < column[j].Position })

	idx := -1
	for i, t := range column {
		if t.ID == task.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("pipeline: task %q not found in its own category listing", task.ID)
	}

	var neighborIdx int
	if dir == MoveUp {
		neighborIdx = idx - 1
	} else {
		neighborIdx = idx + 1
	}
	if neighborIdx < 0 || neighborIdx >= len(column) {
		return nil
	}

	column[idx], column[neighborIdx] = column[neighborIdx], column[idx]

	ids := make([]string, len(column))
	for i, t := range column {
		ids[i] = t.ID
	}
	if err := r.Store.ReorderCategoryPositions(ids); err != nil {
		return fmt.Errorf("pipeline: rewrite positions: %w", err)
	}
	return nil
}
