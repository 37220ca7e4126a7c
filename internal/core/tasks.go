package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TaskStats summarizes progress over all tasks.
type TaskStats struct {
	Total                int     `json:"total"`
	Completed            int     `json:"completed"`
	InProgress           int     `json:"in_progress"`
	Todo                 int     `json:"todo"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// TaskBoard is the kanban view: one column per status. Columns are never nil.
type TaskBoard struct {
	Todo       []Task    `json:"todo"`
	InProgress []Task    `json:"in_progress"`
	Completed  []Task    `json:"completed"`
	Stats      TaskStats `json:"stats"`
}

// Column is a board column with its status, for ordered rendering.
type Column struct {
	Status TaskStatus
	Tasks  []Task
}

// GroupTasks splits tasks into status columns ordered by due date, undated
// tasks last. Tasks with an unknown status land in the todo column.
func GroupTasks(tasks []Task) TaskBoard {
	b := TaskBoard{
		Todo:       []Task{},
		InProgress: []Task{},
		Completed:  []Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case TaskInProgress:
			b.InProgress = append(b.InProgress, t)
		case TaskCompleted:
			b.Completed = append(b.Completed, t)
		default:
			b.Todo = append(b.Todo, t)
		}
	}
	sortByDueDate(b.Todo)
	sortByDueDate(b.InProgress)
	sortByDueDate(b.Completed)

	b.Stats = TaskStats{
		Total:      len(tasks),
		Completed:  len(b.Completed),
		InProgress: len(b.InProgress),
		Todo:       len(b.Todo),
	}
	b.Stats.CompletionPercentage = CompletionPercentage(b.Stats.Completed, b.Stats.Total)
	return b
}

// Columns returns the board columns in workflow order.
func (b TaskBoard) Columns() []Column {
	return []Column{
		{Status: TaskTodo, Tasks: b.Todo},
		{Status: TaskInProgress, Tasks: b.InProgress},
		{Status: TaskCompleted, Tasks: b.Completed},
	}
}

// CompletionPercentage is completed/total*100 rounded to one decimal, 0 for no tasks.
func CompletionPercentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(completed) * 100).DivRound(decimal.NewFromInt(int64(total)), 1)
	return p.InexactFloat64()
}

func sortByDueDate(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case a.IsEmpty():
			return false
		case b.IsEmpty():
			return true
		default:
			return a.Before(b)
		}
	})
}
