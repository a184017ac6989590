package model

// Status is the board column a task sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusChecking   Status = "checking"
	StatusCompleted  Status = "completed"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusChecking, StatusCompleted}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	for _, pr := range Priorities {
		if p == pr {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	ProjectID   string   `json:"projectId"`
	OwnerID     string   `json:"ownerId,omitempty"`
}
