package model

// ProjectPatch lists the mutable project fields; nil means unchanged.
type ProjectPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// TaskInput is the payload for creating a task. Empty Status, Priority and
// Description take their defaults.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	ProjectID   string   `json:"projectId"`
}

// TaskPatch lists the mutable task fields; nil means unchanged.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	ProjectID   *string   `json:"projectId,omitempty"`
}
