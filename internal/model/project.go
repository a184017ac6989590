package model

// DefaultProjectName is the name given to the project seeded into an empty scope.
const DefaultProjectName = "Default Project"

// DefaultProjectColor is the accent used for seeded projects and when a
// project is created without a color.
const DefaultProjectColor = "#6366f1"

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsDefault bool   `json:"isDefault"`
	OwnerID   string `json:"ownerId,omitempty"`
}
