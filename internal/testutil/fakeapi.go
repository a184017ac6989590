// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"smartkanban/internal/model"
)

// DefaultProjectID is the ID of the project every FakeAPI starts with.
const DefaultProjectID = "p-default"

// FakeAPI is an in-memory implementation of board.API for testing.
type FakeAPI struct {
	mu       sync.Mutex
	projects []model.Project
	tasks    []model.Task
	nextID   int

	// Patches records every task patch received, in order.
	Patches []model.TaskPatch

	// UpdateGate, when set, makes UpdateTask wait for a receive before
	// answering.
	UpdateGate chan struct{}
	// StatusGates holds back status updates to the keyed status the same way.
	StatusGates map[model.Status]chan struct{}

	// Error injection for testing
	ListProjectsErr  error
	ListTasksErr     error
	CreateProjectErr error
	UpdateProjectErr error
	DeleteProjectErr error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error
}

// NewFakeAPI creates a FakeAPI holding the default project.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		projects: []model.Project{{
			ID:        DefaultProjectID,
			Name:      model.DefaultProjectName,
			Color:     model.DefaultProjectColor,
			IsDefault: true,
		}},
	}
}

// AddProject adds a non-default project.
func (f *FakeAPI) AddProject(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, model.Project{ID: id, Name: name, Color: model.DefaultProjectColor})
}

// AddTask adds a task to a project.
func (f *FakeAPI) AddTask(projectID, taskID, title string, status model.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, model.Task{
		ID:        taskID,
		Title:     title,
		Status:    status,
		Priority:  model.PriorityNone,
		ProjectID: projectID,
	})
}

// RemoveProject drops a project behind the board's back, as another client would.
func (f *FakeAPI) RemoveProject(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return
		}
	}
}

// SetStatus changes a task's status server-side.
func (f *FakeAPI) SetStatus(taskID string, status model.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.taskIndex(taskID); i >= 0 {
		f.tasks[i].Status = status
	}
}

// StoredTask returns the server-side copy of a task.
func (f *FakeAPI) StoredTask(id string) (model.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.taskIndex(id); i >= 0 {
		return f.tasks[i], true
	}
	return model.Task{}, false
}

// PatchCount returns how many task updates were received.
func (f *FakeAPI) PatchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Patches)
}

// ListProjects implements board.API.
func (f *FakeAPI) ListProjects(ctx context.Context) ([]model.Project, error) {
	if f.ListProjectsErr != nil {
		return nil, f.ListProjectsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Project(nil), f.projects...), nil
}

// CreateProject implements board.API.
func (f *FakeAPI) CreateProject(ctx context.Context, name, color string) (*model.Project, error) {
	if f.CreateProjectErr != nil {
		return nil, f.CreateProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if color == "" {
		color = model.DefaultProjectColor
	}
	p := model.Project{ID: f.newID("p"), Name: strings.TrimSpace(name), Color: color}
	f.projects = append(f.projects, p)
	return &p, nil
}

// UpdateProject implements board.API.
func (f *FakeAPI) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if f.UpdateProjectErr != nil {
		return nil, f.UpdateProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID != id {
			continue
		}
		if patch.Name != nil {
			f.projects[i].Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Color != nil {
			f.projects[i].Color = *patch.Color
		}
		p := f.projects[i]
		return &p, nil
	}
	return nil, fmt.Errorf("Project not found")
}

// DeleteProject implements board.API.
func (f *FakeAPI) DeleteProject(ctx context.Context, id string) error {
	if f.DeleteProjectErr != nil {
		return f.DeleteProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID != id {
			continue
		}
		f.projects = append(f.projects[:i], f.projects[i+1:]...)
		kept := f.tasks[:0]
		for _, t := range f.tasks {
			if t.ProjectID != id {
				kept = append(kept, t)
			}
		}
		f.tasks = kept
		return nil
	}
	return fmt.Errorf("Project not found")
}

// ListTasks implements board.API.
func (f *FakeAPI) ListTasks(ctx context.Context) ([]model.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Task(nil), f.tasks...), nil
}

// CreateTask implements board.API. Defaults are applied the way the
// server does it.
func (f *FakeAPI) CreateTask(ctx context.Context, input model.TaskInput) (*model.Task, error) {
	if f.CreateTaskErr != nil {
		return nil, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := model.Task{
		ID:          f.newID("t"),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		ProjectID:   input.ProjectID,
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNone
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

// UpdateTask implements board.API.
func (f *FakeAPI) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	f.mu.Lock()
	f.Patches = append(f.Patches, patch)
	gate := f.UpdateGate
	if patch.Status != nil && f.StatusGates[*patch.Status] != nil {
		gate = f.StatusGates[*patch.Status]
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.UpdateTaskErr != nil {
		return nil, f.UpdateTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("Task not found")
	}
	t := &f.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.ProjectID != nil {
		t.ProjectID = *patch.ProjectID
	}
	out := *t
	return &out, nil
}

// DeleteTask implements board.API.
func (f *FakeAPI) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("Task not found")
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

func (f *FakeAPI) taskIndex(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}
