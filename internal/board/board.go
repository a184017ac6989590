// Package board keeps the client-side view of one scope's projects and
// tasks and applies user actions against the server.
package board

import (
	"context"
	"sync"
	"time"

	"smartkanban/internal/model"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// API is the server surface the board needs.
type API interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, name, color string) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, input model.TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Column is one status lane of the board.
type Column struct {
	Status model.Status
	Tasks  []model.Task
}

type Board struct {
	api    API
	logger *log.Logger

	mu       sync.RWMutex
	projects []model.Project
	tasks    []model.Task
	filter   string
	err      error
	loaded   bool
	// pending maps task ids with an unconfirmed move to the status set locally.
	pending map[string]model.Status

	wake    chan struct{}
	changed chan struct{}
}

func New(api API, logger *log.Logger) *Board {
	if logger == nil {
		logger = log.Default()
	}
	return &Board{
		api:     api,
		logger:  logger,
		pending: make(map[string]model.Status),
		wake:    make(chan struct{}, 1),
		changed: make(chan struct{}, 1),
	}
}

// Changed receives a value after the board state changes. Notifications
// coalesce, so a reader sees at most one queued signal.
func (b *Board) Changed() <-chan struct{} {
	return b.changed
}

func (b *Board) notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Refresh fetches projects and tasks together. On failure the previous
// data stays in place and the error is recorded; a later success clears it.
func (b *Board) Refresh(ctx context.Context) error {
	var (
		projects []model.Project
		tasks    []model.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = b.api.ListProjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = b.api.ListTasks(gctx)
		return err
	})
	err := g.Wait()

	b.mu.Lock()
	if err != nil {
		b.err = err
		b.mu.Unlock()
		b.logger.Warn("refresh failed", "err", err)
		b.notify()
		return err
	}

	for i, t := range tasks {
		if st, ok := b.pending[t.ID]; ok {
			tasks[i].Status = st
		}
	}
	b.projects = projects
	b.tasks = tasks
	b.loaded = true
	b.err = nil
	b.fixFilter()
	b.mu.Unlock()

	b.notify()
	return nil
}

// Poll refreshes every interval, and whenever Wake is called, until ctx
// ends. Failures are recorded on the board.
func (b *Board) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-b.wake:
		}
		_ = b.Refresh(ctx)
	}
}

// Wake asks a running Poll to refresh now.
func (b *Board) Wake() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

func (b *Board) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

func (b *Board) DismissError() {
	b.mu.Lock()
	b.err = nil
	b.mu.Unlock()
	b.notify()
}

func (b *Board) Projects() []model.Project {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Project(nil), b.projects...)
}

func (b *Board) Tasks() []model.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Task(nil), b.tasks...)
}

func (b *Board) Task(id string) (model.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.taskIndex(id); i >= 0 {
		return b.tasks[i], true
	}
	return model.Task{}, false
}

func (b *Board) Project(id string) (model.Project, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.projectIndex(id); i >= 0 {
		return b.projects[i], true
	}
	return model.Project{}, false
}

// DefaultProject returns the project flagged as default.
func (b *Board) DefaultProject() (model.Project, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, p := range b.projects {
		if p.IsDefault {
			return p, true
		}
	}
	return model.Project{}, false
}

// Pending reports whether the task has a move the server has not confirmed.
func (b *Board) Pending(taskID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.pending[taskID]
	return ok
}

// Filter returns the active project id, or "" for all projects.
func (b *Board) Filter() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// SetFilter limits the columns to one project. An id that is not loaded
// falls back the same way as a project disappearing on refresh.
func (b *Board) SetFilter(projectID string) {
	b.mu.Lock()
	b.filter = projectID
	b.fixFilter()
	b.mu.Unlock()
	b.notify()
}

// CycleFilter steps through all projects, then back to "all".
func (b *Board) CycleFilter() string {
	b.mu.Lock()
	next := ""
	if b.filter == "" {
		if len(b.projects) > 0 {
			next = b.projects[0].ID
		}
	} else if i := b.projectIndex(b.filter); i >= 0 && i+1 < len(b.projects) {
		next = b.projects[i+1].ID
	}
	b.filter = next
	b.mu.Unlock()
	b.notify()
	return next
}

// fixFilter must be called with mu held.
func (b *Board) fixFilter() {
	if b.filter == "" || b.projectIndex(b.filter) >= 0 {
		return
	}
	b.filter = ""
	for _, p := range b.projects {
		if p.IsDefault {
			b.filter = p.ID
			return
		}
	}
}

// Columns partitions the visible tasks into the four status lanes in
// display order. Tasks with any other status are left out.
func (b *Board) Columns() []Column {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cols := make([]Column, len(model.Statuses))
	index := make(map[model.Status]int, len(model.Statuses))
	for i, st := range model.Statuses {
		cols[i] = Column{Status: st, Tasks: []model.Task{}}
		index[st] = i
	}
	for _, t := range b.tasks {
		if b.filter != "" && t.ProjectID != b.filter {
			continue
		}
		if i, ok := index[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

// Move is the drop of a task on a column. The status changes locally
// before the server answers and is not rolled back on failure; the next
// refresh brings back whatever the server holds.
func (b *Board) Move(ctx context.Context, taskID string, target model.Status) error {
	if !target.Valid() {
		return nil
	}

	b.mu.Lock()
	i := b.taskIndex(taskID)
	if i < 0 || b.tasks[i].Status == target {
		b.mu.Unlock()
		return nil
	}
	b.tasks[i].Status = target
	b.pending[taskID] = target
	b.mu.Unlock()
	b.notify()

	status := target
	updated, err := b.api.UpdateTask(ctx, taskID, model.TaskPatch{Status: &status})

	b.mu.Lock()
	latest, stillPending := b.pending[taskID]
	superseded := stillPending && latest != target
	if !superseded {
		delete(b.pending, taskID)
	}
	if err != nil {
		b.err = err
	} else if i := b.taskIndex(taskID); i >= 0 && !superseded {
		b.tasks[i] = *updated
	}
	b.mu.Unlock()
	b.notify()

	if err != nil {
		b.logger.Error("move failed", "task", taskID, "status", target, "err", err)
	}
	return err
}

// CreateProject adds the project and makes it the active filter.
func (b *Board) CreateProject(ctx context.Context, name, color string) (*model.Project, error) {
	p, err := b.api.CreateProject(ctx, name, color)
	if err != nil {
		return nil, b.fail(err)
	}
	b.mu.Lock()
	b.projects = append(b.projects, *p)
	b.filter = p.ID
	b.mu.Unlock()
	b.notify()
	return p, nil
}

func (b *Board) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	p, err := b.api.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, b.fail(err)
	}
	b.mu.Lock()
	if i := b.projectIndex(id); i >= 0 {
		b.projects[i] = *p
	}
	b.mu.Unlock()
	b.notify()
	return p, nil
}

// DeleteProject removes the project and its tasks from the board once the
// server has deleted them.
func (b *Board) DeleteProject(ctx context.Context, id string) error {
	if err := b.api.DeleteProject(ctx, id); err != nil {
		return b.fail(err)
	}
	b.mu.Lock()
	if i := b.projectIndex(id); i >= 0 {
		b.projects = append(b.projects[:i], b.projects[i+1:]...)
	}
	kept := b.tasks[:0]
	for _, t := range b.tasks {
		if t.ProjectID != id {
			kept = append(kept, t)
		}
	}
	b.tasks = kept
	b.fixFilter()
	b.mu.Unlock()
	b.notify()
	return nil
}

func (b *Board) CreateTask(ctx context.Context, input model.TaskInput) (*model.Task, error) {
	t, err := b.api.CreateTask(ctx, input)
	if err != nil {
		return nil, b.fail(err)
	}
	b.mu.Lock()
	b.tasks = append(b.tasks, *t)
	b.mu.Unlock()
	b.notify()
	return t, nil
}

func (b *Board) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	t, err := b.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, b.fail(err)
	}
	b.mu.Lock()
	if i := b.taskIndex(id); i >= 0 {
		b.tasks[i] = *t
	}
	b.mu.Unlock()
	b.notify()
	return t, nil
}

func (b *Board) DeleteTask(ctx context.Context, id string) error {
	if err := b.api.DeleteTask(ctx, id); err != nil {
		return b.fail(err)
	}
	b.mu.Lock()
	if i := b.taskIndex(id); i >= 0 {
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	}
	b.mu.Unlock()
	b.notify()
	return nil
}

func (b *Board) fail(err error) error {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
	b.notify()
	return err
}

func (b *Board) taskIndex(id string) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) projectIndex(id string) int {
	for i, p := range b.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
