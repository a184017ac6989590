package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"smartkanban/internal/model"
	"smartkanban/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Scope selects the partition of projects and tasks an operation sees.
// The zero Scope is the global scope used by the open and shared-secret
// access models.
type Scope struct {
	OwnerID string
}

func (s Scope) ownsProject(p model.Project) bool {
	return p.OwnerID == s.OwnerID
}

func (s Scope) ownsTask(t model.Task) bool {
	return t.OwnerID == s.OwnerID
}

// Store is the project/task repository. Every mutation loads the whole
// data snapshot, changes it and saves it back; nothing serializes two
// concurrent mutations.
type Store struct {
	data  *snapshot[model.Data]
	newID func() string
}

type StoreInterface interface {
	EnsureDefaultProject(ctx context.Context, scope Scope) (*model.Project, error)

	ListProjects(ctx context.Context, scope Scope) ([]model.Project, error)
	CreateProject(ctx context.Context, scope Scope, name, color string) (*model.Project, error)
	UpdateProject(ctx context.Context, scope Scope, id string, patch ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, scope Scope, id string) error

	ListTasks(ctx context.Context, scope Scope) ([]model.Task, error)
	CreateTask(ctx context.Context, scope Scope, input TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, scope Scope, id string, patch TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, scope Scope, id string) error
}

var _ StoreInterface = (*Store)(nil)

func NewStore(doc storage.Document, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		data: &snapshot[model.Data]{
			doc:    doc,
			schema: dataSchema,
			name:   "data",
			logger: logger,
			fill:   fillData,
		},
		newID: func() string { return uuid.NewString() },
	}
}

// EnsureDefaultProject makes the scope satisfy the default-project
// invariant and returns its default project. The snapshot is written only
// when something actually changed.
func (s *Store) EnsureDefaultProject(ctx context.Context, scope Scope) (*model.Project, error) {
	db, err := s.data.load(ctx)
	if err != nil {
		return nil, err
	}
	def, err := s.ensureDefault(ctx, db, scope)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *Store) ensureDefault(ctx context.Context, db *model.Data, scope Scope) (model.Project, error) {
	before, err := json.Marshal(db)
	if err != nil {
		return model.Project{}, err
	}

	def := s.normalize(db, scope)

	after, err := json.Marshal(db)
	if err != nil {
		return model.Project{}, err
	}
	if !bytes.Equal(before, after) {
		if err := s.data.save(ctx, db); err != nil {
			return model.Project{}, err
		}
	}
	return def, nil
}

// normalize seeds an empty scope or fixes the isDefault flags of a
// non-empty one so that exactly one project carries it.
func (s *Store) normalize(db *model.Data, scope Scope) model.Project {
	var idx []int
	for i, p := range db.Projects {
		if scope.ownsProject(p) {
			idx = append(idx, i)
		}
	}

	if len(idx) == 0 {
		project := model.Project{
			ID:        s.newID(),
			Name:      model.DefaultProjectName,
			Color:     model.DefaultProjectColor,
			IsDefault: true,
			OwnerID:   scope.OwnerID,
		}
		db.Projects = append(db.Projects, project)
		db.Tasks = append(db.Tasks, model.Task{
			ID:          s.newID(),
			Title:       "Welcome to Smart Kanban",
			Description: "Drag this task to another column.",
			Status:      model.StatusTodo,
			Priority:    model.PriorityMedium,
			ProjectID:   project.ID,
			OwnerID:     scope.OwnerID,
		})
		return project
	}

	chosen := -1
	for _, i := range idx {
		if db.Projects[i].IsDefault {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		for _, i := range idx {
			if strings.EqualFold(strings.TrimSpace(db.Projects[i].Name), model.DefaultProjectName) {
				chosen = i
				break
			}
		}
	}
	if chosen < 0 {
		chosen = idx[0]
	}

	for _, i := range idx {
		db.Projects[i].IsDefault = i == chosen
	}
	return db.Projects[chosen]
}

func (s *Store) ListProjects(ctx context.Context, scope Scope) ([]model.Project, error) {
	db, err := s.data.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensureDefault(ctx, db, scope); err != nil {
		return nil, err
	}

	projects := []model.Project{}
	for _, p := range db.Projects {
		if scope.ownsProject(p) {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func (s *Store) CreateProject(ctx context.Context, scope Scope, name, color string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewError(ErrValidation, "Project name is required")
	}
	if color == "" {
		color = model.DefaultProjectColor
	}

	db, err := s.data.load(ctx)
	if err != nil {
		return nil, err
	}
	project := model.Project{
		ID:        s.newID(),
		Name:      name,
		Color:     color,
		IsDefault: false,
		OwnerID:   scope.OwnerID,
	}
	db.Projects = append(db.Projects, project)
	if err := s.data.save(ctx, db); err != nil {
		return nil, err
	}
	return &project, nil
}

type ProjectPatch = model.ProjectPatch

func (s *Store) UpdateProject(ctx context.Context, scope Scope, id string, patch ProjectPatch) (*model.Project, error) {
	db, err := s.data.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findProject(db, scope, id)
	if i < 0 {
		return nil, NewError(ErrNotFound, "Project not found")
	}

	updated := db.Projects[i]
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		updated.Color = *patch.Color
	}
	if updated.Name == "" {
		return nil, NewError(ErrValidation, "Project name is required")
	}

	db.Projects[i] = updated
	if err := s.data.save(ctx, db); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject removes a non-default project and every task of the same
// scope that belongs to it.
func (s *Store) DeleteProject(ctx context.Context, scope Scope, id string) error {
	db, err := s.data.load(ctx)
	if err != nil {
		return err
	}
	i := findProject(db, scope, id)
	if i < 0 {
		return NewError(ErrNotFound, "Project not found")
	}
	if db.Projects[i].IsDefault {
		return NewError(ErrInvariant, "Default Project cannot be deleted")
	}

	db.Projects = append(db.Projects[:i], db.Projects[i+1:]...)
	tasks := db.Tasks[:0]
	for _, t := range db.Tasks {
		if t.ProjectID == id && scope.ownsTask(t) {
			continue
		}
		tasks = append(tasks, t)
	}
	db.Tasks = tasks
	return s.data.save(ctx, db)
}

func (s *Store) ListTasks(ctx context.Context, scope Scope) ([]model.Task, error) {
	db, err := s.data.load(ctx)
	if err != nil {
		return nil, err
	}
	tasks := []model.Task{}
	for _, t := range db.Tasks {
		if scope.ownsTask(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

type TaskInput = model.TaskInput

func (s *Store) CreateTask(ctx context.Context, scope Scope, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, NewError(ErrValidation, "Task title is required")
	}
	if input.ProjectID == "" {
		return nil, NewError(ErrValidation, "projectId is required")
	}
	status := input.Status
	if status == "" {
		status = model.StatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityNone
	}
	if err := validateEnums(status, priority); err != nil {
		return nil, err
	}

	db, err := s.data.load(ctx)
	if err != nil {
		return nil, err
	}
	if findProject(db, scope, input.ProjectID) < 0 {
		return nil, NewError(ErrReference, "projectId not found")
	}

	task := model.Task{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		Priority:    priority,
		ProjectID:   input.ProjectID,
		OwnerID:     scope.OwnerID,
	}
	db.Tasks = append(db.Tasks, task)
	if err := s.data.save(ctx, db); err != nil {
		return nil, err
	}
	return &task, nil
}

type TaskPatch = model.TaskPatch

func (s *Store) UpdateTask(ctx context.Context, scope Scope, id string, patch TaskPatch) (*model.Task, error) {
	db, err := s.data.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findTask(db, scope, id)
	if i < 0 {
		return nil, NewError(ErrNotFound, "Task not found")
	}

	updated := db.Tasks[i]
	if patch.Title != nil {
		updated.Title = strings.TrimSpace(*patch.Title)
		if updated.Title == "" {
			return nil, NewError(ErrValidation, "Task title is required")
		}
	}
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, NewError(ErrValidation, "Invalid status %q", *patch.Status)
		}
		updated.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, NewError(ErrValidation, "Invalid priority %q", *patch.Priority)
		}
		updated.Priority = *patch.Priority
	}
	if patch.ProjectID != nil {
		if findProject(db, scope, *patch.ProjectID) < 0 {
			return nil, NewError(ErrReference, "projectId not found")
		}
		updated.ProjectID = *patch.ProjectID
	}

	db.Tasks[i] = updated
	if err := s.data.save(ctx, db); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteTask(ctx context.Context, scope Scope, id string) error {
	db, err := s.data.load(ctx)
	if err != nil {
		return err
	}
	i := findTask(db, scope, id)
	if i < 0 {
		return NewError(ErrNotFound, "Task not found")
	}
	db.Tasks = append(db.Tasks[:i], db.Tasks[i+1:]...)
	return s.data.save(ctx, db)
}

func findProject(db *model.Data, scope Scope, id string) int {
	for i, p := range db.Projects {
		if p.ID == id && scope.ownsProject(p) {
			return i
		}
	}
	return -1
}

func findTask(db *model.Data, scope Scope, id string) int {
	for i, t := range db.Tasks {
		if t.ID == id && scope.ownsTask(t) {
			return i
		}
	}
	return -1
}

func validateEnums(status model.Status, priority model.Priority) error {
	if !status.Valid() {
		return NewError(ErrValidation, "Invalid status %q", status)
	}
	if !priority.Valid() {
		return NewError(ErrValidation, "Invalid priority %q", priority)
	}
	return nil
}
