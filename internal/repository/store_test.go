package repository_test

import (
	"context"
	"testing"

	"smartkanban/internal/model"
	"smartkanban/internal/repository"
	"smartkanban/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	global = repository.Scope{}
	alice  = repository.Scope{OwnerID: "alice"}
	bob    = repository.Scope{OwnerID: "bob"}
)

func setupStore(t *testing.T) (*repository.Store, *storage.Memory) {
	t.Helper()
	doc := storage.NewMemory()
	return repository.NewStore(doc, nil), doc
}

func snapshotOf(t *testing.T, doc *storage.Memory) string {
	t.Helper()
	body, err := doc.Load(context.Background())
	require.NoError(t, err)
	return string(body)
}

func countDefaults(projects []model.Project) int {
	n := 0
	for _, p := range projects {
		if p.IsDefault {
			n++
		}
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}

func TestListProjects_EmptyStoreSeedsDefault(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	projects, err := store.ListProjects(ctx, global)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Default Project", projects[0].Name)
	assert.True(t, projects[0].IsDefault)
	assert.Equal(t, model.DefaultProjectColor, projects[0].Color)

	tasks, err := store.ListTasks(ctx, global)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, projects[0].ID, tasks[0].ProjectID)
	assert.Equal(t, model.StatusTodo, tasks[0].Status)
	assert.Equal(t, model.PriorityMedium, tasks[0].Priority)
}

func TestListProjects_IdempotentWithoutWrites(t *testing.T) {
	ctx := context.Background()
	store, doc := setupStore(t)

	_, err := store.ListProjects(ctx, global)
	require.NoError(t, err)
	first := snapshotOf(t, doc)

	_, err = store.ListProjects(ctx, global)
	require.NoError(t, err)
	assert.Equal(t, first, snapshotOf(t, doc))
}

func TestListProjects_PromotesNamedDefault(t *testing.T) {
	ctx := context.Background()
	doc := storage.NewMemory()
	require.NoError(t, doc.Save(ctx, []byte(`{
		"projects": [
			{"id": "p1", "name": "Marketing", "color": "#111111", "isDefault": false},
			{"id": "p2", "name": "  default project ", "color": "#222222", "isDefault": false}
		],
		"tasks": []
	}`)))
	store := repository.NewStore(doc, nil)

	projects, err := store.ListProjects(ctx, global)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.False(t, projects[0].IsDefault)
	assert.True(t, projects[1].IsDefault)
}

func TestListProjects_PromotesFirstAndDemotesExtras(t *testing.T) {
	ctx := context.Background()
	doc := storage.NewMemory()
	require.NoError(t, doc.Save(ctx, []byte(`{
		"projects": [
			{"id": "p1", "name": "One", "color": "#111111"},
			{"id": "p2", "name": "Two", "color": "#222222"}
		],
		"tasks": []
	}`)))
	store := repository.NewStore(doc, nil)

	projects, err := store.ListProjects(ctx, global)
	require.NoError(t, err)
	assert.True(t, projects[0].IsDefault)
	assert.Equal(t, 1, countDefaults(projects))

	require.NoError(t, doc.Save(ctx, []byte(`{
		"projects": [
			{"id": "p1", "name": "One", "color": "#111111", "isDefault": true},
			{"id": "p2", "name": "Two", "color": "#222222", "isDefault": true}
		],
		"tasks": []
	}`)))
	projects, err = store.ListProjects(ctx, global)
	require.NoError(t, err)
	assert.True(t, projects[0].IsDefault)
	assert.False(t, projects[1].IsDefault)
}

func TestCreateProject_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	created, err := store.CreateProject(ctx, global, "Marketing", "#111111")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	projects, err := store.ListProjects(ctx, global)
	require.NoError(t, err)

	var found *model.Project
	for i := range projects {
		if projects[i].ID == created.ID {
			found = &projects[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Marketing", found.Name)
	assert.Equal(t, "#111111", found.Color)
	assert.False(t, found.IsDefault)
	assert.Equal(t, 1, countDefaults(projects))
}

func TestCreateProject_EmptyName(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.CreateProject(context.Background(), global, "   ", "#111111")

	assert.ErrorIs(t, err, repository.ErrValidation)
	assert.Equal(t, "Project name is required", err.Error())
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	created, err := store.CreateProject(ctx, global, "Marketing", "#111111")
	require.NoError(t, err)

	updated, err := store.UpdateProject(ctx, global, created.ID, repository.ProjectPatch{Color: ptr("#abcdef")})
	require.NoError(t, err)
	assert.Equal(t, "Marketing", updated.Name)
	assert.Equal(t, "#abcdef", updated.Color)
	assert.False(t, updated.IsDefault)
	assert.Equal(t, created.ID, updated.ID)

	_, err = store.UpdateProject(ctx, global, created.ID, repository.ProjectPatch{Name: ptr("")})
	assert.ErrorIs(t, err, repository.ErrValidation)

	_, err = store.UpdateProject(ctx, global, "missing", repository.ProjectPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.UpdateProject(ctx, alice, created.ID, repository.ProjectPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound, "other scopes cannot see the project")
}

func TestDeleteProject_CascadesWithinScope(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	_, err := store.ListProjects(ctx, alice)
	require.NoError(t, err)
	_, err = store.ListProjects(ctx, bob)
	require.NoError(t, err)

	doomed, err := store.CreateProject(ctx, alice, "Doomed", "")
	require.NoError(t, err)
	kept, err := store.CreateProject(ctx, alice, "Kept", "")
	require.NoError(t, err)

	_, err = store.CreateTask(ctx, alice, repository.TaskInput{Title: "a", ProjectID: doomed.ID})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, alice, repository.TaskInput{Title: "b", ProjectID: doomed.ID})
	require.NoError(t, err)
	keptTask, err := store.CreateTask(ctx, alice, repository.TaskInput{Title: "c", ProjectID: kept.ID})
	require.NoError(t, err)

	bobBefore, err := store.ListTasks(ctx, bob)
	require.NoError(t, err)

	require.NoError(t, store.DeleteProject(ctx, alice, doomed.ID))

	aliceTasks, err := store.ListTasks(ctx, alice)
	require.NoError(t, err)
	for _, task := range aliceTasks {
		assert.NotEqual(t, doomed.ID, task.ProjectID)
	}
	assert.Len(t, aliceTasks, 2, "welcome task and kept task remain")
	assert.Contains(t, aliceTasks, *keptTask)

	bobAfter, err := store.ListTasks(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, bobBefore, bobAfter)
}

func TestDeleteProject_DefaultIsProtected(t *testing.T) {
	ctx := context.Background()
	store, doc := setupStore(t)
	projects, err := store.ListProjects(ctx, global)
	require.NoError(t, err)
	before := snapshotOf(t, doc)

	err = store.DeleteProject(ctx, global, projects[0].ID)

	assert.ErrorIs(t, err, repository.ErrInvariant)
	assert.Equal(t, "Default Project cannot be deleted", err.Error())
	assert.Equal(t, before, snapshotOf(t, doc))
}

func TestDeleteProject_NotFound(t *testing.T) {
	store, _ := setupStore(t)

	err := store.DeleteProject(context.Background(), global, "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateTask_Defaults(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	def, err := store.EnsureDefaultProject(ctx, global)
	require.NoError(t, err)

	task, err := store.CreateTask(ctx, global, repository.TaskInput{Title: "  Write docs ", ProjectID: def.ID})
	require.NoError(t, err)

	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, "", task.Description)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.PriorityNone, task.Priority)
	assert.Empty(t, task.OwnerID)
}

func TestCreateTask_Validation(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	def, err := store.EnsureDefaultProject(ctx, global)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input repository.TaskInput
		kind  error
	}{
		{"missing title", repository.TaskInput{ProjectID: def.ID}, repository.ErrValidation},
		{"missing project", repository.TaskInput{Title: "x"}, repository.ErrValidation},
		{"bad status", repository.TaskInput{Title: "x", ProjectID: def.ID, Status: "later"}, repository.ErrValidation},
		{"bad priority", repository.TaskInput{Title: "x", ProjectID: def.ID, Priority: "urgent"}, repository.ErrValidation},
		{"dangling project", repository.TaskInput{Title: "x", ProjectID: "nope"}, repository.ErrReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateTask(ctx, global, tt.input)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestCreateTask_ProjectFromOtherScope(t *testing.T) {
	ctx := context.Background()
	store, doc := setupStore(t)
	aliceDefault, err := store.EnsureDefaultProject(ctx, alice)
	require.NoError(t, err)
	_, err = store.EnsureDefaultProject(ctx, bob)
	require.NoError(t, err)
	before := snapshotOf(t, doc)

	_, err = store.CreateTask(ctx, bob, repository.TaskInput{Title: "sneaky", ProjectID: aliceDefault.ID})

	assert.ErrorIs(t, err, repository.ErrReference)
	assert.Equal(t, "projectId not found", err.Error())
	assert.Equal(t, before, snapshotOf(t, doc))
}

func TestUpdateTask_StatusOnly(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	_, err := store.ListProjects(ctx, global)
	require.NoError(t, err)
	tasks, err := store.ListTasks(ctx, global)
	require.NoError(t, err)
	original := tasks[0]

	_, err = store.UpdateTask(ctx, global, original.ID, repository.TaskPatch{Status: ptr(model.StatusCompleted)})
	require.NoError(t, err)

	tasks, err = store.ListTasks(ctx, global)
	require.NoError(t, err)
	expected := original
	expected.Status = model.StatusCompleted
	assert.Equal(t, expected, tasks[0])
}

func TestUpdateTask_ProjectRevalidated(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	def, err := store.EnsureDefaultProject(ctx, alice)
	require.NoError(t, err)
	other, err := store.CreateProject(ctx, alice, "Other", "")
	require.NoError(t, err)
	task, err := store.CreateTask(ctx, alice, repository.TaskInput{Title: "x", ProjectID: def.ID})
	require.NoError(t, err)

	_, err = store.UpdateTask(ctx, alice, task.ID, repository.TaskPatch{ProjectID: ptr("nope")})
	assert.ErrorIs(t, err, repository.ErrReference)

	moved, err := store.UpdateTask(ctx, alice, task.ID, repository.TaskPatch{ProjectID: ptr(other.ID)})
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.ProjectID)
	assert.Equal(t, "alice", moved.OwnerID)

	_, err = store.UpdateTask(ctx, bob, task.ID, repository.TaskPatch{Title: ptr("mine now")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.UpdateTask(ctx, alice, task.ID, repository.TaskPatch{Title: ptr(" ")})
	assert.ErrorIs(t, err, repository.ErrValidation)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	def, err := store.EnsureDefaultProject(ctx, alice)
	require.NoError(t, err)
	task, err := store.CreateTask(ctx, alice, repository.TaskInput{Title: "x", ProjectID: def.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteTask(ctx, bob, task.ID), repository.ErrNotFound)
	require.NoError(t, store.DeleteTask(ctx, alice, task.ID))
	assert.ErrorIs(t, store.DeleteTask(ctx, alice, task.ID), repository.ErrNotFound)
}

func TestSingleDefaultAfterOperations(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	for _, scope := range []repository.Scope{global, alice, bob} {
		_, err := store.ListProjects(ctx, scope)
		require.NoError(t, err)
		p, err := store.CreateProject(ctx, scope, "Default Project", "")
		require.NoError(t, err)
		_, err = store.UpdateProject(ctx, scope, p.ID, repository.ProjectPatch{Name: ptr("Renamed")})
		require.NoError(t, err)
		require.NoError(t, store.DeleteProject(ctx, scope, p.ID))

		projects, err := store.ListProjects(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, 1, countDefaults(projects))
	}
}

func TestLoad_CorruptSnapshotIsReset(t *testing.T) {
	ctx := context.Background()
	doc := storage.NewMemory()
	require.NoError(t, doc.Save(ctx, []byte(`{not json`)))
	store := repository.NewStore(doc, nil)

	tasks, err := store.ListTasks(ctx, global)

	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.JSONEq(t, `{"projects":[],"tasks":[]}`, snapshotOf(t, doc))
}

func TestLoad_SchemaMismatchIsRejected(t *testing.T) {
	ctx := context.Background()
	doc := storage.NewMemory()
	require.NoError(t, doc.Save(ctx, []byte(`{"projects":[{"name":"no id"}],"tasks":[]}`)))
	store := repository.NewStore(doc, nil)

	_, err := store.ListProjects(ctx, global)

	assert.Error(t, err)
	assert.JSONEq(t, `{"projects":[{"name":"no id"}],"tasks":[]}`, snapshotOf(t, doc))
}
