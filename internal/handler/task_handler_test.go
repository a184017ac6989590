package handler_test

import (
	"context"
	"net/http"
	"testing"

	"smartkanban/internal/model"
	"smartkanban/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func defaultProjectID(t *testing.T, store *repository.Store) string {
	t.Helper()
	p, err := store.EnsureDefaultProject(context.Background(), repository.Scope{})
	require.NoError(t, err)
	return p.ID
}

func TestCreateTask_Defaults(t *testing.T) {
	// Arrange
	store := newStore()
	router := setupDataRouter(store, "")
	projectID := defaultProjectID(t, store)

	// Act
	resp := performRequest(router, http.MethodPost, "/tasks", map[string]string{
		"title":     "  Write docs ",
		"projectId": projectID,
	}, nil)

	// Assert
	require.Equal(t, http.StatusCreated, resp.Code)
	task := decode[model.Task](t, resp)
	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.PriorityNone, task.Priority)
	assert.Equal(t, "", task.Description)
	assert.Equal(t, projectID, task.ProjectID)
}

func TestCreateTask_Errors(t *testing.T) {
	store := newStore()
	router := setupDataRouter(store, "")
	projectID := defaultProjectID(t, store)

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing title", map[string]string{"projectId": projectID}, "Task title is required"},
		{"missing project", map[string]string{"title": "x"}, "projectId is required"},
		{"unknown project", map[string]string{"title": "x", "projectId": "ghost"}, "projectId not found"},
		{"bad status", map[string]string{"title": "x", "projectId": projectID, "status": "blocked"}, `Invalid status "blocked"`},
		{"bad priority", map[string]string{"title": "x", "projectId": projectID, "priority": "urgent"}, `Invalid priority "urgent"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(router, http.MethodPost, "/tasks", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, tt.want, errorOf(t, resp))
		})
	}
}

func TestUpdateTask_StatusOnlyChangesStatus(t *testing.T) {
	// Arrange
	store := newStore()
	router := setupDataRouter(store, "")
	projectID := defaultProjectID(t, store)
	created := decode[model.Task](t, performRequest(router, http.MethodPost, "/tasks", map[string]string{
		"title":       "Ship",
		"description": "release 1.0",
		"priority":    "high",
		"projectId":   projectID,
	}, nil))

	// Act
	resp := performRequest(router, http.MethodPut, "/tasks/"+created.ID, map[string]string{"status": "completed"}, nil)

	// Assert
	require.Equal(t, http.StatusOK, resp.Code)
	updated := decode[model.Task](t, resp)
	expected := created
	expected.Status = model.StatusCompleted
	assert.Equal(t, expected, updated)
}

func TestUpdateTask_Errors(t *testing.T) {
	store := newStore()
	router := setupDataRouter(store, "")
	projectID := defaultProjectID(t, store)
	created := decode[model.Task](t, performRequest(router, http.MethodPost, "/tasks", map[string]string{"title": "x", "projectId": projectID}, nil))

	missing := performRequest(router, http.MethodPut, "/tasks/ghost", map[string]string{"status": "todo"}, nil)
	badRef := performRequest(router, http.MethodPut, "/tasks/"+created.ID, map[string]string{"projectId": "ghost"}, nil)
	blank := performRequest(router, http.MethodPut, "/tasks/"+created.ID, map[string]string{"title": " "}, nil)
	badType := performRequest(router, http.MethodPut, "/tasks/"+created.ID, `{"title": 42}`, nil)

	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Task not found", errorOf(t, missing))
	assert.Equal(t, http.StatusBadRequest, badRef.Code)
	assert.Equal(t, "projectId not found", errorOf(t, badRef))
	assert.Equal(t, http.StatusBadRequest, blank.Code)
	assert.Equal(t, http.StatusBadRequest, badType.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, badType))
}

func TestDeleteTask(t *testing.T) {
	store := newStore()
	router := setupDataRouter(store, "")
	projectID := defaultProjectID(t, store)
	created := decode[model.Task](t, performRequest(router, http.MethodPost, "/tasks", map[string]string{"title": "x", "projectId": projectID}, nil))

	first := performRequest(router, http.MethodDelete, "/tasks/"+created.ID, nil, nil)
	second := performRequest(router, http.MethodDelete, "/tasks/"+created.ID, nil, nil)

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusNotFound, second.Code)
}

func TestTasks_CrossOwnerIsNotFound(t *testing.T) {
	store := newStore()
	alice := setupDataRouter(store, "alice")
	bob := setupDataRouter(store, "bob")
	aliceProjects := decode[[]model.Project](t, performRequest(alice, http.MethodGet, "/projects", nil, nil))
	task := decode[model.Task](t, performRequest(alice, http.MethodPost, "/tasks", map[string]string{"title": "secret", "projectId": aliceProjects[0].ID}, nil))

	update := performRequest(bob, http.MethodPut, "/tasks/"+task.ID, map[string]string{"status": "completed"}, nil)
	del := performRequest(bob, http.MethodDelete, "/tasks/"+task.ID, nil, nil)
	steal := performRequest(bob, http.MethodPost, "/tasks", map[string]string{"title": "x", "projectId": aliceProjects[0].ID}, nil)
	list := decode[[]model.Task](t, performRequest(bob, http.MethodGet, "/tasks", nil, nil))

	assert.Equal(t, http.StatusNotFound, update.Code)
	assert.Equal(t, http.StatusNotFound, del.Code)
	assert.Equal(t, http.StatusBadRequest, steal.Code)
	assert.Empty(t, list)
}

func TestUpdateTask_PassesPatchThrough(t *testing.T) {
	// Arrange
	store := new(MockStore)
	status := model.StatusChecking
	want := &model.Task{ID: "t1", Title: "x", Status: status, Priority: model.PriorityNone, ProjectID: "p"}
	store.On("UpdateTask", mock.Anything, repository.Scope{OwnerID: "alice"}, "t1", repository.TaskPatch{Status: &status}).Return(want, nil)
	router := setupDataRouter(store, "alice")

	// Act
	resp := performRequest(router, http.MethodPut, "/tasks/t1", map[string]string{"status": "checking"}, nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, *want, decode[model.Task](t, resp))
	store.AssertExpectations(t)
}
