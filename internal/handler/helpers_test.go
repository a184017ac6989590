package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartkanban/internal/model"
	"smartkanban/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path string, body any, headers map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			_ = json.NewEncoder(&buf).Encode(v)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func errorOf(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, resp)["error"]
}

func findCookie(resp *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// MockStore is a testify mock of repository.StoreInterface.
type MockStore struct {
	mock.Mock
}

var _ repository.StoreInterface = (*MockStore)(nil)

func (m *MockStore) EnsureDefaultProject(ctx context.Context, scope repository.Scope) (*model.Project, error) {
	args := m.Called(ctx, scope)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockStore) ListProjects(ctx context.Context, scope repository.Scope) ([]model.Project, error) {
	args := m.Called(ctx, scope)
	p, _ := args.Get(0).([]model.Project)
	return p, args.Error(1)
}

func (m *MockStore) CreateProject(ctx context.Context, scope repository.Scope, name, color string) (*model.Project, error) {
	args := m.Called(ctx, scope, name, color)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockStore) UpdateProject(ctx context.Context, scope repository.Scope, id string, patch repository.ProjectPatch) (*model.Project, error) {
	args := m.Called(ctx, scope, id, patch)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockStore) DeleteProject(ctx context.Context, scope repository.Scope, id string) error {
	return m.Called(ctx, scope, id).Error(0)
}

func (m *MockStore) ListTasks(ctx context.Context, scope repository.Scope) ([]model.Task, error) {
	args := m.Called(ctx, scope)
	t, _ := args.Get(0).([]model.Task)
	return t, args.Error(1)
}

func (m *MockStore) CreateTask(ctx context.Context, scope repository.Scope, input repository.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, scope, input)
	t, _ := args.Get(0).(*model.Task)
	return t, args.Error(1)
}

func (m *MockStore) UpdateTask(ctx context.Context, scope repository.Scope, id string, patch repository.TaskPatch) (*model.Task, error) {
	args := m.Called(ctx, scope, id, patch)
	t, _ := args.Get(0).(*model.Task)
	return t, args.Error(1)
}

func (m *MockStore) DeleteTask(ctx context.Context, scope repository.Scope, id string) error {
	return m.Called(ctx, scope, id).Error(0)
}
