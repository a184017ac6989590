package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"smartkanban/internal/apiclient"
	"smartkanban/internal/board"
	"smartkanban/internal/exitcode"
	"smartkanban/internal/model"
)

// UsageError is a mistake in the command line rather than a failed request.
type UsageError struct{ msg string }

func (e *UsageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &UsageError{fmt.Sprintf(format, args...)}
}

// Fail prints err and maps it onto an exit code. Rejected requests (4xx
// other than 401) are user errors.
func Fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return exitcode.UserError
	}
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return exitcode.AuthError
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
		return exitcode.UserError
	}
	return exitcode.BackendError
}

// findTask resolves a task by id or unique id prefix.
func findTask(b *board.Board, ref string) (model.Task, error) {
	if t, ok := b.Task(ref); ok {
		return t, nil
	}
	var matches []model.Task
	if ref != "" {
		for _, t := range b.Tasks() {
			if strings.HasPrefix(t.ID, ref) {
				matches = append(matches, t)
			}
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, usagef("task %s not found", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, usagef("ambiguous task id: %s", ref)
	}
}

// findProject resolves a project by id, name (case-insensitive) or unique
// id prefix.
func findProject(b *board.Board, ref string) (model.Project, error) {
	if p, ok := b.Project(ref); ok {
		return p, nil
	}
	ref = strings.TrimSpace(ref)
	var byName, byPrefix []model.Project
	for _, p := range b.Projects() {
		if strings.EqualFold(p.Name, ref) {
			byName = append(byName, p)
		}
		if ref != "" && strings.HasPrefix(p.ID, ref) {
			byPrefix = append(byPrefix, p)
		}
	}
	for _, matches := range [][]model.Project{byName, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return model.Project{}, usagef("ambiguous project: %s", ref)
		}
	}
	return model.Project{}, usagef("project %s not found", ref)
}

func parseStatus(s string) (model.Status, error) {
	st := model.Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", usagef("invalid status %q", s)
	}
	return st, nil
}

func parsePriority(s string) (model.Priority, error) {
	p := model.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", usagef("invalid priority %q", s)
	}
	return p, nil
}
