package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"smartkanban/internal/storage/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "db", "kanban.db"))
	require.NoError(t, err)
	defer store.Close()

	data := store.Document("data")
	auth := store.Document("auth")

	body, err := data.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, body)

	require.NoError(t, data.Save(ctx, []byte(`{"projects":[]}`)))
	require.NoError(t, data.Save(ctx, []byte(`{"projects":[],"tasks":[]}`)))

	body, err = data.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"projects":[],"tasks":[]}`, string(body))

	body, err = auth.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, body, "documents are independent")
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open("")
	assert.Error(t, err)
}
