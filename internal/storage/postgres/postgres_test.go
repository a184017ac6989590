package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"smartkanban/internal/storage/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := pgdriver.New(pgdriver.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestDocument_Load_Found(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	doc := postgres.New(gormDB).Document("data")

	mock.ExpectQuery(`SELECT .* FROM "snapshots" WHERE name = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "body", "updated_at"}).
			AddRow("data", `{"projects":[],"tasks":[]}`, time.Now()))

	body, err := doc.Load(context.Background())

	assert.NoError(t, err)
	assert.JSONEq(t, `{"projects":[],"tasks":[]}`, string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocument_Load_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	doc := postgres.New(gormDB).Document("auth")

	mock.ExpectQuery(`SELECT .* FROM "snapshots" WHERE name = .*`).
		WillReturnError(gorm.ErrRecordNotFound)

	body, err := doc.Load(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocument_Load_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	doc := postgres.New(gormDB).Document("data")

	mock.ExpectQuery(`SELECT .* FROM "snapshots" WHERE name = .*`).
		WillReturnError(assert.AnError)

	body, err := doc.Load(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocument_Save_Upserts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	doc := postgres.New(gormDB).Document("data")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "snapshots" .* ON CONFLICT \("name"\) DO UPDATE SET`).
		WithArgs("data", `{"projects":[]}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := doc.Save(context.Background(), []byte(`{"projects":[]}`))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshot_BodyIsPlainText(t *testing.T) {
	s, err := schema.Parse(&postgres.Snapshot{}, &sync.Map{}, schema.NamingStrategy{})
	assert.NoError(t, err)

	field := s.LookUpField("Body")

	assert.NotNil(t, field)
	assert.Equal(t, schema.DataType("text"), field.DataType)
}

func TestDocument_Load_ReturnsUnparseableBodyAsIs(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	doc := postgres.New(gormDB).Document("data")

	mock.ExpectQuery(`SELECT .* FROM "snapshots" WHERE name = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "body", "updated_at"}).
			AddRow("data", `{"projects": [`, time.Now()))

	body, err := doc.Load(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, `{"projects": [`, string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenDialector_ClosesPoolWhenMigrationFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	mock.ExpectClose()

	store, err := postgres.OpenDialector(pgdriver.New(pgdriver.Config{
		DSN:                  "sqlmock_db_1",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	}))

	assert.Error(t, err)
	assert.Nil(t, store)
	assert.NoError(t, mock.ExpectationsWereMet())
}
