package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/query"
	"github.com/tnqbao/gau-register-service/repository"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func objectServiceFixture(t *testing.T) (*ObjectService, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)

	repo := &repository.Repository{
		RegisterRepo:   repository.NewRegisterRepository(db),
		SchemaRepo:     repository.NewSchemaRepository(db),
		ObjectRepo:     repository.NewObjectRepository(db, query.NewPostgresTranslator(), time.Hour),
		AuditTrailRepo: repository.NewAuditTrailRepository(db),
	}
	cfg := &config.Config{EnvConfig: &config.EnvConfig{}}
	inf := &infra.Infra{}
	svc := NewObjectService(cfg, inf, repo, NewValidator(), NewAuditService(inf, repo))
	return svc, mock
}

func objectScope(t *testing.T) *Scope {
	t.Helper()
	schema := personSchema(t)
	schema.ID = 2
	return &Scope{
		Register: &entity.Register{ID: 1},
		Schema:   schema,
		UserID:   "user-1",
	}
}

func TestSaveObjectUnknownIdentifier(t *testing.T) {
	svc, mock := objectServiceFixture(t)
	scope := objectScope(t)

	mock.ExpectQuery(`SELECT (.+) FROM "objects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// Saving under an identifier that resolves to nothing must not fall
	// back to creating a fresh object with a new uuid.
	_, err := svc.SaveObject(context.Background(), scope, "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		map[string]interface{}{"name": "ada"}, SaveOptions{})
	assert.True(t, exception.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveObjectReleasesOwnLock(t *testing.T) {
	svc, mock := objectServiceFixture(t)
	scope := objectScope(t)

	until := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id", "uuid", "register", "schema", "object", "version", "locked_by", "locked_until"}).
		AddRow(7, "7c9e6679-7425-40de-944b-e07fc1f90ae7", 1, 2, []byte(`{"name":"ada"}`), "0.0.1", "user-1", until)
	mock.ExpectQuery(`SELECT (.+) FROM "objects"`).WillReturnRows(rows)

	// The save itself.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "objects"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// The audit entry.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_trails"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// Releasing the holder's lock after the save.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "objects"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	object, err := svc.SaveObject(context.Background(), scope, "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		map[string]interface{}{"name": "grace"}, SaveOptions{})
	require.NoError(t, err)
	assert.Empty(t, object.LockedBy)
	assert.Nil(t, object.LockedUntil)
	assert.Equal(t, "0.0.2", object.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveObjectLockedByOther(t *testing.T) {
	svc, mock := objectServiceFixture(t)
	scope := objectScope(t)

	until := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id", "uuid", "register", "schema", "object", "version", "locked_by", "locked_until"}).
		AddRow(7, "7c9e6679-7425-40de-944b-e07fc1f90ae7", 1, 2, []byte(`{"name":"ada"}`), "0.0.1", "user-2", until)
	mock.ExpectQuery(`SELECT (.+) FROM "objects"`).WillReturnRows(rows)

	_, err := svc.SaveObject(context.Background(), scope, "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		map[string]interface{}{"name": "grace"}, SaveOptions{})
	locked, ok := exception.IsLocked(err)
	require.True(t, ok)
	assert.Equal(t, "user-2", locked.LockedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
