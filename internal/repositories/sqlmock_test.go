package repositories_test

import (
	"context"
	"errors"
	"testing"

	"crudapi/internal/models"
	"crudapi/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGORMUserRepository_Create_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repositories.NewGORMUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Name: "John Doe", Email: "john@example.com"})

	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMUserRepository_FindByID_StorageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repositories.NewGORMUserRepository(db)

	cause := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(cause)

	user, err := repo.FindByID(context.Background(), 1)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, repositories.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMUserRepository_Delete_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repositories.NewGORMUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "addresses"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "users"`).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 1)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMAddressRepository_FindAll_StorageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repositories.NewGORMAddressRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "addresses"`).WillReturnError(errors.New("relation does not exist"))

	addresses, err := repo.FindAll(context.Background())

	assert.Nil(t, addresses)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
