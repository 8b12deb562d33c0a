package docstore

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestListCollection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewSQLStore(db)

	rows := sqlmock.NewRows([]string{"id", "doc"}).
		AddRow("s1", []byte(`{"name":"لغتي"}`)).
		AddRow("s2", []byte(`{"name":"الرياضيات"}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, doc FROM documents WHERE collection = $1 ORDER BY id")).
		WithArgs(CollectionSubjects).
		WillReturnRows(rows)

	docs, err := store.List(context.Background(), CollectionSubjects)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "s1", docs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewSQLStore(db)

	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := store.Create(context.Background(), CollectionStudents, []byte(`{"name":"سارة"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingDocument(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewSQLStore(db)

	mock.ExpectExec("UPDATE documents SET doc").
		WithArgs(CollectionSubjects, "missing", []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), CollectionSubjects, "missing", []byte(`{}`))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchCommitsAllWrites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewSQLStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Batch(context.Background(), []Write{
		{Op: OpSet, Collection: CollectionStudents, ID: "st1", Data: []byte(`{}`)},
		{Op: OpDelete, Collection: CollectionStudents, ID: "st2"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewSQLStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := store.Batch(context.Background(), []Write{
		{Op: OpSet, Collection: CollectionClassrooms, ID: "c1", Data: []byte(`{}`)},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewSQLStore(db)

	require.NoError(t, store.Batch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
