package integrity

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestUploadsAdapter_LoadDBIndex(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewUploadsAdapter(db, nil)

	mock.ExpectQuery(`SELECT f.id, f.fname, f.fsize, u.username FROM uploaded_files AS f JOIN users AS u ON u.id = f.owner_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fname", "fsize", "username"}).
			AddRow(1, "chris/uploads/a", 5, "chris").
			AddRow(2, "boo/uploads/b", 7, "boo"))

	index, err := adapter.LoadDBIndex(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, index, 2)
	assert.Equal(t, map[string]string{"id": "2", "owner": "boo", "fsize": "7"}, adapter.GetMetadata(index["boo/uploads/b"]))
}

func TestUploadsAdapter_LoadDBIndexError(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewUploadsAdapter(db, nil)

	mock.ExpectQuery(`FROM uploaded_files`).WillReturnError(assert.AnError)

	_, err := adapter.LoadDBIndex(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestUploadsAdapter_DeleteDBBatch(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewUploadsAdapter(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `uploaded_files` WHERE fname IN (?,?)")).
		WithArgs("chris/uploads/a", "boo/uploads/b").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, adapter.DeleteDBBatch(context.Background(), []string{"chris/uploads/a", "boo/uploads/b"}))
	require.NoError(t, mock.ExpectationsWereMet())

	// Nothing to delete issues no statement.
	require.NoError(t, adapter.DeleteDBBatch(context.Background(), nil))
}

func TestUploadsAdapter_GetMetadataWithoutRecord(t *testing.T) {
	assert.Nil(t, NewUploadsAdapter(nil, nil).GetMetadata(nil))
}
