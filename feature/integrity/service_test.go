package integrity

import (
	"context"
	"testing"
	"time"

	"upload-manager/core/database"
	"upload-manager/core/reconcile"
	"upload-manager/core/storage"
	"upload-manager/core/storage/mocks"
	"upload-manager/feature/uploadedfiles"
	"upload-manager/feature/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	client *mocks.MemoryClient
	media  *storage.MediaStorage
	svc    *Service
	chris  *users.User
	boo    *users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &users.User{}, &uploadedfiles.UploadedFile{}))

	chris := &users.User{Username: "chris", Password: "x"}
	boo := &users.User{Username: "boo", Password: "x"}
	require.NoError(t, db.Create(chris).Error)
	require.NoError(t, db.Create(boo).Error)

	client := mocks.NewMemoryClient()
	media := storage.NewMediaStorage(storage.Config{
		Bucket:        "media",
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		PageSize:      2,
	}, zap.NewNop(), storage.WithClient(client))

	return &fixture{
		db:     db,
		client: client,
		media:  media,
		svc:    NewService(db, media, zap.NewNop()),
		chris:  chris,
		boo:    boo,
	}
}

// record inserts a file record without touching storage.
func (f *fixture) record(t *testing.T, owner *users.User, key string) {
	t.Helper()
	require.NoError(t, f.db.Create(&uploadedfiles.UploadedFile{Fname: key, Fsize: 1, OwnerID: owner.ID}).Error)
}

// object stores an object without a record.
func (f *fixture) object(t *testing.T, key string) {
	t.Helper()
	_, err := f.media.UploadObj(context.Background(), key, []byte("x"))
	require.NoError(t, err)
}

// seed leaves one complete file per user, one record without object and two objects
// without records.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	f.record(t, f.chris, "chris/uploads/a")
	f.object(t, "chris/uploads/a")
	f.record(t, f.boo, "boo/uploads/b")
	f.object(t, "boo/uploads/b")

	f.record(t, f.chris, "chris/uploads/gone")
	f.object(t, "chris/uploads/stray")
	f.object(t, "boo/uploads/nested/stray")
	f.object(t, "elsewhere/unowned")
}

func TestService_CheckStorage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	report, err := f.svc.CheckStorage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "media", report.Bucket)
	assert.False(t, report.Exists)

	require.NoError(t, f.svc.FixStorage(ctx))

	report, err = f.svc.CheckStorage(ctx)
	require.NoError(t, err)
	assert.True(t, report.Exists)
}

func TestService_CheckSchema(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.CheckSchema()
	require.NoError(t, err)
	assert.True(t, report.Matched, "%+v", report)
	assert.Contains(t, report.Tables, "users")
	assert.Contains(t, report.Tables, "uploaded_files")
}

func TestService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("ReportOnly", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		plan, executed, err := f.svc.Reconcile(ctx, reconcile.Options{DoPurge: true})
		require.NoError(t, err)
		assert.Zero(t, executed)

		assert.Equal(t, reconcile.PlanSummary{
			TotalItems:     5,
			MissingStorage: 1,
			MissingDB:      2,
			PurgeActions:   3,
		}, plan.Summary)

		byKey := make(map[string]reconcile.Result)
		for _, r := range plan.Results {
			byKey[r.Key] = r
		}
		assert.True(t, byKey["chris/uploads/a"].Complete())
		assert.Equal(t, "chris", byKey["chris/uploads/a"].Metadata["owner"])
		assert.False(t, byKey["chris/uploads/gone"].StoragePresent)
		assert.False(t, byKey["boo/uploads/nested/stray"].DBPresent)
		assert.NotContains(t, byKey, "elsewhere/unowned")

		var count int64
		require.NoError(t, f.db.Model(&uploadedfiles.UploadedFile{}).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})

	t.Run("Purge", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		_, executed, err := f.svc.Reconcile(ctx, reconcile.Options{DoPurge: true, Confirmed: true})
		require.NoError(t, err)
		assert.Equal(t, 3, executed)

		var names []string
		require.NoError(t, f.db.Model(&uploadedfiles.UploadedFile{}).Order("fname").Pluck("fname", &names).Error)
		assert.Equal(t, []string{"boo/uploads/b", "chris/uploads/a"}, names)
		assert.Equal(t, []string{"boo/uploads/b", "chris/uploads/a", "elsewhere/unowned"}, f.client.Keys("media"))

		plan, _, err := f.svc.Reconcile(ctx, reconcile.Options{DoPurge: true})
		require.NoError(t, err)
		assert.Zero(t, plan.Summary.PurgeActions)
	})

	t.Run("DryRunKeepsEverything", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		_, executed, err := f.svc.Reconcile(ctx, reconcile.Options{DoPurge: true, Confirmed: true, DryRun: true})
		require.NoError(t, err)
		assert.Zero(t, executed)
		assert.Len(t, f.client.Keys("media"), 5)
	})
}

func TestService_ReconcileKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	result, err := f.svc.ReconcileKey(ctx, "chris/uploads/gone")
	require.NoError(t, err)
	assert.True(t, result.DBPresent)
	assert.False(t, result.StoragePresent)
	assert.Equal(t, "chris", result.Metadata["owner"])

	result, err = f.svc.ReconcileKey(ctx, "chris/uploads/stray")
	require.NoError(t, err)
	assert.False(t, result.DBPresent)
	assert.True(t, result.StoragePresent)

	t.Run("SeesChangesImmediately", func(t *testing.T) {
		_, _, err := f.svc.Reconcile(ctx, reconcile.Options{})
		require.NoError(t, err)

		f.object(t, "chris/uploads/gone")
		result, err := f.svc.ReconcileKey(ctx, "chris/uploads/gone")
		require.NoError(t, err)
		assert.True(t, result.StoragePresent)

		require.NoError(t, f.media.DeleteObj(ctx, "chris/uploads/gone"))
		result, err = f.svc.ReconcileKey(ctx, "chris/uploads/gone")
		require.NoError(t, err)
		assert.False(t, result.StoragePresent)
	})
}

func TestService_Apply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	plan, _, err := f.svc.Reconcile(ctx, reconcile.Options{DoPurge: true})
	require.NoError(t, err)

	executed, err := f.svc.Apply(ctx, plan, reconcile.Options{DoPurge: true})
	require.NoError(t, err)
	assert.Zero(t, executed, "unconfirmed plans are not applied")

	executed, err = f.svc.Apply(ctx, plan, reconcile.Options{DoPurge: true, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 3, executed)
	assert.NotContains(t, f.client.Keys("media"), "chris/uploads/stray")
}
