package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"upload-manager/core/config"
	"upload-manager/core/storage"
	"upload-manager/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// useMemoryMedia points the storage commands at an in-memory bucket.
func useMemoryMedia(t *testing.T) *mocks.MemoryClient {
	t.Helper()
	t.Setenv("STORAGE_RETRY_DELAY", "1ms")
	t.Setenv("LOG_LEVEL", "error")

	client := mocks.NewMemoryClient()
	prev := openMedia
	openMedia = func(cfg *config.Config, logg *zap.Logger) *storage.MediaStorage {
		return storage.NewMediaStorage(cfg.Storage, logg, storage.WithClient(client))
	}
	t.Cleanup(func() { openMedia = prev })
	return client
}

func runStorage(t *testing.T, args ...string) (string, error) {
	t.Helper()
	existsAsObject, getOutput, uploadPrefix = false, "", ""

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(append([]string{"storage"}, args...))
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.Execute()
	return out.String(), err
}

func TestStorageCommands(t *testing.T) {
	client := useMemoryMedia(t)
	dir := t.TempDir()

	local := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(local, []byte("quarterly"), 0o644))

	_, err := runStorage(t, "put", local, "chris/uploads/report.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"chris/uploads/report.txt"}, client.Keys("media"))

	t.Run("Ls", func(t *testing.T) {
		out, err := runStorage(t, "ls", "chris/uploads")
		require.NoError(t, err)
		assert.Equal(t, "chris/uploads/report.txt\n", out)
	})

	t.Run("Exists", func(t *testing.T) {
		out, err := runStorage(t, "exists", "chris/uploads")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)

		out, err = runStorage(t, "exists", "--object", "chris/uploads/report")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)

		out, err = runStorage(t, "exists", "--object", "boo/uploads/report.txt")
		require.NoError(t, err)
		assert.Equal(t, "false\n", out)
	})

	t.Run("Get", func(t *testing.T) {
		out, err := runStorage(t, "get", "chris/uploads/report.txt")
		require.NoError(t, err)
		assert.Equal(t, "quarterly", out)

		target := filepath.Join(dir, "downloaded.txt")
		out, err = runStorage(t, "get", "chris/uploads/report.txt", "-o", target)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "quarterly", string(data))
	})

	t.Run("CpAndRm", func(t *testing.T) {
		_, err := runStorage(t, "cp", "chris/uploads/report.txt", "chris/uploads/archive/report.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"chris/uploads/archive/report.txt", "chris/uploads/report.txt"}, client.Keys("media"))

		_, err = runStorage(t, "rm", "chris/uploads/archive/report.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"chris/uploads/report.txt"}, client.Keys("media"))
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := runStorage(t, "get", "chris/uploads/missing.txt")
		assert.Error(t, err)
	})

	t.Run("PutMissingLocalFile", func(t *testing.T) {
		_, err := runStorage(t, "put", filepath.Join(dir, "nope"), "chris/uploads/nope")
		assert.ErrorContains(t, err, "failed to read")
	})
}

func TestStorageUploadDirCommand(t *testing.T) {
	client := useMemoryMedia(t)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644))

	out, err := runStorage(t, "upload-dir", dir, "--prefix", "boo/uploads")
	require.NoError(t, err)
	assert.Equal(t, "uploaded boo/uploads/a.txt\nuploaded boo/uploads/sub/b.txt\n", out)
	assert.Equal(t, []string{"boo/uploads/a.txt", "boo/uploads/sub/b.txt"}, client.Keys("media"))

	out, err = runStorage(t, "upload-dir", dir, "--prefix", "boo/uploads")
	require.NoError(t, err)
	assert.Equal(t, "skipped boo/uploads/a.txt\nskipped boo/uploads/sub/b.txt\n", out)
}
