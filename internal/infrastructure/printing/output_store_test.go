package printing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	pdf := []byte("%PDF-1.4 report")

	t.Run("writes file and leaves no temp files", func(t *testing.T) {
		target := filepath.Join(dir, "nested", "raport.pdf")
		require.NoError(t, WriteFileAtomic(context.Background(), target, pdf, 0644))

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, pdf, content)

		entries, err := os.ReadDir(filepath.Dir(target))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("replaces existing file", func(t *testing.T) {
		target := filepath.Join(dir, "existing.pdf")
		require.NoError(t, os.WriteFile(target, []byte("old"), 0644))
		require.NoError(t, WriteFileAtomic(context.Background(), target, pdf, 0644))

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, pdf, content)
	})

	t.Run("empty data leaves nothing behind", func(t *testing.T) {
		target := filepath.Join(dir, "empty.pdf")
		err := WriteFileAtomic(context.Background(), target, nil, 0644)
		assert.Error(t, err)
		_, statErr := os.Stat(target)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WriteFileAtomic(ctx, filepath.Join(dir, "cancelled.pdf"), pdf, 0644)
		assert.Error(t, err)
	})
}

func TestOutputStore_Open(t *testing.T) {
	dir := t.TempDir()
	store, err := NewOutputStore(&OutputStoreConfig{BasePath: dir})
	require.NoError(t, err)

	path, err := store.PathFor("raport_finansowy_2024-01-01.pdf")
	require.NoError(t, err)
	require.NoError(t, WriteFileAtomic(context.Background(), path, []byte("%PDF"), 0644))

	t.Run("existing report", func(t *testing.T) {
		rc, size, err := store.Open(context.Background(), "raport_finansowy_2024-01-01.pdf")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF"), data)
		assert.Equal(t, int64(4), size)
	})

	t.Run("missing report", func(t *testing.T) {
		_, _, err := store.Open(context.Background(), "missing.pdf")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("hides in-progress writes", func(t *testing.T) {
		tmp := filepath.Join(dir, ".raport_finansowy_2024-01-01.pdf.123.tmp")
		require.NoError(t, os.WriteFile(tmp, []byte("partial"), 0644))

		_, _, err := store.Open(context.Background(), filepath.Base(tmp))
		assert.Error(t, err)
		_, err = store.PathFor(filepath.Base(tmp))
		assert.Error(t, err)
	})

	for _, name := range []string{"../../../etc/passwd", "/etc/passwd", "sub/file.pdf", "..", "", ".hidden.pdf", "notes.txt", "raport"} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, _, err := store.Open(context.Background(), name)
			assert.Error(t, err)
		})
	}
}

func TestOutputStore_Cleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewOutputStore(&OutputStoreConfig{BasePath: dir, RetentionDays: 7})
	require.NoError(t, err)

	oldPath := filepath.Join(dir, "old.pdf")
	newPath := filepath.Join(dir, "new.pdf")
	require.NoError(t, os.WriteFile(oldPath, []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(newPath, []byte("%PDF"), 0644))
	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	deleted, err := store.Cleanup(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(newPath)
	assert.NoError(t, err)
}

func TestContainsDotDot(t *testing.T) {
	assert.False(t, containsDotDot("raport.pdf"))
	assert.True(t, containsDotDot("../raport.pdf"))
	assert.True(t, containsDotDot(`..\raport.pdf`))
	assert.False(t, containsDotDot("raport..pdf"))
}
