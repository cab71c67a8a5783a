package fileinfo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestRecordContentKinds(t *testing.T) {
	record := NewRecord("a.txt", 10)
	_, ok := record.Content()
	assert.False(t, ok)
	assert.False(t, record.Complete())
	assert.Equal(t, ContentNone, record.Kind())

	preview := record.WithPreview("hello", 5)
	text, ok := preview.Content()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)
	assert.False(t, preview.Complete())
	assert.Equal(t, int64(5), preview.BytesRead())

	full := record.WithFull("hellohello")
	assert.True(t, full.Complete())
	assert.Equal(t, int64(10), full.BytesRead())

	// The original value is untouched.
	_, ok = record.Content()
	assert.False(t, ok)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	textPath := writeFile(t, dir, "text.txt", []byte("Hello, World!"))
	binaryPath := writeFile(t, dir, "binary.bin", []byte{0xFF, 0x00, 0xFE})

	t.Run("no content", func(t *testing.T) {
		record, err := Read(textPath, NoContent())
		require.NoError(t, err)
		assert.Equal(t, int64(13), record.Size)
		_, ok := record.Content()
		assert.False(t, ok)
		assert.False(t, record.Complete())
	})

	t.Run("preview shorter than file", func(t *testing.T) {
		record, err := Read(textPath, Preview(5))
		require.NoError(t, err)
		text, ok := record.Content()
		require.True(t, ok)
		assert.Equal(t, "Hello", text)
		assert.False(t, record.Complete())
		assert.Equal(t, ContentPartial, record.Kind())
	})

	t.Run("zero length preview captures nothing", func(t *testing.T) {
		record, err := Read(textPath, Mode{Kind: ContentPartial})
		require.NoError(t, err)
		assert.Equal(t, ContentNone, record.Kind())
		_, ok := record.Content()
		assert.False(t, ok)
	})

	t.Run("preview covering whole file", func(t *testing.T) {
		record, err := Read(textPath, Preview(100))
		require.NoError(t, err)
		text, _ := record.Content()
		assert.Equal(t, "Hello, World!", text)
		assert.True(t, record.Complete())
	})

	t.Run("zero preview means no content", func(t *testing.T) {
		record, err := Read(textPath, Preview(0))
		require.NoError(t, err)
		assert.Equal(t, ContentNone, record.Kind())
	})

	t.Run("full content", func(t *testing.T) {
		record, err := Read(textPath, FullContent())
		require.NoError(t, err)
		text, _ := record.Content()
		assert.Equal(t, "Hello, World!", text)
		assert.True(t, record.Complete())
	})

	t.Run("binary falls back to hex", func(t *testing.T) {
		record, err := Read(binaryPath, FullContent())
		require.NoError(t, err)
		text, _ := record.Content()
		assert.Equal(t, "ff 00 fe", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(dir, "missing.txt"), FullContent())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestReadLargeFileInChunks(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 3*chunkSize+17)
	for i := range data {
		data[i] = 'a' + byte(i%26)
	}
	path := writeFile(t, dir, "large.txt", data)

	record, err := Read(path, FullContent())
	require.NoError(t, err)
	text, _ := record.Content()
	assert.Equal(t, string(data), text)

	record, err = Read(path, Preview(chunkSize+1))
	require.NoError(t, err)
	text, _ = record.Content()
	assert.Equal(t, string(data[:chunkSize+1]), text)
	assert.False(t, record.Complete())
}

func TestPreviewTrimsSplitRune(t *testing.T) {
	dir := t.TempDir()
	// "é" is two bytes; a three byte preview cuts it in half.
	path := writeFile(t, dir, "utf8.txt", []byte("abé and more"))

	record, err := Read(path, Preview(3))
	require.NoError(t, err)
	text, ok := record.Content()
	require.True(t, ok)
	assert.Equal(t, "ab", text)
	assert.Equal(t, int64(3), record.BytesRead())
}

func TestGather(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", []byte("bee"))
	writeFile(t, dir, "a/a.txt", []byte("ay"))

	paths := []string{"b.txt", "missing.txt", "a/a.txt"}
	records, err := Gather(context.Background(), dir, paths, FullContent(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "b.txt", records[0].Path)
	assert.Equal(t, "a/a.txt", records[1].Path)
	text, _ := records[1].Content()
	assert.Equal(t, "ay", text)
}

func TestGatherCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Gather(ctx, dir, []string{"a.txt"}, FullContent(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
