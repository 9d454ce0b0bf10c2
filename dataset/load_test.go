package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "cases.json")
	writeFile(t, jsonPath, sampleJSON)
	ds, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, jsonPath, ds.Source)

	csvPath := filepath.Join(dir, "cases.CSV")
	writeFile(t, csvPath, "Departamento_ocurrencia,FEC_CON\nChocó,2023-01-01\n")
	ds, err = LoadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	xlsx := filepath.Join(dir, "cases.xlsx")
	writeFile(t, xlsx, "")
	_, err := LoadFile(xlsx)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "[{")
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.ndjson")
	writeFile(t, path, `{"Departamento_ocurrencia": "Antioquia"}`+"\n")

	ds, err := LoadFile(path)
	require.NoError(t, err)
	holder := NewHolder(ds)

	w := NewWatcher(path, holder)
	w.debounce = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// unrelated files in the same directory are ignored
	writeFile(t, filepath.Join(dir, "other.json"), "[]")

	lines := strings.Repeat(`{"Departamento_ocurrencia": "Chocó"}`+"\n", 3)
	writeFile(t, path, lines)

	require.Eventually(t, func() bool {
		return holder.Current().Len() == 3
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, ds.Len(), "old snapshot is not mutated")
}

func TestWatcherKeepsSnapshotOnFailedReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	ds := New([]Case{{Department: "Antioquia"}}, path)
	holder := NewHolder(ds)

	w := NewWatcher(path, holder)
	w.load = func(string) (*Dataset, error) { return nil, ErrUnsupportedFormat }
	w.reload()

	assert.Same(t, ds, holder.Current())
}
