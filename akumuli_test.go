package akumuli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/macneib/Akumuli/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVolumePaths(dir string, n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, "volume"+string(rune('0'+i))+".dat")
	}

	return paths
}

func TestCreateWriteAndQuery(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.WindowSize = 1_000_000
	cfg.CompressionThreshold = 1000

	db, err := Create(filepath.Join(dir, "meta.db"), testVolumePaths(dir, 2), 1<<20, cfg)
	require.NoError(t, err)

	require.NoError(t, db.WriteDouble("cpu.load", 1, 1))
	require.NoError(t, db.WriteDouble("cpu.load", 2, 2))
	require.NoError(t, db.WriteDouble("mem.used", 1, 100))

	ctx := context.Background()

	got, err := db.Query(ctx, page.Query{Low: 0, High: 10})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	require.NoError(t, db.Close())
}

func TestOpenReopensExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "meta.db")

	cfg := DefaultConfig()
	cfg.WindowSize = 1_000_000
	cfg.CompressionThreshold = 1000

	db, err := Create(metaPath, testVolumePaths(dir, 2), 1<<20, cfg)
	require.NoError(t, err)
	require.NoError(t, db.WriteDouble("cpu.load", 1, 1))
	require.NoError(t, db.Close())

	reopened, err := Open(metaPath, cfg)
	require.NoError(t, err)
	require.NoError(t, reopened.Close())
}
