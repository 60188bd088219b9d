package volume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/macneib/Akumuli/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeqConfig() sequencer.Config {
	return sequencer.Config{WindowSize: 1_000_000_000, Threshold: 1000}
}

func TestCreateAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.dat")

	v, err := Create(path, 0, 1<<20, testSeqConfig())
	require.NoError(t, err)
	require.NotNil(t, v.Sequencer)

	require.NoError(t, v.Close())
}

func TestOpenForWriteResetsPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.dat")

	v, err := Create(path, 0, 1<<20, testSeqConfig())
	require.NoError(t, err)
	require.NoError(t, v.Page.AddEntry(1, 100, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, v.Page.SyncNextIndex(false))

	require.NoError(t, v.OpenForWrite())

	assert.Zero(t, v.Page.Header().Count)
	require.NoError(t, v.Close())
}

func TestMakeReadonlyThenWritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.dat")

	v, err := Create(path, 0, 1<<20, testSeqConfig())
	require.NoError(t, err)

	require.NoError(t, v.MakeReadonly())
	require.NoError(t, v.MakeWritable())
	require.NoError(t, v.Page.AddEntry(1, 1, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, v.Close())
}

func TestDeactivateBumpsCloseCountWithoutUnmapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.dat")

	v, err := Create(path, 0, 1<<20, testSeqConfig())
	require.NoError(t, err)
	require.NoError(t, v.OpenForWrite())
	require.EqualValues(t, 1, v.Page.Header().OpenCount)

	require.NoError(t, v.Deactivate())
	assert.EqualValues(t, 1, v.Page.Header().CloseCount)

	// The mapping is still usable after Deactivate.
	require.NoError(t, v.Page.AddEntry(1, 1, []byte{1, 2, 3, 4, 5, 6, 7, 8}))

	require.NoError(t, v.Close())
}

func TestCloseLeavesOpenCountAheadOfCloseCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.dat")

	v, err := Create(path, 0, 1<<20, testSeqConfig())
	require.NoError(t, err)
	require.NoError(t, v.OpenForWrite())

	require.NoError(t, v.Close())

	reopened, err := Open(path, testSeqConfig())
	require.NoError(t, err)
	assert.Greater(t, reopened.Page.Header().OpenCount, reopened.Page.Header().CloseCount)
	require.NoError(t, reopened.Close())
}

func TestSafeReallocRecyclesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vol.dat")

	v, err := Create(path, 0, 1<<20, testSeqConfig())
	require.NoError(t, err)
	require.NoError(t, v.Page.AddEntry(1, 100, []byte{1, 2, 3, 4, 5, 6, 7, 8}))

	fresh, err := v.SafeRealloc()
	require.NoError(t, err)
	require.NotNil(t, fresh)

	// The old volume's mapping still works: the renamed file backs it.
	assert.EqualValues(t, 1, v.Page.Header().Count)
	// The fresh volume is a clean page at the original path.
	assert.Zero(t, fresh.Page.Header().Count)

	_, err = os.Stat(path + ".tmp")
	require.NoError(t, err)

	require.NoError(t, v.Close())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, fresh.Close())
}
