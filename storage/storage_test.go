package storage

import (
	"path/filepath"
	"testing"

	"github.com/macneib/Akumuli/config"
	"github.com/macneib/Akumuli/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.WindowSize = 100
	cfg.CompressionThreshold = 2

	return cfg
}

func volumePaths(dir string, n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, "volume"+string(rune('0'+i))+".dat")
	}

	return paths
}

func TestCreateOpensActiveVolumeForWrite(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.db")

	s, err := Create(meta, volumePaths(dir, 2), 1<<20, testConfig())
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.EqualValues(t, 0, s.activeIndex.Load())
	require.NoError(t, s.Close())
}

func TestWriteDoubleResolvesSeriesAndRecordsSample(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.db")

	s, err := Create(meta, volumePaths(dir, 2), 1<<20, testConfig())
	require.NoError(t, err)

	require.NoError(t, s.WriteDouble("cpu.load", 1, 3.14))

	id := s.matcher.Match("cpu.load")
	assert.NotZero(t, id)

	require.NoError(t, s.Close())
}

func TestWriteDoubleRejectsLateWrite(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.db")

	s, err := Create(meta, volumePaths(dir, 2), 1<<20, testConfig())
	require.NoError(t, err)

	require.NoError(t, s.WriteDouble("cpu.load", 1000, 1))
	err = s.WriteDouble("cpu.load", 1, 2)
	assert.Error(t, err)

	require.NoError(t, s.Close())
}

func TestWriteDoubleFlushesPastThresholdAndPersistsNames(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.db")

	cfg := testConfig()
	cfg.Durability = config.MaxDurability

	s, err := Create(meta, volumePaths(dir, 2), 1<<20, cfg)
	require.NoError(t, err)

	for i := uint64(0); i < 3; i++ {
		require.NoError(t, s.WriteDouble("cpu.load", i, float64(i)))
	}

	// Cross two window boundaries so the lagging checkpoint actually
	// folds the first window's samples into the page.
	require.NoError(t, s.WriteDouble("cpu.load", 150, 42))
	require.NoError(t, s.WriteDouble("cpu.load", 260, 43))

	rows, err := s.meta.AllSeries()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "cpu.load", rows[0].SeriesID)

	require.NoError(t, s.Close())
}

func TestSearchOrderForwardStartsAfterActive(t *testing.T) {
	order := searchOrder(1, 4, false)
	assert.Equal(t, []int32{2, 3, 0, 1}, order)
}

func TestSearchOrderBackwardIsReversed(t *testing.T) {
	order := searchOrder(1, 4, true)
	assert.Equal(t, []int32{1, 0, 3, 2}, order)
}

func TestSearchEmitsWrittenSamples(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "meta.db")

	s, err := Create(meta, volumePaths(dir, 2), 1<<20, testConfig())
	require.NoError(t, err)

	require.NoError(t, s.WriteDouble("cpu.load", 1, 1))
	require.NoError(t, s.WriteDouble("cpu.load", 2, 2))

	var got []page.Sample
	q := &page.Query{Low: 0, High: 1000}

	require.NoError(t, s.Search(q, func(sm page.Sample) {
		got = append(got, sm)
	}))

	assert.Len(t, got, 2)

	require.NoError(t, s.Close())
}
