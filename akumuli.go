// Package akumuli provides a high-performance time-series storage
// core: metrics are ingested as (series name, timestamp, value)
// triples, buffered in an in-memory sequencer, folded into
// compressed chunks, and persisted across a recycled ring of
// memory-mapped volume files.
//
// Akumuli is optimized for high-cardinality write-heavy workloads —
// many independent series, each appended to in small, loosely
// ordered batches — trading a bounded out-of-order window for strong
// write throughput and compact on-disk chunks.
//
// # Core Features
//
//   - Per-series dictionary mapping string names to dense numeric ids
//   - Two-phase sequencer: sorted runs in memory, checkpointed into a
//     ready buffer once a compression threshold is crossed
//   - Columnar chunk compression (Base-128 varint, ZigZag, delta, RLE)
//   - A ring of recyclable memory-mapped volumes with crash-safe
//     reopen (open/close counters) and live file recycling
//   - A FIFO chunk cache shared across the ring
//   - Streaming, cancelable cursors with a k-way fan-in merge
//
// # Basic Usage
//
// Creating a fresh database and writing to it:
//
//	cfg := akumuli.DefaultConfig()
//	db, err := akumuli.Create("meta.db", []string{"vol0.dat", "vol1.dat"}, 64<<20, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.WriteDouble("cpu.load", uint64(time.Now().UnixNano()), 0.42)
//
// Querying a time range:
//
//	ctx := context.Background()
//	samples, err := db.Query(ctx, page.Query{Low: start, High: end})
//
// Reopening an existing database after a restart replays whichever
// volume was active when the process last exited:
//
//	db, err := akumuli.Open("meta.db", cfg)
package akumuli

import (
	"context"

	"github.com/macneib/Akumuli/config"
	"github.com/macneib/Akumuli/cursor"
	"github.com/macneib/Akumuli/page"
	"github.com/macneib/Akumuli/storage"
)

// DB is the top-level handle to an open storage core.
type DB struct {
	storage *storage.Storage
}

// DefaultConfig returns the storage core's recommended settings,
// suitable for most write-heavy time-series workloads.
//
// Example:
//
//	cfg := akumuli.DefaultConfig()
//	cfg.Durability = config.SpeedTradeoff
func DefaultConfig() config.Config {
	return config.Default()
}

// Create initializes a brand-new database: a metadata database at
// metaPath and one freshly-created volume file per path in
// volumePaths, each volumeLength bytes.
//
// Parameters:
//   - metaPath: path to the sqlite3 metadata database to create
//   - volumePaths: ordered ring of volume file paths, at least one
//   - volumeLength: size in bytes of each volume file
//   - cfg: tunables; see DefaultConfig
//
// Returns:
//   - *DB: the opened database, ready to accept writes
//   - error: an error if any volume or the metadata database could
//     not be created
func Create(metaPath string, volumePaths []string, volumeLength uint64, cfg config.Config) (*DB, error) {
	s, err := storage.Create(metaPath, volumePaths, volumeLength, cfg)
	if err != nil {
		return nil, err
	}

	return &DB{storage: s}, nil
}

// Open reopens an existing database from its metadata database,
// restoring whichever volume was active when the process last ran
// and replaying any entries a crash left unpublished.
//
// Parameters:
//   - metaPath: path to a metadata database created by Create
//   - cfg: tunables; see DefaultConfig
//
// Returns:
//   - *DB: the reopened database, ready to accept writes and queries
//   - error: ENOT_FOUND if metaPath doesn't exist, or an error from
//     reopening one of the recorded volumes
func Open(metaPath string, cfg config.Config) (*DB, error) {
	s, err := storage.Open(metaPath, cfg)
	if err != nil {
		return nil, err
	}

	return &DB{storage: s}, nil
}

// Close flushes and closes every volume and the metadata database.
func (db *DB) Close() error {
	return db.storage.Close()
}

// WriteDouble ingests one (series, timestamp, value) sample.
//
// Parameters:
//   - seriesName: the series' string name; resolved to (and, if new,
//     assigned) a dense numeric id via the series dictionary
//   - ts: the sample's timestamp
//   - value: the sample's value
//
// Returns an error if ts falls further behind the newest timestamp
// seen for this database than the configured window size allows.
func (db *DB) WriteDouble(seriesName string, ts uint64, value float64) error {
	return db.storage.WriteDouble(seriesName, ts, value)
}

// QueryCursor runs q against the storage ring and returns a streaming
// cursor over the matching samples, merged in timestamp order (or
// reverse, if q.Backward). The cursor's producer goroutine is tied to
// ctx: canceling ctx unblocks any pending Read, and the producer drops
// every sample the scan still finds instead of delivering it.
//
// Example:
//
//	ec := db.QueryCursor(ctx, page.Query{Low: start, High: end})
//	buf := make([]page.Sample, 256)
//	for {
//	    n, err := ec.Read(ctx, buf)
//	    process(buf[:n])
//	    if err != nil || n < len(buf) {
//	        break
//	    }
//	}
func (db *DB) QueryCursor(ctx context.Context, q page.Query) cursor.ExternalCursor {
	return cursor.Produce(ctx, func(ctx context.Context, ic cursor.InternalCursor) error {
		return db.storage.Search(&q, func(s page.Sample) {
			ic.Put(ctx, s)
		})
	})
}

// Query runs q against the storage ring and collects every matching
// sample into a slice. For large result sets prefer QueryCursor,
// which streams results instead of buffering them all at once.
func (db *DB) Query(ctx context.Context, q page.Query) ([]page.Sample, error) {
	return cursor.ReadAll(ctx, db.QueryCursor(ctx, q))
}
