package cursor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/macneib/Akumuli/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduceAndReadAll(t *testing.T) {
	ctx := context.Background()

	ec := Produce(ctx, func(ctx context.Context, ic InternalCursor) error {
		for i := uint64(0); i < 5; i++ {
			if !ic.Put(ctx, page.Sample{ParamID: 1, Timestamp: i, Value: float64(i)}) {
				return nil
			}
		}

		return nil
	})

	got, err := ReadAll(ctx, ec)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.EqualValues(t, 0, got[0].Timestamp)
	assert.EqualValues(t, 4, got[4].Timestamp)
	assert.True(t, ec.IsDone())
}

func TestProducePropagatesError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	ec := Produce(ctx, func(ctx context.Context, ic InternalCursor) error {
		ic.Put(ctx, page.Sample{ParamID: 1, Timestamp: 0})

		return boom
	})

	_, err := ReadAll(ctx, ec)
	assert.ErrorIs(t, err, boom)
}

func TestReadRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ec := Produce(ctx, func(ctx context.Context, ic InternalCursor) error {
		ic.Put(ctx, page.Sample{ParamID: 1, Timestamp: 0})
		<-ctx.Done()

		return ctx.Err()
	})

	buf := make([]page.Sample, 1)
	n, err := ec.Read(ctx, buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	cancel()

	time.Sleep(10 * time.Millisecond)
	assert.True(t, ec.IsDone())
}

func TestReadZeroLengthBufferIsNoop(t *testing.T) {
	ctx := context.Background()
	ec := Produce(ctx, func(ctx context.Context, ic InternalCursor) error {
		return nil
	})

	n, err := ec.Read(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
