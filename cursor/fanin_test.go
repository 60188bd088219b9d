package cursor

import (
	"context"
	"errors"
	"testing"

	"github.com/macneib/Akumuli/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func producerOf(ctx context.Context, samples []page.Sample) ExternalCursor {
	return Produce(ctx, func(ctx context.Context, ic InternalCursor) error {
		for _, s := range samples {
			if !ic.Put(ctx, s) {
				return nil
			}
		}

		return nil
	})
}

func TestFanInMergesForward(t *testing.T) {
	ctx := context.Background()

	a := producerOf(ctx, []page.Sample{{Timestamp: 0}, {Timestamp: 3}, {Timestamp: 6}})
	b := producerOf(ctx, []page.Sample{{Timestamp: 1}, {Timestamp: 2}, {Timestamp: 5}})

	merged := FanIn(ctx, []ExternalCursor{a, b}, false)

	got, err := ReadAll(ctx, merged)
	require.NoError(t, err)

	ts := make([]uint64, len(got))
	for i, s := range got {
		ts[i] = s.Timestamp
	}

	assert.Equal(t, []uint64{0, 1, 2, 3, 5, 6}, ts)
}

func TestFanInMergesBackward(t *testing.T) {
	ctx := context.Background()

	a := producerOf(ctx, []page.Sample{{Timestamp: 6}, {Timestamp: 3}, {Timestamp: 0}})
	b := producerOf(ctx, []page.Sample{{Timestamp: 5}, {Timestamp: 2}, {Timestamp: 1}})

	merged := FanIn(ctx, []ExternalCursor{a, b}, true)

	got, err := ReadAll(ctx, merged)
	require.NoError(t, err)

	ts := make([]uint64, len(got))
	for i, s := range got {
		ts[i] = s.Timestamp
	}

	assert.Equal(t, []uint64{6, 5, 3, 2, 1, 0}, ts)
}

func TestFanInAbortsOnChildError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("child failed")

	good := producerOf(ctx, []page.Sample{{Timestamp: 0}, {Timestamp: 10}})
	bad := Produce(ctx, func(ctx context.Context, ic InternalCursor) error {
		ic.Put(ctx, page.Sample{Timestamp: 1})

		return boom
	})

	merged := FanIn(ctx, []ExternalCursor{good, bad}, false)

	_, err := ReadAll(ctx, merged)
	assert.ErrorIs(t, err, boom)
}
