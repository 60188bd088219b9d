package seriesdict_test

import (
	"strings"
	"testing"

	"github.com/macneib/Akumuli/errs"
	"github.com/macneib/Akumuli/seriesdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringPoolRoundTrip(t *testing.T) {
	p := seriesdict.NewStringPool()

	h1 := p.Add("cpu.load host=a")
	h2 := p.Add("cpu.load host=b")

	assert.Equal(t, "cpu.load host=a", p.Get(h1))
	assert.Equal(t, "cpu.load host=b", p.Get(h2))
	assert.Equal(t, 2, p.Size())
}

func TestStringPoolStartsNewBinWhenFull(t *testing.T) {
	p := seriesdict.NewStringPool()
	big := strings.Repeat("x", 512*0x1000+1)

	h := p.Add(big)
	assert.Equal(t, big, p.Get(h))

	h2 := p.Add("tiny")
	assert.Equal(t, 1, h2.Bin)
}

func TestMatcherAddAndMatch(t *testing.T) {
	m := seriesdict.NewMatcher(1)

	assert.Zero(t, m.Match("cpu.load host=a"))

	id := m.Add("cpu.load host=a")
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, id, m.Match("cpu.load host=a"))

	id2 := m.Add("cpu.load host=b")
	assert.Equal(t, uint64(2), id2)

	name, ok := m.IDToString(id)
	require.True(t, ok)
	assert.Equal(t, "cpu.load host=a", name)

	_, ok = m.IDToString(999)
	assert.False(t, ok)
}

func TestMatcherAddAlwaysAssignsFreshID(t *testing.T) {
	m := seriesdict.NewMatcher(1)

	id1 := m.Add("same")
	id2 := m.Add("same")
	assert.NotEqual(t, id1, id2)
}

func TestMatcherAddKnownDoesNotAdvanceCounter(t *testing.T) {
	m := seriesdict.NewMatcher(1)

	m.AddKnown("loaded.series", 42)
	assert.Equal(t, uint64(42), m.Match("loaded.series"))

	id := m.Add("new.series")
	assert.Equal(t, uint64(1), id)
}

func TestMatcherAddKnownSkipsEmptyName(t *testing.T) {
	m := seriesdict.NewMatcher(1)
	m.AddKnown("", 7)
	_, ok := m.IDToString(7)
	assert.False(t, ok)
}

func TestMatcherPullNewNamesDrains(t *testing.T) {
	m := seriesdict.NewMatcher(1)
	m.Add("a")
	m.Add("b")

	names := m.PullNewNames()
	assert.Len(t, names, 2)
	assert.Empty(t, m.PullNewNames())
}

func TestNewMatcherPanicsOnZeroStartingID(t *testing.T) {
	assert.Panics(t, func() {
		seriesdict.NewMatcher(0)
	})
}

func TestToNormalForm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"already_sorted", "cpu.load host=a region=us", "cpu.load host=a region=us", nil},
		{"needs_sort", "cpu.load region=us host=a", "cpu.load host=a region=us", nil},
		{"extra_whitespace", "cpu.load   host=a    region=us", "cpu.load host=a region=us", nil},
		{"no_tags", "cpu.load", "", errs.ErrBadData},
		{"missing_equals", "cpu.load host", "", errs.ErrBadData},
		{"empty_key", "cpu.load =a", "", errs.ErrBadData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := seriesdict.ToNormalForm(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToNormalFormRejectsOversizedInput(t *testing.T) {
	_, err := seriesdict.ToNormalForm(strings.Repeat("x", seriesdict.MaxSeriesNameLength+1))
	assert.ErrorIs(t, err, errs.ErrBadArg)
}

func TestFilterTags(t *testing.T) {
	normalized, err := seriesdict.ToNormalForm("cpu.load host=a region=us zone=1")
	require.NoError(t, err)

	got, err := seriesdict.FilterTags(normalized, map[string]bool{"host": true})
	require.NoError(t, err)
	assert.Equal(t, "cpu.load host=a", got)
}
