package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridecheck/core/model"
)

func TestTableLookup(t *testing.T) {
	tab, err := New([]model.Ride{{ID: "a", DurationMinutes: 15}, {ID: "b", DurationMinutes: 5}})
	require.NoError(t, err)
	d, ok := tab.Of("a")
	assert.True(t, ok)
	assert.Equal(t, 15, d)
	_, ok = tab.Of("zzz")
	assert.False(t, ok)
	assert.Equal(t, 20, tab.Total([]string{"a", "b"}))
	assert.Equal(t, 5, tab.Total([]string{"b", "missing"}))
	assert.Equal(t, 2, tab.Len())
	assert.Equal(t, 5, tab.MustOf("b"))
	assert.Panics(t, func() { tab.MustOf("zzz") })
}

func TestTableRejectsBadRides(t *testing.T) {
	_, err := New([]model.Ride{{ID: "a", DurationMinutes: 0}})
	assert.Error(t, err)
	_, err = New([]model.Ride{{ID: "a", DurationMinutes: 1}, {ID: "a", DurationMinutes: 2}})
	assert.Error(t, err)
	_, err = FromMap(map[string]int{"x": -3})
	assert.Error(t, err)
}
