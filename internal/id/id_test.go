package id

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortedAndUnique(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = New()
	}

	assert.True(t, sort.StringsAreSorted(ids))
	seen := map[string]bool{}
	for _, s := range ids {
		assert.Len(t, s, 26)
		assert.False(t, seen[s])
		seen[s] = true
	}
}

func TestGeneratorIsReproducible(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return at }

	a := NewGenerator(rand.New(rand.NewSource(1)), clock)
	b := NewGenerator(rand.New(rand.NewSource(1)), clock)

	for range 5 {
		assert.Equal(t, a.New(), b.New())
	}

	got, err := Time(a.New())
	require.NoError(t, err)
	assert.True(t, got.Equal(at))

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}
