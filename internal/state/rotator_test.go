package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatorCyclesInOrder(t *testing.T) {
	for n := 1; n <= 7; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			models := make([]string, n)
			for i := range models {
				models[i] = fmt.Sprintf("llama-%d", i)
			}
			r := NewRotator(models)

			for i := 0; i < n; i++ {
				got, ok := r.Next()
				require.True(t, ok)
				assert.Equal(t, models[i], got)
			}
			got, ok := r.Next()
			require.True(t, ok)
			assert.Equal(t, models[0], got, "call n+1 should wrap to the first model")
		})
	}
}

func TestRotatorEmptyNeverSelects(t *testing.T) {
	r := NewRotator(nil)
	for i := 0; i < 5; i++ {
		got, ok := r.Next()
		assert.False(t, ok)
		assert.Empty(t, got)
	}

	var nilRotator *Rotator
	_, ok := nilRotator.Next()
	assert.False(t, ok)
}

func TestRotatorOutOfRangeCursorFailsClosedThenRecovers(t *testing.T) {
	r := NewRotator([]string{"a", "b"})
	r.cursor = 5

	got, ok := r.Next()
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 0, r.Cursor())

	got, ok = r.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestRotatorResetRewinds(t *testing.T) {
	r := NewRotator([]string{"a", "b", "c"})
	r.Next()
	r.Next()
	assert.Equal(t, 2, r.Cursor())

	r.Reset([]string{"x"})
	assert.Equal(t, 0, r.Cursor())
	peek, ok := r.Peek()
	assert.True(t, ok)
	assert.Equal(t, "x", peek)
	assert.Equal(t, []string{"x"}, r.Models())
}

func TestRotatorModelsIsACopy(t *testing.T) {
	src := []string{"a", "b"}
	r := NewRotator(src)
	src[0] = "mutated"
	got := r.Models()
	got[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.Models())
}
