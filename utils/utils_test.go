package utils

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiDim(t *testing.T) {
	m := NewMultiDim([]int{4, 3, 2})

	assert.Equal(t, 24, m.Size())
	assert.Equal(t, 3, m.Dim(1))
	assert.Equal(t, 0, m.Index([]int{0, 0, 0}))
	assert.Equal(t, 1, m.Index([]int{1, 0, 0}))
	assert.Equal(t, 4, m.Index([]int{0, 1, 0}))
	assert.Equal(t, 12, m.Index([]int{0, 0, 1}))

	for i := 0; i < m.Size(); i++ {
		assert.Equal(t, i, m.Index(m.Point(i)))
	}
}

func TestMultiDimCopiesDims(t *testing.T) {
	dims := []int{2, 2}
	m := NewMultiDim(dims)
	dims[0] = 5
	assert.Equal(t, 4, m.Size())
}

func TestMultiThread(t *testing.T) {
	for _, ops := range []int{0, 1, 3, 100} {
		seen := make([]int32, 50)
		MultiThread(5, 50, func(i int) { atomic.AddInt32(&seen[i], 1) }, ops, 2)

		for i, n := range seen {
			if i < 5 {
				assert.Equal(t, int32(0), n, "index %d", i)
			} else {
				assert.Equal(t, int32(1), n, "index %d", i)
			}
		}
	}

	called := false
	MultiThread(3, 3, func(int) { called = true }, 1, 1)
	assert.False(t, called)
}
