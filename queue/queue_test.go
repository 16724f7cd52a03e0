package queue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryHeap(t *testing.T) {
	t.Run("PopOrder", func(t *testing.T) {
		h := NewBinaryHeap[uint32](2)

		h.Push(1, 10)
		h.Push(2, 5)
		h.Push(3, 20)
		require.Equal(t, 3, h.Count())

		assert.Equal(t, uint32(2), h.Peek())
		assert.Equal(t, float32(5), h.PeekWeight())

		assert.Equal(t, uint32(2), h.Pop())
		assert.Equal(t, uint32(1), h.Pop())
		assert.Equal(t, uint32(3), h.Pop())
		assert.Equal(t, 0, h.Count())
	})

	t.Run("EmptyPopReturnsZero", func(t *testing.T) {
		h := NewBinaryHeap[string](0)
		assert.Equal(t, "", h.Pop())
		assert.Equal(t, 0, h.Count())

		h.Push("a", 1)
		assert.Equal(t, "a", h.Pop())
		assert.Equal(t, "", h.Pop())
	})

	t.Run("Clear", func(t *testing.T) {
		h := NewBinaryHeap[int](4)
		for i := range 10 {
			h.Push(i, float32(i))
		}
		h.Clear()
		assert.Equal(t, 0, h.Count())

		h.Push(42, 3)
		assert.Equal(t, 1, h.Count())
		assert.Equal(t, 42, h.Peek())
	})

	t.Run("CountAfterPushPop", func(t *testing.T) {
		h := NewBinaryHeap[int](1)
		for i := range 250 {
			h.Push(i, float32(250-i))
		}
		for range 70 {
			h.Pop()
		}
		assert.Equal(t, 180, h.Count())
	})

	t.Run("Duplicates", func(t *testing.T) {
		h := NewBinaryHeap[int](1)
		for i := range 20 {
			h.Push(i, 7)
		}
		h.Push(99, 1)
		assert.Equal(t, 99, h.Pop())
		for range 20 {
			assert.Equal(t, float32(7), h.PeekWeight())
			h.Pop()
		}
		assert.Equal(t, 0, h.Count())
	})
}

func TestBinaryHeap_RandomOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := range 20 {
		h := NewBinaryHeap[int](1)
		n := 1 + rng.Intn(1000)
		for i := range n {
			h.Push(i, rng.Float32()*1000)
		}

		prev := float32(-1)
		popped := 0
		for h.Count() > 0 {
			w := h.PeekWeight()
			h.Pop()
			require.GreaterOrEqual(t, w, prev, "round %d: non-monotonic pop", round)
			prev = w
			popped++
		}
		assert.Equal(t, n, popped)
	}
}

func TestBinaryHeap_Interleaved(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := NewBinaryHeap[float32](8)

	var ref []float32
	for range 2000 {
		if len(ref) > 0 && rng.Intn(3) == 0 {
			minIdx := 0
			for i, v := range ref {
				if v < ref[minIdx] {
					minIdx = i
				}
			}
			assert.Equal(t, ref[minIdx], h.PeekWeight())
			assert.Equal(t, ref[minIdx], h.Pop())
			ref = append(ref[:minIdx], ref[minIdx+1:]...)
			continue
		}
		p := rng.Float32() * 100
		h.Push(p, p)
		ref = append(ref, p)
	}
	assert.Equal(t, len(ref), h.Count())
}

func BenchmarkBinaryHeap_PushPop(b *testing.B) {
	h := NewBinaryHeap[uint32](1024)
	rng := rand.New(rand.NewSource(1))
	weights := make([]float32, 1024)
	for i := range weights {
		weights[i] = rng.Float32()
	}

	b.ReportAllocs()
	for b.Loop() {
		for i, w := range weights {
			h.Push(uint32(i), w)
		}
		for h.Count() > 0 {
			h.Pop()
		}
	}
}
