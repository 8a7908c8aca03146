package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForChunks_Coverage(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}

	n := 257
	hits := make([]int32, n)
	var calls int64

	ForChunks(n, func(s, e int) {
		atomic.AddInt64(&calls, 1)
		for i := s; i < e; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, cfg)

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}
	if calls < 2 {
		t.Errorf("Expected parallel chunks, got %d call(s)", calls)
	}
}

func TestFor_Sequential(t *testing.T) {
	var calls int64
	ForChunks(100, func(s, e int) {
		atomic.AddInt64(&calls, 1)
		if s != 0 || e != 100 {
			t.Errorf("Expected single chunk [0,100), got [%d,%d)", s, e)
		}
	}, Sequential())

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to one sequential chunk.
	cfg := DefaultConfig()

	var calls int64
	ForChunks(cfg.MinChunkSize-1, func(_, _ int) {
		atomic.AddInt64(&calls, 1)
	}, cfg)

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestFor_Empty(t *testing.T) {
	ForChunks(0, func(_, _ int) {
		t.Fatal("f called for empty range")
	}, DefaultConfig())
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 100000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
