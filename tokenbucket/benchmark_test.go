package tokenbucket

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func BenchmarkRequestSingleKey(b *testing.B) {
	configs := []struct {
		name           string
		capacity       int
		refillRate     int
		refillInterval time.Duration
	}{
		{"Capacity10_Refill1s", 10, 1, time.Second},
		{"Capacity1000_Refill1s", 1000, 1, time.Second},
		{"Capacity1000_Refill1ms", 1000, 100, time.Millisecond},
	}

	for _, config := range configs {
		b.Run(config.name, func(b *testing.B) {
			limiter, err := New[string](config.capacity, config.refillRate, config.refillInterval)
			if err != nil {
				b.Fatalf("New returned error: %v", err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				limiter.Request("benchUser")
			}
		})
	}
}

func BenchmarkRequestParallelDistinctKeys(b *testing.B) {
	limiter, err := New[string](1000, 100, time.Millisecond)
	if err != nil {
		b.Fatalf("New returned error: %v", err)
	}

	var id atomic.Int64
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		key := fmt.Sprintf("benchClient-%d", id.Add(1))
		for pb.Next() {
			limiter.Request(key)
		}
	})
}
