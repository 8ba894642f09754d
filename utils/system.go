package utils

import (
	"math"
	"runtime"

	"go.uber.org/zap"
)

// MemUsage returns the heap figures as log fields, sizes in MiB.
// For info on each, see: https://golang.org/pkg/runtime/#MemStats
func MemUsage() []zap.Field {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return []zap.Field{
		zap.Uint64("alloc_mib", bToMb(m.Alloc)),
		zap.Uint64("total_alloc_mib", bToMb(m.TotalAlloc)),
		zap.Uint64("sys_mib", bToMb(m.Sys)),
		zap.Uint32("num_gc", m.NumGC),
	}
}

// CountNaN returns how many entries of v are NaN
func CountNaN[T float32 | float64](v []T) (n int) {
	for _, f := range v {
		if math.IsNaN(float64(f)) {
			n++
		}
	}
	return
}
