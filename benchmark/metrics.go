package benchmark

import "runtime"

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"       yaml:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes" yaml:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"         yaml:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"            yaml:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"  yaml:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"    yaml:"heap_sys_bytes"`
}

func readMemStats() runtime.MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m
}

// memoryDelta reports end-of-run gauges and the allocation and GC counts
// accumulated since start. Native runtime memory is not visible here.
func memoryDelta(start, end runtime.MemStats) MemoryMetrics {
	return MemoryMetrics{
		AllocBytes:      end.Alloc,
		TotalAllocBytes: end.TotalAlloc - start.TotalAlloc,
		SysBytes:        end.Sys,
		NumGC:           end.NumGC - start.NumGC,
		HeapAllocBytes:  end.HeapAlloc,
		HeapSysBytes:    end.HeapSys,
	}
}
