package pool

import "sync"

// Slice pools for reuse of typed slices. No other package in this module
// calls them; the column codec allocates its element, offset, and index
// slices with make.
var (
	int64SlicePool  = sync.Pool{New: func() any { return &[]int64{} }}
	uint64SlicePool = sync.Pool{New: func() any { return &[]uint64{} }}
	uint32SlicePool = sync.Pool{New: func() any { return &[]uint32{} }}
	float64SlicePool = sync.Pool{New: func() any { return &[]float64{} }}
	stringSlicePool  = sync.Pool{New: func() any { return &[]string{} }}
)

// GetInt64Slice retrieves a slice of the given length from the pool.
//
// The caller must invoke the returned cleanup function (typically via
// defer) once the slice is no longer needed.
func GetInt64Slice(size int) ([]int64, func()) {
	ptr, _ := int64SlicePool.Get().(*[]int64)
	slice := resizeInt64(*ptr, size)
	*ptr = slice

	return slice, func() { int64SlicePool.Put(ptr) }
}

func resizeInt64(slice []int64, size int) []int64 {
	slice = slice[:0]
	if cap(slice) < size {
		return make([]int64, size)
	}

	return slice[:size]
}

// GetUint64Slice retrieves a slice of the given length from the pool.
func GetUint64Slice(size int) ([]uint64, func()) {
	ptr, _ := uint64SlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]
	if cap(slice) < size {
		slice = make([]uint64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint64SlicePool.Put(ptr) }
}

// GetUint32Slice retrieves a slice of the given length from the pool.
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]
	if cap(slice) < size {
		slice = make([]uint32, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint32SlicePool.Put(ptr) }
}

// GetFloat64Slice retrieves a slice of the given length from the pool.
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]
	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}

// GetStringSlice retrieves a slice of the given length from the pool.
func GetStringSlice(size int) ([]string, func()) {
	ptr, _ := stringSlicePool.Get().(*[]string)
	slice := (*ptr)[:0]
	if cap(slice) < size {
		slice = make([]string, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { stringSlicePool.Put(ptr) }
}
