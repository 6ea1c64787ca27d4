package flexmap

import (
	"unsafe"

	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"
)

// hugePageThresholdBytes is the size above which a backing array is
// allocated via an anonymous mmap with MADV_HUGEPAGE advice instead of a
// plain Go slice, the same technique fusion/kmer_index.go's initShard uses
// for its hash table: large, long-lived, randomly-accessed tables benefit
// from huge pages, and bypassing the Go allocator avoids GC scanning
// pressure for arrays the GC will never need to trace (these arrays hold no
// pointers).
const hugePageThresholdBytes = 16 << 20 // 16MiB

const hugePageSize = 2 << 20 // size of a Linux transparent hugetlb page.

// allocUint16 returns a zeroed []uint16 of length n, backed by an
// anonymous huge-page-advised mapping once it is large enough for that to
// matter, and by a plain make() otherwise (tests commonly build tiny
// indexes, where mmap's fixed overhead dominates).
func allocUint16(n uint64) []uint16 {
	nBytes := n * 2
	if nBytes < hugePageThresholdBytes {
		return make([]uint16, n)
	}
	data, err := unix.Mmap(-1, 0, int(nBytes)+hugePageSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		log.Printf("flexmap: mmap(%d bytes) failed (%v), falling back to a regular allocation", nBytes, err)
		return make([]uint16, n)
	}
	if err := unix.Madvise(data, unix.MADV_HUGEPAGE); err != nil {
		log.Printf("flexmap: madvise(MADV_HUGEPAGE) failed: %v", err)
	}
	aligned := ((uintptr(unsafe.Pointer(&data[0])) - 1) / hugePageSize + 1) * hugePageSize
	base := unsafe.Pointer(aligned)
	return unsafe.Slice((*uint16)(base), n)
}

// allocUint64 is allocUint16's counterpart for the Values array's 64-bit
// cells.
func allocUint64(n uint64) []uint64 {
	nBytes := n * 8
	if nBytes < hugePageThresholdBytes {
		return make([]uint64, n)
	}
	data, err := unix.Mmap(-1, 0, int(nBytes)+hugePageSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		log.Printf("flexmap: mmap(%d bytes) failed (%v), falling back to a regular allocation", nBytes, err)
		return make([]uint64, n)
	}
	if err := unix.Madvise(data, unix.MADV_HUGEPAGE); err != nil {
		log.Printf("flexmap: madvise(MADV_HUGEPAGE) failed: %v", err)
	}
	aligned := ((uintptr(unsafe.Pointer(&data[0])) - 1) / hugePageSize + 1) * hugePageSize
	base := unsafe.Pointer(aligned)
	return unsafe.Slice((*uint64)(base), n)
}
