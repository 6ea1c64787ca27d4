package flexmap

import "math"

// keysState tracks Keys through its Empty -> Counted -> Sealed lifecycle
// Empty and Counted are observationally
// identical (the backing array holds occurrence counts in both), so they
// share the building state; only the Sealed transition actually changes
// what the cells mean.
type keysState int

const (
	keysBuilding keysState = iota
	keysSealed
)

// cellsPerHead is the number of 16-bit cells a 64-bit base offset occupies.
const cellsPerHead = 4

// Keys is the two-tier keyed table: one
// 16-bit cell per canonical core, grouped into fixed-size bodies each
// fronted by a 4-cell 64-bit base offset ("head"), plus one trailing head
// holding the grand total Values length.
type Keys struct {
	params Params
	data   []uint16
	state  keysState
}

// NewKeys allocates a zeroed Keys table for the given parameters. Params
// must already have passed Validate.
func NewKeys(params Params) *Keys {
	return &Keys{
		params: params,
		data:   allocUint16(keysTableSize(params)),
		state:  keysBuilding,
	}
}

// keysTableSize returns ceil(4^C / B) bodies of (4+B) cells, plus one
// trailing 4-cell head.
func keysTableSize(p Params) uint64 {
	numCores := p.NumCores()
	b := uint64(p.B)
	numBodies := (numCores + b - 1) / b
	return numBodies*(cellsPerHead+b) + cellsPerHead
}

func (k *Keys) bucketOf(core uint64) uint64 {
	return core >> k.params.log2B()
}

func (k *Keys) slotOf(core uint64) uint64 {
	return core & uint64(k.params.B-1)
}

// headIndex returns the cell index of bucket b's 4-cell head.
func (k *Keys) headIndex(bucket uint64) uint64 {
	return bucket * (cellsPerHead + uint64(k.params.B))
}

// keyIndex returns the cell index of core's own slot.
func (k *Keys) keyIndex(core uint64) uint64 {
	return k.headIndex(k.bucketOf(core)) + cellsPerHead + k.slotOf(core)
}

func (k *Keys) readHead(headIdx uint64) uint64 {
	var limbs [4]uint16
	copy(limbs[:], k.data[headIdx:headIdx+cellsPerHead])
	return DecodeHeadLimbs(limbs)
}

func (k *Keys) writeHead(headIdx uint64, v uint64) {
	limbs := EncodeHeadLimbs(v)
	copy(k.data[headIdx:headIdx+cellsPerHead], limbs[:])
}

// CountInc increments the occurrence count for canonical core c. It must
// only be called while Keys is in the building (pre-Seal) state.
//
// CountInc returns a *CountOverflowError if c has already been observed
// 65535 times: one more occurrence cannot be represented in a 16-bit cell,
// and continuing would silently wrap.
func (k *Keys) CountInc(c uint64) error {
	if k.state != keysBuilding {
		preconditionf("CountInc called after Seal")
	}
	idx := k.keyIndex(c)
	if k.data[idx] == math.MaxUint16 {
		return &CountOverflowError{Core: c}
	}
	k.data[idx]++
	return nil
}

// Seal transitions Keys from Counted to Sealed: it walks every core in
// canonical order, turning per-core occurrence counts into per-bucket
// prefix-sum offsets, and writes each bucket's base Values offset into its
// head. header threshold h determines how many of a region's cells are
// reserved for the flanking-sequence header, per headerCells.
//
// Seal must be called exactly once.
func (k *Keys) Seal(h int) {
	if k.state != keysBuilding {
		preconditionf("Seal called twice")
	}

	const noBlock = ^uint64(0)
	blockIndex := noBlock
	runningVindex := uint64(0)
	blockVindex := uint64(0)

	numCores := k.params.NumCores()
	for c := uint64(0); c < numCores; c++ {
		ckmerBlockIndex := k.headIndex(k.bucketOf(c))
		if blockIndex != ckmerBlockIndex {
			blockIndex = ckmerBlockIndex
			runningVindex += blockVindex
			k.writeHead(blockIndex, runningVindex)
			blockVindex = 0
		}
		idx := k.keyIndex(c)
		cnt := uint64(k.data[idx])
		k.data[idx] = uint16(blockVindex)
		add := cnt
		if cnt > uint64(h) {
			add += headerCells(cnt)
		}
		blockVindex += add
	}
	trailingHead := uint64(len(k.data)) - cellsPerHead
	runningVindex += blockVindex
	k.writeHead(trailingHead, runningVindex)

	k.state = keysSealed
}

// Range returns the [start, end) region of the Values array belonging to
// canonical core c. Keys must be Sealed. start == end iff c was never
// observed.
func (k *Keys) Range(c uint64) (start, end uint64) {
	if k.state != keysSealed {
		preconditionf("Range called before Seal")
	}
	bucket := k.bucketOf(c)
	slot := k.slotOf(c)
	hi := k.headIndex(bucket)
	ki := hi + cellsPerHead + slot

	base := k.readHead(hi)
	off := uint64(k.data[ki])

	var endOff uint64
	if slot < uint64(k.params.B-1) {
		endOff = uint64(k.data[ki+1])
	} else {
		nextHi := hi + cellsPerHead + uint64(k.params.B)
		endOff = k.readHead(nextHi) - base
	}

	if off > endOff {
		preconditionf("core %d has start offset %d greater than end offset %d", c, off, endOff)
	}
	return base + off, base + endOff
}

// ValuesSize returns the grand total length of the Values array, read from
// the trailing head. Keys must be Sealed.
func (k *Keys) ValuesSize() uint64 {
	if k.state != keysSealed {
		preconditionf("ValuesSize called before Seal")
	}
	trailingHead := uint64(len(k.data)) - cellsPerHead
	return k.readHead(trailingHead)
}

// Raw exposes the backing cell array for serialization. The core does not
// encode it to disk itself; that is a persistence package's job.
func (k *Keys) Raw() []uint16 { return k.data }

// KeysFromRaw reconstructs a Sealed Keys table from a raw cell array
// previously obtained from Raw, e.g. after deserializing it from disk.
// data's length must match keysTableSize(params); the caller is
// responsible for having validated the blob's integrity.
func KeysFromRaw(params Params, data []uint16) *Keys {
	if uint64(len(data)) != keysTableSize(params) {
		preconditionf("KeysFromRaw: data has %d cells, want %d for these params", len(data), keysTableSize(params))
	}
	return &Keys{params: params, data: data, state: keysSealed}
}
