package flexmap

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Params bundles the dimensions that size and shape an Index: ordinary
// struct fields validated once at construction time, the way fusion.Opts
// turns kmerizer's const generic K into a runtime field checked in
// newKmerizer.
type Params struct {
	// C is the core length in nucleotides: the exact-match key. The key
	// universe has 4^C slots. Values above ~15 make the Keys table
	// impractically large.
	C int
	// F is the total flanking length in nucleotides, split evenly left and
	// right of the core. The full k-mer length is K = C + F.
	F int
	// B is the number of key slots per body. Must be a power of two.
	B int
	// H is the header threshold: regions with strictly more than H
	// occurrences carry a flanking-sequence header.
	H int
	// PosBits is the number of low bits of a value cell's 60-bit payload
	// used for the position field.
	PosBits uint
	// ValBits is the number of high bits of a value cell's 60-bit payload
	// used for the value (weight/occurrence-count) field.
	ValBits uint
}

// DefaultParams is the production configuration for whole-genome k-mer
// indexing: a 15-base exact-match core, 16 bases of flanking sequence, 16
// key slots per body, and a header threshold of 2.
var DefaultParams = Params{
	C:       15,
	F:       16,
	B:       16,
	H:       2,
	PosBits: 20,
	ValBits: 40,
}

// K is the full k-mer length, core plus flanks.
func (p Params) K() int { return p.C + p.F }

// NumCores is the size of the core key universe, 4^C.
func (p Params) NumCores() uint64 { return uint64(1) << uint(2*p.C) }

// Validate checks that p describes a constructible index, returning a
// descriptive error otherwise. It is the caller's responsibility to call
// Validate before NewKeys or NewBuilder; a programmer who skips it gets whatever panic the
// invalid parameters eventually trigger, per this package's general
// precondition-is-a-bug policy.
func (p Params) Validate() error {
	if p.C <= 0 {
		return errors.Errorf("flexmap: C must be positive, got %d", p.C)
	}
	if p.C > 15 {
		return errors.Errorf("flexmap: C=%d exceeds the exact-match core's practical limit of 15 (4^C slots)", p.C)
	}
	if p.F < 0 || p.F%2 != 0 {
		return errors.Errorf("flexmap: F must be a non-negative even number, got %d", p.F)
	}
	if p.F > 16 {
		return errors.Errorf("flexmap: F=%d exceeds 16; flanks must fit in 32 bits", p.F)
	}
	if p.B <= 0 || p.B&(p.B-1) != 0 {
		return errors.Errorf("flexmap: B must be a power of two, got %d", p.B)
	}
	if uint64(p.B) > p.NumCores() {
		return errors.Errorf("flexmap: B=%d exceeds the core universe size 4^C=%d", p.B, p.NumCores())
	}
	if p.H < 0 {
		return errors.Errorf("flexmap: H must be non-negative, got %d", p.H)
	}
	if p.H >= 1<<16 {
		return errors.Errorf("flexmap: H=%d is not representable by a 16-bit key cell", p.H)
	}
	if p.PosBits == 0 || p.ValBits == 0 {
		return errors.Errorf("flexmap: PosBits and ValBits must both be positive, got %d and %d", p.PosBits, p.ValBits)
	}
	if p.PosBits+p.ValBits > 60 {
		return errors.Errorf("flexmap: PosBits+ValBits=%d exceeds the 60-bit payload", p.PosBits+p.ValBits)
	}
	return nil
}

// log2B returns log2(B), valid only after Validate has confirmed B is a
// positive power of two.
func (p Params) log2B() uint {
	return uint(bits.TrailingZeros(uint(p.B)))
}
