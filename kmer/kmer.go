package kmer

// This file generalizes fusion/kmer.go's kmerizer from a compile-time K to
// a runtime window length, and adds an IUPAC-ambiguity-aware validity
// check at the sequence level (the original only ever saw clean ACGT
// reference FASTA).

const invalidBase = uint8(255)

var forwardBits [256]uint8
var reverseComplementBits [256]uint8

// iupacAmbiguous holds the IUPAC extended nucleotide codes beyond A, C, G,
// T: these are valid symbols in a sequence (not corrupt input) but cannot
// be 2-bit encoded, so the k-mer window scanner skips over them.
const iupacAmbiguous = "NRYSWKMBDHVnryswkmbdhv"

func init() {
	for i := range forwardBits {
		forwardBits[i] = invalidBase
		reverseComplementBits[i] = invalidBase
	}
	set := func(base byte, fwd, rc uint8) {
		forwardBits[base] = fwd
		reverseComplementBits[base] = rc
	}
	set('A', 0, 3)
	set('a', 0, 3)
	set('C', 1, 2)
	set('c', 1, 2)
	set('G', 2, 1)
	set('g', 2, 1)
	set('T', 3, 0)
	set('t', 3, 0)
}

// Sequence is a single named nucleotide record. Name and Bases are
// supplied by the caller; fasta.Source and fastq.Source construct these
// from their own parsed entries and wrap them to satisfy flexmap.Record.
type Sequence struct {
	SeqName string
	Bases   string
}

// Name returns the record's name, for diagnostics.
func (s Sequence) Name() string { return s.SeqName }

// ValidExtended reports whether Bases contains only {A,C,G,T} and the
// IUPAC ambiguity codes, case-insensitively. A sequence that is valid here
// may still contribute zero k-mers if it is entirely ambiguous: the
// per-window scanner (not this check) is what excludes ambiguous bases
// from indexing.
func (s Sequence) ValidExtended() bool {
	for i := 0; i < len(s.Bases); i++ {
		ch := s.Bases[i]
		if forwardBits[ch] != invalidBase {
			continue
		}
		if indexByte(iupacAmbiguous, ch) < 0 {
			return false
		}
	}
	return true
}

// Kmerizer returns a window scanner over Bases with window length k.
func (s Sequence) Kmerizer(k int) *Kmerizer {
	return newKmerizer(s.Bases, k)
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Kmerizer scans a nucleotide sequence for every length-k window that
// contains no ambiguous base, emitting the window's position and its
// forward and reverse-complement 2-bit encodings. It implements
// flexmap.KmerIterator.
//
// The scan is incremental in the common case: extending the previous
// window by one base updates both encodings in constant time. On hitting
// an invalid base it falls back to re-deriving the window from scratch at
// the next valid start, the same two-speed strategy fusion's kmerizer
// uses.
type Kmerizer struct {
	k    int
	mask uint64

	seq string
	si  int

	pos                       int
	forward, reverseComplement uint64
	valid                     bool
}

func newKmerizer(seq string, k int) *Kmerizer {
	return &Kmerizer{
		seq:  seq,
		k:    k,
		mask: ^(uint64(0xffffffffffffffff) << uint(k*2)),
	}
}

// Scan advances to the next valid window, returning false once no window
// of length k remains.
func (it *Kmerizer) Scan() bool {
	if it.valid && it.si+it.k <= len(it.seq) {
		nextCh := it.seq[it.si+it.k-1]
		bits := forwardBits[nextCh]
		if bits != invalidBase {
			it.pos = it.si
			it.forward = ((it.forward << 2) | uint64(bits)) & it.mask
			shift := uint(it.k-1) * 2
			it.reverseComplement = (it.reverseComplement >> 2) | (uint64(reverseComplementBits[nextCh]) << shift)
			it.si++
			return true
		}
		it.valid = false
	}

	for it.si+it.k <= len(it.seq) {
		window := it.seq[it.si : it.si+it.k]
		fwd, rc, ok := encodeWindow(window)
		if !ok {
			it.si = nextAmbiguousEnd(it.seq, it.si) + 1
			continue
		}
		it.pos = it.si
		it.forward = fwd
		it.reverseComplement = rc
		it.valid = true
		it.si++
		return true
	}
	return false
}

// Pos returns the 0-based start position of the current window.
func (it *Kmerizer) Pos() int { return it.pos }

// Forward returns the current window's forward 2-bit encoding.
func (it *Kmerizer) Forward() uint64 { return it.forward }

// ReverseComplement returns the current window's reverse-complement
// 2-bit encoding.
func (it *Kmerizer) ReverseComplement() uint64 { return it.reverseComplement }

func encodeWindow(window string) (forward, reverseComplement uint64, ok bool) {
	k := len(window)
	for i := 0; i < k; i++ {
		fb := forwardBits[window[i]]
		if fb == invalidBase {
			return 0, 0, false
		}
		forward = (forward << 2) | uint64(fb)
		rb := reverseComplementBits[window[k-1-i]]
		reverseComplement = (reverseComplement << 2) | uint64(rb)
	}
	return forward, reverseComplement, true
}

func nextAmbiguousEnd(seq string, from int) int {
	for i := from; i < len(seq); i++ {
		if forwardBits[seq[i]] == invalidBase {
			return i
		}
	}
	return len(seq)
}
