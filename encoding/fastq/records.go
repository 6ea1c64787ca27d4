package fastq

import (
	"github.com/grailbio/flexmap/flexmap"
	"github.com/grailbio/flexmap/kmer"
)

// Source adapts a Scanner into a flexmap.RecordSource, wrapping each read's
// sequence as a record. Unlike a reference FASTA, FASTQ reads are typically
// single-pass; callers that need two passes over the same reads (as
// flexmap.Builder.Build does) should construct two Sources over two
// independent readers of the same underlying data.
type Source struct {
	scanner *Scanner
	cur     record
	err     error
}

// NewSource returns a Source reading IDs and sequences from s. s should
// have been constructed with at least the Seq field (ID is used for
// diagnostics only if also requested).
func NewSource(s *Scanner) *Source {
	return &Source{scanner: s}
}

// Scan reads the next FASTQ record.
func (s *Source) Scan() bool {
	var read Read
	if !s.scanner.Scan(&read) {
		if err := s.scanner.Err(); err != errEOF {
			s.err = err
		}
		return false
	}
	s.cur = record{kmer.Sequence{SeqName: read.ID, Bases: read.Seq}}
	return true
}

// Record returns the current read as a flexmap.Record.
func (s *Source) Record() flexmap.Record { return s.cur }

// Err returns the first error encountered, if any.
func (s *Source) Err() error { return s.err }

type record struct {
	seq kmer.Sequence
}

func (r record) Name() string        { return r.seq.Name() }
func (r record) ValidExtended() bool { return r.seq.ValidExtended() }
func (r record) Kmerizer(k int) flexmap.KmerIterator {
	return r.seq.Kmerizer(k)
}
