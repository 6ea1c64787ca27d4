package fasta

import (
	"github.com/grailbio/flexmap/flexmap"
	"github.com/grailbio/flexmap/kmer"
)

// Source adapts a Fasta into a flexmap.RecordSource, streaming each
// sequence once, in SeqNames order, so that a Builder's two passes see
// records in the same order both times.
type Source struct {
	fasta Fasta
	names []string
	idx   int
	cur   record
	err   error
}

// NewSource returns a Source over every sequence in f, re-scanning from
// the beginning. Build two Sources (or call NewSource twice) to give a
// Builder independent pass-1 and pass-2 streams.
func NewSource(f Fasta) *Source {
	return &Source{fasta: f, names: f.SeqNames()}
}

// Scan advances to the next sequence, returning false at end of stream or
// on the first error (check Err).
func (s *Source) Scan() bool {
	if s.err != nil || s.idx >= len(s.names) {
		return false
	}
	name := s.names[s.idx]
	s.idx++
	n, err := s.fasta.Len(name)
	if err != nil {
		s.err = err
		return false
	}
	seq, err := s.fasta.Get(name, 0, n)
	if err != nil {
		s.err = err
		return false
	}
	s.cur = record{kmer.Sequence{SeqName: name, Bases: seq}}
	return true
}

// Record returns the current sequence as a flexmap.Record.
func (s *Source) Record() flexmap.Record { return s.cur }

// Err returns the first error encountered, if any.
func (s *Source) Err() error { return s.err }

// record adapts kmer.Sequence to flexmap.Record: the method set matches,
// but Kmerizer's return type has to be spelled out as flexmap.KmerIterator
// for the interface to be satisfied, which kmer itself cannot do without
// importing flexmap and inverting the external-collaborator relationship
// the design calls for.
type record struct {
	seq kmer.Sequence
}

func (r record) Name() string          { return r.seq.Name() }
func (r record) ValidExtended() bool   { return r.seq.ValidExtended() }
func (r record) Kmerizer(k int) flexmap.KmerIterator {
	return r.seq.Kmerizer(k)
}
