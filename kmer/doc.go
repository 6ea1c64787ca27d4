// Package kmer canonicalizes a nucleotide sequence into a stream of
// 2-bit-packed k-mer windows. It is the external collaborator flexmap.
// Builder pulls records from: Kmerizer satisfies flexmap.KmerIterator, and
// Sequence has flexmap.Record's methods except that its Kmerizer returns
// *Kmerizer, so consumers wrap it in a small adapter to obtain a
// flexmap.Record.
package kmer
