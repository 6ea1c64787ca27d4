// Package refcoord maps a flat position in the concatenation of a
// reference's contigs back to a contig name and local offset. The core
// itself is unaware of contigs: Builder stores each record's k-mers at
// record-relative positions, not flat ones, so the pos field of a value
// cell is already a local offset within its record. This table is the Go
// counterpart of the source's reference2id/id2reference maps built
// alongside the keyed table.
package refcoord

import (
	"github.com/biogo/store/llrb"
	"github.com/pkg/errors"
)

// boundary is one contig's starting flat offset, ordered so llrb.Tree can
// answer "which contig owns this position" with a single Floor query.
type boundary struct {
	start int64
	name  string
	id    int
}

func (b boundary) Compare(other llrb.Comparable) int {
	o := other.(boundary)
	switch {
	case b.start < o.start:
		return -1
	case b.start > o.start:
		return 1
	default:
		return 0
	}
}

// Table maps flat positions to (contig name, local offset). Build it once
// by calling Add for every contig in the order records were streamed to
// flexmap.Builder, then Freeze before any Lookup.
type Table struct {
	tree    llrb.Tree
	names   []string
	lengths []int64
	total   int64
	frozen  bool
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// Add appends a contig of the given length, assigning it the next flat
// offset range [total, total+length). Contigs must be added in the same
// order their records were streamed into the builder. Add panics if
// called after Freeze.
func (t *Table) Add(name string, length int64) {
	if t.frozen {
		panic("refcoord: Add called after Freeze")
	}
	id := len(t.names)
	t.tree.Insert(boundary{start: t.total, name: name, id: id})
	t.names = append(t.names, name)
	t.lengths = append(t.lengths, length)
	t.total += length
}

// Freeze finalizes the table. It must be called before Lookup.
func (t *Table) Freeze() { t.frozen = true }

// Lookup returns the contig name and 0-based local offset for flat
// position pos, or an error if pos falls outside every contig added.
func (t *Table) Lookup(pos int64) (name string, offset int64, err error) {
	if !t.frozen {
		panic("refcoord: Lookup called before Freeze")
	}
	if pos < 0 || pos >= t.total {
		return "", 0, errors.Errorf("refcoord: position %d outside [0, %d)", pos, t.total)
	}
	c := t.tree.Floor(boundary{start: pos})
	if c == nil {
		return "", 0, errors.Errorf("refcoord: no contig covers position %d", pos)
	}
	b := c.(boundary)
	return b.name, pos - b.start, nil
}

// NumContigs returns how many contigs have been added.
func (t *Table) NumContigs() int { return len(t.names) }

// TotalLength returns the sum of every added contig's length, i.e. the
// exclusive upper bound of valid flat positions.
func (t *Table) TotalLength() int64 { return t.total }
