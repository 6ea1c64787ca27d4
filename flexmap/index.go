package flexmap

import "github.com/pkg/errors"

// Index bundles a Sealed Keys table with its populated Values array into
// the read-only, query-ready structure. An Index returned by Builder.Build
// is already Frozen: safe for concurrent reads from multiple goroutines,
// and never mutated again.
type Index struct {
	params Params
	keys   *Keys
	values *Values
}

// Params returns the parameters the index was built with.
func (ix *Index) Params() Params { return ix.params }

// Get returns the region view for canonical core c, and false if c was
// never observed (an empty region). The returned Region aliases the
// index's backing Values array and must not outlive it.
func (ix *Index) Get(core uint64) (Region, bool) {
	start, end := ix.keys.Range(core)
	if start == end {
		return Region{}, false
	}
	return ix.values.View(start, end), true
}

// ValuesSize returns the grand total length of the index's Values array.
func (ix *Index) ValuesSize() uint64 { return ix.keys.ValuesSize() }

// KeysBytes exposes the raw Keys cell array, for persistence.
func (ix *Index) KeysBytes() []uint16 { return ix.keys.Raw() }

// ValuesBytes exposes the raw Values cell array, for persistence.
func (ix *Index) ValuesBytes() []uint64 { return ix.values.Raw() }

// FromBytes reconstructs a Frozen Index from raw Keys and Values cell
// arrays, as produced by KeysBytes/ValuesBytes and round-tripped through a
// persistence format. params must be the same parameters the arrays were
// built with; FromBytes does not re-derive them.
func FromBytes(params Params, keysData []uint16, valuesData []uint64) (*Index, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "flexmap: FromBytes")
	}
	keys := KeysFromRaw(params, keysData)
	if uint64(len(valuesData)) != keys.ValuesSize() {
		return nil, errors.Errorf("flexmap: FromBytes: values array has %d cells, want %d", len(valuesData), keys.ValuesSize())
	}
	values := ValuesFromRaw(valuesData, params.H)
	return &Index{params: params, keys: keys, values: values}, nil
}
