package flexmap

// RecordSource is the external collaborator that streams reference records
// into a Builder (e.g. a FASTA or FASTQ reader, batched however the caller
// likes). It follows the bufio.Scanner idiom: call Scan until it returns
// false, then check Err.
type RecordSource interface {
	Scan() bool
	Record() Record
	Err() error
}

// Record is a single reference sequence: a name for diagnostics, a validity
// check, and a factory for a position-ordered k-mer iterator over it.
type Record interface {
	Name() string
	// ValidExtended reports whether the record's sequence contains only
	// {A,C,G,T}, case-insensitively, with IUPAC-extended ambiguity codes
	// permitted per the caller's own alphabet policy. A record that fails
	// this check is a fatal build error; the core never inspects bytes
	// itself.
	ValidExtended() bool
	// Kmerizer returns an iterator over every length-k window of the
	// record, in increasing position order.
	Kmerizer(k int) KmerIterator
}

// KmerIterator emits (position, forward, reverseComplement) triples for
// every length-K window of a record, 2-bit packed, in position order. Scan
// must be called before the first Pos/Forward/ReverseComplement.
type KmerIterator interface {
	Scan() bool
	Pos() int
	Forward() uint64
	ReverseComplement() uint64
}

// Builder drives the two-pass construction: a counting pass followed by a
// pass 1 counts canonical core occurrences, Seal converts counts to
// offsets, and pass 2 re-streams the same records to populate Values.
//
// Build runs pass 1, Seal and pass 2 in that order, allocating Values only
// once Keys.ValuesSize is known; the two passes are not exported as
// separate methods.
type Builder struct {
	params Params
}

// NewBuilder returns a Builder for the given parameters. params must
// already have passed Validate.
func NewBuilder(params Params) *Builder {
	return &Builder{params: params}
}

// Build runs pass 1 over pass1 and pass 2 over pass2, returning a Frozen,
// query-ready Index. pass1 and pass2 must yield an identical sequence of
// records, in an identical order -- the simplest way to guarantee this is
// to back both by something re-scannable from the start, e.g. the same
// file opened twice.
func (b *Builder) Build(pass1, pass2 RecordSource) (*Index, error) {
	keys := NewKeys(b.params)
	if err := b.pass1(keys, pass1); err != nil {
		return nil, err
	}
	keys.Seal(b.params.H)
	values := NewValues(keys.ValuesSize(), b.params.H)
	if err := b.pass2(keys, values, pass2); err != nil {
		return nil, err
	}
	return &Index{params: b.params, keys: keys, values: values}, nil
}

// pass1 streams source once, counting the occurrences of each canonical
// core. A record that fails ValidExtended or a core counted past 65535
// aborts the build: there is no local retry.
func (b *Builder) pass1(keys *Keys, source RecordSource) error {
	for source.Scan() {
		record := source.Record()
		if !record.ValidExtended() {
			return &InvalidRecordError{RecordName: record.Name()}
		}
		it := record.Kmerizer(b.params.K())
		for it.Scan() {
			kmer := Canonical(it.Forward(), it.ReverseComplement())
			core := Core(kmer, b.params.C, b.params.F)
			if err := keys.CountInc(core); err != nil {
				return err
			}
		}
	}
	return source.Err()
}

// pass2 re-streams source, inserting each occurrence's (value, position)
// payload and flank packing into its core's region. source must visit
// records and positions in the same order pass1 did.
func (b *Builder) pass2(keys *Keys, values *Values, source RecordSource) error {
	for source.Scan() {
		record := source.Record()
		if !record.ValidExtended() {
			return &InvalidRecordError{RecordName: record.Name()}
		}
		it := record.Kmerizer(b.params.K())
		for it.Scan() {
			forward, rc := it.Forward(), it.ReverseComplement()
			kmer := Canonical(forward, rc)
			core := Core(kmer, b.params.C, b.params.F)
			flank := Flanks(kmer, b.params.C, b.params.F)

			start, end := keys.Range(core)
			view := values.ViewMut(start, end)
			payload := Pack(1, uint64(it.Pos()), b.params.PosBits, b.params.ValBits)
			Insert(view, payload, flank)
		}
	}
	return source.Err()
}
