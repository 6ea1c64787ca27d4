package flexmapfile

import (
	"bytes"
	"testing"

	"github.com/grailbio/flexmap/flexmap"
	"github.com/grailbio/flexmap/kmer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct{ seq kmer.Sequence }

func (r testRecord) Name() string        { return r.seq.Name() }
func (r testRecord) ValidExtended() bool { return r.seq.ValidExtended() }
func (r testRecord) Kmerizer(k int) flexmap.KmerIterator {
	return r.seq.Kmerizer(k)
}

type testSource struct {
	records []testRecord
	idx     int
}

func (s *testSource) Scan() bool {
	if s.idx >= len(s.records) {
		return false
	}
	s.idx++
	return true
}
func (s *testSource) Record() flexmap.Record { return s.records[s.idx-1] }
func (s *testSource) Err() error             { return nil }

func newSource(seq string) *testSource {
	return &testSource{records: []testRecord{{kmer.Sequence{SeqName: "r", Bases: seq}}}}
}

func TestWriteReadRoundTrip(t *testing.T) {
	params := flexmap.Params{C: 3, F: 0, B: 8, H: 2, PosBits: 20, ValBits: 40}
	built, err := flexmap.NewBuilder(params).Build(newSource("ACACACAC"), newSource("ACACACAC"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, built))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, params, got.Params())

	region, ok := got.Get(4)
	require.True(t, ok, "Get(4): not found after round trip")
	seen := map[uint64]bool{}
	for i := 0; i < region.Len(); i++ {
		_, pos, ok := region.Position(i, params.PosBits, params.ValBits)
		if ok {
			seen[pos] = true
		}
	}
	for _, want := range []uint64{0, 2, 4} {
		assert.True(t, seen[want], "position %d missing after round trip", want)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("nope")))
	assert.Error(t, err)
}

func TestReadRejectsCorruptedChecksum(t *testing.T) {
	params := flexmap.Params{C: 2, F: 0, B: 4, H: 2, PosBits: 20, ValBits: 40}
	built, err := flexmap.NewBuilder(params).Build(newSource("ACGTACGT"), newSource("ACGTACGT"))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, built))
	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF // corrupt the tail of the compressed values block
	_, err = Read(bytes.NewReader(data))
	assert.Error(t, err)
}
