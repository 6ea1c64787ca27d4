// Package flexmapfile serializes a built flexmap.Index to and from a
// single blob: the format version, the Params that describe its layout,
// and the two backing arrays. It lives outside package flexmap, keeping
// the core data structure separate from its on-disk encoding.
package flexmapfile

import (
	"bufio"
	"encoding/binary"
	"io"

	farm "github.com/dgryski/go-farm"
	"github.com/golang/snappy"
	"github.com/grailbio/flexmap/flexmap"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// formatVersion is bumped whenever the on-disk layout changes
// incompatibly.
const formatVersion = 1

// magic identifies a flexmapfile blob before any version-specific parsing.
var magic = [4]byte{'F', 'l', 'X', 'M'}

// Write serializes idx to w: a magic/version header, the Params, a
// checksum of the two arrays, then the Keys array gzip-compressed and the
// Values array snappy-compressed. Endianness is fixed little-endian
// throughout.
func Write(w io.Writer, idx *flexmap.Index) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return errors.Wrap(err, "flexmapfile: write magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(formatVersion)); err != nil {
		return errors.Wrap(err, "flexmapfile: write version")
	}
	if err := writeParams(bw, idx.Params()); err != nil {
		return err
	}

	keysBytes := uint16sToBytes(idx.KeysBytes())
	valuesBytes := uint64sToBytes(idx.ValuesBytes())

	checksum := blobChecksum(keysBytes, valuesBytes)
	if err := binary.Write(bw, binary.LittleEndian, checksum); err != nil {
		return errors.Wrap(err, "flexmapfile: write checksum")
	}

	if err := writeGzipBlock(bw, keysBytes); err != nil {
		return errors.Wrap(err, "flexmapfile: write keys block")
	}
	if err := writeSnappyBlock(bw, valuesBytes); err != nil {
		return errors.Wrap(err, "flexmapfile: write values block")
	}
	return bw.Flush()
}

func writeParams(w io.Writer, p flexmap.Params) error {
	fields := []int64{
		int64(p.C), int64(p.F), int64(p.B), int64(p.H),
		int64(p.PosBits), int64(p.ValBits),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return errors.Wrap(err, "flexmapfile: write params")
		}
	}
	return nil
}

func readParams(r io.Reader) (flexmap.Params, error) {
	var fields [6]int64
	for i := range fields {
		if err := binary.Read(r, binary.LittleEndian, &fields[i]); err != nil {
			return flexmap.Params{}, errors.Wrap(err, "flexmapfile: read params")
		}
	}
	return flexmap.Params{
		C:       int(fields[0]),
		F:       int(fields[1]),
		B:       int(fields[2]),
		H:       int(fields[3]),
		PosBits: uint(fields[4]),
		ValBits: uint(fields[5]),
	}, nil
}

// blobChecksum hashes the uncompressed keys and values blocks with
// farm.Hash64, the same hash fusion/kmer_index.go uses for its in-memory
// table; it is cheap enough to run over the whole serialized index as a
// corruption check independent of either block's compression codec.
func blobChecksum(keysBytes, valuesBytes []byte) uint64 {
	h := farm.Hash64(keysBytes)
	return farm.Hash64WithSeed(valuesBytes, h)
}

// writeSnappyBlock compresses data with snappy, trading ratio for speed:
// used for the Values block, whose position cells are high-entropy and
// compress poorly under a bigger window anyway.
func writeSnappyBlock(w *bufio.Writer, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return err
	}
	sw := snappy.NewBufferedWriter(w)
	if _, err := sw.Write(data); err != nil {
		return err
	}
	return sw.Close()
}

// writeGzipBlock compresses data with gzip: used for the Keys block, whose
// head offsets and intra-body slot offsets are repetitive enough to benefit
// from gzip's larger window.
func writeGzipBlock(w *bufio.Writer, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return err
	}
	gw := gzip.NewWriter(w)
	if _, err := gw.Write(data); err != nil {
		return err
	}
	return gw.Close()
}

// Read deserializes a blob written by Write, reconstructing Keys and
// Values and checking the stored checksum against the decompressed
// arrays.
func Read(r io.Reader) (*flexmap.Index, error) {
	br := bufio.NewReader(r)
	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, errors.Wrap(err, "flexmapfile: read magic")
	}
	if gotMagic != magic {
		return nil, errors.Errorf("flexmapfile: bad magic %q", gotMagic)
	}
	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "flexmapfile: read version")
	}
	if version != formatVersion {
		return nil, errors.Errorf("flexmapfile: unsupported format version %d", version)
	}
	params, err := readParams(br)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "flexmapfile: invalid params in blob")
	}

	var wantChecksum uint64
	if err := binary.Read(br, binary.LittleEndian, &wantChecksum); err != nil {
		return nil, errors.Wrap(err, "flexmapfile: read checksum")
	}

	keysBytes, err := readGzipBlock(br)
	if err != nil {
		return nil, errors.Wrap(err, "flexmapfile: read keys block")
	}
	valuesBytes, err := readSnappyBlock(br)
	if err != nil {
		return nil, errors.Wrap(err, "flexmapfile: read values block")
	}
	if got := blobChecksum(keysBytes, valuesBytes); got != wantChecksum {
		return nil, errors.Errorf("flexmapfile: checksum mismatch: got %#x, want %#x", got, wantChecksum)
	}

	return flexmap.FromBytes(params, bytesToUint16s(keysBytes), bytesToUint64s(valuesBytes))
}

func readSnappyBlock(r *bufio.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	sr := snappy.NewReader(r)
	buf := make([]byte, n)
	if _, err := io.ReadFull(sr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readGzipBlock(r *bufio.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	buf := make([]byte, n)
	if _, err := io.ReadFull(gr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func uint16sToBytes(cells []uint16) []byte {
	out := make([]byte, len(cells)*2)
	for i, c := range cells {
		binary.LittleEndian.PutUint16(out[i*2:], c)
	}
	return out
}

func bytesToUint16s(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out
}

func uint64sToBytes(cells []uint64) []byte {
	out := make([]byte, len(cells)*8)
	for i, c := range cells {
		binary.LittleEndian.PutUint64(out[i*8:], c)
	}
	return out
}

func bytesToUint64s(b []byte) []uint64 {
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return out
}
