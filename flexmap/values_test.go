package flexmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesNoHeaderRegion(t *testing.T) {
	const h = 2
	values := NewValues(10, h)
	view := values.ViewMut(3, 5) // length 2, <= h: no header
	require.False(t, view.HasHeader(), "region of length <= H should have no header")
	require.Equal(t, 2, view.Len())

	Insert(view, Pack(1, 42, 20, 40), 0)
	Insert(view, Pack(1, 99, 20, 40), 0)

	view = values.View(3, 5)
	val, pos, ok := view.Position(0, 20, 40)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), val)
	assert.Equal(t, uint64(42), pos)
	val, pos, ok = view.Position(1, 20, 40)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), val)
	assert.Equal(t, uint64(99), pos)
}

func TestValuesHeaderThresholdCrossed(t *testing.T) {
	// C=2, B=4, H=2: a core observed 5 times gets a region of length
	// 5 + headerCells(5) = 8, split 3 header / 5 position cells (two
	// 32-bit flank entries per header cell).
	const h = 2
	const cnt = 5
	hdr := headerCells(cnt)
	require.Equal(t, uint64(3), hdr)
	length := cnt + hdr
	require.Equal(t, uint64(8), length)

	values := NewValues(length, h)
	view := values.ViewMut(0, length)
	require.True(t, view.HasHeader(), "region of length 8 > H should have a header")
	require.Equal(t, 5, view.Len())

	flanks := []uint32{0x1111, 0x2222, 0x3333, 0x4444, 0x5555}
	for i, f := range flanks {
		Insert(view, Pack(1, uint64(i), 20, 40), f)
	}
	view = values.View(0, length)
	for i, want := range flanks {
		assert.Equal(t, want, view.Flank(i), "Flank(%d)", i)
		_, pos, ok := view.Position(i, 20, 40)
		assert.True(t, ok)
		assert.Equal(t, uint64(i), pos)
	}
}

func TestValuesFlankFillsRegionWithoutOverrun(t *testing.T) {
	// A region whose occurrence count is odd (cnt=5 above) still exercises
	// every header cell: the 5th flank (i=4) lands in the last header
	// cell's low half, the cell a two-per-cell/three-per-cell sizing
	// mismatch would run off the end of.
	const h = 2
	const cnt = 5
	hdr := headerCells(cnt)
	length := cnt + hdr
	values := NewValues(length, h)
	view := values.ViewMut(0, length)
	for i := 0; i < cnt; i++ {
		Insert(view, Pack(1, uint64(i), 20, 40), uint32(i))
	}
	view = values.View(0, length)
	for i := 0; i < cnt; i++ {
		assert.Equal(t, uint32(i), view.Flank(i), "Flank(%d)", i)
	}
}

func TestValuesEmptyRegion(t *testing.T) {
	values := NewValues(4, 2)
	view := values.View(1, 1)
	assert.False(t, view.HasHeader())
	assert.Equal(t, 0, view.Len())
}

func TestValuesInsertSkipsOccupiedSlots(t *testing.T) {
	values := NewValues(3, 3) // length 3 <= h: no header, three position slots
	view := values.ViewMut(0, 3)
	Insert(view, Pack(1, 1, 20, 40), 0)
	Insert(view, Pack(1, 2, 20, 40), 0)
	Insert(view, Pack(1, 3, 20, 40), 0)

	seen := map[uint64]bool{}
	for i := 0; i < view.Len(); i++ {
		_, pos, ok := view.Position(i, 20, 40)
		require.True(t, ok, "slot %d unexpectedly empty", i)
		seen[pos] = true
	}
	for _, want := range []uint64{1, 2, 3} {
		assert.True(t, seen[want], "position %d missing from region", want)
	}
}

func TestValuesInsertDropsWhenFull(t *testing.T) {
	// A fourth insert into an already-full 3-cell region is silently
	// dropped; it must not panic or corrupt neighboring cells.
	values := NewValues(4, 3) // length 3 <= h: no header, three position slots
	view := values.ViewMut(0, 3)
	for i := 0; i < 3; i++ {
		Insert(view, Pack(1, uint64(i+1), 20, 40), 0)
	}
	Insert(view, Pack(1, 999, 20, 40), 0) // dropped: no empty slot

	sentinel := values.View(3, 4)
	_, _, ok := sentinel.Position(0, 20, 40)
	assert.False(t, ok, "insert past a full region corrupted the next region's cell")
}
