package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testProv = Provenance{ItemID: "item-1", PartyChallanNumber: "CH-9", ChallanDate: "2026-01-05"}

func TestAddCreatesEntryWithProvenance(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)

	entry, ok := l.Find("TN-1", "g-1")
	require.True(t, ok)
	require.Equal(t, "item-1", entry.ItemID)
	require.Equal(t, "CH-9", entry.PartyChallanNumber)
	require.Equal(t, []StockLine{{Color: "Red", Size: "L", Quantity: 5}}, entry.Stock)
}

func TestAddMergesIntoExistingLine(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)
	l, err = l.Add("TN-1", "g-1", "Red", "L", 3, testProv)
	require.NoError(t, err)

	require.Equal(t, 8, l.Available("TN-1", "g-1", "Red", "L"))
	entry, _ := l.Find("TN-1", "g-1")
	require.Len(t, entry.Stock, 1)
}

func TestAddDistinguishesColorSizePairs(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)
	l, err = l.Add("TN-1", "g-1", "Red", "M", 2, testProv)
	require.NoError(t, err)
	l, err = l.Add("TN-1", "g-1", "Blue", "L", 1, testProv)
	require.NoError(t, err)

	entry, _ := l.Find("TN-1", "g-1")
	require.Len(t, entry.Stock, 3)
	require.Equal(t, 5, l.Available("TN-1", "g-1", "Red", "L"))
	require.Equal(t, 2, l.Available("TN-1", "g-1", "Red", "M"))
	require.Equal(t, 1, l.Available("TN-1", "g-1", "Blue", "L"))
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	_, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 0, testProv)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = Ledger{}.Add("TN-1", "g-1", "Red", "L", -2, testProv)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSubtractPrunesZeroLinesAndEmptyEntries(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)
	l, err = l.Add("TN-1", "g-1", "Blue", "M", 2, testProv)
	require.NoError(t, err)

	l, err = l.Subtract("TN-1", "g-1", "Blue", "M", 2)
	require.NoError(t, err)
	entry, ok := l.Find("TN-1", "g-1")
	require.True(t, ok)
	require.Len(t, entry.Stock, 1)

	l, err = l.Subtract("TN-1", "g-1", "Red", "L", 5)
	require.NoError(t, err)
	_, ok = l.Find("TN-1", "g-1")
	require.False(t, ok)
	require.Empty(t, l)
}

func TestSubtractInsufficientStock(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)

	_, err = l.Subtract("TN-1", "g-1", "Red", "L", 6)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// A missing line and a missing entry read the same as zero stock.
	_, err = l.Subtract("TN-1", "g-1", "Green", "L", 1)
	require.ErrorIs(t, err, ErrInsufficientStock)
	_, err = l.Subtract("TN-2", "g-1", "Red", "L", 1)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	base, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)

	grown, err := base.Add("TN-1", "g-1", "Red", "L", 3, testProv)
	require.NoError(t, err)
	shrunk, err := base.Subtract("TN-1", "g-1", "Red", "L", 2)
	require.NoError(t, err)

	require.Equal(t, 5, base.Available("TN-1", "g-1", "Red", "L"))
	require.Equal(t, 8, grown.Available("TN-1", "g-1", "Red", "L"))
	require.Equal(t, 3, shrunk.Available("TN-1", "g-1", "Red", "L"))
}

func TestProvenanceForFindsSiblingEntry(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)

	prov, ok := l.ProvenanceFor("TN-1")
	require.True(t, ok)
	require.Equal(t, testProv, prov)

	_, ok = l.ProvenanceFor("TN-404")
	require.False(t, ok)
}

func TestEntriesForTrackingAndTotals(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)
	l, err = l.Add("TN-1", "g-2", "Red", "M", 4, testProv)
	require.NoError(t, err)
	l, err = l.Add("TN-2", "g-1", "Blue", "S", 9, testProv)
	require.NoError(t, err)

	entries := l.EntriesForTracking("TN-1")
	require.Len(t, entries, 2)

	total := 0
	for _, e := range entries {
		total += e.TotalQuantity()
	}
	require.Equal(t, 9, total)
	require.True(t, l.HasTracking("TN-2"))
	require.False(t, l.HasTracking("TN-3"))
}

func TestCloneIsDeep(t *testing.T) {
	l, err := Ledger{}.Add("TN-1", "g-1", "Red", "L", 5, testProv)
	require.NoError(t, err)

	cp := l.Clone()
	cp[0].Stock[0].Quantity = 99
	require.Equal(t, 5, l.Available("TN-1", "g-1", "Red", "L"))
}
