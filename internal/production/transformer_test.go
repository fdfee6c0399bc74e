package production

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
)

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	r, err := godown.NewResolver([]godown.Godown{
		{ID: "g-main", Name: "Main Godown", Role: godown.RoleIntake},
		{ID: "g-cut", Name: "Cutting WIP", Role: godown.RoleCuttingWIP},
		{ID: "g-sew", Name: "Sewing WIP", Role: godown.RoleSewingWIP},
		{ID: "g-fin", Name: "Finishing WIP", Role: godown.RoleFinishingWIP},
	})
	require.NoError(t, err)
	return NewTransformer(r)
}

func fabricLedger(t *testing.T, kg int) ledger.Ledger {
	t.Helper()
	l, err := ledger.Ledger{}.Add("TN-1", "g-main", "Navy", "KG", kg, ledger.Provenance{
		ItemID: "item-fabric", PartyChallanNumber: "CH-1", ChallanDate: "2026-01-02",
	})
	require.NoError(t, err)
	return l
}

func TestCuttingConsumesFabricAndProducesPieces(t *testing.T) {
	tr := newTestTransformer(t)
	l := fabricLedger(t, 50)

	next, err := tr.Apply(l, WorkEntry{
		TrackingNumber: "TN-1",
		Type:           StageCutting,
		FabricColor:    "Navy",
		FabricUsedKg:   20,
		OutputItemID:   "item-tshirt",
		OutputStock: []ledger.StockLine{
			{Color: "Navy", Size: "M", Quantity: 40},
			{Color: "Navy", Size: "L", Quantity: 35},
		},
	})
	require.NoError(t, err)

	require.Equal(t, 30, next.Available("TN-1", "g-main", "Navy", "KG"))
	require.Equal(t, 40, next.Available("TN-1", "g-cut", "Navy", "M"))
	require.Equal(t, 35, next.Available("TN-1", "g-cut", "Navy", "L"))

	// Pieces belong to the cut garment item, not the fabric.
	entry, ok := next.Find("TN-1", "g-cut")
	require.True(t, ok)
	require.Equal(t, "item-tshirt", entry.ItemID)
	require.Equal(t, "CH-1", entry.PartyChallanNumber)
}

func TestCuttingInsufficientFabric(t *testing.T) {
	tr := newTestTransformer(t)
	l := fabricLedger(t, 10)

	_, err := tr.Apply(l, WorkEntry{
		TrackingNumber: "TN-1",
		Type:           StageCutting,
		FabricColor:    "Navy",
		FabricUsedKg:   20,
		OutputItemID:   "item-tshirt",
		OutputStock:    []ledger.StockLine{{Color: "Navy", Size: "M", Quantity: 10}},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	require.Equal(t, 10, l.Available("TN-1", "g-main", "Navy", "KG"))
}

func TestSewingDrawsFromOrderedSources(t *testing.T) {
	tr := newTestTransformer(t)
	l, err := ledger.Ledger{}.Add("TN-1", "g-cut", "Navy", "M", 5, ledger.Provenance{ItemID: "item-tshirt"})
	require.NoError(t, err)
	l, err = l.Add("TN-1", "g-sew", "Navy", "M", 3, ledger.Provenance{ItemID: "item-tshirt"})
	require.NoError(t, err)

	next, err := tr.Apply(l, WorkEntry{
		TrackingNumber: "TN-1",
		Type:           StageSewing,
		OperationID:    "op-stitch",
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "M", Quantity: 7}},
	})
	require.NoError(t, err)

	// 5 from cutting WIP first, the remaining 2 from sewing WIP, and the
	// processed 7 land back in sewing WIP on top of the 1 left behind.
	_, ok := next.Find("TN-1", "g-cut")
	require.False(t, ok)
	require.Equal(t, 8, next.Available("TN-1", "g-sew", "Navy", "M"))
}

func TestSewingFailsWhenCombinedSourcesShort(t *testing.T) {
	tr := newTestTransformer(t)
	l, err := ledger.Ledger{}.Add("TN-1", "g-cut", "Navy", "M", 5, ledger.Provenance{ItemID: "item-tshirt"})
	require.NoError(t, err)
	l, err = l.Add("TN-1", "g-sew", "Navy", "M", 3, ledger.Provenance{ItemID: "item-tshirt"})
	require.NoError(t, err)

	_, err = tr.Apply(l, WorkEntry{
		TrackingNumber: "TN-1",
		Type:           StageSewing,
		OperationID:    "op-stitch",
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "M", Quantity: 9}},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	// Failed work leaves both sources untouched.
	require.Equal(t, 5, l.Available("TN-1", "g-cut", "Navy", "M"))
	require.Equal(t, 3, l.Available("TN-1", "g-sew", "Navy", "M"))
}

func TestProcessingIsAllOrNothingAcrossLines(t *testing.T) {
	tr := newTestTransformer(t)
	l, err := ledger.Ledger{}.Add("TN-1", "g-cut", "Navy", "M", 10, ledger.Provenance{ItemID: "item-tshirt"})
	require.NoError(t, err)

	_, err = tr.Apply(l, WorkEntry{
		TrackingNumber: "TN-1",
		Type:           StageSewing,
		OperationID:    "op-stitch",
		ProcessedStock: []ledger.StockLine{
			{Color: "Navy", Size: "M", Quantity: 6},
			{Color: "Navy", Size: "L", Quantity: 1},
		},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	require.Equal(t, 10, l.Available("TN-1", "g-cut", "Navy", "M"))
}

func TestFinishingInheritsProvenanceFromDrawnEntry(t *testing.T) {
	tr := newTestTransformer(t)
	l, err := ledger.Ledger{}.Add("TN-1", "g-sew", "Navy", "M", 4, ledger.Provenance{
		ItemID: "item-tshirt", PartyChallanNumber: "CH-1", ChallanDate: "2026-01-02",
	})
	require.NoError(t, err)

	next, err := tr.Apply(l, WorkEntry{
		TrackingNumber: "TN-1",
		Type:           StageFinishing,
		OperationID:    "op-press",
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "M", Quantity: 4}},
	})
	require.NoError(t, err)

	entry, ok := next.Find("TN-1", "g-fin")
	require.True(t, ok)
	require.Equal(t, "item-tshirt", entry.ItemID)
	require.Equal(t, "CH-1", entry.PartyChallanNumber)
}

func TestApplyConservesTotalQuantityForProcessing(t *testing.T) {
	tr := newTestTransformer(t)
	l, err := ledger.Ledger{}.Add("TN-1", "g-cut", "Navy", "M", 12, ledger.Provenance{ItemID: "item-tshirt"})
	require.NoError(t, err)

	next, err := tr.Apply(l, WorkEntry{
		TrackingNumber: "TN-1",
		Type:           StageSewing,
		OperationID:    "op-stitch",
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "M", Quantity: 5}},
	})
	require.NoError(t, err)

	total := 0
	for _, e := range next.EntriesForTracking("TN-1") {
		total += e.TotalQuantity()
	}
	require.Equal(t, 12, total)
}

func TestApplyRejectsUnknownStageAndEmptyWork(t *testing.T) {
	tr := newTestTransformer(t)

	_, err := tr.Apply(ledger.Ledger{}, WorkEntry{TrackingNumber: "TN-1", Type: "PACKING"})
	require.ErrorIs(t, err, ErrUnknownStage)

	_, err = tr.Apply(ledger.Ledger{}, WorkEntry{TrackingNumber: "TN-1", Type: StageSewing})
	require.ErrorIs(t, err, ErrEmptyWork)

	_, err = tr.Apply(ledger.Ledger{}, WorkEntry{TrackingNumber: "TN-1", Type: StageCutting, FabricUsedKg: 5})
	require.ErrorIs(t, err, ErrEmptyWork)
}
