package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/orders"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/shared"
	"github.com/loomline-erp/loomline-erp/internal/state"
	"github.com/loomline-erp/loomline-erp/internal/stocktx"
)

type memStore struct {
	saves    []state.Snapshot
	failNext bool
}

func (s *memStore) Load(ctx context.Context) (state.Snapshot, bool, error) {
	if len(s.saves) == 0 {
		return state.Snapshot{}, false, nil
	}
	return s.saves[len(s.saves)-1], true, nil
}

func (s *memStore) Save(ctx context.Context, snap state.Snapshot) error {
	if s.failNext {
		s.failNext = false
		return errors.New("store down")
	}
	s.saves = append(s.saves, snap)
	return nil
}

type memAudit struct {
	actions []string
}

func (a *memAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

type memIdem struct {
	keys map[string]bool
}

func (i *memIdem) CheckAndInsert(ctx context.Context, key, module string) error {
	if i.keys == nil {
		i.keys = map[string]bool{}
	}
	if i.keys[module+":"+key] {
		return shared.ErrIdempotencyConflict
	}
	i.keys[module+":"+key] = true
	return nil
}

func (i *memIdem) Delete(ctx context.Context, key string) error {
	for k := range i.keys {
		if strings.HasSuffix(k, ":"+key) {
			delete(i.keys, k)
		}
	}
	return nil
}

func seededEngine(t *testing.T, deps Deps) *Engine {
	t.Helper()
	n := 0
	snap := state.Seed(func() string { n++; return fmt.Sprintf("seed-%d", n) })
	if deps.Store == nil {
		deps.Store = &memStore{}
	}
	e, err := New(snap, deps)
	require.NoError(t, err)
	return e
}

func intakeGodownID(t *testing.T, e *Engine) string {
	t.Helper()
	for _, g := range e.Snapshot().Godowns {
		if g.Role == godown.RoleIntake {
			return g.ID
		}
	}
	t.Fatal("no intake godown in seed")
	return ""
}

func wipGodownID(t *testing.T, e *Engine, role godown.Role) string {
	t.Helper()
	for _, g := range e.Snapshot().Godowns {
		if g.Role == role {
			return g.ID
		}
	}
	t.Fatalf("no godown for role %s", role)
	return ""
}

func receiveFabric(t *testing.T, e *Engine, tn string, kg int) orders.PurchaseOrder {
	t.Helper()
	ctx := context.Background()

	item, err := e.CreateItem(ctx, "tester", masterdata.Item{
		Name:   "Raw Fabric",
		Colors: []masterdata.ItemColor{{Name: "Navy", Sizes: []masterdata.ItemSize{{Name: "KG"}}}},
	})
	require.NoError(t, err)
	vendor, err := e.CreateVendor(ctx, "tester", masterdata.Vendor{Name: "Mill House"})
	require.NoError(t, err)

	po, err := e.CreatePurchaseOrder(ctx, "tester", orders.PurchaseOrder{
		OrderNumber:        "PO-" + tn,
		VendorID:           vendor.ID,
		OrderDate:          "2026-03-01",
		TrackingNumber:     tn,
		PartyChallanNumber: "CH-" + tn,
		ItemID:             item.ID,
		GodownID:           intakeGodownID(t, e),
		Items:              []orders.OrderItem{{Color: "Navy", Size: "KG", Quantity: kg, Rate: 5}},
		Status:             orders.PurchaseStatusReceived,
	})
	require.NoError(t, err)
	return po
}

func TestFullProductionPipeline(t *testing.T) {
	store := &memStore{}
	audit := &memAudit{}
	e := seededEngine(t, Deps{Store: store, Audit: audit})
	ctx := context.Background()

	receiveFabric(t, e, "TN-500", 100)
	intake := intakeGodownID(t, e)
	require.Equal(t, 100, e.Snapshot().Ledger.Available("TN-500", intake, "Navy", "KG"))

	// Cutting defines its output garment inline.
	cut, err := e.RecordWorkEntry(ctx, "cutter", production.WorkEntry{
		Date:           "2026-03-02",
		TrackingNumber: "TN-500",
		Type:           production.StageCutting,
		FabricColor:    "Navy",
		FabricUsedKg:   40,
		OutputStock: []ledger.StockLine{
			{Color: "Navy", Size: "M", Quantity: 60},
			{Color: "Navy", Size: "L", Quantity: 50},
		},
	}, &masterdata.Item{
		Name: "Crew Tee",
		Colors: []masterdata.ItemColor{
			{Name: "Navy", Sizes: []masterdata.ItemSize{{Name: "M"}, {Name: "L"}}},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, cut.OutputItemID)

	cuttingWIP := wipGodownID(t, e, godown.RoleCuttingWIP)
	snap := e.Snapshot()
	require.Equal(t, 60, snap.Ledger.Available("TN-500", intake, "Navy", "KG"))
	require.Equal(t, 60, snap.Ledger.Available("TN-500", cuttingWIP, "Navy", "M"))

	stitch, err := e.CreateSewingOperation(ctx, "manager", masterdata.SewingOperation{
		TrackingNumber: "TN-500",
		OperationName:  "Stitch Body",
		MachineType:    "overlock",
		Rate:           2.5,
		Type:           string(production.StageSewing),
	})
	require.NoError(t, err)

	_, err = e.RecordWorkEntry(ctx, "sewer", production.WorkEntry{
		Date:           "2026-03-03",
		TrackingNumber: "TN-500",
		Type:           production.StageSewing,
		OperationID:    stitch.ID,
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "M", Quantity: 60}},
	}, nil)
	require.NoError(t, err)

	sewingWIP := wipGodownID(t, e, godown.RoleSewingWIP)
	snap = e.Snapshot()
	require.Equal(t, 0, snap.Ledger.Available("TN-500", cuttingWIP, "Navy", "M"))
	require.Equal(t, 60, snap.Ledger.Available("TN-500", sewingWIP, "Navy", "M"))

	press, err := e.CreateSewingOperation(ctx, "manager", masterdata.SewingOperation{
		TrackingNumber: "TN-500",
		OperationName:  "Press",
		MachineType:    "iron",
		Rate:           0.5,
		Type:           string(production.StageFinishing),
	})
	require.NoError(t, err)

	_, err = e.RecordWorkEntry(ctx, "finisher", production.WorkEntry{
		Date:           "2026-03-04",
		TrackingNumber: "TN-500",
		Type:           production.StageFinishing,
		OperationID:    press.ID,
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "M", Quantity: 60}},
	}, nil)
	require.NoError(t, err)

	finishingWIP := wipGodownID(t, e, godown.RoleFinishingWIP)
	customer, err := e.CreateCustomer(ctx, "manager", masterdata.Customer{Name: "Retail Co"})
	require.NoError(t, err)
	_, err = e.CreateSalesOrder(ctx, "manager", orders.SalesOrder{
		OrderNumber:    "SO-1",
		CustomerID:     customer.ID,
		OrderDate:      "2026-03-05",
		TrackingNumber: "TN-500",
		GodownID:       finishingWIP,
		Items:          []orders.OrderItem{{Color: "Navy", Size: "M", Quantity: 60, Rate: 20}},
		Status:         orders.SalesStatusDispatched,
	})
	require.NoError(t, err)

	snap = e.Snapshot()
	require.Equal(t, 0, snap.Ledger.Available("TN-500", finishingWIP, "Navy", "M"))
	require.Equal(t, 50, snap.Ledger.Available("TN-500", cuttingWIP, "Navy", "L"))

	// Every mutation made it to the store and was audited.
	require.NotEmpty(t, store.saves)
	require.Contains(t, audit.actions, "purchase.create")
	require.Contains(t, audit.actions, "production.record")
	require.Contains(t, audit.actions, "sales.create")
}

func TestRecordWorkEntryRejectsMismatchedOperation(t *testing.T) {
	e := seededEngine(t, Deps{})
	ctx := context.Background()
	receiveFabric(t, e, "TN-1", 10)

	op, err := e.CreateSewingOperation(ctx, "manager", masterdata.SewingOperation{
		TrackingNumber: "TN-other",
		OperationName:  "Stitch",
		Type:           string(production.StageSewing),
	})
	require.NoError(t, err)

	_, err = e.RecordWorkEntry(ctx, "sewer", production.WorkEntry{
		TrackingNumber: "TN-1",
		Type:           production.StageSewing,
		OperationID:    op.ID,
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 1}},
	}, nil)
	require.ErrorIs(t, err, masterdata.ErrValidation)

	_, err = e.RecordWorkEntry(ctx, "sewer", production.WorkEntry{
		TrackingNumber: "TN-1",
		Type:           production.StageSewing,
		OperationID:    "missing",
		ProcessedStock: []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 1}},
	}, nil)
	require.ErrorIs(t, err, masterdata.ErrNotFound)
}

func TestUpdatePurchaseOrderReversalConflict(t *testing.T) {
	e := seededEngine(t, Deps{})
	ctx := context.Background()

	po := receiveFabric(t, e, "TN-9", 10)
	intake := intakeGodownID(t, e)
	cuttingWIP := wipGodownID(t, e, godown.RoleCuttingWIP)

	_, err := e.RecordInternalTransfer(ctx, "storekeeper", stocktx.InternalTransfer{
		InternalChallanNumber: "ICH-9",
		Date:                  "2026-03-02",
		TrackingNumber:        "TN-9",
		FromGodownID:          intake,
		ToGodownID:            cuttingWIP,
		Items:                 []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 6}},
	})
	require.NoError(t, err)

	shrunk := po
	shrunk.Items = []orders.OrderItem{{Color: "Navy", Size: "KG", Quantity: 4, Rate: 5}}
	_, err = e.UpdatePurchaseOrder(ctx, "manager", shrunk)
	require.ErrorIs(t, err, orders.ErrReversalConflict)

	snap := e.Snapshot()
	require.Equal(t, 4, snap.Ledger.Available("TN-9", intake, "Navy", "KG"))
	require.Equal(t, 6, snap.Ledger.Available("TN-9", cuttingWIP, "Navy", "KG"))
	require.Equal(t, 10, snap.PurchaseOrders[0].Items[0].Quantity)
}

func TestRecordInternalTransferIdempotency(t *testing.T) {
	e := seededEngine(t, Deps{Idempotency: &memIdem{}})
	ctx := context.Background()
	receiveFabric(t, e, "TN-9", 10)

	transfer := stocktx.InternalTransfer{
		InternalChallanNumber: "ICH-1",
		TrackingNumber:        "TN-9",
		FromGodownID:          intakeGodownID(t, e),
		ToGodownID:            wipGodownID(t, e, godown.RoleCuttingWIP),
		Items:                 []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 2}},
	}
	_, err := e.RecordInternalTransfer(ctx, "storekeeper", transfer)
	require.NoError(t, err)
	_, err = e.RecordInternalTransfer(ctx, "storekeeper", transfer)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestFailedTransferReleasesIdempotencyKey(t *testing.T) {
	e := seededEngine(t, Deps{Idempotency: &memIdem{}})
	ctx := context.Background()
	receiveFabric(t, e, "TN-9", 5)

	transfer := stocktx.InternalTransfer{
		InternalChallanNumber: "ICH-2",
		TrackingNumber:        "TN-9",
		FromGodownID:          intakeGodownID(t, e),
		ToGodownID:            wipGodownID(t, e, godown.RoleCuttingWIP),
		Items:                 []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 50}},
	}
	_, err := e.RecordInternalTransfer(ctx, "storekeeper", transfer)
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	// The key was released, so the corrected retry goes through.
	transfer.Items[0].Quantity = 5
	_, err = e.RecordInternalTransfer(ctx, "storekeeper", transfer)
	require.NoError(t, err)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	store := &memStore{}
	e := seededEngine(t, Deps{Store: store})
	ctx := context.Background()
	receiveFabric(t, e, "TN-9", 10)

	store.failNext = true
	_, err := e.RecordGoodsOutward(ctx, "storekeeper", stocktx.GoodsOutward{
		OutwardChallanNumber: "OCH-1",
		PartyName:            "Job Worker",
		TrackingNumber:       "TN-9",
		GodownID:             intakeGodownID(t, e),
		Items:                []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 3}},
	})
	require.Error(t, err)

	snap := e.Snapshot()
	require.Equal(t, 10, snap.Ledger.Available("TN-9", intakeGodownID(t, e), "Navy", "KG"))
	require.Empty(t, snap.GoodsOutward)
}

func TestGodownLifecycleGuards(t *testing.T) {
	e := seededEngine(t, Deps{})
	ctx := context.Background()

	_, err := e.CreateGodown(ctx, "admin", godown.Godown{Name: "main godown"})
	require.ErrorIs(t, err, godown.ErrDuplicateName)

	_, err = e.CreateGodown(ctx, "admin", godown.Godown{Name: "Second Cutting", Role: godown.RoleCuttingWIP})
	require.ErrorIs(t, err, godown.ErrAmbiguousRole)

	receiveFabric(t, e, "TN-9", 10)
	err = e.DeleteGodown(ctx, "admin", intakeGodownID(t, e))
	require.ErrorIs(t, err, godown.ErrInUse)

	g, err := e.CreateGodown(ctx, "admin", godown.Godown{Name: "Overflow Store"})
	require.NoError(t, err)
	require.NoError(t, e.DeleteGodown(ctx, "admin", g.ID))
}

func TestTrackingNumbersForStage(t *testing.T) {
	ctx := context.Background()
	e := seededEngine(t, Deps{})
	receiveFabric(t, e, "TN-A", 10)
	receiveFabric(t, e, "TN-B", 10)

	tns, err := e.TrackingNumbersForStage(production.StageCutting)
	require.NoError(t, err)
	require.Equal(t, []string{"TN-A", "TN-B"}, tns)

	tns, err = e.TrackingNumbersForStage(production.StageSewing)
	require.NoError(t, err)
	require.Empty(t, tns)

	// Stage fabric for both tracking numbers, but only TN-A gets a sewing
	// operation defined. Piece-rate work needs an operation, so only TN-A
	// is offered for sewing.
	cutWIP := wipGodownID(t, e, godown.RoleCuttingWIP)
	for _, tn := range []string{"TN-A", "TN-B"} {
		_, err = e.RecordInternalTransfer(ctx, "keeper", stocktx.InternalTransfer{
			InternalChallanNumber: "ICH-" + tn,
			Date:                  "2026-03-02",
			TrackingNumber:        tn,
			FromGodownID:          intakeGodownID(t, e),
			ToGodownID:            cutWIP,
			Items:                 []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 10}},
		})
		require.NoError(t, err)
	}
	_, err = e.CreateSewingOperation(ctx, "keeper", masterdata.SewingOperation{
		TrackingNumber: "TN-A",
		OperationName:  "Attach Collar",
		Rate:           3,
		Type:           string(production.StageSewing),
	})
	require.NoError(t, err)

	tns, err = e.TrackingNumbersForStage(production.StageSewing)
	require.NoError(t, err)
	require.Equal(t, []string{"TN-A"}, tns)
}

func TestStockSummaryResolvesGodowns(t *testing.T) {
	e := seededEngine(t, Deps{})
	receiveFabric(t, e, "TN-A", 10)

	rows := e.StockSummary(context.Background(), "TN-A")
	require.Len(t, rows, 1)
	require.Equal(t, godown.RoleIntake, rows[0].Role)
	require.Equal(t, 10, rows[0].Total)
	require.NotEmpty(t, rows[0].GodownName)
}

func TestStockReadCannotResurrectPreCommitCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := ledger.NewSummaryCache(client, time.Minute)

	e := seededEngine(t, Deps{Cache: cache})
	receiveFabric(t, e, "TN-C", 10)

	// A slow reader captured its view before the outward below committed.
	generation := cache.Generation()
	stale := e.Snapshot().Ledger.EntriesForTracking("TN-C")

	_, err := e.RecordGoodsOutward(ctx, "keeper", stocktx.GoodsOutward{
		OutwardChallanNumber: "OUT-9",
		PartyName:            "Job Worker",
		Date:                 "2026-03-02",
		TrackingNumber:       "TN-C",
		GodownID:             intakeGodownID(t, e),
		Items:                []ledger.StockLine{{Color: "Navy", Size: "KG", Quantity: 2}},
	})
	require.NoError(t, err)

	// The late write lands on the retired generation and must not be
	// served to anyone.
	require.NoError(t, cache.Set(ctx, generation, "TN-C", stale))

	got := e.StockByTracking(ctx, "TN-C")
	require.Len(t, got, 1)
	require.Equal(t, 8, got[0].TotalQuantity())
}

func TestOperationRateTotalsSumPerStage(t *testing.T) {
	ctx := context.Background()
	e := seededEngine(t, Deps{})

	for _, op := range []masterdata.SewingOperation{
		{TrackingNumber: "TN-R", OperationName: "Stitch Body", MachineType: "overlock", Rate: 2.5, Type: string(production.StageSewing)},
		{TrackingNumber: "TN-R", OperationName: "Attach Collar", MachineType: "flatlock", Rate: 1.25, Type: string(production.StageSewing)},
		{TrackingNumber: "TN-R", OperationName: "Press", MachineType: "iron", Rate: 0.5, Type: string(production.StageFinishing)},
		{TrackingNumber: "TN-OTHER", OperationName: "Stitch Body", MachineType: "overlock", Rate: 9, Type: string(production.StageSewing)},
	} {
		_, err := e.CreateSewingOperation(ctx, "manager", op)
		require.NoError(t, err)
	}

	totals := e.OperationRateTotals("TN-R")
	require.Equal(t, 3.75, totals[string(production.StageSewing)])
	require.Equal(t, 0.5, totals[string(production.StageFinishing)])

	require.Empty(t, e.OperationRateTotals("TN-NONE"))
}
