package state

import (
	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/orders"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/stocktx"
)

// Snapshot is the complete application state. The engine treats it as an
// immutable value: every committed operation produces a new snapshot, and
// readers always observe a fully consistent one.
type Snapshot struct {
	Godowns           []godown.Godown              `json:"godowns"`
	Items             []masterdata.Item            `json:"items"`
	Vendors           []masterdata.Vendor          `json:"vendors"`
	Customers         []masterdata.Customer        `json:"customers"`
	SewingOperations  []masterdata.SewingOperation `json:"sewingOperations"`
	Ledger            ledger.Ledger                `json:"stockLedger"`
	PurchaseOrders    []orders.PurchaseOrder       `json:"purchaseOrders"`
	SalesOrders       []orders.SalesOrder          `json:"salesOrders"`
	InternalTransfers []stocktx.InternalTransfer   `json:"internalTransfers"`
	GoodsOutward      []stocktx.GoodsOutward       `json:"goodsOutward"`
	WorkEntries       []production.WorkEntry       `json:"workEntries"`
}

// Clone deep-copies the snapshot so a caller can mutate the copy freely.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Godowns = append([]godown.Godown(nil), s.Godowns...)
	out.Items = cloneItems(s.Items)
	out.Vendors = append([]masterdata.Vendor(nil), s.Vendors...)
	out.Customers = append([]masterdata.Customer(nil), s.Customers...)
	out.SewingOperations = append([]masterdata.SewingOperation(nil), s.SewingOperations...)
	out.Ledger = s.Ledger.Clone()
	out.PurchaseOrders = clonePurchases(s.PurchaseOrders)
	out.SalesOrders = cloneSales(s.SalesOrders)
	out.InternalTransfers = cloneTransfers(s.InternalTransfers)
	out.GoodsOutward = cloneOutward(s.GoodsOutward)
	out.WorkEntries = cloneWork(s.WorkEntries)
	return out
}

func cloneItems(in []masterdata.Item) []masterdata.Item {
	out := make([]masterdata.Item, len(in))
	for i, item := range in {
		colors := make([]masterdata.ItemColor, len(item.Colors))
		for j, c := range item.Colors {
			c.Sizes = append([]masterdata.ItemSize(nil), c.Sizes...)
			colors[j] = c
		}
		item.Colors = colors
		out[i] = item
	}
	return out
}

func clonePurchases(in []orders.PurchaseOrder) []orders.PurchaseOrder {
	out := make([]orders.PurchaseOrder, len(in))
	for i, po := range in {
		po.Items = append([]orders.OrderItem(nil), po.Items...)
		out[i] = po
	}
	return out
}

func cloneSales(in []orders.SalesOrder) []orders.SalesOrder {
	out := make([]orders.SalesOrder, len(in))
	for i, so := range in {
		so.Items = append([]orders.OrderItem(nil), so.Items...)
		out[i] = so
	}
	return out
}

func cloneTransfers(in []stocktx.InternalTransfer) []stocktx.InternalTransfer {
	out := make([]stocktx.InternalTransfer, len(in))
	for i, t := range in {
		t.Items = append([]ledger.StockLine(nil), t.Items...)
		out[i] = t
	}
	return out
}

func cloneOutward(in []stocktx.GoodsOutward) []stocktx.GoodsOutward {
	out := make([]stocktx.GoodsOutward, len(in))
	for i, o := range in {
		o.Items = append([]ledger.StockLine(nil), o.Items...)
		out[i] = o
	}
	return out
}

func cloneWork(in []production.WorkEntry) []production.WorkEntry {
	out := make([]production.WorkEntry, len(in))
	for i, w := range in {
		w.OutputStock = append([]ledger.StockLine(nil), w.OutputStock...)
		w.ProcessedStock = append([]ledger.StockLine(nil), w.ProcessedStock...)
		out[i] = w
	}
	return out
}

// Normalize upgrades snapshots that predate explicit godown roles by
// inferring roles from the legacy naming convention. Godowns that already
// carry a role are left alone.
func (s *Snapshot) Normalize() {
	for i, g := range s.Godowns {
		if g.Role == godown.RoleNone {
			s.Godowns[i].Role = godown.InferRole(g.Name)
		}
	}
}

// Seed returns the initial state of a fresh installation: the standard
// production pipeline godowns and nothing else.
func Seed(newID func() string) Snapshot {
	return Snapshot{
		Godowns: []godown.Godown{
			{ID: newID(), Name: "Main Godown", Role: godown.RoleIntake},
			{ID: newID(), Name: "Fabric Godown", Role: godown.RoleIntake},
			{ID: newID(), Name: "Cutting WIP", Role: godown.RoleCuttingWIP},
			{ID: newID(), Name: "Sewing WIP", Role: godown.RoleSewingWIP},
			{ID: newID(), Name: "Finishing WIP", Role: godown.RoleFinishingWIP},
		},
	}
}
