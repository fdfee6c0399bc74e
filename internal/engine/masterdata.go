package engine

import (
	"context"
	"fmt"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/production"
)

// CreateGodown registers a storage or processing area. Role changes are
// validated against the whole configuration before anything is committed, so
// an ambiguous pipeline can never become active.
func (e *Engine) CreateGodown(ctx context.Context, actor string, g godown.Godown) (godown.Godown, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if g.Name == "" {
		return godown.Godown{}, fmt.Errorf("%w: name required", masterdata.ErrValidation)
	}
	for _, existing := range e.snap.Godowns {
		if godown.EqualNames(existing.Name, g.Name) {
			return godown.Godown{}, godown.ErrDuplicateName
		}
	}
	g.ID = e.newID()

	next := e.snap.Clone()
	next.Godowns = append(next.Godowns, g)
	resolver, err := godown.NewResolver(next.Godowns)
	if err != nil {
		return godown.Godown{}, err
	}
	if err := e.commit(ctx, next, resolver, actor, "godown.create", "godown", g.ID, map[string]any{"name": g.Name, "role": g.Role}); err != nil {
		return godown.Godown{}, err
	}
	return g, nil
}

// UpdateGodown renames a godown or changes its role.
func (e *Engine) UpdateGodown(ctx context.Context, actor string, g godown.Godown) (godown.Godown, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if g.Name == "" {
		return godown.Godown{}, fmt.Errorf("%w: name required", masterdata.ErrValidation)
	}
	idx := -1
	for i, existing := range e.snap.Godowns {
		if existing.ID == g.ID {
			idx = i
			continue
		}
		if godown.EqualNames(existing.Name, g.Name) {
			return godown.Godown{}, godown.ErrDuplicateName
		}
	}
	if idx < 0 {
		return godown.Godown{}, godown.ErrNotFound
	}

	next := e.snap.Clone()
	next.Godowns[idx] = g
	resolver, err := godown.NewResolver(next.Godowns)
	if err != nil {
		return godown.Godown{}, err
	}
	if err := e.commit(ctx, next, resolver, actor, "godown.update", "godown", g.ID, map[string]any{"name": g.Name, "role": g.Role}); err != nil {
		return godown.Godown{}, err
	}
	return g, nil
}

// DeleteGodown removes an empty godown. A godown still holding stock cannot
// be deleted.
func (e *Engine) DeleteGodown(ctx context.Context, actor, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, g := range e.snap.Godowns {
		if g.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return godown.ErrNotFound
	}
	for _, entry := range e.snap.Ledger {
		if entry.GodownID == id {
			return godown.ErrInUse
		}
	}

	next := e.snap.Clone()
	next.Godowns = append(next.Godowns[:idx], next.Godowns[idx+1:]...)
	resolver, err := godown.NewResolver(next.Godowns)
	if err != nil {
		return err
	}
	return e.commit(ctx, next, resolver, actor, "godown.delete", "godown", id, nil)
}

func validateItem(item masterdata.Item) error {
	if item.Name == "" {
		return fmt.Errorf("%w: item name required", masterdata.ErrValidation)
	}
	if len(item.Colors) == 0 {
		return fmt.Errorf("%w: item needs at least one color", masterdata.ErrValidation)
	}
	for _, c := range item.Colors {
		if c.Name == "" || len(c.Sizes) == 0 {
			return fmt.Errorf("%w: each color needs a name and at least one size", masterdata.ErrValidation)
		}
	}
	return nil
}

// CreateItem registers an item definition.
func (e *Engine) CreateItem(ctx context.Context, actor string, item masterdata.Item) (masterdata.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateItem(item); err != nil {
		return masterdata.Item{}, err
	}
	item.ID = e.newID()
	next := e.snap.Clone()
	next.Items = append(next.Items, item)
	if err := e.commit(ctx, next, nil, actor, "item.create", "item", item.ID, map[string]any{"name": item.Name}); err != nil {
		return masterdata.Item{}, err
	}
	return item, nil
}

// UpdateItem replaces an item definition.
func (e *Engine) UpdateItem(ctx context.Context, actor string, item masterdata.Item) (masterdata.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateItem(item); err != nil {
		return masterdata.Item{}, err
	}
	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.Items {
		if existing.ID == item.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.Item{}, masterdata.ErrNotFound
	}
	next.Items[idx] = item
	if err := e.commit(ctx, next, nil, actor, "item.update", "item", item.ID, map[string]any{"name": item.Name}); err != nil {
		return masterdata.Item{}, err
	}
	return item, nil
}

// DeleteItem removes an item definition.
func (e *Engine) DeleteItem(ctx context.Context, actor, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.Items {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.ErrNotFound
	}
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	return e.commit(ctx, next, nil, actor, "item.delete", "item", id, nil)
}

// CreateVendor registers a vendor.
func (e *Engine) CreateVendor(ctx context.Context, actor string, v masterdata.Vendor) (masterdata.Vendor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v.Name == "" {
		return masterdata.Vendor{}, fmt.Errorf("%w: vendor name required", masterdata.ErrValidation)
	}
	v.ID = e.newID()
	next := e.snap.Clone()
	next.Vendors = append(next.Vendors, v)
	if err := e.commit(ctx, next, nil, actor, "vendor.create", "vendor", v.ID, map[string]any{"name": v.Name}); err != nil {
		return masterdata.Vendor{}, err
	}
	return v, nil
}

// UpdateVendor replaces a vendor record.
func (e *Engine) UpdateVendor(ctx context.Context, actor string, v masterdata.Vendor) (masterdata.Vendor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v.Name == "" {
		return masterdata.Vendor{}, fmt.Errorf("%w: vendor name required", masterdata.ErrValidation)
	}
	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.Vendors {
		if existing.ID == v.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.Vendor{}, masterdata.ErrNotFound
	}
	next.Vendors[idx] = v
	if err := e.commit(ctx, next, nil, actor, "vendor.update", "vendor", v.ID, map[string]any{"name": v.Name}); err != nil {
		return masterdata.Vendor{}, err
	}
	return v, nil
}

// DeleteVendor removes a vendor record.
func (e *Engine) DeleteVendor(ctx context.Context, actor, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.Vendors {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.ErrNotFound
	}
	next.Vendors = append(next.Vendors[:idx], next.Vendors[idx+1:]...)
	return e.commit(ctx, next, nil, actor, "vendor.delete", "vendor", id, nil)
}

// CreateCustomer registers a customer.
func (e *Engine) CreateCustomer(ctx context.Context, actor string, c masterdata.Customer) (masterdata.Customer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c.Name == "" {
		return masterdata.Customer{}, fmt.Errorf("%w: customer name required", masterdata.ErrValidation)
	}
	c.ID = e.newID()
	next := e.snap.Clone()
	next.Customers = append(next.Customers, c)
	if err := e.commit(ctx, next, nil, actor, "customer.create", "customer", c.ID, map[string]any{"name": c.Name}); err != nil {
		return masterdata.Customer{}, err
	}
	return c, nil
}

// UpdateCustomer replaces a customer record.
func (e *Engine) UpdateCustomer(ctx context.Context, actor string, c masterdata.Customer) (masterdata.Customer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c.Name == "" {
		return masterdata.Customer{}, fmt.Errorf("%w: customer name required", masterdata.ErrValidation)
	}
	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.Customers {
		if existing.ID == c.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.Customer{}, masterdata.ErrNotFound
	}
	next.Customers[idx] = c
	if err := e.commit(ctx, next, nil, actor, "customer.update", "customer", c.ID, map[string]any{"name": c.Name}); err != nil {
		return masterdata.Customer{}, err
	}
	return c, nil
}

// DeleteCustomer removes a customer record.
func (e *Engine) DeleteCustomer(ctx context.Context, actor, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.Customers {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.ErrNotFound
	}
	next.Customers = append(next.Customers[:idx], next.Customers[idx+1:]...)
	return e.commit(ctx, next, nil, actor, "customer.delete", "customer", id, nil)
}

func validateOperation(op masterdata.SewingOperation) error {
	if op.OperationName == "" || op.TrackingNumber == "" {
		return fmt.Errorf("%w: operation name and tracking number required", masterdata.ErrValidation)
	}
	if stage := production.Stage(op.Type); stage != production.StageSewing && stage != production.StageFinishing {
		return fmt.Errorf("%w: operation stage must be sewing or finishing", masterdata.ErrValidation)
	}
	if op.Rate < 0 {
		return fmt.Errorf("%w: rate cannot be negative", masterdata.ErrValidation)
	}
	return nil
}

// CreateSewingOperation registers a priced operation for a tracking number.
func (e *Engine) CreateSewingOperation(ctx context.Context, actor string, op masterdata.SewingOperation) (masterdata.SewingOperation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateOperation(op); err != nil {
		return masterdata.SewingOperation{}, err
	}
	op.ID = e.newID()
	next := e.snap.Clone()
	next.SewingOperations = append(next.SewingOperations, op)
	if err := e.commit(ctx, next, nil, actor, "operation.create", "sewing_operation", op.ID, map[string]any{"name": op.OperationName, "trackingNumber": op.TrackingNumber}); err != nil {
		return masterdata.SewingOperation{}, err
	}
	return op, nil
}

// UpdateSewingOperation replaces an operation definition.
func (e *Engine) UpdateSewingOperation(ctx context.Context, actor string, op masterdata.SewingOperation) (masterdata.SewingOperation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateOperation(op); err != nil {
		return masterdata.SewingOperation{}, err
	}
	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.SewingOperations {
		if existing.ID == op.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.SewingOperation{}, masterdata.ErrNotFound
	}
	next.SewingOperations[idx] = op
	if err := e.commit(ctx, next, nil, actor, "operation.update", "sewing_operation", op.ID, map[string]any{"name": op.OperationName}); err != nil {
		return masterdata.SewingOperation{}, err
	}
	return op, nil
}

// DeleteSewingOperation removes an operation definition.
func (e *Engine) DeleteSewingOperation(ctx context.Context, actor, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	idx := -1
	for i, existing := range next.SewingOperations {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return masterdata.ErrNotFound
	}
	next.SewingOperations = append(next.SewingOperations[:idx], next.SewingOperations[idx+1:]...)
	return e.commit(ctx, next, nil, actor, "operation.delete", "sewing_operation", id, nil)
}
