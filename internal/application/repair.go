package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

// Action types reported by a repair run.
const (
	ActionOrphanStores     = "orphan-stores"
	ActionOrphanProducts   = "orphan-products"
	ActionOrphanOrders     = "orphan-orders"
	ActionOrphanOrderItems = "orphan-order-items"

	ActionDeletedStores      = "deleted-stores"
	ActionDeletedProducts    = "deleted-products"
	ActionDeletedOrderItems  = "deleted-order-items"
	ActionDeletedOrders      = "deleted-orders"
	ActionDeletedOrphanItems = "deleted-orphan-items"
)

// Repair phases, named in RepairError and the maintenance report.
const (
	PhaseScan       = "scan"
	PhaseStores     = "stores"
	PhaseProducts   = "products"
	PhaseOrderItems = "order-items"
	PhaseOrders     = "orders"
	PhaseOrphans    = "orphan-items"
)

type Action struct {
	Type  string   `json:"type"`
	Count int      `json:"count"`
	IDs   []string `json:"ids,omitempty"`
}

type RepairReport struct {
	DryRun  bool     `json:"dryRun"`
	Actions []Action `json:"actions"`
	// WouldDelete is set by dry runs that found something: every id an
	// apply run would remove, including records orphaned only by the cascade.
	WouldDelete *ScanReport `json:"wouldDelete,omitempty"`
	FailedPhase string      `json:"failedPhase,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// RepairError marks the phase a run stopped in. Deletions made before it
// are not rolled back; re-running is the recovery path.
type RepairError struct {
	Phase string
	Err   error
}

func (e *RepairError) Error() string { return fmt.Sprintf("repair %s: %v", e.Phase, e.Err) }
func (e *RepairError) Unwrap() error { return e.Err }

type Repairer struct {
	Scanner    *Scanner
	Users      repo.Collection[entity.User]
	Stores     repo.Collection[entity.Store]
	Products   repo.Collection[entity.Product]
	Orders     repo.Collection[entity.Order]
	OrderItems repo.Collection[entity.OrderItem]
	Index      ProductIndex
	Logger     *logrus.Logger
}

func NewRepairer(cols *repo.Collections, index ProductIndex, logger *logrus.Logger) *Repairer {
	return &Repairer{
		Scanner:    NewScanner(cols),
		Users:      cols.Users,
		Stores:     cols.Stores,
		Products:   cols.Products,
		Orders:     cols.Orders,
		OrderItems: cols.OrderItems,
		Index:      index,
		Logger:     logger,
	}
}

// Run scans (dryRun) or deletes orphans in dependency order (apply). The
// returned report is never nil; on failure it carries the actions already
// taken and the failed phase.
func (r *Repairer) Run(ctx context.Context, dryRun bool) (*RepairReport, error) {
	rep := &RepairReport{DryRun: dryRun, Actions: []Action{}}
	var err error
	if dryRun {
		err = r.dryRun(ctx, rep)
	} else {
		err = r.apply(ctx, rep)
	}
	if err != nil {
		var re *RepairError
		if errors.As(err, &re) {
			rep.FailedPhase = re.Phase
		}
		rep.Error = err.Error()
		r.log().WithError(err).WithFields(logrus.Fields{
			"dry_run": dryRun,
			"phase":   rep.FailedPhase,
			"actions": len(rep.Actions),
		}).Error("repair run failed")
		return rep, err
	}
	r.log().WithFields(logrus.Fields{"dry_run": dryRun, "actions": len(rep.Actions)}).Info("repair run finished")
	return rep, nil
}

func (r *Repairer) dryRun(ctx context.Context, rep *RepairReport) error {
	scan, cascade, err := r.Scanner.Preview(ctx)
	if err != nil {
		return &RepairError{Phase: PhaseScan, Err: err}
	}
	r.record(rep, ActionOrphanStores, scan.Stores)
	r.record(rep, ActionOrphanProducts, scan.Products)
	r.record(rep, ActionOrphanOrders, scan.Orders)
	r.record(rep, ActionOrphanOrderItems, scan.OrderItems)
	if !cascade.Empty() {
		rep.WouldDelete = cascade
	}
	return nil
}

func (r *Repairer) apply(ctx context.Context, rep *RepairReport) error {
	userList, err := r.Users.IDs(ctx, nil)
	if err != nil {
		return &RepairError{Phase: PhaseScan, Err: err}
	}
	users := newIDSet(userList)

	// Stores first: their removal can orphan products and orders.
	stores, err := r.Stores.All(ctx)
	if err != nil {
		return &RepairError{Phase: PhaseStores, Err: err}
	}
	deadStores := orphanStores(users, stores)
	if err := r.remove(ctx, rep, ActionDeletedStores, r.Stores.Delete, deadStores); err != nil {
		return &RepairError{Phase: PhaseStores, Err: err}
	}
	liveStores := storeIDs(stores).without(deadStores)

	products, err := r.Products.All(ctx)
	if err != nil {
		return &RepairError{Phase: PhaseProducts, Err: err}
	}
	deadProducts := orphanProducts(liveStores, products)
	if err := r.remove(ctx, rep, ActionDeletedProducts, r.Products.Delete, deadProducts); err != nil {
		return &RepairError{Phase: PhaseProducts, Err: err}
	}
	removeFromIndex(ctx, r.Index, r.log(), deadProducts)

	orders, err := r.Orders.All(ctx)
	if err != nil {
		return &RepairError{Phase: PhaseOrders, Err: err}
	}
	deadOrders := orphanOrders(users, liveStores, orders)
	if len(deadOrders) > 0 {
		items, err := r.OrderItems.All(ctx)
		if err != nil {
			return &RepairError{Phase: PhaseOrderItems, Err: err}
		}
		// Children go before the order so a failure never leaves items
		// behind without their parent.
		childItems := itemsOf(newIDSet(deadOrders), items)
		if err := r.remove(ctx, rep, ActionDeletedOrderItems, r.OrderItems.Delete, childItems); err != nil {
			return &RepairError{Phase: PhaseOrderItems, Err: err}
		}
		if err := r.remove(ctx, rep, ActionDeletedOrders, r.Orders.Delete, deadOrders); err != nil {
			return &RepairError{Phase: PhaseOrders, Err: err}
		}
	}
	liveOrders := orderIDs(orders).without(deadOrders)

	items, err := r.OrderItems.All(ctx)
	if err != nil {
		return &RepairError{Phase: PhaseOrphans, Err: err}
	}
	strays := orphanOrderItems(liveOrders, items)
	if err := r.remove(ctx, rep, ActionDeletedOrphanItems, r.OrderItems.Delete, strays); err != nil {
		return &RepairError{Phase: PhaseOrphans, Err: err}
	}
	return nil
}

type deleteFunc func(ctx context.Context, ids ...string) (int, error)

// remove deletes one batch and records it. Ids already gone count as
// deleted; the store reports them as a no-op.
func (r *Repairer) remove(ctx context.Context, rep *RepairReport, action string, del deleteFunc, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	removed, err := del(ctx, ids...)
	if err != nil {
		return err
	}
	r.recordRemoved(rep, action, ids, removed)
	return nil
}

// record notes a dry-run finding.
func (r *Repairer) record(rep *RepairReport, action string, ids []string) {
	if len(ids) == 0 {
		return
	}
	rep.Actions = append(rep.Actions, Action{Type: action, Count: len(ids), IDs: ids})
	r.log().WithFields(logrus.Fields{
		"type":    action,
		"count":   len(ids),
		"ids":     ids,
		"dry_run": rep.DryRun,
	}).Info("repair action")
}

// recordRemoved notes an applied batch. Count is the ids targeted; the log
// also carries how many the store actually deleted, which is lower when an
// overlapping run got there first.
func (r *Repairer) recordRemoved(rep *RepairReport, action string, ids []string, removed int) {
	rep.Actions = append(rep.Actions, Action{Type: action, Count: len(ids), IDs: ids})
	r.log().WithFields(logrus.Fields{
		"type":    action,
		"count":   len(ids),
		"removed": removed,
		"ids":     ids,
		"dry_run": rep.DryRun,
	}).Info("repair action")
}

func (r *Repairer) log() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}
