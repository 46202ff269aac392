package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
	"github.com/oksasatya/delivery-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/delivery-marketplace/pkg/mailer/templates"
)

var (
	ErrOrderAccessDenied = fmt.Errorf("%w: not allowed to access this order", domain.ErrForbidden)
	ErrOrderActionDenied = fmt.Errorf("%w: not allowed to perform this change", domain.ErrForbidden)
	ErrEmptyUpdate       = fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	ErrUnknownProduct    = fmt.Errorf("%w: unknown product", domain.ErrValidation)
	ErrProductNotInStore = fmt.Errorf("%w: product does not belong to the store", domain.ErrValidation)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", domain.ErrValidation)
)

const (
	defaultPaymentMethod = "cod"
	defaultPaymentStatus = "pending"
)

// PartialOrderError reports an order whose items were only partly written.
// The order itself exists in status new.
type PartialOrderError struct {
	OrderID  string
	Created  int
	Expected int
	Err      error
}

func (e *PartialOrderError) Error() string {
	return fmt.Sprintf("order %s created with %d of %d items: %v", e.OrderID, e.Created, e.Expected, e.Err)
}

func (e *PartialOrderError) Unwrap() error { return e.Err }

// OrderWithItems is an order together with its item snapshots.
type OrderWithItems struct {
	entity.Order
	Items []entity.OrderItem `json:"items"`
}

type OrderService struct {
	Users      repo.Collection[entity.User]
	Stores     repo.Collection[entity.Store]
	Products   repo.Collection[entity.Product]
	Orders     repo.Collection[entity.Order]
	OrderItems repo.Collection[entity.OrderItem]
	Publisher  Publisher
	Logger     *logrus.Logger
	Now        Clock
}

func NewOrderService(cols *repo.Collections, pub Publisher, logger *logrus.Logger) *OrderService {
	return &OrderService{
		Users:      cols.Users,
		Stores:     cols.Stores,
		Products:   cols.Products,
		Orders:     cols.Orders,
		OrderItems: cols.OrderItems,
		Publisher:  pub,
		Logger:     logger,
		Now:        systemClock,
	}
}

type LineItem struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	StoreID         string
	PaymentMethod   string
	DeliveryAddress string
	Notes           string
	Items           []LineItem
}

// Create places an order in status new, then writes its item snapshots.
// Items are written after the order; if that step fails part-way the order
// is kept and a *PartialOrderError describes what was written.
func (s *OrderService) Create(ctx context.Context, actor *entity.User, in CreateOrderInput) (*OrderWithItems, error) {
	if len(in.Items) == 0 {
		return nil, entity.ErrEmptyOrder
	}
	st, err := s.Stores.Get(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	if !st.AcceptsOrders() {
		return nil, entity.ErrStoreUnavailable
	}

	now := s.Now()
	order := &entity.Order{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		StoreID:         st.ID,
		OrderNumber:     newOrderNumber(now.Format("20060102")),
		Status:          entity.StatusNew,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   defaultPaymentStatus,
		DeliveryAddress: in.DeliveryAddress,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = defaultPaymentMethod
	}

	items := make([]entity.OrderItem, 0, len(in.Items))
	// requested sums quantities per product so repeated lines share one stock check
	requested := make(map[string]int, len(in.Items))
	for _, li := range in.Items {
		if li.Quantity < 1 {
			return nil, entity.ErrInvalidQuantity
		}
		p, err := s.Products.Get(ctx, li.ProductID)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, li.ProductID)
			}
			return nil, err
		}
		if p.StoreID != st.ID {
			return nil, fmt.Errorf("%w: %s", ErrProductNotInStore, p.ID)
		}
		requested[p.ID] += li.Quantity
		if requested[p.ID] > p.Stock {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
		item := entity.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    li.Quantity,
			CreatedAt:   now,
		}
		order.TotalAmount += item.Subtotal()
		items = append(items, item)
	}

	if err := s.Orders.Insert(ctx, order.ID, order); err != nil {
		return nil, err
	}

	out := &OrderWithItems{Order: *order, Items: make([]entity.OrderItem, 0, len(items))}
	for i := range items {
		if err := s.OrderItems.Insert(ctx, items[i].ID, &items[i]); err != nil {
			perr := &PartialOrderError{OrderID: order.ID, Created: len(out.Items), Expected: len(items), Err: err}
			if s.Logger != nil {
				s.Logger.WithError(err).WithFields(logrus.Fields{
					"order_id": order.ID,
					"created":  perr.Created,
					"expected": perr.Expected,
				}).Error("order items partially created")
			}
			return out, perr
		}
		out.Items = append(out.Items, items[i])
	}
	return out, nil
}

func newOrderNumber(day string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + day + "-" + suffix
}

// Get returns an order the actor may see.
func (s *OrderService) Get(ctx context.Context, actor *entity.User, id string) (*OrderWithItems, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	purchaser, manager, err := s.capabilities(ctx, actor, o)
	if err != nil {
		return nil, err
	}
	if !purchaser && !manager {
		return nil, ErrOrderAccessDenied
	}
	return s.withItems(ctx, o)
}

func (s *OrderService) ListMine(ctx context.Context, actor *entity.User) ([]entity.Order, error) {
	return s.Orders.Find(ctx, repo.Filter{"user_id": actor.ID})
}

func (s *OrderService) ListByStore(ctx context.Context, actor *entity.User, storeID string) ([]entity.Order, error) {
	st, err := s.Stores.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !st.ManagedBy(actor) {
		return nil, ErrNotStoreManager
	}
	return s.Orders.Find(ctx, repo.Filter{"store_id": st.ID})
}

// UpdateOrderInput is a partial update; nil fields are left alone.
type UpdateOrderInput struct {
	Status                *entity.OrderStatus
	EstimatedDeliveryTime *string
	Notes                 *string
}

func (in UpdateOrderInput) empty() bool {
	return in.Status == nil && in.EstimatedDeliveryTime == nil && in.Notes == nil
}

// Update applies a partial update after the ownership check.
// Purchasers may cancel a new order and edit notes; the store's owner and
// admins may take any valid lifecycle step and set the delivery estimate.
// A rejected request writes nothing.
func (s *OrderService) Update(ctx context.Context, actor *entity.User, id string, in UpdateOrderInput) (*OrderWithItems, error) {
	if in.empty() {
		return nil, ErrEmptyUpdate
	}
	current, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	purchaser, manager, err := s.capabilities(ctx, actor, current)
	if err != nil {
		return nil, err
	}
	if !purchaser && !manager {
		return nil, ErrOrderAccessDenied
	}
	if current.Status.IsTerminal() {
		return nil, entity.ErrOrderTerminal
	}

	next := *current
	now := s.Now()
	if in.Status != nil {
		if !manager && !(*in.Status == entity.StatusCancelled && current.Status == entity.StatusNew) {
			return nil, ErrOrderActionDenied
		}
		if err := next.Transition(*in.Status, now); err != nil {
			return nil, err
		}
	}
	if in.EstimatedDeliveryTime != nil {
		if !manager {
			return nil, ErrOrderActionDenied
		}
		next.EstimatedDeliveryTime = strings.TrimSpace(*in.EstimatedDeliveryTime)
	}
	if in.Notes != nil {
		next.Notes = strings.TrimSpace(*in.Notes)
	}
	next.UpdatedAt = now

	// guard on what was read so concurrent updates cannot both apply
	guard := repo.Filter{"status": current.Status, "updated_at": current.UpdatedAt}
	if err := s.Orders.ReplaceIf(ctx, next.ID, guard, &next); err != nil {
		return nil, err
	}
	if next.Status != current.Status {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"order_id": next.ID,
				"from":     current.Status,
				"to":       next.Status,
				"actor":    actor.ID,
			}).Info("order status changed")
		}
		s.notifyStatus(ctx, &next, current.Status)
	}
	return s.withItems(ctx, &next)
}

// capabilities resolves whether actor is the purchaser and whether it manages
// the order's store. A store that no longer exists is managed by admins only.
func (s *OrderService) capabilities(ctx context.Context, actor *entity.User, o *entity.Order) (purchaser, manager bool, err error) {
	if actor == nil {
		return false, false, fmt.Errorf("%w: missing identity", domain.ErrUnauthorized)
	}
	purchaser = o.UserID == actor.ID
	if actor.IsAdmin() {
		return purchaser, true, nil
	}
	st, err := s.Stores.Get(ctx, o.StoreID)
	if err != nil {
		if isNotFound(err) {
			return purchaser, false, nil
		}
		return false, false, err
	}
	return purchaser, st.ManagedBy(actor), nil
}

func (s *OrderService) withItems(ctx context.Context, o *entity.Order) (*OrderWithItems, error) {
	items, err := s.OrderItems.Find(ctx, repo.Filter{"order_id": o.ID})
	if err != nil {
		return nil, err
	}
	return &OrderWithItems{Order: *o, Items: items}, nil
}

// notifyStatus queues a status email for the purchaser. Failures are logged only.
func (s *OrderService) notifyStatus(ctx context.Context, o *entity.Order, previous entity.OrderStatus) {
	if s.Publisher == nil {
		return
	}
	u, err := s.Users.Get(ctx, o.UserID)
	if err != nil || u.Email == "" {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.OrderStatus,
		Data: mailtpl.NewOrderStatusData(u.Name, o.OrderNumber, string(previous), string(o.Status),
			mailtpl.WithEstimate(o.EstimatedDeliveryTime), mailtpl.WithTime(o.UpdatedAt)),
		Ref: o.ID,
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Warn("failed to publish order status email")
	}
}
