package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	"github.com/oksasatya/delivery-marketplace/internal/interface/middleware"
	"github.com/oksasatya/delivery-marketplace/pkg/response"
)

type OrderHandler struct {
	Svc    *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type orderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type createOrderRequest struct {
	StoreID         string             `json:"store_id" binding:"required"`
	PaymentMethod   string             `json:"payment_method" binding:"omitempty,oneof=cod transfer"`
	DeliveryAddress string             `json:"delivery_address" binding:"required,max=500"`
	Notes           string             `json:"notes" binding:"max=1000"`
	Items           []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type updateOrderRequest struct {
	Status                *string `json:"status" binding:"omitempty,order_status"`
	EstimatedDeliveryTime *string `json:"estimated_delivery_time" binding:"omitempty,max=100"`
	Notes                 *string `json:"notes" binding:"omitempty,max=1000"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	in := application.CreateOrderInput{
		StoreID:         req.StoreID,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Items:           make([]application.LineItem, len(req.Items)),
	}
	for i, it := range req.Items {
		in.Items[i] = application.LineItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	out, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "order placed", nil)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.Svc.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders", gin.H{"count": len(orders)})
}

func (h *OrderHandler) ListByStore(c *gin.Context) {
	orders, err := h.Svc.ListByStore(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, orders, "store orders", gin.H{"count": len(orders)})
}

func (h *OrderHandler) Get(c *gin.Context) {
	out, err := h.Svc.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "order", nil)
}

// Update applies a partial update: status transition, delivery estimate, notes.
func (h *OrderHandler) Update(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	in := application.UpdateOrderInput{EstimatedDeliveryTime: req.EstimatedDeliveryTime, Notes: req.Notes}
	if req.Status != nil {
		st := entity.OrderStatus(*req.Status)
		in.Status = &st
	}
	out, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "order updated", nil)
}
