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

type StoreHandler struct {
	Svc    *application.StoreService
	Logger *logrus.Logger
}

func NewStoreHandler(svc *application.StoreService, logger *logrus.Logger) *StoreHandler {
	return &StoreHandler{Svc: svc, Logger: logger}
}

type storeAddressRequest struct {
	Village string `json:"village" binding:"max=120"`
	Street  string `json:"street" binding:"max=200"`
	Detail  string `json:"detail" binding:"max=500"`
}

type createStoreRequest struct {
	Name        string              `json:"name" binding:"required,max=120"`
	Description string              `json:"description" binding:"max=2000"`
	Type        string              `json:"type" binding:"max=60"`
	Address     storeAddressRequest `json:"address"`
	ImageURL    string              `json:"image_url" binding:"omitempty,url"`
}

type approvalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

func (h *StoreHandler) Create(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	st, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), application.CreateStoreInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Address:     entity.StoreAddress{Village: req.Address.Village, Street: req.Address.Street, Detail: req.Address.Detail},
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, st, "store created", nil)
}

func (h *StoreHandler) ListMine(c *gin.Context) {
	stores, err := h.Svc.ListByOwner(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, stores, "stores", gin.H{"count": len(stores), "limit": entity.MaxStoresPerOwner})
}

func (h *StoreHandler) Delete(c *gin.Context) {
	removed, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true, "products_deleted": removed}, "store deleted", nil)
}

func (h *StoreHandler) SetApproval(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	st, err := h.Svc.SetApproval(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), *req.Approved)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "store approval updated", nil)
}
