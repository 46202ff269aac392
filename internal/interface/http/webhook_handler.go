package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	"github.com/oksasatya/delivery-marketplace/pkg/response"
)

// WebhookHandler receives identity lifecycle events. Signature checks run in
// middleware before this handler is reached.
type WebhookHandler struct {
	Identity *application.IdentityService
	Logger   *logrus.Logger
}

func NewWebhookHandler(identity *application.IdentityService, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{Identity: identity, Logger: logger}
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type identityPayload struct {
	Type string `json:"type" binding:"required"`
	Data struct {
		ID                    string         `json:"id" binding:"required"`
		FirstName             string         `json:"first_name"`
		LastName              string         `json:"last_name"`
		ImageURL              string         `json:"image_url"`
		PrimaryEmailAddressID string         `json:"primary_email_address_id"`
		EmailAddresses        []emailAddress `json:"email_addresses"`
	} `json:"data"`
}

// profile picks the primary address, or the first one when none is marked.
func (p *identityPayload) profile() entity.Profile {
	email := ""
	for _, e := range p.Data.EmailAddresses {
		if e.ID == p.Data.PrimaryEmailAddressID {
			email = e.EmailAddress
			break
		}
	}
	if email == "" && len(p.Data.EmailAddresses) > 0 {
		email = p.Data.EmailAddresses[0].EmailAddress
	}
	return entity.Profile{
		ID:       p.Data.ID,
		Email:    email,
		Name:     strings.TrimSpace(p.Data.FirstName + " " + p.Data.LastName),
		ImageURL: p.Data.ImageURL,
	}
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	var req identityPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	outcome, err := h.Identity.Handle(c.Request.Context(), application.IdentityEvent{Type: req.Type, Profile: req.profile()})
	if errors.Is(err, application.ErrUnknownIdentityEvent) {
		response.Success(c, http.StatusOK, gin.H{"outcome": "ignored"}, "event type not handled", nil)
		return
	}
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{"type": req.Type, "user_id": req.Data.ID, "outcome": outcome}).Info("identity event processed")
	}
	response.Success(c, http.StatusOK, gin.H{"outcome": outcome}, "event processed", nil)
}
