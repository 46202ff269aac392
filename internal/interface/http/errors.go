package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/interface/middleware"
	"github.com/oksasatya/delivery-marketplace/pkg/response"
	"github.com/oksasatya/delivery-marketplace/pkg/validation"
)

// fail writes err as a JSON error envelope. Server-side failures are logged
// with the request id; their text is not returned to the client.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := middleware.StatusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	var details any
	var perr *application.PartialOrderError
	if errors.As(err, &perr) {
		details = gin.H{"order_id": perr.OrderID, "items_created": perr.Created, "items_expected": perr.Expected}
	}
	response.Error[any](c, status, msg, details)
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
