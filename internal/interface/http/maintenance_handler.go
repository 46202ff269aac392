package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/interface/middleware"
	"github.com/oksasatya/delivery-marketplace/pkg/response"
)

type MaintenanceHandler struct {
	Repairer *application.Repairer
	Logger   *logrus.Logger
}

func NewMaintenanceHandler(r *application.Repairer, logger *logrus.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{Repairer: r, Logger: logger}
}

// Repair runs a dry run unless ?apply=true. A failed run still returns the
// partial report with the failed phase.
func (h *MaintenanceHandler) Repair(c *gin.Context) {
	apply, err := strconv.ParseBool(c.DefaultQuery("apply", "false"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "apply must be a boolean", gin.H{"apply": "must be true or false"})
		return
	}
	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{"apply": apply, "user_id": c.GetString(middleware.CtxUserIDKey)}).Info("repair requested")
	}
	rep, err := h.Repairer.Run(c.Request.Context(), !apply)
	if err != nil {
		status, _ := middleware.StatusFor(err)
		response.Error[any](c, status, "repair failed in phase "+rep.FailedPhase, rep)
		return
	}
	response.Success(c, http.StatusOK, rep, "repair finished", nil)
}
