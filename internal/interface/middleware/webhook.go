package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
	"github.com/oksasatya/delivery-marketplace/pkg/response"
)

const maxWebhookBody = 1 << 20

// VerifyWebhook rejects requests whose signature does not verify before the
// handler sees the body. The body is restored for the handler.
func VerifyWebhook(v *helpers.WebhookVerifier, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
		if err != nil || len(body) > maxWebhookBody {
			response.Abort(c, http.StatusBadRequest, "unreadable webhook body", nil)
			return
		}
		if err := v.Verify(c.Request.Header, body); err != nil {
			if logger != nil {
				logger.WithError(err).WithField("ip", ipFromCtx(c)).Warn("webhook rejected")
			}
			response.Abort(c, http.StatusUnauthorized, "invalid webhook signature", nil)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
