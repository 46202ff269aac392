package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
	"github.com/oksasatya/delivery-marketplace/pkg/response"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterMax(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	defer func() { _ = rdb.Close() }()

	r := gin.New()
	r.Use(RealIP())
	r.GET("/x", RateLimit(rdb, 2, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, strconv.Itoa(1-i), w.Header().Get("X-RateLimit-Remaining"))
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	defer func() { _ = rdb.Close() }()
	mr.Close()

	r := gin.New()
	r.GET("/x", RateLimit(rdb, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestAuthSetsProfile(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", "", time.Minute)
	r := gin.New()
	r.GET("/me", Auth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentProfile(c))
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/me", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	tok, _, err := jwt.Generate("user_1", "ana@example.com", "Ana", "")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	var p entity.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "user_1", p.ID)
	assert.Equal(t, "ana@example.com", p.Email)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	as := func(u *entity.User) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(CtxUserKey, u); c.Next() }
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	owners := RequireRole(entity.RoleOwner, entity.RoleAdmin)
	r.GET("/customer", as(&entity.User{ID: "u", Role: entity.RoleCustomer, Onboarded: true}), owners, ok)
	r.GET("/pending", as(&entity.User{ID: "p", Role: entity.RoleOwner}), owners, ok)
	r.GET("/owner", as(&entity.User{ID: "o", Role: entity.RoleOwner, Onboarded: true}), owners, ok)
	r.GET("/admin", as(&entity.User{ID: "a", Role: entity.RoleAdmin, Onboarded: true}), owners, ok)
	r.GET("/anon", owners, ok)

	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/customer", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/pending", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/anon", nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/owner", nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}

func TestVerifyWebhookShortCircuits(t *testing.T) {
	v, err := helpers.NewWebhookVerifier("whsec_dG9wc2VjcmV0", 5*time.Minute)
	require.NoError(t, err)
	reached := false
	r := gin.New()
	r.POST("/hook", VerifyWebhook(v, nil), func(c *gin.Context) {
		reached = true
		var body map[string]any
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, body)
	})

	body := `{"type":"user.deleted","data":{"id":"u1"}}`
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", fmt.Sprint(time.Now().Unix()))
	req.Header.Set("svix-signature", "v1,forged")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	assert.False(t, reached)

	now := time.Now()
	sig, err := v.Sign("msg_1", now, []byte(body))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", fmt.Sprint(now.Unix()))
	req.Header.Set("webhook-signature", sig)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reached)
	assert.Contains(t, w.Body.String(), "user.deleted")
}

func TestRequestIDReusesWellFormedHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(response.RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces")
	w = serve(r, req)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: bad", domain.ErrValidation):    http.StatusBadRequest,
		fmt.Errorf("%w: gone", domain.ErrNotFound):     http.StatusNotFound,
		domain.ErrUnauthorized:                          http.StatusUnauthorized,
		entity.ErrRoleLocked:                            http.StatusForbidden,
		entity.ErrStoreLimitReached:                     http.StatusConflict,
		domain.Infra("find", errors.New("conn reset")): http.StatusServiceUnavailable,
		errors.New("boom"):                              http.StatusInternalServerError,
	}
	for err, want := range cases {
		got, msg := StatusFor(err)
		assert.Equal(t, want, got, err.Error())
		assert.NotContains(t, msg, "conn reset")
	}
}

func TestRealIPHeaderPriority(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, ipFromCtx(c)) })

	cases := []struct {
		headers map[string]string
		want    string
	}{
		{map[string]string{"CF-Connecting-IP": "198.51.100.7", "X-Forwarded-For": "203.0.113.1"}, "198.51.100.7"},
		{map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{map[string]string{"X-Forwarded-For": " 203.0.113.1 , 10.0.0.1"}, "203.0.113.1"},
		{map[string]string{"CF-Connecting-IP": "garbage", "X-Forwarded-For": "203.0.113.2"}, "203.0.113.2"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		for k, v := range tc.headers {
			req.Header.Set(k, v)
		}
		assert.Equal(t, tc.want, serve(r, req).Body.String())
	}
}

func TestAccessLogLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), AccessLog(logger))
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	req := httptest.NewRequest(http.MethodGet, "/orders/o1", nil)
	req.Header.Set("X-Request-ID", "req-9")
	serve(r, req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.Equal(t, "/orders/:id", line["route"])
	assert.EqualValues(t, http.StatusServiceUnavailable, line["status"])
}
