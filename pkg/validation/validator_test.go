package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type roleRequest struct {
	Role string `json:"role" binding:"required,role_choice" validate:"required,role_choice"`
}

type itemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
	Status    string `json:"status" validate:"omitempty,order_status"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	v := newValidator()

	err := v.Struct(roleRequest{Role: "ADMIN"})
	assert.Equal(t, map[string]string{"role": "must be one of: CUSTOMER, OWNER"}, ToDetails(err))

	err = v.Struct(itemRequest{Quantity: 0, Status: "shipped"})
	d := ToDetails(err)
	assert.Equal(t, "is required", d["product_id"])
	assert.Equal(t, "must be at least 1", d["quantity"])
	assert.Equal(t, "must be a valid order status", d["status"])
}

func TestToDetailsPayloadErrors(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte("{"), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
	assert.NoError(t, newValidator().Struct(roleRequest{Role: "OWNER"}))
}
