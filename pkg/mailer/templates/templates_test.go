package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderStatus(t *testing.T) {
	data := NewOrderStatusData("Ana", "ORD-20260101-ABCDEF12", "preparing", "for_delivery",
		WithEstimate("  17:30 "), WithTime(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)))
	data = ApplyBrand(data, Brand{AppName: "Desa Mart", CompanyName: "Desa Mart Ltd"})

	subject, text, html, err := Render(OrderStatus, data)
	require.NoError(t, err)
	assert.Equal(t, "[Desa Mart] Order ORD-20260101-ABCDEF12: Out for delivery", subject)
	assert.Contains(t, text, "Estimated delivery: 17:30")
	assert.Contains(t, text, "01 January 2026, 10:00")
	assert.Contains(t, html, "<strong>Out for delivery</strong>")
}

func TestApplyBrandKeepsProducerValues(t *testing.T) {
	data := ApplyBrand(map[string]any{"AppName": "Custom"}, Brand{AppName: "Default", CompanyName: "Co"})
	assert.Equal(t, "Custom", data["AppName"])
	assert.Equal(t, "Co", data["CompanyName"])
}

func TestStatusLabelFallsBack(t *testing.T) {
	assert.Equal(t, "Completed", StatusLabel("completed"))
	assert.Equal(t, "weird", StatusLabel("weird"))
}
