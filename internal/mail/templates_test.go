package mail

import (
	"bytes"
	"testing"
	"text/template"

	"hoalan-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderTemplate(t *testing.T, name string, data any) string {
	t.Helper()

	tmpl, err := template.New("mail").Parse(bodyTemplates)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func TestBodyTemplates(t *testing.T) {
	t.Run("OrderPaid", func(t *testing.T) {
		body := renderTemplate(t, TemplateOrderPaid, map[string]any{
			"CustomerName": "Lan Nguyen",
			"OrderID":      "f47ac10b-58cc-4372-a567-0e02b2c3d479",
			"Items": []map[string]any{
				{"ProductName": "Linen Shirt", "Quantity": 2},
			},
			"TotalCost":    180,
			"ShippingCost": 30,
			"DiscountCost": 20,
			"Amount":       190,
		})

		assert.Contains(t, body, "Hi Lan Nguyen")
		assert.Contains(t, body, "f47ac10b-58cc-4372-a567-0e02b2c3d479")
		assert.Contains(t, body, "Linen Shirt x2")
		assert.Contains(t, body, "Paid:      190")
	})

	t.Run("PaymentFailed", func(t *testing.T) {
		body := renderTemplate(t, TemplateOrderPaymentFailed, map[string]any{
			"CustomerName": "Lan Nguyen",
			"OrderID":      "abc",
			"Amount":       190,
		})

		assert.Contains(t, body, "did not go through")
		assert.Contains(t, body, "Amount due: 190")
	})

	t.Run("CancelApprovedWithRefund", func(t *testing.T) {
		body := renderTemplate(t, TemplateCancelApproved, map[string]any{
			"CustomerName": "Lan Nguyen",
			"OrderID":      "abc",
			"Refunded":     true,
			"Amount":       190,
			"Reason":       "",
		})

		assert.Contains(t, body, "has been approved")
		assert.Contains(t, body, "A refund of 190")
	})

	t.Run("CancelApprovedWithoutRefund", func(t *testing.T) {
		body := renderTemplate(t, TemplateCancelApproved, map[string]any{
			"CustomerName": "Lan Nguyen",
			"OrderID":      "abc",
			"Refunded":     false,
			"Amount":       0,
			"Reason":       "",
		})

		assert.NotContains(t, body, "refund")
	})

	t.Run("CancelRejected", func(t *testing.T) {
		body := renderTemplate(t, TemplateCancelRejected, map[string]any{
			"CustomerName": "Lan Nguyen",
			"OrderID":      "abc",
			"Reason":       "already packed",
		})

		assert.Contains(t, body, "was not approved")
		assert.Contains(t, body, "Reason: already packed")
	})
}

func TestNewSMTPMailerParsesTemplates(t *testing.T) {
	m, err := NewSMTPMailer(config.SMTPConfig{
		Host: "smtp.example.com",
		Port: "587",
		From: "noreply@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
