package mail

// Template names used by the order lifecycle notifications.
const (
	TemplateOrderPaid          = "order_paid"
	TemplateOrderPaymentFailed = "order_payment_failed"
	TemplateCancelApproved     = "cancel_approved"
	TemplateCancelRejected     = "cancel_rejected"
)

const bodyTemplates = `
{{define "order_paid"}}Hi {{.CustomerName}},

We received your payment for order {{.OrderID}}.

{{range .Items}}  - {{.ProductName}} x{{.Quantity}}
{{end}}
Subtotal:  {{.TotalCost}}
Shipping:  {{.ShippingCost}}
Discount: -{{.DiscountCost}}
Paid:      {{.Amount}}

Your order is now being prepared.
{{end}}

{{define "order_payment_failed"}}Hi {{.CustomerName}},

The payment for order {{.OrderID}} did not go through.

Amount due: {{.Amount}}

Nothing has been charged. Please retry the payment or contact support.
{{end}}

{{define "cancel_approved"}}Hi {{.CustomerName}},

Your cancellation request for order {{.OrderID}} has been approved.
{{if .Refunded}}A refund of {{.Amount}} is on its way to you.{{end}}
{{if .Reason}}Note: {{.Reason}}{{end}}
{{end}}

{{define "cancel_rejected"}}Hi {{.CustomerName}},

Your cancellation request for order {{.OrderID}} was not approved.
{{if .Reason}}Reason: {{.Reason}}{{end}}

The order keeps its current state; our support team will follow up.
{{end}}
`
