package payment

import (
	"net/url"
	"time"
)

// PayRequest carries everything needed to build a signed payment redirect URL.
// CreateDate is passed in so URL construction stays deterministic.
type PayRequest struct {
	OrderID    string
	Amount     int64
	OrderInfo  string
	IPAddr     string
	CreateDate time.Time
}

// RefundRequest reverses a settled transaction. TransactionDate is the
// original payment date recorded on the ledger entry.
type RefundRequest struct {
	OrderID         string
	Amount          int64
	TransactionDate time.Time
	IPAddr          string
	CreateDate      time.Time
}

// CallbackParams is the typed shape of the gateway's asynchronous
// notification. Fields are only trusted after VerifyCallback has checked the
// secure hash.
type CallbackParams struct {
	Amount            string
	BankCode          string
	BankTranNo        string
	CardType          string
	OrderInfo         string
	PayDate           string
	ResponseCode      string
	TmnCode           string
	TransactionNo     string
	TransactionStatus string
	TxnRef            string
	SecureHash        string
}

const txnStatusSuccess = "00"

// Success reports whether the gateway signalled a completed payment.
func (p *CallbackParams) Success() bool {
	return p.TransactionStatus == txnStatusSuccess
}

// PayTime parses the gateway's pay-date field. Falls back to now when the
// gateway omitted it (failed payments carry no settlement time).
func (p *CallbackParams) PayTime() time.Time {
	if p.PayDate == "" {
		return time.Now()
	}
	t, err := time.ParseInLocation(gatewayDateFormat, p.PayDate, gatewayLocation())
	if err != nil {
		return time.Now()
	}
	return t
}

var knownCallbackKeys = map[string]struct{}{
	"vnp_Amount":            {},
	"vnp_BankCode":          {},
	"vnp_BankTranNo":        {},
	"vnp_CardType":          {},
	"vnp_OrderInfo":         {},
	"vnp_PayDate":           {},
	"vnp_ResponseCode":      {},
	"vnp_TmnCode":           {},
	"vnp_TransactionNo":     {},
	"vnp_TransactionStatus": {},
	"vnp_TxnRef":            {},
	"vnp_SecureHash":        {},
	"vnp_SecureHashType":    {},
}

var requiredCallbackKeys = []string{
	"vnp_Amount",
	"vnp_ResponseCode",
	"vnp_TransactionStatus",
	"vnp_TxnRef",
	"vnp_SecureHash",
}

// ParseCallback validates the inbound query against the documented field set
// before anything is read from it. Unknown or missing required fields are a
// malformed callback, not a processing failure.
func ParseCallback(values url.Values) (*CallbackParams, error) {
	for key := range values {
		if _, ok := knownCallbackKeys[key]; !ok {
			return nil, ErrMalformedCallback
		}
	}
	for _, key := range requiredCallbackKeys {
		if values.Get(key) == "" {
			return nil, ErrMalformedCallback
		}
	}

	return &CallbackParams{
		Amount:            values.Get("vnp_Amount"),
		BankCode:          values.Get("vnp_BankCode"),
		BankTranNo:        values.Get("vnp_BankTranNo"),
		CardType:          values.Get("vnp_CardType"),
		OrderInfo:         values.Get("vnp_OrderInfo"),
		PayDate:           values.Get("vnp_PayDate"),
		ResponseCode:      values.Get("vnp_ResponseCode"),
		TmnCode:           values.Get("vnp_TmnCode"),
		TransactionNo:     values.Get("vnp_TransactionNo"),
		TransactionStatus: values.Get("vnp_TransactionStatus"),
		TxnRef:            values.Get("vnp_TxnRef"),
		SecureHash:        values.Get("vnp_SecureHash"),
	}, nil
}
