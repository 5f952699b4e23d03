package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"hoalan-be/internal/config"
	"hoalan-be/internal/logger"

	"go.uber.org/zap"
)

const (
	commandPay    = "pay"
	commandRefund = "refund"

	// Full refund of an already settled transaction.
	refundTransactionType = "02"
	refundCreateBy        = "system"

	currencyCode = "VND"
	orderType    = "other"

	gatewayDateFormat = "20060102150405"
)

var (
	locOnce sync.Once
	loc     *time.Location
)

// gatewayLocation returns the gateway's local timezone. Timestamps in the
// wire protocol are expressed in GMT+7.
func gatewayLocation() *time.Location {
	locOnce.Do(func() {
		var err error
		loc, err = time.LoadLocation("Asia/Ho_Chi_Minh")
		if err != nil {
			logger.L().Error("failed to load gateway timezone, defaulting to UTC", zap.Error(err))
			loc = time.UTC
		}
	})
	return loc
}

// Gateway builds signed redirect URLs for payment, requests refunds and
// verifies inbound callback signatures.
type Gateway interface {
	BuildPayURL(req PayRequest) string
	Refund(ctx context.Context, req RefundRequest) error
	VerifyCallback(values url.Values) bool
}

type vnpayGateway struct {
	baseURL    string
	tmnCode    string
	hashSecret string
	version    string
	locale     string
	returnURL  string
	httpClient *http.Client
}

func NewVNPayGateway(cfg config.VNPayConfig) Gateway {
	if cfg.HashSecret == "" {
		logger.L().Warn("VNPay hash secret is empty")
	}

	return &vnpayGateway{
		baseURL:    cfg.BaseURL,
		tmnCode:    cfg.TmnCode,
		hashSecret: cfg.HashSecret,
		version:    cfg.Version,
		locale:     cfg.Locale,
		returnURL:  cfg.ReturnURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// sign encodes params sorted by key with spaces as '+', appends the
// HMAC-SHA512 signature over that exact string and returns the full query.
func (g *vnpayGateway) sign(params url.Values) string {
	data := params.Encode()

	mac := hmac.New(sha512.New, []byte(g.hashSecret))
	mac.Write([]byte(data))

	return data + "&vnp_SecureHash=" + hex.EncodeToString(mac.Sum(nil))
}

func (g *vnpayGateway) BuildPayURL(req PayRequest) string {
	params := url.Values{}
	params.Set("vnp_Version", g.version)
	params.Set("vnp_Command", commandPay)
	params.Set("vnp_TmnCode", g.tmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CreateDate", req.CreateDate.In(gatewayLocation()).Format(gatewayDateFormat))
	params.Set("vnp_CurrCode", currencyCode)
	params.Set("vnp_IpAddr", req.IPAddr)
	params.Set("vnp_Locale", g.locale)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", orderType)
	params.Set("vnp_ReturnUrl", g.returnURL)
	params.Set("vnp_TxnRef", req.OrderID)

	return g.baseURL + "?" + g.sign(params)
}

func (g *vnpayGateway) buildRefundURL(req RefundRequest) string {
	createDate := req.CreateDate.In(gatewayLocation())

	params := url.Values{}
	params.Set("vnp_RequestId", createDate.Format(gatewayDateFormat))
	params.Set("vnp_Version", g.version)
	params.Set("vnp_Command", commandRefund)
	params.Set("vnp_TmnCode", g.tmnCode)
	params.Set("vnp_TransactionType", refundTransactionType)
	params.Set("vnp_TxnRef", req.OrderID)
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_OrderInfo", "Hoan tien don hang "+req.OrderID)
	params.Set("vnp_TransactionDate", req.TransactionDate.In(gatewayLocation()).Format(gatewayDateFormat))
	params.Set("vnp_CreateBy", refundCreateBy)
	params.Set("vnp_CreateDate", createDate.Format(gatewayDateFormat))
	params.Set("vnp_IpAddr", req.IPAddr)

	return g.baseURL + "?" + g.sign(params)
}

// Refund requests a full refund of the original transaction.
func (g *vnpayGateway) Refund(ctx context.Context, req RefundRequest) error {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", req.OrderID),
		zap.Int64("amount", req.Amount),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.buildRefundURL(req), nil)
	if err != nil {
		log.Error("failed to build refund request", zap.Error(err))
		return err
	}

	log.Info("sending refund request to gateway")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("refund request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read refund response body", zap.Error(err))
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("gateway returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return fmt.Errorf("gateway error: %s", string(bodyBytes))
	}

	var res struct {
		ResponseCode string `json:"vnp_ResponseCode"`
		Message      string `json:"vnp_Message"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("failed decoding refund response", zap.Error(err))
		return err
	}

	if res.ResponseCode != txnStatusSuccess {
		log.Error("refund rejected",
			zap.String("response_code", res.ResponseCode),
			zap.String("message", res.Message),
		)
		return ErrRefundRejected
	}

	log.Info("refund accepted by gateway")
	return nil
}

// VerifyCallback recomputes the secure hash over the callback's own
// parameters and compares it in constant time. Nothing in the callback may be
// trusted before this returns true.
func (g *vnpayGateway) VerifyCallback(values url.Values) bool {
	got := values.Get("vnp_SecureHash")
	if got == "" {
		return false
	}

	params := url.Values{}
	for key, vals := range values {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		params[key] = vals
	}

	mac := hmac.New(sha512.New, []byte(g.hashSecret))
	mac.Write([]byte(params.Encode()))
	want := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}
