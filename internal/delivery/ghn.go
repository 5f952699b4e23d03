package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hoalan-be/internal/config"
	"hoalan-be/internal/logger"

	"go.uber.org/zap"
)

const (
	availableServicesPath = "/shiip/public-api/v2/shipping-order/available-services"
	calcFeePath           = "/shiip/public-api/v2/shipping-order/fee"
)

// Quoter returns a shipping fee for an order.
type Quoter interface {
	CalcFee(ctx context.Context, req QuoteRequest) (int64, error)
}

type ghnClient struct {
	cfg        config.DeliveryConfig
	httpClient *http.Client
}

func NewGHNClient(cfg config.DeliveryConfig) Quoter {
	if cfg.Token == "" {
		logger.L().Warn("GHN token is empty")
	}

	return &ghnClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type ghnService struct {
	ServiceID     int `json:"service_id"`
	ServiceTypeID int `json:"service_type_id"`
}

func (c *ghnClient) post(ctx context.Context, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read delivery response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delivery api error: %s", string(bodyBytes))
	}

	return json.Unmarshal(bodyBytes, out)
}

func (c *ghnClient) availableServices(ctx context.Context, toDistrictID int) ([]ghnService, error) {
	body := map[string]any{
		"shop_id":       c.cfg.ShopID,
		"from_district": c.cfg.FromDistrictID,
		"to_district":   toDistrictID,
	}

	var res struct {
		Data []ghnService `json:"data"`
	}
	if err := c.post(ctx, availableServicesPath, body, &res); err != nil {
		return nil, err
	}

	return res.Data, nil
}

// CalcFee picks the first service available for the destination district and
// asks for a quote with the package scaled by total item quantity.
func (c *ghnClient) CalcFee(ctx context.Context, req QuoteRequest) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int("to_district_id", req.ToDistrictID),
		zap.String("to_ward_code", req.ToWardCode),
	)

	services, err := c.availableServices(ctx, req.ToDistrictID)
	if err != nil {
		log.Error("failed to query available delivery services", zap.Error(err))
		return 0, err
	}
	if len(services) == 0 {
		log.Warn("no delivery service for destination")
		return 0, ErrServiceUnavailable
	}
	svc := services[0]

	totalQty := 0
	items := make([]map[string]any, 0, len(req.Items))
	for _, item := range req.Items {
		totalQty += item.Quantity
		items = append(items, map[string]any{
			"name":     item.Name,
			"quantity": item.Quantity,
			"length":   c.cfg.PackageLength,
			"width":    c.cfg.PackageWidth,
			"height":   c.cfg.PackageHeight * item.Quantity,
			"weight":   c.cfg.PackageWeight * item.Quantity,
		})
	}

	body := map[string]any{
		"shop_id":          c.cfg.ShopID,
		"service_id":       svc.ServiceID,
		"service_type_id":  svc.ServiceTypeID,
		"from_district_id": c.cfg.FromDistrictID,
		"from_ward_code":   c.cfg.FromWardCode,
		"to_district_id":   req.ToDistrictID,
		"to_ward_code":     req.ToWardCode,
		"length":           c.cfg.PackageLength,
		"width":            c.cfg.PackageWidth,
		"height":           c.cfg.PackageHeight * totalQty,
		"weight":           c.cfg.PackageWeight * totalQty,
		"insurance_value":  req.InsuredValue,
		"items":            items,
	}

	var res struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	if err := c.post(ctx, calcFeePath, body, &res); err != nil {
		log.Error("failed to calculate delivery fee", zap.Error(err))
		return 0, err
	}

	log.Debug("delivery fee quoted",
		zap.Int("service_id", svc.ServiceID),
		zap.Int64("fee", res.Data.Total),
	)

	return res.Data.Total, nil
}
