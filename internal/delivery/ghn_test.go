package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hoalan-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeliveryConfig(baseURL string) config.DeliveryConfig {
	return config.DeliveryConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		ShopID:         123,
		FromDistrictID: 1442,
		FromWardCode:   "20101",
		PackageLength:  30,
		PackageWidth:   20,
		PackageHeight:  10,
		PackageWeight:  500,
	}
}

func TestCalcFee(t *testing.T) {
	ctx := context.Background()

	quoteReq := QuoteRequest{
		InsuredValue: 180,
		ToDistrictID: 1482,
		ToWardCode:   "11006",
		Items: []PackageItem{
			{Name: "Linen Shirt", Quantity: 2},
			{Name: "Silk Scarf", Quantity: 1},
		},
	}

	t.Run("Success", func(t *testing.T) {
		var feeBody map[string]any

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-token", r.Header.Get("Token"))
			w.Header().Set("Content-Type", "application/json")

			switch r.URL.Path {
			case "/shiip/public-api/v2/shipping-order/available-services":
				w.Write([]byte(`{"data":[{"service_id":53320,"service_type_id":2},{"service_id":53322,"service_type_id":5}]}`))
			case "/shiip/public-api/v2/shipping-order/fee":
				require.NoError(t, json.NewDecoder(r.Body).Decode(&feeBody))
				w.Write([]byte(`{"data":{"total":30}}`))
			default:
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		client := NewGHNClient(testDeliveryConfig(srv.URL))

		fee, err := client.CalcFee(ctx, quoteReq)
		require.NoError(t, err)
		assert.Equal(t, int64(30), fee)

		// The first available service is used for the quote.
		assert.Equal(t, float64(53320), feeBody["service_id"])
		assert.Equal(t, float64(1482), feeBody["to_district_id"])
		assert.Equal(t, "11006", feeBody["to_ward_code"])
		assert.Equal(t, float64(180), feeBody["insurance_value"])

		// Package size scales with the total ordered quantity.
		assert.Equal(t, float64(10*3), feeBody["height"])
		assert.Equal(t, float64(500*3), feeBody["weight"])

		items := feeBody["items"].([]any)
		require.Len(t, items, 2)
		first := items[0].(map[string]any)
		assert.Equal(t, "Linen Shirt", first["name"])
		assert.Equal(t, float64(500*2), first["weight"])
	})

	t.Run("NoServiceForDestination", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()

		client := NewGHNClient(testDeliveryConfig(srv.URL))

		_, err := client.CalcFee(ctx, quoteReq)
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewGHNClient(testDeliveryConfig(srv.URL))

		_, err := client.CalcFee(ctx, quoteReq)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrServiceUnavailable)
	})
}
