package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GoOrderly/orderlygate/internal/config"
	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/pkg/apperrors"
	"github.com/GoOrderly/orderlygate/internal/pkg/metrics"
	"github.com/GoOrderly/orderlygate/internal/signer"
	"github.com/shopspring/decimal"
)

// Batch endpoints accept between 1 and 10 items per call.
const (
	batchMin = 1
	batchMax = 10
)

// OrderlyClientFactory builds per-request venue clients over one shared
// tuned HTTP transport.
type OrderlyClientFactory struct {
	baseURL       string
	brokerID      string
	maxOrderValue decimal.Decimal
	httpClient    *http.Client
}

func NewOrderlyClientFactory(cfg *config.Config) *OrderlyClientFactory {
	timeout := time.Duration(cfg.Orderly.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxValue := decimal.Zero
	if cfg.Risk.MaxOrderValue != "" {
		if v, err := decimal.NewFromString(cfg.Risk.MaxOrderValue); err == nil && v.IsPositive() {
			maxValue = v
		}
	}

	return &OrderlyClientFactory{
		baseURL:       cfg.Orderly.BaseURL,
		brokerID:      cfg.Orderly.BrokerID,
		maxOrderValue: maxValue,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
	}
}

// Client binds resolved credentials to a venue client. A nil credential
// set yields a client restricted to public endpoints.
func (f *OrderlyClientFactory) Client(creds *model.OrderlyCredentials) *OrderlyClient {
	c := &OrderlyClient{
		baseURL:       f.baseURL,
		brokerID:      f.brokerID,
		maxOrderValue: f.maxOrderValue,
		httpClient:    f.httpClient,
	}
	if creds != nil {
		c.creds = &signer.Credentials{
			AccountID: creds.AccountID,
			Key:       creds.OrderlyKey,
			Secret:    creds.OrderlySecret,
		}
	}
	return c
}

// OrderlyClient issues REST calls against the venue, signing private ones
// and normalizing every venue-formatted response into model.VenueResult.
// Transport failures are not normalized; they surface as upstream errors
// so the caller can tell "venue rejected this" from "could not reach
// venue".
type OrderlyClient struct {
	baseURL       string
	brokerID      string
	maxOrderValue decimal.Decimal
	creds         *signer.Credentials
	httpClient    *http.Client
}

// Call performs one venue request. For Get/Delete, data must be
// url.Values and is appended to the path for both the outgoing URL and
// the signed message; for Post/Put, data is JSON-serialized once and the
// identical bytes are signed and transmitted.
func (c *OrderlyClient) Call(ctx context.Context, method signer.Method, path string, data interface{}, private bool) (*model.VenueResult, error) {
	var body []byte
	var err error

	if data != nil {
		if method.HasBody() {
			body, err = json.Marshal(data)
			if err != nil {
				return nil, apperrors.NewValidation(fmt.Sprintf("unserializable request body: %v", err))
			}
		} else {
			params, ok := data.(url.Values)
			if !ok {
				return nil, fmt.Errorf("orderly: %s data must be url.Values", method)
			}
			if encoded := params.Encode(); encoded != "" {
				path = path + "?" + encoded
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method.String(), c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if private {
		if c.creds == nil {
			return nil, apperrors.NewAuthFailed("orderly credentials required for private endpoint")
		}
		headers, err := signer.AuthHeaders(*c.creds, method, path, body)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInvalidKey, "failed to sign venue request", err)
		}
		req.Header = headers
	} else if ct := method.ContentType(); ct != "" && len(body) > 0 {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.VenueCalls.WithLabelValues(method.String(), "transport_error").Inc()
		return nil, apperrors.New(apperrors.ErrUpstream, "venue unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.VenueCalls.WithLabelValues(method.String(), "transport_error").Inc()
		return nil, apperrors.New(apperrors.ErrUpstream, "failed to read venue response", err)
	}

	var result model.VenueResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// No venue-formatted envelope: re-raise rather than normalize.
		metrics.VenueCalls.WithLabelValues(method.String(), "transport_error").Inc()
		return nil, apperrors.New(apperrors.ErrUpstream,
			fmt.Sprintf("venue returned non-envelope response (status %d)", resp.StatusCode), err)
	}

	if result.Success {
		metrics.VenueCalls.WithLabelValues(method.String(), "ok").Inc()
	} else {
		metrics.VenueCalls.WithLabelValues(method.String(), "rejected").Inc()
	}
	return &result, nil
}

// --- Trading ---

func (c *OrderlyClient) CreateOrder(ctx context.Context, order model.CreateOrderRequest) (*model.VenueResult, error) {
	if err := c.checkOrderValue(order); err != nil {
		return nil, err
	}
	return c.Call(ctx, signer.Post, "/v1/order", order, true)
}

func (c *OrderlyClient) EditOrder(ctx context.Context, edit model.EditOrderRequest) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Put, "/v1/order", edit, true)
}

func (c *OrderlyClient) GetOrder(ctx context.Context, orderID string) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/order/"+orderID, nil, true)
}

func (c *OrderlyClient) GetOrders(ctx context.Context, symbol string) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/orders", symbolParams(symbol), true)
}

func (c *OrderlyClient) GetOrderHistory(ctx context.Context, params url.Values) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/orders/history", params, true)
}

func (c *OrderlyClient) CancelOrder(ctx context.Context, orderID, symbol string) (*model.VenueResult, error) {
	params := url.Values{}
	params.Set("order_id", orderID)
	params.Set("symbol", symbol)
	return c.Call(ctx, signer.Delete, "/v1/order", params, true)
}

func (c *OrderlyClient) CancelAllOrders(ctx context.Context, symbol string) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Delete, "/v1/orders", symbolParams(symbol), true)
}

// BatchCreateOrders enforces the venue's 1-10 cardinality locally; an
// out-of-range batch fails before any network call.
func (c *OrderlyClient) BatchCreateOrders(ctx context.Context, orders []model.CreateOrderRequest) (*model.VenueResult, error) {
	if len(orders) < batchMin || len(orders) > batchMax {
		return nil, apperrors.New(apperrors.ErrInvalidBatchSize,
			fmt.Sprintf("must provide 1-10 orders for batch creation, got %d", len(orders)), nil)
	}
	for _, o := range orders {
		if err := c.checkOrderValue(o); err != nil {
			return nil, err
		}
	}
	return c.Call(ctx, signer.Post, "/v1/batch-order", model.BatchCreateRequest{Orders: orders}, true)
}

func (c *OrderlyClient) BatchCancelOrders(ctx context.Context, orderIDs []string) (*model.VenueResult, error) {
	if len(orderIDs) < batchMin || len(orderIDs) > batchMax {
		return nil, apperrors.New(apperrors.ErrInvalidBatchSize,
			fmt.Sprintf("must provide 1-10 order ids for batch cancellation, got %d", len(orderIDs)), nil)
	}
	params := url.Values{}
	params.Set("order_ids", strings.Join(orderIDs, ","))
	return c.Call(ctx, signer.Delete, "/v1/batch-order", params, true)
}

// --- Algo orders ---

func (c *OrderlyClient) CreateAlgoOrder(ctx context.Context, order json.RawMessage) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Post, "/v1/algo/order", order, true)
}

func (c *OrderlyClient) EditAlgoOrder(ctx context.Context, algoOrderID string, edit map[string]interface{}) (*model.VenueResult, error) {
	if edit == nil {
		edit = map[string]interface{}{}
	}
	edit["algo_order_id"] = algoOrderID
	return c.Call(ctx, signer.Put, "/v1/algo/order", edit, true)
}

func (c *OrderlyClient) CancelAlgoOrder(ctx context.Context, algoOrderID string) (*model.VenueResult, error) {
	params := url.Values{}
	params.Set("algo_order_id", algoOrderID)
	return c.Call(ctx, signer.Delete, "/v1/algo/order", params, true)
}

func (c *OrderlyClient) GetAlgoOrder(ctx context.Context, algoOrderID string) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/algo/order/"+algoOrderID, nil, true)
}

func (c *OrderlyClient) GetAlgoOrders(ctx context.Context, params url.Values) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/algo/orders", params, true)
}

// --- Positions & account ---

func (c *OrderlyClient) GetPositions(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/positions", nil, true)
}

func (c *OrderlyClient) GetPosition(ctx context.Context, symbol string) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/position/"+symbol, nil, true)
}

func (c *OrderlyClient) GetAccountInfo(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/client/info", nil, true)
}

func (c *OrderlyClient) GetBalances(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/client/holding", nil, true)
}

func (c *OrderlyClient) GetAccountStats(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/client/statistics", nil, true)
}

// --- Registration (public) ---

func (c *OrderlyClient) GetRegistrationNonce(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/registration_nonce", nil, false)
}

func (c *OrderlyClient) RegisterAccount(ctx context.Context, req model.RegisterAccountRequest) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Post, "/v1/register_account", req, false)
}

func (c *OrderlyClient) AddOrderlyKey(ctx context.Context, req model.AddKeyRequest) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Post, "/v1/orderly_key", req, false)
}

// CheckAccountExists resolves the broker id from configuration; the
// account id is opaque and never parsed for tenant information.
func (c *OrderlyClient) CheckAccountExists(ctx context.Context, address, brokerID string) (*model.VenueResult, error) {
	if brokerID == "" {
		brokerID = c.brokerID
	}
	params := url.Values{}
	params.Set("address", address)
	params.Set("broker_id", brokerID)
	return c.Call(ctx, signer.Get, "/v1/get_account", params, false)
}

// --- Market data (public) ---

func (c *OrderlyClient) GetSymbols(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/public/info", nil, false)
}

func (c *OrderlyClient) GetTicker(ctx context.Context, symbol string) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/public/ticker/"+symbol, nil, false)
}

func (c *OrderlyClient) GetAllTickers(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/public/futures", nil, false)
}

func (c *OrderlyClient) GetOrderbook(ctx context.Context, symbol string, depth int) (*model.VenueResult, error) {
	var params url.Values
	if depth > 0 {
		params = url.Values{}
		params.Set("max_level", strconv.Itoa(depth))
	}
	return c.Call(ctx, signer.Get, "/v1/public/orderbook/"+symbol, params, false)
}

func (c *OrderlyClient) GetTrades(ctx context.Context, symbol string, limit int) (*model.VenueResult, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{}
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.Call(ctx, signer.Get, "/v1/public/trades/"+symbol, params, false)
}

// GetKlines is private on the venue side despite being market data.
func (c *OrderlyClient) GetKlines(ctx context.Context, params url.Values) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/kline", params, true)
}

func (c *OrderlyClient) GetFundingRate(ctx context.Context, symbol string) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/public/funding_rate/"+symbol, nil, false)
}

func (c *OrderlyClient) GetFundingRateHistory(ctx context.Context, params url.Values) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/public/funding_rate_history", params, false)
}

// --- Withdrawals & settlement ---

func (c *OrderlyClient) GetWithdrawNonce(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/withdraw_nonce", nil, true)
}

func (c *OrderlyClient) RequestWithdraw(ctx context.Context, req model.WithdrawRequest) (*model.VenueResult, error) {
	// EIP-712 format when the wallet signature is supplied, simple
	// format otherwise; the venue decides whether the latter suffices.
	if req.Signature != "" && len(req.Message) > 0 {
		return c.Call(ctx, signer.Post, "/v1/withdraw_request", map[string]interface{}{
			"signature":         req.Signature,
			"message":           req.Message,
			"userAddress":       req.UserAddress,
			"verifyingContract": req.VerifyingContract,
		}, true)
	}
	return c.Call(ctx, signer.Post, "/v1/withdraw_request", map[string]interface{}{
		"token":                        req.Token,
		"amount":                       req.Amount,
		"chain_id":                     req.ChainID,
		"allow_cross_chain_withdrawal": req.AllowCrossChainWithdrawal,
	}, true)
}

func (c *OrderlyClient) GetWithdrawHistory(ctx context.Context, params url.Values) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/asset/history", params, true)
}

func (c *OrderlyClient) GetSettlementInfo(ctx context.Context) (*model.VenueResult, error) {
	return c.Call(ctx, signer.Get, "/v1/settle/check", nil, true)
}

// checkOrderValue rejects orders whose notional exceeds the configured
// cap before they reach the venue.
func (c *OrderlyClient) checkOrderValue(order model.CreateOrderRequest) error {
	if c.maxOrderValue.IsZero() || order.OrderPrice == nil || order.OrderQuantity == nil {
		return nil
	}
	notional := decimal.NewFromFloat(*order.OrderPrice).Mul(decimal.NewFromFloat(*order.OrderQuantity))
	if notional.GreaterThan(c.maxOrderValue) {
		return apperrors.NewValidation(
			fmt.Sprintf("order notional %s exceeds max order value %s", notional, c.maxOrderValue))
	}
	return nil
}

func symbolParams(symbol string) url.Values {
	if symbol == "" {
		return nil
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	return params
}
