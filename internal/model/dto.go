package model

import "encoding/json"

// CreateOrderRequest is the incoming JSON body for order creation,
// forwarded to the venue unchanged after validation.
type CreateOrderRequest struct {
	Symbol        string   `json:"symbol" binding:"required"`
	Side          string   `json:"side" binding:"required,oneof=BUY SELL"`
	OrderType     string   `json:"order_type" binding:"required"`
	OrderPrice    *float64 `json:"order_price,omitempty"`
	OrderQuantity *float64 `json:"order_quantity,omitempty"`
	OrderAmount   *float64 `json:"order_amount,omitempty"`
	ReduceOnly    *bool    `json:"reduce_only,omitempty"`
	ClientOrderID string   `json:"client_order_id,omitempty"`
}

// EditOrderRequest modifies price or quantity of an open order.
type EditOrderRequest struct {
	OrderID       string   `json:"order_id" binding:"required"`
	OrderType     string   `json:"order_type" binding:"required"`
	Side          string   `json:"side" binding:"required,oneof=BUY SELL"`
	Symbol        string   `json:"symbol" binding:"required"`
	OrderPrice    *float64 `json:"order_price,omitempty"`
	OrderQuantity *float64 `json:"order_quantity,omitempty"`
}

// BatchCreateRequest wraps 1-10 orders for the venue's batch endpoint.
type BatchCreateRequest struct {
	Orders []CreateOrderRequest `json:"orders" binding:"required"`
}

// BatchCancelRequest carries 1-10 order IDs to cancel in one call.
type BatchCancelRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required"`
}

// SaveKeysRequest persists venue credentials for the authenticated
// partner. Keys must be in ed25519:{base58} format.
type SaveKeysRequest struct {
	AccountID     string `json:"accountId" binding:"required"`
	OrderlyKey    string `json:"orderlyKey" binding:"required"`
	OrderlySecret string `json:"orderlySecret" binding:"required"`
}

// RegisterAccountRequest proxies a wallet-signed registration payload to
// the venue. The gateway forwards the signature; it never signs wallet
// messages itself.
type RegisterAccountRequest struct {
	Message     RegisterMessage `json:"message" binding:"required"`
	Signature   string          `json:"signature" binding:"required"`
	UserAddress string          `json:"userAddress" binding:"required"`
}

type RegisterMessage struct {
	BrokerID          string `json:"brokerId" binding:"required"`
	ChainID           int64  `json:"chainId" binding:"required"`
	Timestamp         string `json:"timestamp" binding:"required"`
	RegistrationNonce string `json:"registrationNonce" binding:"required"`
}

// AddKeyRequest registers a new orderly key with the venue.
type AddKeyRequest struct {
	Message     AddKeyMessage `json:"message" binding:"required"`
	Signature   string        `json:"signature" binding:"required"`
	UserAddress string        `json:"userAddress" binding:"required"`
}

type AddKeyMessage struct {
	BrokerID   string `json:"brokerId" binding:"required"`
	ChainID    int64  `json:"chainId" binding:"required"`
	OrderlyKey string `json:"orderlyKey" binding:"required"`
	Scope      string `json:"scope" binding:"required"`
	Timestamp  string `json:"timestamp" binding:"required"`
	Expiration string `json:"expiration" binding:"required"`
}

// WithdrawRequest asks the venue to withdraw funds. The EIP-712 fields
// are optional; when present they are forwarded as-is.
type WithdrawRequest struct {
	Token                     string          `json:"token" binding:"required"`
	Amount                    float64         `json:"amount" binding:"required"`
	ChainID                   int64           `json:"chain_id" binding:"required"`
	AllowCrossChainWithdrawal *bool           `json:"allow_cross_chain_withdrawal,omitempty"`
	Signature                 string          `json:"signature,omitempty"`
	Message                   json.RawMessage `json:"message,omitempty"`
	UserAddress               string          `json:"userAddress,omitempty"`
	VerifyingContract         string          `json:"verifyingContract,omitempty"`
}

// VenueResult is the venue's uniform response envelope. Transport
// failures never produce one; they surface as upstream errors instead.
type VenueResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Code    int             `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}
