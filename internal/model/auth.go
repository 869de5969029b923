package model

// OrderlyCredentials is one resolved set of venue credentials for a single
// request. Depending on the path it is either copied verbatim from request
// headers or loaded from the credential store.
type OrderlyCredentials struct {
	AccountID     string `json:"accountId"`
	OrderlyKey    string `json:"orderlyKey"`
	OrderlySecret string `json:"-"`
}

// AuthResult is the outcome of authenticating one inbound request. Created
// fresh per request and discarded at response time; never persisted.
type AuthResult struct {
	Authenticated bool                `json:"authenticated"`
	Partner       *Partner            `json:"partner,omitempty"`
	Orderly       *OrderlyCredentials `json:"orderly,omitempty"`
	Error         string              `json:"error,omitempty"`
}
