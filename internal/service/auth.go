package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/pkg/logger"
	"github.com/GoOrderly/orderlygate/internal/repository"
	"github.com/GoOrderly/orderlygate/internal/signer"
	"golang.org/x/crypto/bcrypt"
)

// Inbound auth headers.
const (
	HeaderAPIKey        = "X-API-KEY"
	HeaderAccountID     = "X-Account-ID"
	HeaderOrderlyKey    = "X-Orderly-Key"
	HeaderOrderlySecret = "X-Orderly-Secret"
)

type PartnerReader interface {
	ListByKeyPrefix(ctx context.Context, prefix string) ([]*model.Partner, error)
	ListAll(ctx context.Context) ([]*model.Partner, error)
}

type CredentialReader interface {
	GetForPartner(ctx context.Context, partnerID int64, accountID string) (*model.OrderlyCredential, error)
}

// CredentialResolver authenticates inbound requests and resolves venue
// trading credentials. Purely local: the only I/O is at most one
// credential-store read, never a venue call.
type CredentialResolver struct {
	partners PartnerReader
	creds    CredentialReader
}

func NewCredentialResolver(partners PartnerReader, creds CredentialReader) *CredentialResolver {
	return &CredentialResolver{partners: partners, creds: creds}
}

// Authenticate runs the two-factor resolution for one request:
// partner API key first, then venue credentials from headers (stateless,
// authoritative when complete) or from the store (scoped to the
// authenticated partner).
func (r *CredentialResolver) Authenticate(ctx context.Context, headers http.Header) *model.AuthResult {
	apiKey := headers.Get(HeaderAPIKey)
	if apiKey == "" {
		return &model.AuthResult{Error: "API key is required. Include it in X-API-KEY header."}
	}

	partner, err := r.verifyAPIKey(ctx, apiKey)
	if err != nil {
		logger.LogError(ctx, err, "partner lookup failed")
		return &model.AuthResult{Error: "authentication unavailable"}
	}
	if partner == nil {
		return &model.AuthResult{Error: "Invalid API key provided"}
	}

	accountID := headers.Get(HeaderAccountID)
	orderlyKey := headers.Get(HeaderOrderlyKey)
	orderlySecret := headers.Get(HeaderOrderlySecret)

	// Stateless mode: a complete header-supplied credential set is
	// authoritative and never touches the store.
	if accountID != "" && orderlyKey != "" && orderlySecret != "" {
		if !signer.ValidKeyString(orderlyKey) || !signer.ValidKeyString(orderlySecret) {
			return &model.AuthResult{
				Authenticated: true,
				Partner:       partner,
				Error:         "orderly key and secret must be in ed25519:{base58} format",
			}
		}
		return &model.AuthResult{
			Authenticated: true,
			Partner:       partner,
			Orderly: &model.OrderlyCredentials{
				AccountID:     accountID,
				OrderlyKey:    orderlyKey,
				OrderlySecret: orderlySecret,
			},
		}
	}

	// Stateful mode: account id alone selects the stored credential.
	// The lookup is keyed by (partner, account), so another partner's
	// record for the same account id is unreachable.
	if accountID != "" {
		stored, err := r.creds.GetForPartner(ctx, partner.ID, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrCredentialNotFound) {
				return &model.AuthResult{Authenticated: true, Partner: partner}
			}
			logger.LogError(ctx, err, "credential lookup failed", "partner_id", partner.ID)
			return &model.AuthResult{Error: "credential lookup failed"}
		}
		return &model.AuthResult{
			Authenticated: true,
			Partner:       partner,
			Orderly: &model.OrderlyCredentials{
				AccountID:     stored.AccountID,
				OrderlyKey:    stored.OrderlyKey,
				OrderlySecret: stored.OrderlySecret,
			},
		}
	}

	// Valid API key, no venue credentials: public endpoints only.
	return &model.AuthResult{Authenticated: true, Partner: partner}
}

// verifyAPIKey returns the matching partner, or nil when no hash matches.
// Keys issued by this gateway carry a non-secret prefix (og_xxxx.yyyy)
// that narrows the candidate set to an indexed lookup; keys from before
// prefixing fall back to comparing against every partner.
func (r *CredentialResolver) verifyAPIKey(ctx context.Context, apiKey string) (*model.Partner, error) {
	var candidates []*model.Partner
	var err error

	if prefix, ok := splitKeyPrefix(apiKey); ok {
		candidates, err = r.partners.ListByKeyPrefix(ctx, prefix)
	} else {
		candidates, err = r.partners.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	for _, p := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(p.APIKeyHash), []byte(apiKey)) == nil {
			return p, nil
		}
	}
	return nil, nil
}

// splitKeyPrefix extracts the non-secret prefix from a gateway-issued key
// of the form og_{id}.{secret}.
func splitKeyPrefix(apiKey string) (string, bool) {
	if !strings.HasPrefix(apiKey, "og_") {
		return "", false
	}
	idx := strings.IndexByte(apiKey, '.')
	if idx <= 0 || idx == len(apiKey)-1 {
		return "", false
	}
	return apiKey[:idx], true
}
