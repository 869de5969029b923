package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAPIKey   = "og_deadbeef.0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testBase58   = "ed25519:6dbzcdcNfBGc3EmiN8nBKZXJBkivzGnE85vHPE4fwaYE"
	testAcctID   = "0xacc1"
	otherAPIKey  = "og_cafebabe.fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"
	otherAcctID  = "0xacc2"
	legacyAPIKey = "legacy-partner-key-without-prefix"
)

type fakePartnerRepo struct {
	partners      []*model.Partner
	prefixCalls   int
	fullScanCalls int
	err           error
}

func (f *fakePartnerRepo) ListByKeyPrefix(_ context.Context, prefix string) ([]*model.Partner, error) {
	f.prefixCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Partner
	for _, p := range f.partners {
		if p.KeyPrefix == prefix {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePartnerRepo) ListAll(_ context.Context) ([]*model.Partner, error) {
	f.fullScanCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.partners, nil
}

type fakeCredentialRepo struct {
	byPartner map[int64]map[string]*model.OrderlyCredential
	err       error
	calls     int
}

func (f *fakeCredentialRepo) GetForPartner(_ context.Context, partnerID int64, accountID string) (*model.OrderlyCredential, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if creds, ok := f.byPartner[partnerID]; ok {
		if c, ok := creds[accountID]; ok {
			return c, nil
		}
	}
	return nil, repository.ErrCredentialNotFound
}

func hashKey(t *testing.T, raw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestResolver(t *testing.T) (*CredentialResolver, *fakePartnerRepo, *fakeCredentialRepo) {
	t.Helper()
	partners := &fakePartnerRepo{partners: []*model.Partner{
		{ID: 1, Name: "acme", APIKeyHash: hashKey(t, testAPIKey), KeyPrefix: "og_deadbeef"},
		{ID: 2, Name: "rival", APIKeyHash: hashKey(t, otherAPIKey), KeyPrefix: "og_cafebabe"},
		{ID: 3, Name: "legacy", APIKeyHash: hashKey(t, legacyAPIKey)},
	}}
	creds := &fakeCredentialRepo{byPartner: map[int64]map[string]*model.OrderlyCredential{
		1: {testAcctID: {ID: 10, PartnerID: 1, AccountID: testAcctID, OrderlyKey: testBase58, OrderlySecret: testBase58}},
		2: {otherAcctID: {ID: 20, PartnerID: 2, AccountID: otherAcctID, OrderlyKey: testBase58, OrderlySecret: testBase58}},
	}}
	return NewCredentialResolver(partners, creds), partners, creds
}

func headersWith(pairs ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

func TestAuthenticateMissingAPIKey(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), http.Header{})

	assert.False(t, res.Authenticated)
	assert.Equal(t, "API key is required. Include it in X-API-KEY header.", res.Error)
}

func TestAuthenticateInvalidAPIKey(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(HeaderAPIKey, "og_deadbeef.wrongsecret"))

	assert.False(t, res.Authenticated)
	assert.Equal(t, "Invalid API key provided", res.Error)
	assert.Nil(t, res.Partner)
}

func TestAuthenticatePrefixedKeyUsesIndexedLookup(t *testing.T) {
	resolver, partners, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(HeaderAPIKey, testAPIKey))

	require.True(t, res.Authenticated)
	assert.Equal(t, "acme", res.Partner.Name)
	assert.Equal(t, 1, partners.prefixCalls)
	assert.Equal(t, 0, partners.fullScanCalls)
}

func TestAuthenticateLegacyKeyFallsBackToFullScan(t *testing.T) {
	resolver, partners, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(HeaderAPIKey, legacyAPIKey))

	require.True(t, res.Authenticated)
	assert.Equal(t, "legacy", res.Partner.Name)
	assert.Equal(t, 0, partners.prefixCalls)
	assert.Equal(t, 1, partners.fullScanCalls)
}

func TestAuthenticateStatelessMode(t *testing.T) {
	resolver, _, creds := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(
		HeaderAPIKey, testAPIKey,
		HeaderAccountID, "0xheader",
		HeaderOrderlyKey, testBase58,
		HeaderOrderlySecret, testBase58,
	))

	require.True(t, res.Authenticated)
	require.NotNil(t, res.Orderly)
	assert.Equal(t, "0xheader", res.Orderly.AccountID)
	// Header-supplied credentials never touch the store.
	assert.Equal(t, 0, creds.calls)
}

func TestAuthenticateStatelessWinsOverStored(t *testing.T) {
	resolver, _, creds := newTestResolver(t)

	// Account id matches a stored record but the full header set is
	// present, so the headers are authoritative.
	res := resolver.Authenticate(context.Background(), headersWith(
		HeaderAPIKey, testAPIKey,
		HeaderAccountID, testAcctID,
		HeaderOrderlyKey, testBase58,
		HeaderOrderlySecret, testBase58,
	))

	require.NotNil(t, res.Orderly)
	assert.Equal(t, 0, creds.calls)
}

func TestAuthenticateStatelessRejectsMalformedKey(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(
		HeaderAPIKey, testAPIKey,
		HeaderAccountID, testAcctID,
		HeaderOrderlyKey, "not-a-key",
		HeaderOrderlySecret, testBase58,
	))

	// Partner auth succeeded; only the venue credential set is unusable.
	assert.True(t, res.Authenticated)
	assert.Nil(t, res.Orderly)
	assert.Contains(t, res.Error, "ed25519:{base58}")
}

func TestAuthenticateStatefulMode(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(
		HeaderAPIKey, testAPIKey,
		HeaderAccountID, testAcctID,
	))

	require.True(t, res.Authenticated)
	require.NotNil(t, res.Orderly)
	assert.Equal(t, testAcctID, res.Orderly.AccountID)
	assert.Equal(t, testBase58, res.Orderly.OrderlySecret)
}

func TestAuthenticateStatefulUnknownAccount(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(
		HeaderAPIKey, testAPIKey,
		HeaderAccountID, "0xunknown",
	))

	assert.True(t, res.Authenticated)
	assert.Nil(t, res.Orderly)
	assert.Empty(t, res.Error)
}

func TestAuthenticateCrossTenantIsolation(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	// Partner acme asks for an account id stored only under partner rival.
	res := resolver.Authenticate(context.Background(), headersWith(
		HeaderAPIKey, testAPIKey,
		HeaderAccountID, otherAcctID,
	))

	assert.True(t, res.Authenticated)
	assert.Equal(t, "acme", res.Partner.Name)
	assert.Nil(t, res.Orderly, "another partner's credential must be unreachable")
}

func TestAuthenticateStoreErrorFailsClosed(t *testing.T) {
	resolver, _, creds := newTestResolver(t)
	creds.err = errors.New("connection refused")

	res := resolver.Authenticate(context.Background(), headersWith(
		HeaderAPIKey, testAPIKey,
		HeaderAccountID, testAcctID,
	))

	assert.False(t, res.Authenticated)
	assert.Equal(t, "credential lookup failed", res.Error)
}

func TestAuthenticatePartnerLookupError(t *testing.T) {
	resolver, partners, _ := newTestResolver(t)
	partners.err = errors.New("db down")

	res := resolver.Authenticate(context.Background(), headersWith(HeaderAPIKey, testAPIKey))

	assert.False(t, res.Authenticated)
	assert.Equal(t, "authentication unavailable", res.Error)
}

func TestAuthenticateAPIKeyOnly(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	res := resolver.Authenticate(context.Background(), headersWith(HeaderAPIKey, testAPIKey))

	assert.True(t, res.Authenticated)
	assert.Nil(t, res.Orderly)
}

func TestSplitKeyPrefix(t *testing.T) {
	tests := []struct {
		key    string
		prefix string
		ok     bool
	}{
		{"og_deadbeef.secret", "og_deadbeef", true},
		{"og_deadbeef", "", false},
		{"og_deadbeef.", "", false},
		{"legacy-key", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		prefix, ok := splitKeyPrefix(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.prefix, prefix, tt.key)
	}
}
