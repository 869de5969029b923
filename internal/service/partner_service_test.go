package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/pkg/apperrors"
	"github.com/GoOrderly/orderlygate/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubPartnerRepo struct {
	fakePartnerRepo
	saved     []*model.Partner
	saveErr   error
	deleted   []int64
	deleteErr error
}

func (s *stubPartnerRepo) Save(_ context.Context, name, apiKeyHash, keyPrefix string) (*model.Partner, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	p := &model.Partner{ID: int64(len(s.saved) + 1), Name: name, APIKeyHash: apiKeyHash, KeyPrefix: keyPrefix}
	s.saved = append(s.saved, p)
	return p, nil
}

func (s *stubPartnerRepo) GetByID(_ context.Context, id int64) (*model.Partner, error) {
	for _, p := range s.saved {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrPartnerNotFound
}

func (s *stubPartnerRepo) GetByName(_ context.Context, name string) (*model.Partner, error) {
	for _, p := range s.saved {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, repository.ErrPartnerNotFound
}

func (s *stubPartnerRepo) Delete(_ context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubCredentialRepo struct {
	fakeCredentialRepo
	upserted    []*model.OrderlyCredential
	listed      []*model.OrderlyCredential
	deactivated []int64
}

func (s *stubCredentialRepo) Upsert(_ context.Context, partnerID int64, accountID, orderlyKey, orderlySecret string) (*model.OrderlyCredential, error) {
	c := &model.OrderlyCredential{
		ID: int64(len(s.upserted) + 1), PartnerID: partnerID,
		AccountID: accountID, OrderlyKey: orderlyKey, OrderlySecret: orderlySecret,
		IsActive: true,
	}
	s.upserted = append(s.upserted, c)
	return c, nil
}

func (s *stubCredentialRepo) ListForPartner(_ context.Context, partnerID int64) ([]*model.OrderlyCredential, error) {
	var out []*model.OrderlyCredential
	for _, c := range s.listed {
		if c.PartnerID == partnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCredentialRepo) Deactivate(_ context.Context, id int64) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

var apiKeyPattern = regexp.MustCompile(`^og_[0-9a-f]{8}\.[0-9a-f]{64}$`)

func TestCreatePartnerKeyShape(t *testing.T) {
	partners := &stubPartnerRepo{}
	svc := NewPartnerService(partners, &stubCredentialRepo{})

	partner, rawKey, err := svc.CreatePartner(context.Background(), "acme")
	require.NoError(t, err)

	assert.Regexp(t, apiKeyPattern, rawKey)
	assert.Equal(t, rawKey[:11], partner.KeyPrefix)

	// Only the hash is persisted, and it verifies against the raw key.
	assert.NotContains(t, partner.APIKeyHash, rawKey)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(partner.APIKeyHash), []byte(rawKey)))
}

func TestCreatePartnerEmptyName(t *testing.T) {
	svc := NewPartnerService(&stubPartnerRepo{}, &stubCredentialRepo{})

	_, _, err := svc.CreatePartner(context.Background(), "")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation, appErr.Type)
}

func TestCreatePartnerDuplicateName(t *testing.T) {
	partners := &stubPartnerRepo{saveErr: repository.ErrDuplicatePartnerName}
	svc := NewPartnerService(partners, &stubCredentialRepo{})

	_, _, err := svc.CreatePartner(context.Background(), "acme")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrDuplicateName, appErr.Type)
}

func TestSaveCredentialsValidatesKeyFormat(t *testing.T) {
	creds := &stubCredentialRepo{}
	svc := NewPartnerService(&stubPartnerRepo{}, creds)

	_, err := svc.SaveCredentials(context.Background(), 1, model.SaveKeysRequest{
		AccountID:     "0xacc1",
		OrderlyKey:    "not-base58",
		OrderlySecret: testBase58,
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation, appErr.Type)
	assert.Empty(t, creds.upserted)
}

func TestSaveCredentialsUpserts(t *testing.T) {
	creds := &stubCredentialRepo{}
	svc := NewPartnerService(&stubPartnerRepo{}, creds)

	c, err := svc.SaveCredentials(context.Background(), 1, model.SaveKeysRequest{
		AccountID:     "0xacc1",
		OrderlyKey:    testBase58,
		OrderlySecret: testBase58,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.PartnerID)
	assert.True(t, c.IsActive)
}

func TestDeactivateCredentialOwnershipCheck(t *testing.T) {
	creds := &stubCredentialRepo{listed: []*model.OrderlyCredential{
		{ID: 10, PartnerID: 1, AccountID: "0xacc1"},
		{ID: 20, PartnerID: 2, AccountID: "0xacc2"},
	}}
	svc := NewPartnerService(&stubPartnerRepo{}, creds)

	// Own credential: deactivated.
	require.NoError(t, svc.DeactivateCredential(context.Background(), 1, 10))
	assert.Equal(t, []int64{10}, creds.deactivated)

	// Another partner's credential: not found, untouched.
	err := svc.DeactivateCredential(context.Background(), 1, 20)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Type)
	assert.Equal(t, []int64{10}, creds.deactivated)
}
