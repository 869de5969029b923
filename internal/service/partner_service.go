package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/pkg/apperrors"
	"github.com/GoOrderly/orderlygate/internal/repository"
	"github.com/GoOrderly/orderlygate/internal/signer"
	"golang.org/x/crypto/bcrypt"
)

type PartnerRepo interface {
	PartnerReader
	Save(ctx context.Context, name, apiKeyHash, keyPrefix string) (*model.Partner, error)
	GetByID(ctx context.Context, id int64) (*model.Partner, error)
	GetByName(ctx context.Context, name string) (*model.Partner, error)
	Delete(ctx context.Context, id int64) error
}

type CredentialRepo interface {
	CredentialReader
	Upsert(ctx context.Context, partnerID int64, accountID, orderlyKey, orderlySecret string) (*model.OrderlyCredential, error)
	ListForPartner(ctx context.Context, partnerID int64) ([]*model.OrderlyCredential, error)
	Deactivate(ctx context.Context, id int64) error
}

// PartnerService owns partner provisioning and venue-credential
// persistence. Provisioning generates the raw API key, hands it out once,
// and stores only the bcrypt hash.
type PartnerService struct {
	partners PartnerRepo
	creds    CredentialRepo
}

func NewPartnerService(partners PartnerRepo, creds CredentialRepo) *PartnerService {
	return &PartnerService{partners: partners, creds: creds}
}

// CreatePartner registers a new partner and returns the partner row plus
// the raw API key. The raw key is not recoverable afterwards.
func (s *PartnerService) CreatePartner(ctx context.Context, name string) (*model.Partner, string, error) {
	if name == "" {
		return nil, "", apperrors.NewValidation("partner name is required")
	}

	rawKey, prefix, err := generateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate api key: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash api key: %w", err)
	}

	partner, err := s.partners.Save(ctx, name, string(hash), prefix)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePartnerName) {
			return nil, "", apperrors.New(apperrors.ErrDuplicateName, "partner name already exists", err)
		}
		return nil, "", err
	}
	return partner, rawKey, nil
}

func (s *PartnerService) ListPartners(ctx context.Context) ([]*model.Partner, error) {
	return s.partners.ListAll(ctx)
}

func (s *PartnerService) DeletePartner(ctx context.Context, id int64) error {
	if err := s.partners.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPartnerNotFound) {
			return apperrors.New(apperrors.ErrNotFound, "partner not found", err)
		}
		return err
	}
	return nil
}

// SaveCredentials upserts venue credentials for the partner. Rotating the
// same (partner, account) pair updates the row in place and reactivates
// it.
func (s *PartnerService) SaveCredentials(ctx context.Context, partnerID int64, req model.SaveKeysRequest) (*model.OrderlyCredential, error) {
	if !signer.ValidKeyString(req.OrderlyKey) || !signer.ValidKeyString(req.OrderlySecret) {
		return nil, apperrors.NewValidation("keys must be in format: ed25519:{base58_encoded_key}")
	}
	return s.creds.Upsert(ctx, partnerID, req.AccountID, req.OrderlyKey, req.OrderlySecret)
}

func (s *PartnerService) ListCredentials(ctx context.Context, partnerID int64) ([]*model.OrderlyCredential, error) {
	return s.creds.ListForPartner(ctx, partnerID)
}

// DeactivateCredential soft-deletes one of the partner's own credential
// rows. A credential id belonging to another partner is reported as
// not-found, never acted on.
func (s *PartnerService) DeactivateCredential(ctx context.Context, partnerID, credentialID int64) error {
	owned, err := s.creds.ListForPartner(ctx, partnerID)
	if err != nil {
		return err
	}
	for _, c := range owned {
		if c.ID == credentialID {
			return s.creds.Deactivate(ctx, credentialID)
		}
	}
	return apperrors.New(apperrors.ErrNotFound, "credential not found", nil)
}

// generateAPIKey produces og_{prefix}.{secret}: an 8-hex-char non-secret
// id used for indexed lookup and a 64-hex-char random secret.
func generateAPIKey() (raw, prefix string, err error) {
	var buf [36]byte
	if _, err = rand.Read(buf[:]); err != nil {
		return "", "", err
	}
	prefix = "og_" + hex.EncodeToString(buf[:4])
	raw = prefix + "." + hex.EncodeToString(buf[4:])
	return raw, prefix, nil
}
