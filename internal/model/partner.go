package model

import "time"

// Partner is a registered API consumer of the gateway. Rows are owned by
// the credential store; provisioning creates them, nothing else mutates
// them.
type Partner struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	APIKeyHash string    `db:"api_key_hash" json:"-"`
	// KeyPrefix is the non-secret identifier embedded in issued keys so
	// verification is an indexed lookup plus one bcrypt compare instead
	// of a scan over every partner.
	KeyPrefix string    `db:"key_prefix" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OrderlyCredential is one partner's venue trading credentials for one
// venue account. At most one active row exists per (partner, account)
// pair; rotation updates in place, deactivation is a soft delete.
type OrderlyCredential struct {
	ID            int64     `db:"id" json:"id"`
	PartnerID     int64     `db:"partner_id" json:"partner_id"`
	AccountID     string    `db:"account_id" json:"account_id"`
	OrderlyKey    string    `db:"orderly_key" json:"orderly_key"`
	OrderlySecret string    `db:"orderly_secret" json:"-"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
