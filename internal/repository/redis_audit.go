package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisAuditRepo keeps a capped list of the newest audit records for
// fast reads when Postgres is slow or down.
type RedisAuditRepo struct {
	client  *redis.Client
	listKey string
	listMax int64
}

func NewRedisAuditRepo(client *redis.Client, listKey string, listMax int64) *RedisAuditRepo {
	if listKey == "" {
		listKey = "audit:recent"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisAuditRepo{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

func (r *RedisAuditRepo) Insert(ctx context.Context, rec *model.AuditRecord) error {
	if rec == nil {
		return nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.LPush(ctx, r.listKey, payload).Err(); err != nil {
		return err
	}
	return r.client.LTrim(ctx, r.listKey, 0, r.listMax-1).Err()
}

// List over-fetches and filters client-side, since the records sit in a
// single list ordered only by insertion.
func (r *RedisAuditRepo) List(ctx context.Context, partnerID int64, limit int, from, to *time.Time) ([]*model.AuditRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	fetch := int64(limit) * 5
	if fetch < 100 {
		fetch = 100
	}
	if fetch > r.listMax {
		fetch = r.listMax
	}
	items, err := r.client.LRange(ctx, r.listKey, 0, fetch-1).Result()
	if err != nil {
		return nil, err
	}
	results := make([]*model.AuditRecord, 0, limit)
	for _, raw := range items {
		var rec model.AuditRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		if partnerID != 0 && rec.PartnerID != partnerID {
			continue
		}
		if from != nil && rec.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && rec.CreatedAt.After(*to) {
			continue
		}
		results = append(results, &rec)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
