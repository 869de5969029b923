package service

import (
	"context"
	"sync"
	"time"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/GoOrderly/orderlygate/internal/pkg/logger"
)

// AuditRepo persists audit records. partnerID 0 means no filter.
type AuditRepo interface {
	Insert(ctx context.Context, rec *model.AuditRecord) error
	List(ctx context.Context, partnerID int64, limit int, from, to *time.Time) ([]*model.AuditRecord, error)
}

// AuditService fans audit records out to durable storage off the request
// path. Records flow through a bounded channel; when it is full they are
// dropped rather than stalling the request.
type AuditService struct {
	recChan chan *model.AuditRecord
	buffer  *auditBuffer
	store   AuditRepo
	recent  AuditRepo

	wg sync.WaitGroup
}

// NewAuditService starts the consumer goroutine. store is the durable
// sink, recent an optional fast cache of the latest records; either may
// be nil.
func NewAuditService(store, recent AuditRepo) *AuditService {
	svc := &AuditService{
		recChan: make(chan *model.AuditRecord, 1000),
		buffer:  newAuditBuffer(1000),
		store:   store,
		recent:  recent,
	}
	svc.wg.Add(1)
	go svc.processRecords()
	return svc
}

// Log enqueues a record without blocking the caller.
func (s *AuditService) Log(rec *model.AuditRecord) {
	if rec == nil {
		return
	}
	s.buffer.Add(rec)
	select {
	case s.recChan <- rec:
	default:
		logger.Warn("audit buffer full, dropping record", "path", rec.Path, "partner_id", rec.PartnerID)
	}
}

// List reads from the durable store, falling back to the recent cache
// and then the in-process buffer when storage is unavailable.
func (s *AuditService) List(ctx context.Context, partnerID int64, limit int, from, to *time.Time) ([]*model.AuditRecord, error) {
	if s.store != nil {
		records, err := s.store.List(ctx, partnerID, limit, from, to)
		if err == nil {
			return records, nil
		}
		logger.Warn("audit store list failed, falling back", "error", err)
	}
	if s.recent != nil {
		records, err := s.recent.List(ctx, partnerID, limit, from, to)
		if err == nil {
			return records, nil
		}
	}
	return s.buffer.List(partnerID, limit), nil
}

func (s *AuditService) processRecords() {
	defer s.wg.Done()
	for rec := range s.recChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if s.store != nil {
			if err := s.store.Insert(ctx, rec); err != nil {
				logger.Error("audit store insert failed", "error", err, "id", rec.ID)
			}
		}
		if s.recent != nil {
			if err := s.recent.Insert(ctx, rec); err != nil {
				logger.Error("audit cache insert failed", "error", err, "id", rec.ID)
			}
		}
		cancel()
	}
}

// Close drains the channel and stops the consumer.
func (s *AuditService) Close() {
	close(s.recChan)
	s.wg.Wait()
}

// auditBuffer is a fixed-size ring holding the most recent records so
// List still answers when neither backend is reachable.
type auditBuffer struct {
	mu        sync.Mutex
	maxSize   int
	records   []*model.AuditRecord
	nextIndex int
}

func newAuditBuffer(maxSize int) *auditBuffer {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &auditBuffer{
		maxSize: maxSize,
		records: make([]*model.AuditRecord, 0, maxSize),
	}
}

func (b *auditBuffer) Add(rec *model.AuditRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) < b.maxSize {
		b.records = append(b.records, rec)
		return
	}
	b.records[b.nextIndex] = rec
	b.nextIndex = (b.nextIndex + 1) % b.maxSize
}

// List returns newest-first, matching the storage backends.
func (b *auditBuffer) List(partnerID int64, limit int) []*model.AuditRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	if limit <= 0 || limit > b.maxSize {
		limit = b.maxSize
	}
	total := len(b.records)
	results := make([]*model.AuditRecord, 0, limit)
	for i := 0; i < total; i++ {
		idx := (b.nextIndex + total - 1 - i) % total
		rec := b.records[idx]
		if rec == nil {
			continue
		}
		if partnerID != 0 && rec.PartnerID != partnerID {
			continue
		}
		results = append(results, rec)
		if len(results) >= limit {
			break
		}
	}
	return results
}
