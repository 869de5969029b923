package service

import (
	"fmt"
	"testing"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditBufferNewestFirst(t *testing.T) {
	b := newAuditBuffer(10)
	for i := 1; i <= 3; i++ {
		b.Add(&model.AuditRecord{ID: fmt.Sprintf("r%d", i), PartnerID: 1})
	}

	records := b.List(0, 10)
	require.Len(t, records, 3)
	assert.Equal(t, "r3", records[0].ID)
	assert.Equal(t, "r1", records[2].ID)
}

func TestAuditBufferWrapsAround(t *testing.T) {
	b := newAuditBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Add(&model.AuditRecord{ID: fmt.Sprintf("r%d", i), PartnerID: 1})
	}

	records := b.List(0, 10)
	require.Len(t, records, 3)
	// Oldest two were overwritten.
	assert.Equal(t, "r5", records[0].ID)
	assert.Equal(t, "r3", records[2].ID)
}

func TestAuditBufferFiltersPartner(t *testing.T) {
	b := newAuditBuffer(10)
	b.Add(&model.AuditRecord{ID: "a", PartnerID: 1})
	b.Add(&model.AuditRecord{ID: "b", PartnerID: 2})

	records := b.List(2, 10)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].ID)
}
