package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/requestcontext"
)

func newEntry(orgID id.OrgID, driverID id.DriverID, decision domain.Decision, at time.Time) *Entry {
	return &Entry{
		OrgID:        orgID,
		DriverID:     driverID,
		Category:     id.RegulatoryHeavy,
		BusinessDate: at.Format("2006-01-02"),
		Decision:     decision,
		Reason:       "within limits",
		EvaluatedAt:  at,
	}
}

func TestService_Record(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store)

	orgID := id.OrgID(uuid.New())
	driverID := id.DriverID(uuid.New())
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("fills identity and defaults", func(t *testing.T) {
		ctx := requestcontext.WithRequestID(context.Background(), "req-123")
		entry := newEntry(orgID, driverID, domain.DecisionApproved, at)
		require.NoError(t, svc.Record(ctx, entry))

		assert.False(t, entry.ID.IsNil())
		assert.Equal(t, "req-123", entry.RequestID)
		assert.NotNil(t, entry.Violations)
		assert.NotNil(t, entry.Warnings)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("stamps request time when evaluated at is zero", func(t *testing.T) {
		fixed := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(context.Background(), fixed)
		entry := newEntry(orgID, driverID, domain.DecisionBlocked, at)
		entry.EvaluatedAt = time.Time{}
		require.NoError(t, svc.Record(ctx, entry))
		assert.Equal(t, fixed, entry.EvaluatedAt)
	})
}

type failingStore struct{}

func (failingStore) Append(context.Context, *Entry) error {
	return errors.New("disk gone")
}

func (failingStore) ListByDriver(context.Context, id.OrgID, id.DriverID, int, *time.Time) ([]*Entry, error) {
	return nil, errors.New("disk gone")
}

func TestService_Record_StoreFailure(t *testing.T) {
	svc := NewService(failingStore{})
	err := svc.Record(context.Background(), newEntry(id.OrgID(uuid.New()), id.DriverID(uuid.New()), domain.DecisionApproved, time.Now()))
	assert.Error(t, err)
}

func TestService_List(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store)

	orgID := id.OrgID(uuid.New())
	driverID := id.DriverID(uuid.New())
	otherDriver := id.DriverID(uuid.New())
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		entry := newEntry(orgID, driverID, domain.DecisionApproved, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, svc.Record(context.Background(), entry))
	}
	require.NoError(t, svc.Record(context.Background(), newEntry(orgID, otherDriver, domain.DecisionBlocked, base)))

	t.Run("most recent first, driver scoped", func(t *testing.T) {
		entries, err := svc.List(context.Background(), orgID, driverID, 0, nil)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		assert.Equal(t, base.Add(4*time.Hour), entries[0].EvaluatedAt)
		assert.Equal(t, base, entries[4].EvaluatedAt)
	})

	t.Run("limit applies", func(t *testing.T) {
		entries, err := svc.List(context.Background(), orgID, driverID, 2, nil)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("before narrows to strictly earlier entries", func(t *testing.T) {
		before := base.Add(2 * time.Hour)
		entries, err := svc.List(context.Background(), orgID, driverID, 0, &before)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, entry := range entries {
			assert.True(t, entry.EvaluatedAt.Before(before))
		}
	})

	t.Run("foreign org sees nothing", func(t *testing.T) {
		entries, err := svc.List(context.Background(), id.OrgID(uuid.New()), driverID, 0, nil)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

type stubOutbox struct {
	pending   []*OutboxRecord
	published []int64
}

func (s *stubOutbox) FetchUnpublished(_ context.Context, limit int) ([]*OutboxRecord, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *stubOutbox) MarkPublished(_ context.Context, ids []int64, _ time.Time) error {
	s.published = append(s.published, ids...)
	remaining := s.pending[:0]
	for _, rec := range s.pending {
		keep := true
		for _, pid := range ids {
			if rec.ID == pid {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, rec)
		}
	}
	s.pending = remaining
	return nil
}

type stubPublisher struct {
	err      error
	received int
}

func (p *stubPublisher) Publish(_ context.Context, records []*OutboxRecord) error {
	if p.err != nil {
		return p.err
	}
	p.received += len(records)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWorker_DrainOnce(t *testing.T) {
	outbox := &stubOutbox{pending: []*OutboxRecord{
		{ID: 1, EntryID: id.AuditEntryID(uuid.New()), Payload: []byte(`{}`)},
		{ID: 2, EntryID: id.AuditEntryID(uuid.New()), Payload: []byte(`{}`)},
	}}
	publisher := &stubPublisher{}
	w := NewWorker(outbox, publisher, time.Second, discardLogger(), nil)

	require.NoError(t, w.drainOnce(context.Background()))
	assert.Equal(t, 2, publisher.received)
	assert.Equal(t, []int64{1, 2}, outbox.published)
	assert.Empty(t, outbox.pending)
}

func TestWorker_DrainOnce_PublishFailureKeepsRecords(t *testing.T) {
	outbox := &stubOutbox{pending: []*OutboxRecord{
		{ID: 1, EntryID: id.AuditEntryID(uuid.New()), Payload: []byte(`{}`)},
	}}
	publisher := &stubPublisher{err: errors.New("brokers unreachable")}
	w := NewWorker(outbox, publisher, time.Second, discardLogger(), nil)

	assert.Error(t, w.drainOnce(context.Background()))
	assert.Empty(t, outbox.published)
	assert.Len(t, outbox.pending, 1)
}
