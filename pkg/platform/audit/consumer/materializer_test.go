package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "relief/pkg/platform/audit"
	"relief/pkg/platform/audit/store/postgres"
)

type recordingStore struct {
	ids    []uuid.UUID
	events []audit.Event
	err    error
}

func (s *recordingStore) AppendWithID(_ context.Context, eventID uuid.UUID, event audit.Event) error {
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, eventID)
	s.events = append(s.events, event)
	return nil
}

func record(t *testing.T, p postgres.Payload) *kgo.Record {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return &kgo.Record{Topic: "relief.audit", Value: b}
}

func newMaterializer(store EventStore) *Materializer {
	return NewMaterializer(nil, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleStoresEvent(t *testing.T) {
	store := &recordingStore{}
	m := newMaterializer(store)
	eventID := uuid.New()

	err := m.Handle(context.Background(), record(t, postgres.Payload{
		ID:        eventID.String(),
		Category:  "compliance",
		Timestamp: "2026-03-01T10:00:00Z",
		Principal: "ops.admin",
		Action:    "voucher_issued",
		Data:      map[string]string{"voucher_id": "1"},
	}))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{eventID}, store.ids)
	assert.Equal(t, "1", store.events[0].Data["voucher_id"])
}

func TestHandleSkipsMalformedRecords(t *testing.T) {
	store := &recordingStore{}
	m := newMaterializer(store)

	require.NoError(t, m.Handle(context.Background(), &kgo.Record{Value: []byte("not json")}))
	require.NoError(t, m.Handle(context.Background(), record(t, postgres.Payload{ID: "nope", Timestamp: "2026-03-01T10:00:00Z"})))
	require.NoError(t, m.Handle(context.Background(), record(t, postgres.Payload{ID: uuid.NewString(), Timestamp: "soon"})))
	assert.Empty(t, store.ids)
}

func TestHandleReturnsStoreErrors(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	m := newMaterializer(store)

	err := m.Handle(context.Background(), record(t, postgres.Payload{
		ID:        uuid.NewString(),
		Timestamp: "2026-03-01T10:00:00Z",
		Action:    "rule_set",
	}))
	assert.Error(t, err)
}
