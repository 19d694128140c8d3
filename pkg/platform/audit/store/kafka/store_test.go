package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "screening/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestStore_Append(t *testing.T) {
	producer := &fakeProducer{}
	store := New(producer, "screening.audit")

	event := audit.Event{
		ID:          "evt-1",
		Category:    audit.CategoryCompliance,
		Timestamp:   time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		Action:      string(audit.EventEligibilityEvaluated),
		Outcome:     "HIGH_RISK_REFERRAL",
		DeviceClass: "mobile",
		RequestID:   "req-9",
	}
	require.NoError(t, store.Append(context.Background(), event))
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "screening.audit", rec.Topic)
	assert.Equal(t, "compliance", string(rec.Key))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Value, &body))
	assert.Equal(t, "HIGH_RISK_REFERRAL", body["outcome"])
	assert.Equal(t, "2026-05-04T10:00:00Z", body["timestamp"])
	assert.Equal(t, "req-9", body["request_id"])
}

func TestStore_AppendPropagatesProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("not leader")}
	store := New(producer, "screening.audit")

	err := store.Append(context.Background(), audit.Event{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not leader")
}
