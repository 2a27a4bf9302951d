package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salon-api/internal/model"
	"salon-api/pkg/config"
)

type fakeSender struct {
	batches [][]PushMessage
	failAt  int // 1-based batch index that errors, 0 for none
}

func (f *fakeSender) Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error) {
	f.batches = append(f.batches, messages)
	if f.failAt > 0 && len(f.batches) == f.failAt {
		return nil, errors.New("gateway unavailable")
	}
	tickets := make([]PushTicket, len(messages))
	for i := range tickets {
		tickets[i] = PushTicket{Status: "ok"}
	}
	return tickets, nil
}

func newTestNotifier(sender PushSender, chunkSize int) *Notifier {
	cfg := &config.Config{}
	cfg.Push.ChunkSize = chunkSize
	return NewNotifier(sender, cfg, zap.NewNop())
}

func registerDevice(t *testing.T, db *gorm.DB, userID, token string, active bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.DeviceToken{
		UserID:     userID,
		Token:      token,
		Active:     active,
		LastActive: time.Now(),
	}).Error)
}

func TestValidPushToken(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"ExponentPushToken[abc123]", true},
		{"ExponentPushToken[]", true},
		{"ExpoPushToken[abc]", false},
		{"abc123", false},
		{"", false},
		{"ExponentPushToken[abc", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidPushToken(tc.token), tc.token)
	}
}

func TestNotifyAll_FiltersInactiveAndMalformed(t *testing.T) {
	db := newTestDB(t)
	registerDevice(t, db, "u1", "ExponentPushToken[one]", true)
	registerDevice(t, db, "u2", "garbage-token", true)
	registerDevice(t, db, "u3", "ExponentPushToken[three]", false)

	sender := &fakeSender{}
	n := newTestNotifier(sender, 100)

	sent, err := n.NotifyAll(context.Background(), db, "title", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.batches, 1)
	assert.Equal(t, "ExponentPushToken[one]", sender.batches[0][0].To)
}

func TestNotifyAll_Chunks(t *testing.T) {
	db := newTestDB(t)
	tokens := []string{"a", "b", "c", "d", "e"}
	for i, s := range tokens {
		registerDevice(t, db, string(rune('1'+i)), "ExponentPushToken["+s+"]", true)
	}

	sender := &fakeSender{}
	n := newTestNotifier(sender, 2)

	sent, err := n.NotifyAll(context.Background(), db, "title", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, sent)
	require.Len(t, sender.batches, 3)
	assert.Len(t, sender.batches[0], 2)
	assert.Len(t, sender.batches[1], 2)
	assert.Len(t, sender.batches[2], 1)
}

func TestNotifyAll_ChunkFailureDoesNotAbort(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 4; i++ {
		registerDevice(t, db, string(rune('a'+i)), "ExponentPushToken[t]", true)
	}

	sender := &fakeSender{failAt: 1}
	n := newTestNotifier(sender, 2)

	sent, err := n.NotifyAll(context.Background(), db, "title", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "second chunk still delivered")
	assert.Len(t, sender.batches, 2)
}

func TestNotifyAll_NoDevices(t *testing.T) {
	db := newTestDB(t)

	sender := &fakeSender{}
	n := newTestNotifier(sender, 100)

	sent, err := n.NotifyAll(context.Background(), db, "title", "body", nil)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.batches)
}

func TestExpoSender_Send(t *testing.T) {
	var gotContentType string
	var gotBody []PushMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []PushTicket{{ID: "t1", Status: "ok"}},
		})
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Push.Endpoint = server.URL
	cfg.Push.Timeout = time.Second
	sender := NewExpoSender(cfg)

	tickets, err := sender.Send(context.Background(), []PushMessage{
		{To: "ExponentPushToken[x]", Title: "hi", Body: "there"},
	})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "ok", tickets[0].Status)
	assert.Equal(t, "application/json", gotContentType)
	require.Len(t, gotBody, 1)
	assert.Equal(t, "hi", gotBody[0].Title)
}

func TestExpoSender_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Push.Endpoint = server.URL
	cfg.Push.Timeout = time.Second
	sender := NewExpoSender(cfg)

	_, err := sender.Send(context.Background(), []PushMessage{{To: "ExponentPushToken[x]"}})
	assert.Error(t, err)
}

func TestNotifyAll_MessagePayload(t *testing.T) {
	db := newTestDB(t)
	registerDevice(t, db, "u1", "ExponentPushToken[x]", true)

	sender := &fakeSender{}
	n := newTestNotifier(sender, 100)

	data := map[string]any{"salon_id": 2}
	_, err := n.NotifyAll(context.Background(), db, "Nouveau salon", "ouvert", data)
	require.NoError(t, err)

	msg := sender.batches[0][0]
	assert.Equal(t, "Nouveau salon", msg.Title)
	assert.Equal(t, "ouvert", msg.Body)
	assert.Equal(t, "default", msg.Sound)
	assert.Equal(t, data, msg.Data)
}
