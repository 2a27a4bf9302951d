package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/config"
	"salon-api/prometheus"
)

// PushMessage is one notification addressed to one device token
type PushMessage struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
	Sound string         `json:"sound,omitempty"`
}

// PushTicket is the per-message delivery receipt from the push gateway
type PushTicket struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// PushSender delivers a batch of messages to the push gateway
type PushSender interface {
	Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error)
}

// ExpoSender posts message batches to the Expo push endpoint
type ExpoSender struct {
	endpoint string
	client   *http.Client
}

// NewExpoSender builds a sender from the push config
func NewExpoSender(cfg *config.Config) *ExpoSender {
	return &ExpoSender{
		endpoint: cfg.Push.Endpoint,
		client:   &http.Client{Timeout: cfg.Push.Timeout},
	}
}

// Send posts one batch and decodes the per-message tickets
func (s *ExpoSender) Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var result struct {
		Data []PushTicket `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode push tickets: %w", err)
	}
	return result.Data, nil
}

// Notifier fans a notification out to every registered device. Chunks
// are sent independently so one failing batch does not starve the rest.
type Notifier struct {
	sender    PushSender
	chunkSize int
	log       *zap.Logger
}

// NewNotifier builds a notifier around a sender
func NewNotifier(sender PushSender, cfg *config.Config, log *zap.Logger) *Notifier {
	chunk := cfg.Push.ChunkSize
	if chunk <= 0 {
		chunk = 100
	}
	return &Notifier{
		sender:    sender,
		chunkSize: chunk,
		log:       log,
	}
}

// ValidPushToken reports whether a stored device token matches the
// gateway's expected format. Malformed tokens are skipped rather than
// sent, since the gateway rejects the whole batch on a bad recipient.
func ValidPushToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") && strings.HasSuffix(token, "]")
}

// NotifyAll sends title/body/data to every active device with a valid
// token. Delivery is best effort: chunk failures are logged and counted
// but do not abort the remaining chunks. Returns the number of messages
// handed to the gateway.
func (n *Notifier) NotifyAll(ctx context.Context, db *gorm.DB, title, body string, data map[string]any) (int, error) {
	var devices []model.DeviceToken
	if err := db.Where("active = ?", true).Find(&devices).Error; err != nil {
		return 0, apperr.Store("failed to list devices", err)
	}

	messages := make([]PushMessage, 0, len(devices))
	for _, d := range devices {
		if !ValidPushToken(d.Token) {
			n.log.Warn("skipping device with malformed push token",
				zap.String("user_id", d.UserID))
			continue
		}
		messages = append(messages, PushMessage{
			To:    d.Token,
			Title: title,
			Body:  body,
			Data:  data,
			Sound: "default",
		})
	}

	if len(messages) == 0 {
		n.log.Info("no devices to notify")
		return 0, nil
	}

	sent := 0
	for start := 0; start < len(messages); start += n.chunkSize {
		end := start + n.chunkSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]

		tickets, err := n.sender.Send(ctx, chunk)
		if err != nil {
			prometheus.RecordPush("failed", len(chunk))
			n.log.Error("push chunk failed",
				zap.Int("chunk_start", start),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err))
			continue
		}

		sent += len(chunk)
		prometheus.RecordPush("sent", len(chunk))
		for _, t := range tickets {
			if t.Status == "error" {
				n.log.Warn("push ticket reported error",
					zap.String("ticket_id", t.ID),
					zap.String("message", t.Message))
			}
		}
	}

	n.log.Info("push fan-out finished",
		zap.Int("devices", len(devices)),
		zap.Int("sent", sent))

	return sent, nil
}
