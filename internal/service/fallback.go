package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/config"
	"salon-api/prometheus"
)

// Origin tags where a read result came from
type Origin string

const (
	OriginLocal    Origin = "local"
	OriginFallback Origin = "fallback"
)

// FallbackResolver answers read queries from sibling salon servers when
// the local store has nothing, and refuses every write that would cross
// a salon boundary. Siblings are tried sequentially in configuration
// order, each with its own timeout, so worst-case latency is bounded by
// the sum of per-sibling timeouts.
type FallbackResolver struct {
	servers map[string]string
	order   []string
	current string
	timeout time.Duration
	client  *http.Client
	log     *zap.Logger
}

// NewFallbackResolver builds a resolver from the salon/fallback config
func NewFallbackResolver(cfg *config.Config, log *zap.Logger) *FallbackResolver {
	return &FallbackResolver{
		servers: cfg.Fallback.Servers,
		order:   cfg.Fallback.Order,
		current: cfg.Salon.Current,
		timeout: cfg.Fallback.Timeout,
		client:  &http.Client{},
		log:     log,
	}
}

// Siblings returns the fallback base URLs in fixed configuration
// order, excluding this instance's own entry. Map iteration order is
// randomized in Go, so the order comes from the configured key list.
func (r *FallbackResolver) Siblings() []string {
	urls := make([]string, 0, len(r.order))
	for _, key := range r.order {
		if key == r.current {
			continue
		}
		if url, ok := r.servers[key]; ok {
			urls = append(urls, url)
		}
	}
	return urls
}

// get runs the same GET against each sibling until one answers with a
// 2xx and a decodable body. Exhaustion returns KindFallbackExhausted
// carrying the joined per-sibling failures.
func (r *FallbackResolver) get(ctx context.Context, endpoint string, out any) error {
	var attempts []error

	for _, base := range r.Siblings() {
		err := r.getOne(ctx, base, endpoint, out)
		if err == nil {
			prometheus.RecordFallbackAttempt(base, "success")
			r.log.Info("fallback request succeeded",
				zap.String("server", base),
				zap.String("endpoint", endpoint))
			return nil
		}
		prometheus.RecordFallbackAttempt(base, "failure")
		r.log.Warn("fallback request failed",
			zap.String("server", base),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		attempts = append(attempts, fmt.Errorf("%s: %w", base, err))
	}

	prometheus.RecordFallbackExhausted(endpoint)
	return apperr.FallbackExhausted("all fallback servers failed", errors.Join(attempts...))
}

func (r *FallbackResolver) getOne(ctx context.Context, base, endpoint string, out any) error {
	defer prometheus.TrackFallbackRequest(base)(time.Now())

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, base+endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return decodeListBody(body, out)
}

// decodeListBody unwraps the results envelope that sibling salon
// servers emit on their list endpoints. A bare array is accepted too,
// for siblings that serve the unwrapped shape.
func decodeListBody(body []byte, out any) error {
	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Results != nil {
		return json.Unmarshal(envelope.Results, out)
	}
	return json.Unmarshal(body, out)
}

// LikesByVideo returns the likes of a video, local store first. An
// empty local result triggers the sibling sweep; results from a
// sibling are read-only by contract.
func (r *FallbackResolver) LikesByVideo(ctx context.Context, db *gorm.DB, videoID uint) ([]model.Like, Origin, error) {
	var likes []model.Like
	if err := db.Preload("Exhibitor").Where("video_id = ?", videoID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, OriginLocal, apperr.Store("failed to list likes", err)
	}
	if len(likes) > 0 {
		return likes, OriginLocal, nil
	}

	var remote []model.Like
	if err := r.get(ctx, fmt.Sprintf("/api/likes/video/%d", videoID), &remote); err != nil {
		return nil, OriginLocal, err
	}
	return remote, OriginFallback, nil
}

// LikesByExhibitor returns the likes given by an exhibitor, local first
func (r *FallbackResolver) LikesByExhibitor(ctx context.Context, db *gorm.DB, exhibitorID uint) ([]model.Like, Origin, error) {
	var likes []model.Like
	if err := db.Preload("Exhibitor").Where("exhibitor_id = ?", exhibitorID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, OriginLocal, apperr.Store("failed to list likes", err)
	}
	if len(likes) > 0 {
		return likes, OriginLocal, nil
	}

	var remote []model.Like
	if err := r.get(ctx, fmt.Sprintf("/api/likes/exhibitor/%d", exhibitorID), &remote); err != nil {
		return nil, OriginLocal, err
	}
	return remote, OriginFallback, nil
}

// CommentsByVideo returns the comments of a video, local store first
func (r *FallbackResolver) CommentsByVideo(ctx context.Context, db *gorm.DB, videoID uint) ([]model.Comment, Origin, error) {
	var comments []model.Comment
	if err := db.Preload("Exhibitor").Where("video_id = ?", videoID).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, OriginLocal, apperr.Store("failed to list comments", err)
	}
	if len(comments) > 0 {
		return comments, OriginLocal, nil
	}

	var remote []model.Comment
	if err := r.get(ctx, fmt.Sprintf("/api/comments/video/%d", videoID), &remote); err != nil {
		return nil, OriginLocal, err
	}
	return remote, OriginFallback, nil
}

// CommentsByExhibitor returns the comments written by an exhibitor,
// local store first
func (r *FallbackResolver) CommentsByExhibitor(ctx context.Context, db *gorm.DB, exhibitorID uint) ([]model.Comment, Origin, error) {
	var comments []model.Comment
	if err := db.Preload("Exhibitor").Where("exhibitor_id = ?", exhibitorID).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, OriginLocal, apperr.Store("failed to list comments", err)
	}
	if len(comments) > 0 {
		return comments, OriginLocal, nil
	}

	var remote []model.Comment
	if err := r.get(ctx, fmt.Sprintf("/api/comments/exhibitor/%d", exhibitorID), &remote); err != nil {
		return nil, OriginLocal, err
	}
	return remote, OriginFallback, nil
}

// Writes never fall back. Fanning a like or comment out to a sibling
// store would break the single-owner-store invariant for social
// interactions, so each of these rejects explicitly instead of
// no-opping.

// CreateLike on the fallback path is always rejected
func (r *FallbackResolver) CreateLike(ctx context.Context, exhibitorID, videoID uint) error {
	return apperr.CrossSalonWrite("cannot like a video that belongs to another salon")
}

// CreateComment on the fallback path is always rejected
func (r *FallbackResolver) CreateComment(ctx context.Context, exhibitorID, videoID uint, content string) error {
	return apperr.CrossSalonWrite("cannot comment on a video that belongs to another salon")
}

// ToggleLike on the fallback path is always rejected
func (r *FallbackResolver) ToggleLike(ctx context.Context, exhibitorID, videoID uint) error {
	return apperr.CrossSalonWrite("cannot like or unlike a video that belongs to another salon")
}
