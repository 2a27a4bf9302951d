package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/config"
)

func newTestResolver(current string, servers map[string]string, order []string) *FallbackResolver {
	cfg := &config.Config{}
	cfg.Salon.Current = current
	cfg.Fallback.Servers = servers
	cfg.Fallback.Order = order
	cfg.Fallback.Timeout = 2 * time.Second
	return NewFallbackResolver(cfg, zap.NewNop())
}

func TestSiblings_ExcludesSelfKeepsOrder(t *testing.T) {
	r := newTestResolver("salonB",
		map[string]string{"salonA": "http://a", "salonB": "http://b", "salonC": "http://c"},
		[]string{"salonA", "salonB", "salonC"})

	for i := 0; i < 10; i++ {
		assert.Equal(t, []string{"http://a", "http://c"}, r.Siblings())
	}
}

func TestLikesByVideo_LocalFirstSkipsSiblings(t *testing.T) {
	db := newTestDB(t)
	owner := createExhibitor(t, db, "local-owner")
	video := createVideo(t, db, owner, "local-clip")
	require.NoError(t, db.Create(&model.Like{ExhibitorID: owner.ID, VideoID: video.ID}).Error)

	var hits atomic.Int64
	sibling := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer sibling.Close()

	r := newTestResolver("salonA",
		map[string]string{"salonA": "http://self", "salonB": sibling.URL},
		[]string{"salonA", "salonB"})

	likes, origin, err := r.LikesByVideo(context.Background(), db, video.ID)
	require.NoError(t, err)
	assert.Equal(t, OriginLocal, origin)
	assert.Len(t, likes, 1)
	assert.EqualValues(t, 0, hits.Load(), "local hit must not touch siblings")
}

func TestLikesByVideo_FallbackFirstSuccessWins(t *testing.T) {
	db := newTestDB(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	var askedPath string
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		askedPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"results":   []model.Like{{ExhibitorID: 7, VideoID: 42}},
			"origin":    "local",
			"read_only": false,
		})
	}))
	defer healthy.Close()

	r := newTestResolver("salonA",
		map[string]string{"salonA": "http://self", "salonB": broken.URL, "salonC": healthy.URL},
		[]string{"salonA", "salonB", "salonC"})

	likes, origin, err := r.LikesByVideo(context.Background(), db, 42)
	require.NoError(t, err)
	assert.Equal(t, OriginFallback, origin)
	require.Len(t, likes, 1)
	assert.EqualValues(t, 7, likes[0].ExhibitorID)
	assert.Equal(t, "/api/likes/video/42", askedPath)
}

func TestLikesByVideo_AllSiblingsFail(t *testing.T) {
	db := newTestDB(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	r := newTestResolver("salonA",
		map[string]string{"salonA": "http://self", "salonB": broken.URL, "salonC": broken.URL},
		[]string{"salonA", "salonB", "salonC"})

	_, _, err := r.LikesByVideo(context.Background(), db, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindFallbackExhausted, apperr.KindOf(err))
}

func TestFallback_PerSiblingTimeout(t *testing.T) {
	db := newTestDB(t)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	r := newTestResolver("salonA",
		map[string]string{"salonA": "http://self", "salonB": slow.URL},
		[]string{"salonA", "salonB"})
	r.timeout = 50 * time.Millisecond

	start := time.Now()
	_, _, err := r.CommentsByVideo(context.Background(), db, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindFallbackExhausted, apperr.KindOf(err))
	assert.Less(t, time.Since(start), 250*time.Millisecond, "timeout must cut the request short")
}

func TestCommentsByVideo_FallbackDecodes(t *testing.T) {
	db := newTestDB(t)

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results":   []model.Comment{{ExhibitorID: 3, VideoID: 9, Content: "bravo"}},
			"origin":    "local",
			"read_only": false,
		})
	}))
	defer healthy.Close()

	r := newTestResolver("salonA",
		map[string]string{"salonA": "http://self", "salonB": healthy.URL},
		[]string{"salonA", "salonB"})

	comments, origin, err := r.CommentsByVideo(context.Background(), db, 9)
	require.NoError(t, err)
	assert.Equal(t, OriginFallback, origin)
	require.Len(t, comments, 1)
	assert.Equal(t, "bravo", comments[0].Content)
}

// A sibling running this same server answers list reads with the
// results envelope its own handlers emit. The resolver must unwrap it
// rather than fail to decode and report exhaustion.
func TestLikesByVideo_DecodesSiblingEnvelope(t *testing.T) {
	db := newTestDB(t)

	sibling := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"exhibitor_id":5,"video_id":42}],"origin":"local","read_only":false}`))
	}))
	defer sibling.Close()

	r := newTestResolver("salonA",
		map[string]string{"salonA": "http://self", "salonB": sibling.URL},
		[]string{"salonA", "salonB"})

	likes, origin, err := r.LikesByVideo(context.Background(), db, 42)
	require.NoError(t, err)
	assert.Equal(t, OriginFallback, origin)
	require.Len(t, likes, 1)
	assert.EqualValues(t, 5, likes[0].ExhibitorID)
	assert.EqualValues(t, 42, likes[0].VideoID)
}

// Siblings serving the unwrapped array shape keep working
func TestDecodeListBody_BareArray(t *testing.T) {
	var likes []model.Like
	err := decodeListBody([]byte(`[{"exhibitor_id":1,"video_id":2}]`), &likes)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.EqualValues(t, 1, likes[0].ExhibitorID)
}

func TestFallback_WritesAlwaysRejected(t *testing.T) {
	r := newTestResolver("salonA",
		map[string]string{"salonA": "http://self", "salonB": "http://b"},
		[]string{"salonA", "salonB"})
	ctx := context.Background()

	err := r.CreateLike(ctx, 1, 2)
	assert.Equal(t, apperr.KindCrossSalonWrite, apperr.KindOf(err))

	err = r.ToggleLike(ctx, 1, 2)
	assert.Equal(t, apperr.KindCrossSalonWrite, apperr.KindOf(err))

	err = r.CreateComment(ctx, 1, 2, "hello")
	assert.Equal(t, apperr.KindCrossSalonWrite, apperr.KindOf(err))
}
