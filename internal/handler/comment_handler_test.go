package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-api/internal/middleware"
	"salon-api/internal/model"
)

func TestCreateComment(t *testing.T) {
	db := setupTest(t)
	actor := seedExhibitor(t, db, "talker", model.LevelPlain)
	owner := seedExhibitor(t, db, "filmer", model.LevelPublisher)
	video := seedVideo(t, db, owner, "doc")
	token := loginAs(t, db, actor)

	c, rec := newContext(http.MethodPost, "/api/comments",
		fmt.Sprintf(`{"video_id":%d,"content":"  bien joué  "}`, video.ID))
	c.Request().Header.Set("X-Visitor-Token", token)
	require.NoError(t, middleware.AuthMiddleware(CreateComment)(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var comment model.Comment
	require.NoError(t, db.First(&comment).Error)
	assert.Equal(t, "bien joué", comment.Content, "content is trimmed")
	assert.Equal(t, actor.ID, comment.ExhibitorID)
}

func TestCreateComment_EmptyContent(t *testing.T) {
	db := setupTest(t)
	actor := seedExhibitor(t, db, "mute", model.LevelPlain)
	owner := seedExhibitor(t, db, "filmer2", model.LevelPublisher)
	video := seedVideo(t, db, owner, "doc2")
	token := loginAs(t, db, actor)

	c, rec := newContext(http.MethodPost, "/api/comments",
		fmt.Sprintf(`{"video_id":%d,"content":"   "}`, video.ID))
	c.Request().Header.Set("X-Visitor-Token", token)
	require.NoError(t, middleware.AuthMiddleware(CreateComment)(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateComment_CrossSalonRejected(t *testing.T) {
	db := setupTest(t)
	actor := seedExhibitor(t, db, "wanderer", model.LevelPlain)
	token := loginAs(t, db, actor)

	c, rec := newContext(http.MethodPost, "/api/comments", `{"video_id":777,"content":"hello"}`)
	c.Request().Header.Set("X-Visitor-Token", token)
	require.NoError(t, middleware.AuthMiddleware(CreateComment)(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "content_missing", resp["reason"])
}

func TestUpdateComment_AuthorOnly(t *testing.T) {
	db := setupTest(t)
	author := seedExhibitor(t, db, "author", model.LevelPlain)
	other := seedExhibitor(t, db, "other", model.LevelPlain)
	owner := seedExhibitor(t, db, "filmer3", model.LevelPublisher)
	video := seedVideo(t, db, owner, "doc3")

	comment := model.Comment{ExhibitorID: author.ID, VideoID: video.ID, Content: "v1"}
	require.NoError(t, db.Create(&comment).Error)
	id := strconv.Itoa(int(comment.ID))

	// A stranger cannot edit
	c, rec := newContext(http.MethodPatch, "/api/comments/"+id, `{"content":"hacked"}`)
	c.Request().Header.Set("X-Visitor-Token", loginAs(t, db, other))
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, middleware.AuthMiddleware(UpdateComment)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The author can
	c, rec = newContext(http.MethodPatch, "/api/comments/"+id, `{"content":"v2"}`)
	c.Request().Header.Set("X-Visitor-Token", loginAs(t, db, author))
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, middleware.AuthMiddleware(UpdateComment)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, db.First(&comment, comment.ID).Error)
	assert.Equal(t, "v2", comment.Content)
}

func TestDeleteComment_AdminOverride(t *testing.T) {
	db := setupTest(t)
	author := seedExhibitor(t, db, "writer", model.LevelPlain)
	admin := seedExhibitor(t, db, "moderator", model.LevelAdministrator)
	owner := seedExhibitor(t, db, "filmer4", model.LevelPublisher)
	video := seedVideo(t, db, owner, "doc4")

	comment := model.Comment{ExhibitorID: author.ID, VideoID: video.ID, Content: "spam"}
	require.NoError(t, db.Create(&comment).Error)
	id := strconv.Itoa(int(comment.ID))

	c, rec := newContext(http.MethodDelete, "/api/comments/"+id, "")
	c.Request().Header.Set("X-Visitor-Token", loginAs(t, db, admin))
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, middleware.AuthMiddleware(DeleteComment)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetCommentsByVideo_LocalAndEmptyFallback(t *testing.T) {
	db := setupTest(t)
	actor := seedExhibitor(t, db, "speaker", model.LevelPlain)
	owner := seedExhibitor(t, db, "filmer5", model.LevelPublisher)
	video := seedVideo(t, db, owner, "doc5")
	require.NoError(t, db.Create(&model.Comment{ExhibitorID: actor.ID, VideoID: video.ID, Content: "top"}).Error)

	c, rec := newContext(http.MethodGet, "/api/comments/video/"+strconv.Itoa(int(video.ID)), "")
	c.SetParamNames("video_id")
	c.SetParamValues(strconv.Itoa(int(video.ID)))
	require.NoError(t, GetCommentsByVideo(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "local", resp["origin"])
	assert.Len(t, resp["results"], 1)

	// Unknown video with no siblings degrades to an empty result
	c, rec = newContext(http.MethodGet, "/api/comments/video/404", "")
	c.SetParamNames("video_id")
	c.SetParamValues("404")
	require.NoError(t, GetCommentsByVideo(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp["results"], 0)
}
