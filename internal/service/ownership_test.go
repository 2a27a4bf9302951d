package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
)

func createVideo(t *testing.T, db *gorm.DB, owner *model.Exhibitor, name string) *model.Video {
	t.Helper()
	video := model.Video{
		ExhibitorID: owner.ID,
		Name:        name,
		Description: "test video",
		Status:      1,
	}
	require.NoError(t, db.Create(&video).Error)
	return &video
}

func TestVerifyInteraction_OK(t *testing.T) {
	db := newTestDB(t)
	actor := createExhibitor(t, db, "actor")
	owner := createExhibitor(t, db, "owner")
	video := createVideo(t, db, owner, "clip")

	verified, err := VerifyInteraction(db, actor.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, verified.Actor().ID)
	assert.Equal(t, video.ID, verified.Video().ID)
}

func TestVerifyInteraction_SelfLikeAllowed(t *testing.T) {
	db := newTestDB(t)
	owner := createExhibitor(t, db, "selfie")
	video := createVideo(t, db, owner, "own-clip")

	_, err := VerifyInteraction(db, owner.ID, video.ID)
	assert.NoError(t, err)
}

func TestVerifyInteraction_ActorMissing(t *testing.T) {
	db := newTestDB(t)
	owner := createExhibitor(t, db, "owner2")
	video := createVideo(t, db, owner, "clip2")

	_, err := VerifyInteraction(db, 9999, video.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindOwnership, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonActorMissing, apperr.ReasonOf(err))
}

func TestVerifyInteraction_ContentMissing(t *testing.T) {
	db := newTestDB(t)
	actor := createExhibitor(t, db, "actor2")

	_, err := VerifyInteraction(db, actor.ID, 9999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindOwnership, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonContentMissing, apperr.ReasonOf(err))
}

func TestVerifyInteraction_ContentOrphaned(t *testing.T) {
	db := newTestDB(t)
	actor := createExhibitor(t, db, "actor3")
	owner := createExhibitor(t, db, "vanishing")
	video := createVideo(t, db, owner, "orphan-clip")

	require.NoError(t, db.Delete(&model.Exhibitor{}, owner.ID).Error)

	_, err := VerifyInteraction(db, actor.ID, video.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindOwnership, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonContentOrphaned, apperr.ReasonOf(err))
}

// A publisher posts a video; an exhibitor unknown to this store (it
// lives in a sibling salon) is rejected, while a local exhibitor can
// like and then unlike through the guard.
func TestVerifyInteraction_CrossSalonScenario(t *testing.T) {
	db := newTestDB(t)
	publisher := createExhibitor(t, db, "e1")
	video := createVideo(t, db, publisher, "c1")

	_, err := VerifyInteraction(db, 424242, video.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonActorMissing, apperr.ReasonOf(err))

	local := createExhibitor(t, db, "e3")
	verified, err := VerifyInteraction(db, local.ID, video.ID)
	require.NoError(t, err)

	like := model.Like{ExhibitorID: verified.Actor().ID, VideoID: verified.Video().ID}
	require.NoError(t, db.Create(&like).Error)

	var count int64
	require.NoError(t, db.Model(&model.Like{}).Where(
		"exhibitor_id = ? AND video_id = ?", local.ID, video.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, db.Delete(&like).Error)
	require.NoError(t, db.Model(&model.Like{}).Where(
		"exhibitor_id = ? AND video_id = ?", local.ID, video.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyInteraction_OwnerDeactivated(t *testing.T) {
	db := newTestDB(t)
	actor := createExhibitor(t, db, "actor4")
	owner := createExhibitor(t, db, "sleeping")
	video := createVideo(t, db, owner, "inactive-clip")

	require.NoError(t, db.Model(&model.Exhibitor{}).Where("id = ?", owner.ID).Update("active", 0).Error)

	_, err := VerifyInteraction(db, actor.ID, video.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonContentOrphaned, apperr.ReasonOf(err))
}
