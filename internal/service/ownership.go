package service

import (
	"errors"

	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
)

// VerifiedInteraction is proof that an exhibitor and a video both live
// in this salon's store and that the video still belongs to a live
// exhibitor. Its fields are unexported and the only constructor is
// VerifyInteraction, so a mutation path cannot be built without
// passing the ownership check.
type VerifiedInteraction struct {
	actor model.Exhibitor
	video model.Video
}

// Actor returns the verified acting exhibitor
func (v *VerifiedInteraction) Actor() *model.Exhibitor {
	return &v.actor
}

// Video returns the verified target video
func (v *VerifiedInteraction) Video() *model.Video {
	return &v.video
}

// VerifyInteraction gates every like and comment mutation. Reads never
// go through here. The three rejection reasons are kept distinct so
// callers and operators can tell a deleted account from content that
// drifted in from another salon.
func VerifyInteraction(db *gorm.DB, exhibitorID, videoID uint) (*VerifiedInteraction, error) {
	var actor model.Exhibitor
	err := db.First(&actor, exhibitorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Ownership(apperr.ReasonActorMissing, "exhibitor not found in this salon")
	}
	if err != nil {
		return nil, apperr.Store("failed to load exhibitor", err)
	}

	var video model.Video
	err = db.First(&video, videoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Ownership(apperr.ReasonContentMissing, "video not found in this salon")
	}
	if err != nil {
		return nil, apperr.Store("failed to load video", err)
	}

	// A video whose owner row is gone or deactivated belongs to nobody
	// here; interacting with it would leak across salons.
	var owner model.Exhibitor
	err = db.First(&owner, video.ExhibitorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Ownership(apperr.ReasonContentOrphaned, "video does not belong to any exhibitor in this salon")
	}
	if err != nil {
		return nil, apperr.Store("failed to load video owner", err)
	}
	if owner.Active == 0 {
		return nil, apperr.Ownership(apperr.ReasonContentOrphaned, "video owner is deactivated")
	}

	return &VerifiedInteraction{actor: actor, video: video}, nil
}
