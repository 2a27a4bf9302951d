package service

import (
	"errors"

	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
)

// ResolveExhibitor is the sole authorization primitive: it maps an
// opaque visitor token to the exhibitor bound by the newest valid
// login record. It is side-effect free: no counters are bumped and no
// tokens are issued here.
//
// A visitor accumulates one login row per auth event. The newest row
// with session=1 wins; the store does not order results without an
// explicit sort, so the sort is spelled out.
func ResolveExhibitor(db *gorm.DB, token string) (*model.Exhibitor, error) {
	if token == "" {
		return nil, apperr.Authentication("missing visitor token")
	}

	visitor, err := VisitorByToken(db, token)
	if err != nil {
		return nil, err
	}

	var login model.Login
	err = db.Where("visitor_id = ? AND session = ?", visitor.ID, model.SessionValid).
		Order("created_at DESC, id DESC").
		First(&login).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Authentication("no active session for this visitor")
	}
	if err != nil {
		return nil, apperr.Store("failed to look up login record", err)
	}

	var exhibitor model.Exhibitor
	err = db.First(&exhibitor, login.ExhibitorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Authentication("exhibitor account no longer exists")
	}
	if err != nil {
		return nil, apperr.Store("failed to look up exhibitor", err)
	}

	return &exhibitor, nil
}
