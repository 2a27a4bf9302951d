package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
)

// tokenDomain is mixed into the digest input so visitor tokens cannot
// collide with tokens minted by other token families.
const tokenDomain = "Visitor"

// IssueOrValidateToken returns the candidate token unchanged when it is
// already bound to a visitor, otherwise mints a new token and persists
// the visitor row before returning it. Tokens are durable identities:
// no expiry is modeled.
func IssueOrValidateToken(db *gorm.DB, candidate, addressIP, countryCode string) (string, error) {
	if candidate != "" {
		var existing model.Visitor
		err := db.Where("token = ?", candidate).First(&existing).Error
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Store("failed to look up visitor token", err)
		}
	}

	// The visible token is a digest of random bytes, a timestamp and a
	// domain string. Forging one requires breaking the randomness
	// source, not just the hash.
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Store("failed to generate token randomness", err)
	}
	raw := hex.EncodeToString(buf) + strconv.FormatInt(time.Now().UnixMilli(), 10) + tokenDomain
	sum := sha256.Sum256([]byte(raw))
	token := hex.EncodeToString(sum[:])

	if addressIP == "" {
		addressIP = "::1"
	}
	if countryCode == "" {
		countryCode = "NN"
	}

	visitor := model.Visitor{
		Token:       token,
		AddressIP:   addressIP,
		CountryCode: countryCode,
		VisitCount:  1,
	}
	if err := db.Create(&visitor).Error; err != nil {
		return "", apperr.Store("failed to persist visitor", err)
	}

	return token, nil
}

// VisitorByToken resolves a visitor row from its opaque token
func VisitorByToken(db *gorm.DB, token string) (*model.Visitor, error) {
	var visitor model.Visitor
	err := db.Where("token = ?", token).First(&visitor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Authentication("unknown visitor token")
	}
	if err != nil {
		return nil, apperr.Store("failed to look up visitor", err)
	}
	return &visitor, nil
}
