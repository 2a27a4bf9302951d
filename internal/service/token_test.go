package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"salon-api/internal/apperr"
	"salon-api/internal/model"
	"salon-api/pkg/database"
)

// newTestDB opens a fresh in-memory store with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestIssueOrValidateToken_NewToken(t *testing.T) {
	db := newTestDB(t)

	token, err := IssueOrValidateToken(db, "", "10.0.0.1", "FR")
	require.NoError(t, err)
	assert.Len(t, token, 64, "sha256 hex digest")

	var visitor model.Visitor
	require.NoError(t, db.Where("token = ?", token).First(&visitor).Error)
	assert.Equal(t, "10.0.0.1", visitor.AddressIP)
	assert.Equal(t, "FR", visitor.CountryCode)
	assert.Equal(t, 1, visitor.VisitCount)
}

func TestIssueOrValidateToken_KnownCandidateIsReturnedUnchanged(t *testing.T) {
	db := newTestDB(t)

	token, err := IssueOrValidateToken(db, "", "", "")
	require.NoError(t, err)

	again, err := IssueOrValidateToken(db, token, "", "")
	require.NoError(t, err)
	assert.Equal(t, token, again)

	var count int64
	require.NoError(t, db.Model(&model.Visitor{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "no second visitor row for a known token")
}

func TestIssueOrValidateToken_UnknownCandidateMintsFresh(t *testing.T) {
	db := newTestDB(t)

	token, err := IssueOrValidateToken(db, "not-a-real-token", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-real-token", token)
	assert.Len(t, token, 64)
}

func TestIssueOrValidateToken_Defaults(t *testing.T) {
	db := newTestDB(t)

	token, err := IssueOrValidateToken(db, "", "", "")
	require.NoError(t, err)

	var visitor model.Visitor
	require.NoError(t, db.Where("token = ?", token).First(&visitor).Error)
	assert.Equal(t, "::1", visitor.AddressIP)
	assert.Equal(t, "NN", visitor.CountryCode)
}

func TestIssueOrValidateToken_Uniqueness(t *testing.T) {
	db := newTestDB(t)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := IssueOrValidateToken(db, "", "", "")
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token minted")
		seen[token] = true
	}
}

func TestVisitorByToken_Unknown(t *testing.T) {
	db := newTestDB(t)

	_, err := VisitorByToken(db, "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}
