package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"salon-api/internal/middleware"
	"salon-api/internal/model"
)

func activeSalon(t *testing.T, db *gorm.DB) *model.Salon {
	t.Helper()
	var salon model.Salon
	require.NoError(t, db.Where("is_active = ?", true).First(&salon).Error)
	return &salon
}

func activeCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Salon{}).Where("is_active = ?", true).Count(&count).Error)
	return count
}

func TestGetAllSalons_SeedsDefaults(t *testing.T) {
	db := setupTest(t)

	c, rec := newContext(http.MethodGet, "/api/salons", "")
	require.NoError(t, GetAllSalons(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var salons []model.Salon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &salons))
	require.Len(t, salons, 2)
	assert.True(t, salons[0].IsActive, "first seeded salon starts active")
	assert.False(t, salons[1].IsActive)

	// Listing again does not re-seed
	c, _ = newContext(http.MethodGet, "/api/salons", "")
	require.NoError(t, GetAllSalons(c))
	var count int64
	require.NoError(t, db.Model(&model.Salon{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestGetActiveSalon(t *testing.T) {
	db := setupTest(t)

	c, rec := newContext(http.MethodGet, "/api/salons/active", "")
	require.NoError(t, GetActiveSalon(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var salon model.Salon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &salon))
	assert.Equal(t, activeSalon(t, db).ID, salon.ID)
}

func setActiveRequest(t *testing.T, db *gorm.DB, admin *model.Exhibitor, salonID string) (int, string) {
	t.Helper()
	c, rec := newContext(http.MethodPut, "/api/salons/"+salonID+"/activate", "")
	c.Request().Header.Set("X-Visitor-Token", loginAs(t, db, admin))
	c.SetParamNames("id")
	c.SetParamValues(salonID)
	require.NoError(t, middleware.AdminMiddleware(SetActiveSalon)(c))
	return rec.Code, rec.Body.String()
}

func TestSetActiveSalon_Switch(t *testing.T) {
	db := setupTest(t)
	admin := seedExhibitor(t, db, "chief", model.LevelAdministrator)

	// Seed via listing
	c, _ := newContext(http.MethodGet, "/api/salons", "")
	require.NoError(t, GetAllSalons(c))

	var second model.Salon
	require.NoError(t, db.Where("is_active = ?", false).First(&second).Error)

	code, body := setActiveRequest(t, db, admin, strconv.Itoa(int(second.ID)))
	require.Equal(t, http.StatusOK, code, body)

	assert.EqualValues(t, 1, activeCount(t, db), "exactly one active salon")
	assert.Equal(t, second.ID, activeSalon(t, db).ID)
}

func TestSetActiveSalon_UnknownIDLeavesStateUntouched(t *testing.T) {
	db := setupTest(t)
	admin := seedExhibitor(t, db, "chief2", model.LevelAdministrator)

	c, _ := newContext(http.MethodGet, "/api/salons", "")
	require.NoError(t, GetAllSalons(c))
	before := activeSalon(t, db).ID

	code, _ := setActiveRequest(t, db, admin, "9999")
	require.Equal(t, http.StatusNotFound, code)

	assert.EqualValues(t, 1, activeCount(t, db))
	assert.Equal(t, before, activeSalon(t, db).ID, "previous active salon survives a bad switch")
}

func TestSetActiveSalon_RequiresAdmin(t *testing.T) {
	db := setupTest(t)
	plain := seedExhibitor(t, db, "mortal", model.LevelPlain)

	c, _ := newContext(http.MethodGet, "/api/salons", "")
	require.NoError(t, GetAllSalons(c))
	salon := activeSalon(t, db)

	code, _ := setActiveRequest(t, db, plain, strconv.Itoa(int(salon.ID)))
	assert.Equal(t, http.StatusForbidden, code)
}

func TestSalonSwitch_BumpsVersionCode(t *testing.T) {
	db := setupTest(t)
	admin := seedExhibitor(t, db, "chief3", model.LevelAdministrator)

	c, rec := newContext(http.MethodGet, "/api/app/version", "")
	require.NoError(t, GetAppVersion(c))
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["version_code"], "no switch yet")

	cl, _ := newContext(http.MethodGet, "/api/salons", "")
	require.NoError(t, GetAllSalons(cl))
	var second model.Salon
	require.NoError(t, db.Where("is_active = ?", false).First(&second).Error)

	code, _ := setActiveRequest(t, db, admin, strconv.Itoa(int(second.ID)))
	require.Equal(t, http.StatusOK, code)

	c, rec = newContext(http.MethodGet, "/api/app/version", "")
	require.NoError(t, GetAppVersion(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Greater(t, resp["version_code"], 1)
}
