package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"salon-api/internal/model"
	"salon-api/internal/service"
	"salon-api/pkg/config"
	"salon-api/pkg/database"
)

// nullSender swallows push batches in tests
type nullSender struct{}

func (nullSender) Send(ctx context.Context, messages []service.PushMessage) ([]service.PushTicket, error) {
	return make([]service.PushTicket, len(messages)), nil
}

// setupTest points the handler package at a fresh in-memory store and
// wires collaborators without any sibling servers
func setupTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.Set(db)

	cfg := &config.Config{}
	cfg.Salon.Current = "salonA"
	cfg.Salon.DefaultSeed = []string{"Salon de formation", "Salon de l'habitat"}
	cfg.Fallback.Servers = map[string]string{"salonA": "http://self"}
	cfg.Fallback.Order = []string{"salonA"}
	cfg.Fallback.Timeout = time.Second
	cfg.Push.ChunkSize = 100

	log := zap.NewNop()
	Init(cfg, service.NewFallbackResolver(cfg, log), service.NewNotifier(nullSender{}, cfg, log))
	return db
}

// newContext builds an echo context around an httptest request
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func seedCategory(t *testing.T, db *gorm.DB) *model.Category {
	t.Helper()
	category := model.Category{Name: "tech"}
	err := db.Where("name = ?", category.Name).FirstOrCreate(&category).Error
	require.NoError(t, err)
	return &category
}

func seedExhibitor(t *testing.T, db *gorm.DB, name string, level int) *model.Exhibitor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	exhibitor := model.Exhibitor{
		CategoryID: seedCategory(t, db).ID,
		Email:      name + "@example.com",
		Username:   name,
		Password:   string(hash),
		Name:       name,
		Level:      level,
		Active:     1,
	}
	require.NoError(t, db.Create(&exhibitor).Error)
	return &exhibitor
}

func seedVideo(t *testing.T, db *gorm.DB, owner *model.Exhibitor, name string) *model.Video {
	t.Helper()
	video := model.Video{ExhibitorID: owner.ID, Name: name, Description: "d", Status: 1}
	require.NoError(t, db.Create(&video).Error)
	return &video
}

// loginAs mints a visitor token and binds it to the exhibitor
func loginAs(t *testing.T, db *gorm.DB, exhibitor *model.Exhibitor) string {
	t.Helper()
	token, err := service.IssueOrValidateToken(db, "", "", "")
	require.NoError(t, err)
	visitor, err := service.VisitorByToken(db, token)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Login{
		VisitorID:   visitor.ID,
		ExhibitorID: exhibitor.ID,
		Session:     model.SessionValid,
	}).Error)
	return token
}
