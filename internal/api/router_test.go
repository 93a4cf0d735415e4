package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Conceptual-Machines/moodsic-api/internal/composer"
	"github.com/Conceptual-Machines/moodsic-api/internal/config"
	"github.com/Conceptual-Machines/moodsic-api/internal/database"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyService struct{}

func (emptyService) Create(context.Context, string, models.CompositionRequest) (*models.Composition, error) {
	return &models.Composition{ID: "x"}, nil
}

func (emptyService) Get(context.Context, string) (*models.Composition, error) {
	return &models.Composition{ID: "x"}, nil
}

func (emptyService) List(context.Context, string, int, int) ([]models.Composition, int64, error) {
	return nil, 0, nil
}

func (emptyService) MIDI(context.Context, string) ([]byte, error) {
	return []byte("MThd"), nil
}

func setupTestRouter(t *testing.T, authMode string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(filepath.Join(t.TempDir(), "router.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	cfg := &config.Config{AuthMode: authMode, JWTSecret: "secret", ModelName: "melody", CORSOrigins: []string{"*"}}
	return SetupRouter(cfg, Dependencies{
		DB:           db,
		Compositions: emptyService{},
		Params:       composer.NewParameterSampler(4),
	}, "test")
}

func TestRouterRoutes(t *testing.T) {
	router := setupTestRouter(t, config.AuthModeNone)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/sentiments", http.StatusOK},
		{http.MethodGet, "/api/v1/compositions", http.StatusOK},
		{http.MethodGet, "/api/v1/compositions/x", http.StatusOK},
		{http.MethodGet, "/api/v1/compositions/x/midi", http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouterAuthModes(t *testing.T) {
	tests := []struct {
		mode string
		want int
	}{
		{config.AuthModeNone, http.StatusOK},
		{config.AuthModeGateway, http.StatusUnauthorized},
		{config.AuthModeJWT, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			router := setupTestRouter(t, tt.mode)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/compositions", nil))
			assert.Equal(t, tt.want, w.Code)

			// health stays public
			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
