package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Prabisha01/de/internal/auth"
	"github.com/Prabisha01/de/internal/boards"
	"github.com/Prabisha01/de/internal/config"
	"github.com/Prabisha01/de/internal/database"
	"github.com/Prabisha01/de/internal/export"
	"github.com/Prabisha01/de/internal/ids"
	"github.com/Prabisha01/de/internal/media"
	"github.com/Prabisha01/de/internal/notes"
	"github.com/Prabisha01/de/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// copyRasterizer stands in for pdftoppm by copying a fixed PNG to the output path.
type copyRasterizer struct {
	png []byte
}

func (r copyRasterizer) RasterizeFirstPage(ctx context.Context, pdfPath string, outputPrefix string) (string, error) {
	output := outputPrefix + ".png"
	return output, os.WriteFile(output, r.png, 0o600)
}

type apiHarness struct {
	server   *httptest.Server
	users    *users.Service
	boards   *boards.Service
	realtime *RealtimeDispatcher
	local    *media.LocalStore
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	logger := zap.NewNop()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(root, "boards.db"),
	}, logger)
	require.NoError(t, err)

	idProvider := ids.NewUUIDProvider()
	local, err := media.NewLocalStore(filepath.Join(root, "uploads"), "/uploads")
	require.NoError(t, err)
	ingress, err := media.NewIngress(media.IngressConfig{
		Images:     local,
		Local:      local,
		Rasterizer: copyRasterizer{png: pngFixture(t)},
		IDProvider: idProvider,
		TempDir:    root,
		Logger:     logger,
	})
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte("test-signing-secret"),
		Issuer:        "boards-auth",
		Audience:      "boards-api",
		TokenTTL:      time.Hour,
	})
	require.NoError(t, err)

	userService, err := users.NewService(users.ServiceConfig{
		Database:               db,
		IDProvider:             idProvider,
		Hasher:                 auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:                 issuer,
		Media:                  ingress,
		AllowAdminRegistration: true,
		Logger:                 logger,
	})
	require.NoError(t, err)

	dispatcher := NewRealtimeDispatcher()
	boardService, err := boards.NewService(boards.ServiceConfig{
		Database:   db,
		IDProvider: idProvider,
		Media:      ingress,
		Ledger:     userService,
		Directory:  userService,
		Notifier:   dispatcher,
		Logger:     logger,
	})
	require.NoError(t, err)
	userService.SetBoardRemover(boardService)

	notesService, err := notes.NewService(notes.ServiceConfig{
		Database:   db,
		IDProvider: idProvider,
		Boards:     boardService,
		Logger:     logger,
	})
	require.NoError(t, err)
	boardService.AddDependent(notesService)

	handler, err := NewHTTPHandler(Dependencies{
		Users:    userService,
		Boards:   boardService,
		Notes:    notesService,
		Tokens:   issuer,
		Exporter: export.NewRenderer(ingress, logger),
		Realtime: dispatcher,
		Settings: Settings{
			AllowedOrigins:    []string{"http://localhost:5173"},
			UploadDir:         local.Dir(),
			PublicPrefix:      local.PublicPrefix(),
			HeartbeatInterval: time.Hour,
		},
		Logger: logger,
	})
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &apiHarness{
		server:   server,
		users:    userService,
		boards:   boardService,
		realtime: dispatcher,
		local:    local,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Token   string          `json:"token"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	return h.send(t, request)
}

func (h *apiHarness) send(t *testing.T, request *http.Request) (int, envelope) {
	t.Helper()
	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	var payload envelope
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return response.StatusCode, payload
}

// signUp registers and logs in a user, returning its id and bearer token.
func (h *apiHarness) signUp(t *testing.T, username, role string) (string, string) {
	t.Helper()
	status, _ := h.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": username,
		"email":    username + "@x.com",
		"password": "pw123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, status)
	status, login := h.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": username,
		"password": "pw123",
	})
	require.Equal(t, http.StatusOK, status)
	var user users.User
	require.NoError(t, json.Unmarshal(login.Data, &user))
	return user.ID, login.Token
}

func (h *apiHarness) createBoard(t *testing.T, token, name string) boards.Board {
	t.Helper()
	status, payload := h.do(t, http.MethodPost, "/api/v1/boards/createBoard", token, map[string]string{"boardName": name})
	require.Equal(t, http.StatusCreated, status, payload.Message)
	var board boards.Board
	require.NoError(t, json.Unmarshal(payload.Data, &board))
	return board
}

func decodeData[T any](t *testing.T, payload envelope) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(payload.Data, &value))
	return value
}
