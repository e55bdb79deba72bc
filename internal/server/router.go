package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Prabisha01/de/internal/access"
	"github.com/Prabisha01/de/internal/boards"
	"github.com/Prabisha01/de/internal/export"
	"github.com/Prabisha01/de/internal/notes"
	"github.com/Prabisha01/de/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	apiPrefix              = "/api/v1"
	defaultCookieName      = "token"
	defaultMultipartMemory = 8 << 20
)

var (
	errMissingUsersService  = errors.New("users service dependency required")
	errMissingBoardsService = errors.New("boards service dependency required")
	errMissingNotesService  = errors.New("notes service dependency required")
	errMissingTokenManager  = errors.New("token manager dependency required")
	errMissingExporter      = errors.New("board exporter dependency required")
)

// TokenValidator verifies a credential and returns its subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// SubjectResolver maps a credential subject to its account.
type SubjectResolver interface {
	Resolve(ctx context.Context, subject string) (users.User, error)
}

// Settings carries transport-level options.
type Settings struct {
	AllowedOrigins []string
	CookieName     string
	CookieSecure   bool
	// UploadDir is served under PublicPrefix when set.
	UploadDir         string
	PublicPrefix      string
	HeartbeatInterval time.Duration
}

type Dependencies struct {
	Users    *users.Service
	Boards   *boards.Service
	Notes    *notes.Service
	Tokens   TokenValidator
	Exporter *export.Renderer
	Realtime *RealtimeDispatcher
	Settings Settings
	Logger   *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Users == nil {
		return nil, errMissingUsersService
	}
	if deps.Boards == nil {
		return nil, errMissingBoardsService
	}
	if deps.Notes == nil {
		return nil, errMissingNotesService
	}
	if deps.Tokens == nil {
		return nil, errMissingTokenManager
	}
	if deps.Exporter == nil {
		return nil, errMissingExporter
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	realtime := deps.Realtime
	if realtime == nil {
		realtime = NewRealtimeDispatcher()
	}
	settings := deps.Settings
	if strings.TrimSpace(settings.CookieName) == "" {
		settings.CookieName = defaultCookieName
	}
	if settings.HeartbeatInterval <= 0 {
		settings.HeartbeatInterval = defaultHeartbeatInterval
	}

	handler := &httpHandler{
		users:    deps.Users,
		subjects: deps.Users,
		boards:   deps.Boards,
		notes:    deps.Notes,
		tokens:   deps.Tokens,
		exporter: deps.Exporter,
		realtime: realtime,
		settings: settings,
		logger:   logger,
	}

	router := gin.New()
	router.MaxMultipartMemory = defaultMultipartMemory
	router.Use(gin.Recovery())
	router.Use(handler.logRequests)
	router.Use(corsMiddleware(settings.AllowedOrigins))

	router.GET("/health", handler.handleHealth)
	if settings.UploadDir != "" && settings.PublicPrefix != "" {
		router.Static(settings.PublicPrefix, settings.UploadDir)
	}

	api := router.Group(apiPrefix)
	handler.registerUserRoutes(api.Group("/users"))
	handler.registerBoardRoutes(api.Group("/boards"))
	handler.registerNoteRoutes(api.Group("/note"))

	return router, nil
}

type httpHandler struct {
	users    *users.Service
	subjects SubjectResolver
	boards   *boards.Service
	notes    *notes.Service
	tokens   TokenValidator
	exporter *export.Renderer
	realtime *RealtimeDispatcher
	settings Settings
	logger   *zap.Logger
}

func (h *httpHandler) registerUserRoutes(group *gin.RouterGroup) {
	group.POST("/register", h.handleRegister)
	group.POST("/login", h.handleLogin)
	group.POST("/logout", h.handleLogout)

	protected := group.Group("")
	protected.Use(h.authorizeRequest)
	protected.GET("/getMe", h.handleGetMe)
	protected.GET("/subscription", h.handleSubscription)
	protected.PUT("/updateProfilePicture", h.handleUpdateProfilePicture)
	protected.GET("/getAllUsers", h.requireRoles(access.RoleAdmin), h.handleListUsers)
	protected.PUT("/updateUser/:id", h.handleUpdateUser)
	protected.DELETE("/deleteUser/:id", h.handleDeleteUser)

	admin := protected.Group("/admin")
	admin.Use(h.requireRoles(access.RoleAdmin))
	admin.GET("/users", h.handleListUsers)
	admin.PUT("/users/:id", h.handleUpdateUser)
	admin.DELETE("/users/:id", h.handleDeleteUser)
}

func (h *httpHandler) registerBoardRoutes(group *gin.RouterGroup) {
	group.GET("/:boardId/images", h.handleBoardImages)

	protected := group.Group("")
	protected.Use(h.authorizeRequest)
	protected.GET("/getAllBoards", h.handleListBoards)
	protected.POST("/createBoard", h.handleCreateBoard)
	protected.GET("/search", h.handleSearchBoards)
	protected.GET("/stream", h.handleBoardStream)
	protected.GET("/users/:userId", h.handleCountBoards)
	protected.PATCH("/toggleFavorite/:boardId", h.handleToggleFavorite)
	protected.GET("/:boardId", h.handleGetBoard)
	protected.PUT("/:boardId", h.handleUpdateBoard)
	protected.DELETE("/:boardId", h.handleDeleteBoard)
	protected.POST("/:boardId/elements", h.handleCreateElement)
	protected.PUT("/:boardId/elements", h.handleUpsertElement)
	protected.DELETE("/:boardId/elements/:elementId", h.handleDeleteElement)
	protected.PATCH("/:boardId/elements/:elementId/front", h.handleBringToFront)
	protected.POST("/:boardId/upload", h.handleUploadImage)
	protected.POST("/:boardId/pdf", h.handleProcessPDF)
	protected.GET("/:boardId/export", h.handleExportBoard)
}

func (h *httpHandler) registerNoteRoutes(group *gin.RouterGroup) {
	group.Use(h.authorizeRequest)
	group.POST("/create", h.handleCreateNote)
	group.GET("/board/:boardId", h.handleListNotes)
	group.PUT("/update/:noteId", h.handleUpdateNote)
	group.DELETE("/delete/:noteId", h.handleDeleteNote)
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || containsWildcard(allowedOrigins) {
		config.AllowOriginFunc = func(string) bool { return true }
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return cors.New(config)
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
