package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskflowhq/taskflow/internal/auth/dto"
	authErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
	"github.com/taskflowhq/taskflow/internal/auth/jwt"
	authservice "github.com/taskflowhq/taskflow/internal/auth/service"
	"github.com/taskflowhq/taskflow/internal/config"
	"github.com/taskflowhq/taskflow/internal/tasks"
	"github.com/taskflowhq/taskflow/internal/transport/http/middleware"
)

const refreshCookie = "refreshToken"

type Handler struct {
	auth   authservice.Service
	tasks  *tasks.Service
	issuer jwt.TokenIssuer
	cfg    *config.Config
	log    *zap.Logger
}

func NewHandler(
	auth authservice.Service,
	taskSvc *tasks.Service,
	issuer jwt.TokenIssuer,
	cfg *config.Config,
	log *zap.Logger,
) *Handler {
	return &Handler{auth: auth, tasks: taskSvc, issuer: issuer, cfg: cfg, log: log}
}

func NewRouter(h *Handler, log *zap.Logger, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RateLimitPerIP(50, 100, 10_000, time.Hour))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}

	gated := router.Group("/tasks", middleware.RequireAuth(h.issuer))
	{
		gated.POST("", h.CreateTask)
		gated.GET("", h.ListTasks)
		gated.GET("/:id", h.GetTask)
		gated.PUT("/:id", h.UpdateTaskResult)
		gated.PATCH("/:id/progress", h.UpdateTaskProgress)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	return router
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	_ = c.ShouldBindJSON(&body)

	id, err := h.auth.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err, "Server error during registration")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  id,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	_ = c.ShouldBindJSON(&body)

	pair, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err, "Server error during login")
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, int(pair.RefreshTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"accessToken": pair.AccessToken,
		"user": gin.H{
			"id":    pair.UserID,
			"email": pair.Email,
		},
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)

	access, err := h.auth.Refresh(c.Request.Context(), dto.RefreshDTO{RefreshToken: token})
	if err != nil {
		h.handleError(c, err, "Server error during refresh")
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if err := h.auth.Logout(c.Request.Context(), dto.LogoutDTO{RefreshToken: token}); err != nil {
		h.handleError(c, err, "Server error during logout")
		return
	}

	// Expire the cookie with the same attributes it was set with.
	h.setRefreshCookie(c, "", -1)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// setRefreshCookie binds the refresh token to its protected channel:
// HttpOnly, SameSite=Strict, Secure outside development.
func (h *Handler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		refreshCookie,
		value,
		maxAge,
		"/",
		h.cfg.CookieDomain,
		h.cfg.IsProduction(),
		true,
	)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var body tasks.CreateTaskDTO
	_ = c.ShouldBindJSON(&body)

	task, err := h.tasks.Create(c.Request.Context(), middleware.UserID(c), body)
	if err != nil {
		h.handleError(c, err, "Server error while creating task")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (h *Handler) ListTasks(c *gin.Context) {
	list, err := h.tasks.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.handleError(c, err, "Server error while fetching tasks")
		return
	}
	if list == nil {
		list = []tasks.Task{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks retrieved successfully",
		"tasks":   list,
	})
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.handleError(c, err, "Server error while fetching task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task retrieved successfully",
		"task":    task,
	})
}

func (h *Handler) UpdateTaskResult(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var body tasks.UpdateResultDTO
	_ = c.ShouldBindJSON(&body)

	task, err := h.tasks.UpdateResult(c.Request.Context(), middleware.UserID(c), id, body)
	if err != nil {
		h.handleError(c, err, "Server error while updating task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (h *Handler) UpdateTaskProgress(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var body tasks.UpdateProgressDTO
	_ = c.ShouldBindJSON(&body)

	task, err := h.tasks.UpdateProgress(c.Request.Context(), middleware.UserID(c), id, body)
	if err != nil {
		h.handleError(c, err, "Server error while updating progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Task progress updated",
		"progress": task.Progress,
	})
}

// taskID parses the :id segment. A non-numeric id reads the same as an
// absent task so URLs never leak what exists.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found or unauthorized"})
		return 0, false
	}
	return id, true
}

// handleError is the single place component failures become HTTP
// responses; raw internal detail stays in the log.
func (h *Handler) handleError(c *gin.Context, err error, internalMsg string) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": argumentMessage(err)})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case authErrors.IsNoToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No refresh token provided"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired refresh token"})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found or unauthorized"})
	default:
		h.log.Error(internalMsg, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMsg})
	}
}

func argumentMessage(err error) string {
	return strings.TrimPrefix(err.Error(), authErrors.ErrInvalidArgument.Error()+": ")
}
