package http

import (
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"authgate/internal/auth"
	"authgate/internal/repository"
	"authgate/internal/service"
	"authgate/internal/storage"
)

const (
	maxAvatarBytes   = 5 << 20
	avatarURLExpires = 15 * time.Minute
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	tokens  *auth.TokenService
	storage storage.Service
	bucket  string
	prefix  string
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, tokens *auth.TokenService, store storage.Service, bucket, keyPrefix string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:   users,
		tokens:  tokens,
		storage: store,
		bucket:  bucket,
		prefix:  keyPrefix,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		respondData(c, http.StatusOK, "Service is up and running")
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
	}

	// direct-id CRUD carries no ownership check: any authenticated caller
	// may read, mutate or delete any user by id
	userGroup := router.Group("/user")
	{
		userGroup.GET("/:id", h.getUserByID)
		userGroup.PUT("/:id", h.updateUser)
		userGroup.DELETE("/:id", h.deleteUser)
		userGroup.GET("/:id/avatar", h.getAvatarURL)
	}
	// static "email" cannot share the /user/:id wildcard level
	router.GET("/users/email/:email", h.getUserByEmail)

	me := router.Group("/me", h.authRequired())
	{
		me.GET("", h.getMe)
		me.PUT("/password", h.changePassword)
		me.PUT("/avatar", h.putAvatar)
	}
}

// apiResponse is the single envelope used by every endpoint: data and error
// are mutually exclusive.
type apiResponse struct {
	Status int    `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, apiResponse{Status: status, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, apiResponse{Status: status, Error: message})
}

// respondServiceError maps workflow errors onto the envelope. Expected
// failures carry their safe message; anything else is logged in full and
// surfaced as a generic internal error.
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrEmailTaken):
		// auth-style rejection, matching the signup contract
		respondError(c, http.StatusUnauthorized, "email is already taken")
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, auth.ErrPasswordEmpty),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordNoUppercase),
		errors.Is(err, auth.ErrPasswordNoLowercase),
		errors.Is(err, auth.ErrPasswordNoDigit):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("internal error")
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

const userIDKey = "userID"

// authRequired resolves the acting user from the Authorization header.
// Missing header, malformed scheme and failed verification are one outcome.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.FromAuthorizationHeader(c.GetHeader("Authorization"))
		if err == nil {
			var userID string
			userID, err = h.tokens.Verify(token)
			if err == nil {
				c.Set(userIDKey, userID)
				c.Next()
				return
			}
		}
		respondError(c, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		c.Abort()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type authResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.users.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, authResponse{Token: result.Token, User: result.User})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, authResponse{Token: result.Token, User: result.User})
}

func (h *Handler) getUserByID(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *Handler) getUserByEmail(c *gin.Context) {
	user, err := h.users.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), req.Email, req.Password); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, "user updated")
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, "user deleted")
}

func (h *Handler) getMe(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "old and new passwords are required")
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), c.GetString(userIDKey), req.OldPassword, req.NewPassword); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) putAvatar(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		respondError(c, http.StatusInternalServerError, "storage service not configured")
		return
	}

	userID := c.GetString(userIDKey)
	key := path.Join(h.prefix, userID)
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)

	if err := h.storage.PutObject(c.Request.Context(), h.bucket, key, c.ContentType(), body); err != nil {
		h.logger.WithError(err).Error("upload avatar")
		respondError(c, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	if err := h.users.SetAvatarKey(c.Request.Context(), userID, key); err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"key": key})
}

func (h *Handler) getAvatarURL(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		respondError(c, http.StatusInternalServerError, "storage service not configured")
		return
	}

	key, err := h.users.AvatarKey(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	if key == "" {
		respondError(c, http.StatusNotFound, "avatar not set")
		return
	}

	url, err := h.storage.PresignGet(c.Request.Context(), h.bucket, key, avatarURLExpires)
	if err != nil {
		h.logger.WithError(err).Error("presign avatar")
		respondError(c, http.StatusInternalServerError, "failed to resolve avatar url")
		return
	}
	respondData(c, http.StatusOK, gin.H{"url": url})
}
