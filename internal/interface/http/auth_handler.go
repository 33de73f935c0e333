package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/config"
	repo "github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/pkg/helpers"
	"github.com/lendbook/lendbook/pkg/mailer"
	"github.com/lendbook/lendbook/pkg/response"
	"github.com/lendbook/lendbook/pkg/validation"
)

// AuthHandler covers email verification and password reset. Tokens are
// random, single use, and live only in Redis with a TTL.
type AuthHandler struct {
	Repo   repo.UserRepository
	RDB    *redis.Client
	Logger *logrus.Logger
	Cfg    *config.Config
	Pub    *helpers.RabbitPublisher
}

func NewAuthHandler(repo repo.UserRepository, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *AuthHandler {
	return &AuthHandler{Repo: repo, RDB: rdb, Logger: logger, Cfg: cfg, Pub: pub}
}

func keyVerifyToken(t string) string { return "email:verify:token:" + t }
func keyResetToken(t string) string  { return "pwd:reset:token:" + t }

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (h *AuthHandler) enqueue(c *gin.Context, job mailer.EmailJob) {
	if h.Pub == nil || !h.Cfg.MailSendEnabled {
		return
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		h.Logger.WithError(err).Warn("email job enqueue failed")
	}
}

// VerifyInit POST /api/auth/verify/init (auth required)
func (h *AuthHandler) VerifyInit(c *gin.Context) {
	uid := c.GetString("userID")
	if ok, err := h.Repo.IsVerified(c.Request.Context(), uid); err == nil && ok {
		response.Success(c, http.StatusOK, gin.H{"already_verified": true}, "already verified", nil)
		return
	}
	tok, err := genToken(32)
	if err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	if err := h.RDB.Set(c.Request.Context(), keyVerifyToken(tok), uid, 24*time.Hour).Err(); err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "verification unavailable", nil)
		return
	}
	link := h.Cfg.VerifyEmailURL + "?token=" + tok

	if u, err := h.Repo.GetByID(c.Request.Context(), uid); err == nil {
		h.enqueue(c, mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateVerifyEmail,
			Data:     map[string]any{"Name": u.Name, "Company": h.Cfg.CompanyName, "Link": link},
		})
	}
	response.Success(c, http.StatusOK, gin.H{"verify_link": link}, "verification link issued", nil)
}

// VerifyConfirm POST /api/auth/verify/confirm {token}
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid, err := h.RDB.Get(c.Request.Context(), keyVerifyToken(req.Token)).Result()
	if err != nil || uid == "" {
		response.Fail[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	if err := h.Repo.SetVerified(c.Request.Context(), uid); err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	h.RDB.Del(c.Request.Context(), keyVerifyToken(req.Token))
	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}

// ResetInit POST /api/auth/reset/init {email}
// Always answers 200 so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Repo.GetByEmail(c.Request.Context(), req.Email)
	if err == nil && u != nil {
		tok, err := genToken(32)
		if err != nil {
			response.Fail[any](c, http.StatusInternalServerError, "token generation failed", nil)
			return
		}
		h.RDB.Set(c.Request.Context(), keyResetToken(tok), u.ID, 30*time.Minute)
		link := h.Cfg.ResetPasswordURL + "?token=" + tok
		h.enqueue(c, mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateResetPassword,
			Data:     map[string]any{"Name": u.Name, "Company": h.Cfg.CompanyName, "Link": link},
		})
	}
	response.Success[any](c, http.StatusOK, gin.H{"requested": true}, "if the account exists, a reset email was sent", nil)
}

// ResetConfirm POST /api/auth/reset/confirm {token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid, err := h.RDB.Get(c.Request.Context(), keyResetToken(req.Token)).Result()
	if err != nil || uid == "" {
		response.Fail[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	hash, err := helpers.HashPassword(req.NewPassword)
	if err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "password hashing failed", nil)
		return
	}
	if err := h.Repo.UpdatePassword(c.Request.Context(), uid, hash); err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "password update failed", nil)
		return
	}
	h.RDB.Del(c.Request.Context(), keyResetToken(req.Token))
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
