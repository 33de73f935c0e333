package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/internal/application"
	"github.com/lendbook/lendbook/internal/domain/entity"
	repo "github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/pkg/helpers"
	"github.com/lendbook/lendbook/pkg/response"
	"github.com/lendbook/lendbook/pkg/validation"
)

type SettingsHandler struct {
	Prefs   repo.PreferenceRepository
	Users   *application.UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewSettingsHandler(prefs repo.PreferenceRepository, users *application.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *SettingsHandler {
	return &SettingsHandler{Prefs: prefs, Users: users, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// Get GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	p, err := h.Prefs.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "failed to load settings", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "settings", nil)
}

// Update PUT /api/settings {language, dark_mode}
// The whole object is replaced; partial writes go through defaults
// merged on read, not field-level patching.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required,oneof=en ar"`
		DarkMode bool   `json:"dark_mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p := entity.Preferences{
		UserID:    c.GetString("userID"),
		Language:  req.Language,
		DarkMode:  req.DarkMode,
		UpdatedAt: time.Now(),
	}
	if err := h.Prefs.Save(c.Request.Context(), p); err != nil {
		h.Logger.WithError(err).Error("settings save failed")
		response.Fail[any](c, http.StatusInternalServerError, "failed to save settings", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "settings updated", nil)
}

// DeleteAccount DELETE /api/account removes the user and everything
// keyed to them, then clears the session cookies.
func (h *SettingsHandler) DeleteAccount(c *gin.Context) {
	uid := c.GetString("userID")
	if err := h.Users.DeleteAccount(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).Error("account deletion failed")
		response.Fail[any](c, http.StatusInternalServerError, "failed to delete account", nil)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}
