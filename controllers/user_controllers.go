package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

type UserController struct {
	Settings *services.SettingsService
	secret   []byte
	tokenTTL time.Duration
}

func NewUserController(settings *services.SettingsService, secret []byte, tokenTTL time.Duration) *UserController {
	return &UserController{Settings: settings, secret: secret, tokenTTL: tokenTTL}
}

// Login admin -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := uc.Settings.Authenticate(input.Username, input.Password); err != nil {
		utils.ErrorLogger.Warnf("Failed login for %q from %s", input.Username, c.ClientIP())
		respondServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(input.Username, utils.RoleAdmin, uc.secret, uc.tokenTTL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Infof("Admin %s logged in", input.Username)
	utils.RespondJSON(c, http.StatusOK, "Login success", gin.H{
		"token":      token,
		"expires_in": int(uc.tokenTTL.Seconds()),
	})
}
