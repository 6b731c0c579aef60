package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Name         string `json:"name" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
	BusinessName string `json:"businessName"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileInput struct {
	Name         *string `json:"name" binding:"omitempty,min=1"`
	Phone        *string `json:"phone"`
	BusinessName *string `json:"businessName"`
}

// Register creates the account together with its default settings.
func (ctl *Controller) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	var existing models.User
	err := ctl.dbCtx(c).Where("email = ?", email).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctl.dbError(c, err, "")
		return
	}

	user := models.User{
		Email:        email,
		Phone:        input.Phone,
		Name:         input.Name,
		Password:     input.Password, // Will be hashed in BeforeCreate hook
		BusinessName: input.BusinessName,
		IsActive:     true,
	}

	err = ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		settings := models.DefaultSettings(user.ID)
		return tx.Create(&settings).Error
	})
	if err != nil {
		ctl.log.Error("Failed to create user", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, ok := ctl.issueToken(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    user,
	})
}

func (ctl *Controller) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	err := ctl.dbCtx(c).Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			ctl.dbError(c, err, "")
		}
		return
	}

	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, ok := ctl.issueToken(c, user)
	if !ok {
		return
	}

	now := time.Now()
	ctl.dbCtx(c).Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (ctl *Controller) issueToken(c *gin.Context, user models.User) (string, bool) {
	token, err := utils.GenerateToken(ctl.jwt.Secret, user.ID.String(), ctl.jwt.Expiry)
	if err != nil {
		ctl.log.Error("Failed to generate token", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}

	c.SetCookie("token", token, int(ctl.jwt.Expiry.Seconds()), "/", "", true, true)
	return token, true
}

func (ctl *Controller) Me(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := ctl.dbCtx(c).Preload("Settings").First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ctl *Controller) UpdateProfile(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := ctl.dbCtx(c).First(&user, "id = ?", userID).Error; err != nil {
		ctl.dbError(c, err, "User not found")
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		updates["phone"] = *input.Phone
	}
	if input.BusinessName != nil {
		updates["business_name"] = strings.TrimSpace(*input.BusinessName)
	}

	if len(updates) > 0 {
		if err := ctl.dbCtx(c).Model(&user).Updates(updates).Error; err != nil {
			ctl.dbError(c, err, "")
			return
		}
		if err := ctl.dbCtx(c).First(&user, "id = ?", userID).Error; err != nil {
			ctl.dbError(c, err, "User not found")
			return
		}
	}

	c.JSON(http.StatusOK, user)
}
