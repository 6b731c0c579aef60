package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"detailpro-backend/cache"
	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleInput is one vehicle of the client form. A nil ID adds a vehicle.
type VehicleInput struct {
	ID    *uuid.UUID `json:"id"`
	Brand string     `json:"brand" binding:"required"`
	Model string     `json:"model" binding:"required"`
	Plate string     `json:"plate"`
	Year  int        `json:"year" binding:"omitempty,min=1900,max=2100"`
	Color string     `json:"color"`
}

// ClientInput is used for create and update. On update a nil Vehicles keeps
// the stored vehicles, while a list replaces them: listed ids are updated, new
// entries created and the rest deleted.
type ClientInput struct {
	Name         string         `json:"name" binding:"required"`
	Document     string         `json:"document"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email" binding:"omitempty,email"`
	ZipCode      string         `json:"zipCode"`
	Street       string         `json:"street"`
	Number       string         `json:"number"`
	Complement   string         `json:"complement"`
	Neighborhood string         `json:"neighborhood"`
	City         string         `json:"city"`
	State        string         `json:"state" binding:"omitempty,len=2"`
	Notes        string         `json:"notes"`
	Vehicles     []VehicleInput `json:"vehicles" binding:"omitempty,dive"`
}

func (in *ClientInput) validate() error {
	errs := pricing.ValidationErrors{}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		errs["name"] = "is required"
	}
	if !utils.ValidateDocument(in.Document) {
		errs["document"] = "must have 11 or 14 digits"
	}
	if in.Phone != "" && !utils.ValidatePhone(in.Phone) {
		errs["phone"] = "invalid phone number format"
	}
	for i := range in.Vehicles {
		v := &in.Vehicles[i]
		v.Plate = utils.NormalizePlate(v.Plate)
		if v.Plate != "" && !utils.ValidatePlate(v.Plate) {
			errs[fmt.Sprintf("vehicles[%d].plate", i)] = "invalid plate"
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (in ClientInput) apply(client *models.Client) {
	client.Name = in.Name
	client.Document = utils.OnlyDigits(in.Document)
	client.Phone = in.Phone
	client.Email = strings.TrimSpace(in.Email)
	client.ZipCode = utils.OnlyDigits(in.ZipCode)
	client.Street = in.Street
	client.Number = in.Number
	client.Complement = in.Complement
	client.Neighborhood = in.Neighborhood
	client.City = in.City
	client.State = strings.ToUpper(in.State)
	client.Notes = in.Notes
}

type VehicleListItem struct {
	models.Vehicle
	ClientName string `json:"clientName"`
}

func (ctl *Controller) CreateClient(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if err := input.validate(); err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	client := models.Client{UserID: userID}
	input.apply(&client)

	err := ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Vehicles").Create(&client).Error; err != nil {
			return err
		}
		return syncVehicles(tx, &client, input.Vehicles)
	})
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityClients, entityVehicles)
	c.JSON(http.StatusCreated, client)
}

func (ctl *Controller) GetClients(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	search := strings.TrimSpace(c.Query("search"))

	key := cache.ListKey(entityClients, userID, gin.H{"search": search})
	clients, err := cache.Remember(c.Request.Context(), ctl.cache, key, func() ([]models.Client, error) {
		var clients []models.Client
		q := ctl.dbCtx(c).Preload("Vehicles").Where("user_id = ?", userID)
		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(name) LIKE ? OR phone LIKE ? OR document LIKE ? OR LOWER(email) LIKE ?", like, like, like, like)
		}
		err := q.Order("name").Find(&clients).Error
		return clients, err
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, clients)
}

func (ctl *Controller) GetClient(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "client")
	if !ok {
		return
	}

	var client models.Client
	if err := ctl.dbCtx(c).Preload("Vehicles").Where("user_id = ? AND id = ?", userID, id).First(&client).Error; err != nil {
		ctl.dbError(c, err, "Client not found")
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClient saves the client and its vehicles in one transaction.
func (ctl *Controller) UpdateClient(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "client")
	if !ok {
		return
	}

	var input ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if err := input.validate(); err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	var client models.Client
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&client).Error; err != nil {
		ctl.dbError(c, err, "Client not found")
		return
	}
	input.apply(&client)

	err := ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Vehicles").Save(&client).Error; err != nil {
			return err
		}
		if input.Vehicles == nil {
			return nil
		}
		return syncVehicles(tx, &client, input.Vehicles)
	})
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	if err := ctl.dbCtx(c).Preload("Vehicles").First(&client, "id = ?", client.ID).Error; err != nil {
		ctl.dbError(c, err, "Client not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityClients, entityVehicles)
	c.JSON(http.StatusOK, client)
}

// syncVehicles makes the stored vehicles of the client match the input.
func syncVehicles(tx *gorm.DB, client *models.Client, inputs []VehicleInput) error {
	var existing []models.Vehicle
	if err := tx.Where("client_id = ? AND user_id = ?", client.ID, client.UserID).Find(&existing).Error; err != nil {
		return err
	}
	byID := make(map[uuid.UUID]models.Vehicle, len(existing))
	for _, v := range existing {
		byID[v.ID] = v
	}

	kept := make(map[uuid.UUID]bool, len(inputs))
	saved := make([]models.Vehicle, 0, len(inputs))
	for _, in := range inputs {
		v := models.Vehicle{UserID: client.UserID, ClientID: client.ID}
		if in.ID != nil {
			stored, ok := byID[*in.ID]
			if !ok {
				return fmt.Errorf("vehicle %w", services.ErrNotFound)
			}
			v = stored
			kept[v.ID] = true
		}
		v.Brand = strings.TrimSpace(in.Brand)
		v.Model = strings.TrimSpace(in.Model)
		v.Plate = in.Plate
		v.Year = in.Year
		v.Color = in.Color

		if err := tx.Save(&v).Error; err != nil {
			return err
		}
		saved = append(saved, v)
	}

	var removed []uuid.UUID
	for _, v := range existing {
		if !kept[v.ID] {
			removed = append(removed, v.ID)
		}
	}
	if len(removed) > 0 {
		// Quotes keep their history but lose the link to the deleted vehicle.
		if err := tx.Model(&models.Quote{}).Where("vehicle_id IN ?", removed).Update("vehicle_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", removed).Delete(&models.Vehicle{}).Error; err != nil {
			return err
		}
	}

	client.Vehicles = saved
	return nil
}

func (ctl *Controller) DeleteClient(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "client")
	if !ok {
		return
	}

	result := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Client{})
	if result.Error != nil {
		ctl.dbError(c, result.Error, "")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityClients, entityVehicles)
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

// GetVehicles lists every vehicle of the user with its owner's name.
func (ctl *Controller) GetVehicles(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	search := strings.TrimSpace(c.Query("search"))

	key := cache.ListKey(entityVehicles, userID, gin.H{"search": search})
	vehicles, err := cache.Remember(c.Request.Context(), ctl.cache, key, func() ([]VehicleListItem, error) {
		var vehicles []VehicleListItem
		q := ctl.dbCtx(c).Table("vehicles").
			Select("vehicles.*, clients.name AS client_name").
			Joins("JOIN clients ON clients.id = vehicles.client_id AND clients.deleted_at IS NULL").
			Where("vehicles.user_id = ?", userID)
		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(vehicles.plate) LIKE ? OR LOWER(vehicles.model) LIKE ? OR LOWER(clients.name) LIKE ?", like, like, like)
		}
		err := q.Order("clients.name, vehicles.brand").Scan(&vehicles).Error
		return vehicles, err
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, vehicles)
}
