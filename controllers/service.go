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

// ServiceInput is the service editor form. IsActive is only read on update.
type ServiceInput struct {
	pricing.ServiceForm
	IsActive *bool `json:"isActive"`
}

type ServiceCost struct {
	ServiceID     string                   `json:"serviceId"`
	Name          string                   `json:"name"`
	Price         float64                  `json:"price"`
	ExecutionTime string                   `json:"executionTime"`
	LaborCost     float64                  `json:"laborCost"`
	ProductsCost  float64                  `json:"productsCost"`
	OtherCosts    float64                  `json:"otherCosts"`
	TotalCost     float64                  `json:"totalCost"`
	Profit        float64                  `json:"profit"`
	MarginPct     float64                  `json:"marginPct"`
	CostMode      string                   `json:"costMode"`
	Products      []ServiceProductCostLine `json:"products"`
}

type ServiceProductCostLine struct {
	ProductID         string  `json:"productId"`
	Name              string  `json:"name"`
	UsagePerVehicleMl float64 `json:"usagePerVehicleMl"`
	DilutionRatio     string  `json:"dilutionRatio"`
	Cost              float64 `json:"cost"`
}

// buildLinks checks that every linked product belongs to the user.
func (ctl *Controller) buildLinks(tx *gorm.DB, userID uuid.UUID, fields []pricing.ServiceProductFields) ([]models.ServiceProduct, error) {
	links := make([]models.ServiceProduct, 0, len(fields))
	for i, f := range fields {
		productID, err := uuid.Parse(f.ProductID)
		if err != nil {
			return nil, pricing.ValidationErrors{fmt.Sprintf("products[%d].productId", i): "invalid product ID"}
		}
		var count int64
		if err := tx.Model(&models.CatalogProduct{}).Where("id = ? AND user_id = ?", productID, userID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("product %w", services.ErrNotFound)
		}
		links = append(links, models.ServiceProduct{
			ProductID:         productID,
			UsagePerVehicleMl: f.UsagePerVehicleMl,
			DilutionRatio:     f.DilutionRatio,
			ContainerSizeMl:   f.ContainerSizeMl,
		})
	}
	return links, nil
}

func (ctl *Controller) CreateService(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	fields, err := input.Parse()
	if err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	service := models.Service{
		UserID:               userID,
		Name:                 fields.Name,
		Description:          fields.Description,
		Price:                fields.Price,
		LaborCostPerHour:     fields.LaborCostPerHour,
		ExecutionTimeMinutes: fields.ExecutionTimeMinutes,
		OtherCosts:           fields.OtherCosts,
		IsActive:             true,
	}

	err = ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		links, err := ctl.buildLinks(tx, userID, fields.Products)
		if err != nil {
			return err
		}
		service.Products = links
		return tx.Create(&service).Error
	})
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	if err := ctl.dbCtx(c).Preload("Products.Product").First(&service, "id = ?", service.ID).Error; err != nil {
		ctl.dbError(c, err, "Service not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityServices)
	c.JSON(http.StatusCreated, service)
}

func (ctl *Controller) GetServices(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	search := strings.TrimSpace(c.Query("search"))
	activeOnly := c.Query("active") == "true"

	key := cache.ListKey(entityServices, userID, gin.H{"search": search, "active": activeOnly})
	list, err := cache.Remember(c.Request.Context(), ctl.cache, key, func() ([]models.Service, error) {
		var list []models.Service
		q := ctl.dbCtx(c).Preload("Products.Product").Where("user_id = ?", userID)
		if search != "" {
			q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		err := q.Order("name").Find(&list).Error
		return list, err
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, list)
}

func (ctl *Controller) GetService(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "service")
	if !ok {
		return
	}

	var service models.Service
	if err := ctl.dbCtx(c).Preload("Products.Product").Where("user_id = ? AND id = ?", userID, id).First(&service).Error; err != nil {
		ctl.dbError(c, err, "Service not found")
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateService replaces the service fields and its product links.
func (ctl *Controller) UpdateService(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "service")
	if !ok {
		return
	}

	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	fields, err := input.Parse()
	if err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	var service models.Service
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&service).Error; err != nil {
		ctl.dbError(c, err, "Service not found")
		return
	}

	service.Name = fields.Name
	service.Description = fields.Description
	service.Price = fields.Price
	service.LaborCostPerHour = fields.LaborCostPerHour
	service.ExecutionTimeMinutes = fields.ExecutionTimeMinutes
	service.OtherCosts = fields.OtherCosts
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	err = ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		links, err := ctl.buildLinks(tx, userID, fields.Products)
		if err != nil {
			return err
		}
		if err := tx.Omit("Products").Save(&service).Error; err != nil {
			return err
		}
		if err := tx.Where("service_id = ?", service.ID).Delete(&models.ServiceProduct{}).Error; err != nil {
			return err
		}
		for i := range links {
			links[i].ServiceID = service.ID
		}
		if len(links) > 0 {
			return tx.Create(&links).Error
		}
		return nil
	})
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	if err := ctl.dbCtx(c).Preload("Products.Product").First(&service, "id = ?", service.ID).Error; err != nil {
		ctl.dbError(c, err, "Service not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityServices)
	c.JSON(http.StatusOK, service)
}

func (ctl *Controller) DeleteService(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "service")
	if !ok {
		return
	}

	result := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Service{})
	if result.Error != nil {
		ctl.dbError(c, result.Error, "")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityServices)
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// GetServiceCost breaks down the cost of one execution of the service under
// the user's cost calculation mode.
func (ctl *Controller) GetServiceCost(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "service")
	if !ok {
		return
	}

	var service models.Service
	if err := ctl.dbCtx(c).Preload("Products.Product").Where("user_id = ? AND id = ?", userID, id).First(&service).Error; err != nil {
		ctl.dbError(c, err, "Service not found")
		return
	}
	settings, err := services.LoadSettings(ctl.dbCtx(c), userID)
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	quoted := service.ToQuoted()
	res := pricing.CalculateQuote(pricing.QuoteInput{
		Services: []pricing.QuotedService{quoted},
		CostMode: settings.CostCalculationMode,
	})
	line := res.Services[0]

	out := ServiceCost{
		ServiceID:     service.ID.String(),
		Name:          service.Name,
		Price:         line.Price,
		ExecutionTime: pricing.FormatMinutesToHHMM(service.ExecutionTimeMinutes),
		LaborCost:     line.LaborCost,
		ProductsCost:  line.ProductsCost,
		OtherCosts:    line.OtherCosts,
		TotalCost:     line.TotalCost,
		Profit:        res.NetProfit,
		MarginPct:     res.MarginPct,
		CostMode:      settings.CostCalculationMode,
		Products:      make([]ServiceProductCostLine, 0, len(quoted.Products)),
	}
	for _, p := range quoted.Products {
		out.Products = append(out.Products, ServiceProductCostLine{
			ProductID:         p.ProductID,
			Name:              p.Name,
			UsagePerVehicleMl: p.UsagePerVehicleMl,
			DilutionRatio:     pricing.FormatDilutionRatio(p.DilutionRatio),
			Cost:              p.Cost(),
		})
	}

	c.JSON(http.StatusOK, out)
}
