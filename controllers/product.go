package controllers

import (
	"net/http"
	"strings"

	"detailpro-backend/cache"
	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type CreateProductInput struct {
	Name                 string            `json:"name" binding:"required"`
	Brand                string            `json:"brand"`
	ContainerSizeLiters  float64           `json:"containerSizeLiters" binding:"required,gt=0"`
	Price                float64           `json:"price" binding:"required,gt=0"`
	Type                 string            `json:"type" binding:"required,oneof=diluted ready-to-use"`
	DefaultDilutionRatio pricing.FormValue `json:"defaultDilutionRatio"`
}

type UpdateProductInput struct {
	Name                 *string            `json:"name" binding:"omitempty,min=1"`
	Brand                *string            `json:"brand"`
	ContainerSizeLiters  *float64           `json:"containerSizeLiters" binding:"omitempty,gt=0"`
	Price                *float64           `json:"price" binding:"omitempty,gt=0"`
	Type                 *string            `json:"type" binding:"omitempty,oneof=diluted ready-to-use"`
	DefaultDilutionRatio *pricing.FormValue `json:"defaultDilutionRatio"`
}

// ProductCost is the cost of one application of a catalog product.
type ProductCost struct {
	ProductID         string  `json:"productId"`
	Type              string  `json:"type"`
	PricePerMl        float64 `json:"pricePerMl"`
	UsagePerVehicleMl float64 `json:"usagePerVehicleMl"`
	DilutionRatio     string  `json:"dilutionRatio"`
	ContainerSizeMl   float64 `json:"containerSizeMl"`
	Cost              float64 `json:"cost"`
}

// parseRatio reads "1:X" or X. Blank is 0 and anything else unreadable is an
// error.
func parseRatio(v pricing.FormValue) (float64, bool) {
	if v.Blank() {
		return 0, true
	}
	ratio := pricing.ParseDilutionRatioInput(string(v))
	return ratio, ratio > 0
}

func (ctl *Controller) CreateProduct(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ratio, ok := parseRatio(input.DefaultDilutionRatio)
	if !ok {
		utils.RespondWithValidation(c, pricing.ValidationErrors{"defaultDilutionRatio": "must look like 1:100"})
		return
	}

	product := models.CatalogProduct{
		UserID:               userID,
		Name:                 strings.TrimSpace(input.Name),
		Brand:                strings.TrimSpace(input.Brand),
		ContainerSizeLiters:  input.ContainerSizeLiters,
		Price:                input.Price,
		Type:                 input.Type,
		DefaultDilutionRatio: ratio,
	}
	if err := ctl.dbCtx(c).Create(&product).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityProducts)
	c.JSON(http.StatusCreated, product)
}

func (ctl *Controller) GetProducts(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	search := strings.TrimSpace(c.Query("search"))
	productType := c.Query("type")

	key := cache.ListKey(entityProducts, userID, gin.H{"search": search, "type": productType})
	products, err := cache.Remember(c.Request.Context(), ctl.cache, key, func() ([]models.CatalogProduct, error) {
		var products []models.CatalogProduct
		q := ctl.dbCtx(c).Where("user_id = ?", userID)
		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
		}
		if productType != "" {
			q = q.Where("type = ?", productType)
		}
		err := q.Order("name").Find(&products).Error
		return products, err
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, products)
}

func (ctl *Controller) GetProduct(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	var product models.CatalogProduct
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&product).Error; err != nil {
		ctl.dbError(c, err, "Product not found")
		return
	}

	c.JSON(http.StatusOK, product)
}

func (ctl *Controller) UpdateProduct(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var product models.CatalogProduct
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&product).Error; err != nil {
		ctl.dbError(c, err, "Product not found")
		return
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.ContainerSizeLiters != nil {
		product.ContainerSizeLiters = *input.ContainerSizeLiters
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Type != nil {
		product.Type = *input.Type
	}
	if input.DefaultDilutionRatio != nil {
		ratio, ok := parseRatio(*input.DefaultDilutionRatio)
		if !ok {
			utils.RespondWithValidation(c, pricing.ValidationErrors{"defaultDilutionRatio": "must look like 1:100"})
			return
		}
		product.DefaultDilutionRatio = ratio
	}

	if err := ctl.dbCtx(c).Save(&product).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityProducts, entityServices)
	c.JSON(http.StatusOK, product)
}

// DeleteProduct refuses to remove a product still linked to a service.
func (ctl *Controller) DeleteProduct(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	var product models.CatalogProduct
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&product).Error; err != nil {
		ctl.dbError(c, err, "Product not found")
		return
	}

	var links int64
	err := ctl.dbCtx(c).Model(&models.ServiceProduct{}).
		Joins("JOIN services ON services.id = service_products.service_id AND services.deleted_at IS NULL").
		Where("service_products.product_id = ?", product.ID).
		Count(&links).Error
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}
	if links > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Product is used by a service")
		return
	}

	if err := ctl.dbCtx(c).Delete(&product).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityProducts)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GetProductCost prices one application of the product. The usage, ratio and
// container query values override the catalog defaults.
func (ctl *Controller) GetProductCost(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	var product models.CatalogProduct
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&product).Error; err != nil {
		ctl.dbError(c, err, "Product not found")
		return
	}

	link := models.ServiceProduct{
		ProductID:         product.ID,
		Product:           product,
		UsagePerVehicleMl: pricing.ParseAmount(c.Query("usage")),
	}
	if raw := c.Query("ratio"); raw != "" {
		ratio := pricing.ParseDilutionRatioInput(raw)
		link.DilutionRatio = &ratio
	}
	if raw := c.Query("container"); raw != "" {
		container := pricing.ParseAmount(raw)
		link.ContainerSizeMl = &container
	}

	quoted := link.ToQuoted()
	var perMl float64
	if quoted.GallonVolumeMl > 0 {
		perMl = quoted.GallonPrice / quoted.GallonVolumeMl
	}

	c.JSON(http.StatusOK, ProductCost{
		ProductID:         product.ID.String(),
		Type:              product.Type,
		PricePerMl:        perMl,
		UsagePerVehicleMl: quoted.UsagePerVehicleMl,
		DilutionRatio:     pricing.FormatDilutionRatio(quoted.DilutionRatio),
		ContainerSizeMl:   quoted.ContainerSizeMl,
		Cost:              quoted.Cost(),
	})
}
