// services/quote_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuoteProductDraft replaces the catalog product list of a quoted service.
type QuoteProductDraft struct {
	ProductID         uuid.UUID         `json:"productId" binding:"required"`
	UsagePerVehicleMl float64           `json:"usagePerVehicleMl" binding:"gte=0"`
	DilutionRatio     pricing.FormValue `json:"dilutionRatio"`
	ContainerSizeMl   *float64          `json:"containerSizeMl" binding:"omitempty,gte=0"`
}

// QuoteServiceDraft references a catalog service, or describes an ad-hoc one
// when ServiceID is nil. Nil fields keep the catalog values. A nil Products
// keeps the catalog products and an empty one removes them.
type QuoteServiceDraft struct {
	ServiceID        *uuid.UUID          `json:"serviceId"`
	Name             string              `json:"name"`
	Price            *float64            `json:"price" binding:"omitempty,gte=0"`
	LaborCostPerHour *float64            `json:"laborCostPerHour" binding:"omitempty,gte=0"`
	ExecutionTime    pricing.FormValue   `json:"executionTime"`
	OtherCosts       *float64            `json:"otherCosts" binding:"omitempty,gte=0"`
	Products         []QuoteProductDraft `json:"products" binding:"omitempty,dive"`
}

// QuoteDraft is what the quote editor and the quick sale form submit.
type QuoteDraft struct {
	pricing.QuoteForm

	ClientID          *uuid.UUID          `json:"clientId"`
	VehicleID         *uuid.UUID          `json:"vehicleId"`
	ManualClientName  string              `json:"manualClientName"`
	ManualVehicleInfo string              `json:"manualVehicleInfo"`
	Services          []QuoteServiceDraft `json:"services" binding:"required,min=1,dive"`
	PaymentMethodID   *uuid.UUID          `json:"paymentMethodId"`
	ScheduledDate     string              `json:"scheduledDate"`
	ScheduledTime     string              `json:"scheduledTime"`
	Notes             string              `json:"notes"`
}

// QuoteService resolves drafts against the user's catalog and settings and
// runs the pricing calculation.
type QuoteService struct {
	db *gorm.DB
}

func NewQuoteService(db *gorm.DB) *QuoteService {
	return &QuoteService{db: db}
}

// Calculate prices a draft without storing anything.
func (s *QuoteService) Calculate(ctx context.Context, userID uuid.UUID, draft QuoteDraft) (pricing.QuoteResult, error) {
	_, res, err := s.Build(ctx, userID, draft)
	return res, err
}

// Build validates the draft and returns an unsaved quote with its totals.
func (s *QuoteService) Build(ctx context.Context, userID uuid.UUID, draft QuoteDraft) (*models.Quote, pricing.QuoteResult, error) {
	db := s.db.WithContext(ctx)

	in, err := draft.QuoteForm.Parse()
	if err != nil {
		return nil, pricing.QuoteResult{}, err
	}
	if in.Installments == 0 {
		in.Installments = 1
	}

	settings, err := LoadSettings(db, userID)
	if err != nil {
		return nil, pricing.QuoteResult{}, err
	}
	in.CostMode = settings.CostCalculationMode
	if draft.DesiredMarginPct.Blank() {
		in.DesiredMarginPct = settings.DefaultMarginPct
	}

	quote := &models.Quote{
		UserID:            userID,
		ManualClientName:  strings.TrimSpace(draft.ManualClientName),
		ManualVehicleInfo: strings.TrimSpace(draft.ManualVehicleInfo),
		OtherCosts:        in.OtherCosts,
		Discount:          in.Discount,
		DiscountType:      in.DiscountType,
		Commission:        in.Commission,
		CommissionType:    in.CommissionType,
		Installments:      in.Installments,
		Status:            models.QuoteStatusPending,
		ScheduledTime:     strings.TrimSpace(draft.ScheduledTime),
		Notes:             draft.Notes,
	}

	if err := s.resolveClient(db, userID, draft, quote); err != nil {
		return nil, pricing.QuoteResult{}, err
	}
	if err := resolveSchedule(draft, quote); err != nil {
		return nil, pricing.QuoteResult{}, err
	}

	if draft.PaymentMethodID != nil {
		var pm models.PaymentMethod
		err := db.Preload("Installments").First(&pm, "id = ? AND user_id = ?", *draft.PaymentMethodID, userID).Error
		if err != nil {
			return nil, pricing.QuoteResult{}, notFound(err, "payment method")
		}
		quote.PaymentMethodID = &pm.ID
		in.PaymentMethod = pm.ToPricing()
	}

	for i, sd := range draft.Services {
		qs, err := s.resolveService(db, userID, i, sd)
		if err != nil {
			return nil, pricing.QuoteResult{}, err
		}
		in.Services = append(in.Services, qs)
	}
	quote.ServicesSummary = datatypes.NewJSONType(in.Services)

	res := pricing.CalculateQuote(in)
	quote.ApplyResult(res)
	return quote, res, nil
}

func (s *QuoteService) resolveClient(db *gorm.DB, userID uuid.UUID, draft QuoteDraft, quote *models.Quote) error {
	if draft.ClientID == nil {
		if draft.VehicleID != nil {
			return fmt.Errorf("%w: vehicle requires a client", ErrInvalidInput)
		}
		return nil
	}

	var client models.Client
	if err := db.First(&client, "id = ? AND user_id = ?", *draft.ClientID, userID).Error; err != nil {
		return notFound(err, "client")
	}
	quote.ClientID = &client.ID
	quote.Client = &client

	if draft.VehicleID != nil {
		var vehicle models.Vehicle
		err := db.First(&vehicle, "id = ? AND client_id = ? AND user_id = ?", *draft.VehicleID, client.ID, userID).Error
		if err != nil {
			return notFound(err, "vehicle")
		}
		quote.VehicleID = &vehicle.ID
		quote.Vehicle = &vehicle
	}
	return nil
}

func resolveSchedule(draft QuoteDraft, quote *models.Quote) error {
	date := strings.TrimSpace(draft.ScheduledDate)
	if date == "" {
		return nil
	}
	d, err := time.ParseInLocation(utils.DateLayout, date, time.Local)
	if err != nil {
		return pricing.ValidationErrors{"scheduledDate": "must be YYYY-MM-DD"}
	}
	if quote.ScheduledTime != "" && pricing.ParseHHMMToMinutes(quote.ScheduledTime) == 0 && quote.ScheduledTime != "00:00" {
		return pricing.ValidationErrors{"scheduledTime": "must be HH:MM"}
	}
	quote.ScheduledDate = &d
	return nil
}

func (s *QuoteService) resolveService(db *gorm.DB, userID uuid.UUID, idx int, sd QuoteServiceDraft) (pricing.QuotedService, error) {
	var qs pricing.QuotedService
	field := fmt.Sprintf("services[%d].", idx)

	if sd.ServiceID != nil {
		var svc models.Service
		err := db.Preload("Products.Product").First(&svc, "id = ? AND user_id = ?", *sd.ServiceID, userID).Error
		if err != nil {
			return qs, notFound(err, "service")
		}
		qs = svc.ToQuoted()
		qs.PriceOverride = sd.Price
		qs.LaborCostPerHourOverride = sd.LaborCostPerHour
		qs.OtherCostsOverride = sd.OtherCosts
		if name := strings.TrimSpace(sd.Name); name != "" {
			qs.Name = name
		}
	} else {
		qs.Name = strings.TrimSpace(sd.Name)
		if qs.Name == "" {
			return qs, pricing.ValidationErrors{field + "name": "is required"}
		}
		qs.Price = deref(sd.Price)
		qs.LaborCostPerHour = deref(sd.LaborCostPerHour)
		qs.OtherCosts = deref(sd.OtherCosts)
	}

	if !sd.ExecutionTime.Blank() {
		minutes, ok := pricing.ParseDuration(string(sd.ExecutionTime))
		if !ok {
			return qs, pricing.ValidationErrors{field + "executionTime": pricing.DurationError(string(sd.ExecutionTime))}
		}
		if sd.ServiceID != nil {
			qs.ExecutionTimeOverride = &minutes
		} else {
			qs.ExecutionTimeMinutes = minutes
		}
	}

	if sd.Products != nil {
		products, err := s.resolveProducts(db, userID, field, sd.Products)
		if err != nil {
			return qs, err
		}
		if sd.ServiceID != nil {
			qs.ProductsOverride = products
		} else {
			qs.Products = products
		}
	}
	return qs, nil
}

func (s *QuoteService) resolveProducts(db *gorm.DB, userID uuid.UUID, field string, drafts []QuoteProductDraft) ([]pricing.QuotedProduct, error) {
	products := make([]pricing.QuotedProduct, 0, len(drafts))
	for i, pd := range drafts {
		var product models.CatalogProduct
		if err := db.First(&product, "id = ? AND user_id = ?", pd.ProductID, userID).Error; err != nil {
			return nil, notFound(err, "product")
		}

		link := models.ServiceProduct{
			ProductID:         product.ID,
			Product:           product,
			UsagePerVehicleMl: pd.UsagePerVehicleMl,
			ContainerSizeMl:   pd.ContainerSizeMl,
		}
		if !pd.DilutionRatio.Blank() {
			ratio := pricing.ParseDilutionRatioInput(string(pd.DilutionRatio))
			if ratio <= 0 {
				return nil, pricing.ValidationErrors{fmt.Sprintf("%sproducts[%d].dilutionRatio", field, i): "must look like 1:100"}
			}
			link.DilutionRatio = &ratio
		}
		products = append(products, link.ToQuoted())
	}
	return products, nil
}

// LoadSettings returns the stored settings of the user, or the defaults when
// none were saved yet.
func LoadSettings(db *gorm.DB, userID uuid.UUID) (models.UserSettings, error) {
	var stored []models.UserSettings
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&stored).Error; err != nil {
		return models.UserSettings{}, err
	}
	if len(stored) == 0 {
		return models.DefaultSettings(userID), nil
	}
	return stored[0], nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
