package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FormValue keeps a form field exactly as the user typed it. It unmarshals from
// both JSON strings and JSON numbers.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	*v = FormValue(data)
	return nil
}

func (v FormValue) String() string { return string(v) }

func (v FormValue) Blank() bool { return strings.TrimSpace(string(v)) == "" }

// ValidationErrors maps a form field to the reason it was rejected.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[f])
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e ValidationErrors) add(field, msg string) { e[field] = msg }

func (e ValidationErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// number parses an optional non-negative finite number. Blank is 0.
func (e ValidationErrors) number(field string, v FormValue) float64 {
	if v.Blank() {
		return 0
	}
	n, err := strconv.ParseFloat(normalizeNumber(string(v)), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		e.add(field, "must be a number")
		return 0
	}
	if n < 0 {
		e.add(field, "must not be negative")
		return 0
	}
	return n
}

func (e ValidationErrors) valueType(field, v string) string {
	switch v {
	case "":
		return ValueTypePercentage
	case ValueTypeAmount, ValueTypePercentage:
		return v
	default:
		e.add(field, fmt.Sprintf("must be %q or %q", ValueTypeAmount, ValueTypePercentage))
		return ValueTypePercentage
	}
}

// QuoteForm is the raw state of the quote calculator knobs.
type QuoteForm struct {
	OtherCosts       FormValue `json:"otherCosts"`
	Commission       FormValue `json:"commission"`
	CommissionType   string    `json:"commissionType"`
	Discount         FormValue `json:"discount"`
	DiscountType     string    `json:"discountType"`
	Installments     FormValue `json:"installments"`
	DesiredMarginPct FormValue `json:"desiredMarginPct"`
}

// Parse validates the form and returns the typed knobs. Services, payment method
// and cost mode are filled in by the caller.
func (f QuoteForm) Parse() (QuoteInput, error) {
	errs := ValidationErrors{}
	in := QuoteInput{
		OtherCosts:       errs.number("otherCosts", f.OtherCosts),
		Commission:       errs.number("commission", f.Commission),
		CommissionType:   errs.valueType("commissionType", f.CommissionType),
		Discount:         errs.number("discount", f.Discount),
		DiscountType:     errs.valueType("discountType", f.DiscountType),
		DesiredMarginPct: errs.number("desiredMarginPct", f.DesiredMarginPct),
	}

	if in.DesiredMarginPct >= 100 {
		errs.add("desiredMarginPct", "must be below 100")
	}

	if !f.Installments.Blank() {
		n, err := strconv.Atoi(strings.TrimSpace(string(f.Installments)))
		if err != nil || n < 1 || n > 12 {
			errs.add("installments", "must be between 1 and 12")
		} else {
			in.Installments = n
		}
	}

	return in, errs.err()
}

// ServiceForm is the raw state of the service editor.
type ServiceForm struct {
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	Price            FormValue            `json:"price"`
	LaborCostPerHour FormValue            `json:"laborCostPerHour"`
	ExecutionTime    FormValue            `json:"executionTime"`
	OtherCosts       FormValue            `json:"otherCosts"`
	Products         []ServiceProductForm `json:"products"`
}

// ServiceProductForm links a catalog product to a service. Blank overrides fall
// back to the catalog product values.
type ServiceProductForm struct {
	ProductID       string    `json:"productId"`
	UsagePerVehicle FormValue `json:"usagePerVehicleMl"`
	DilutionRatio   FormValue `json:"dilutionRatio"`
	ContainerSize   FormValue `json:"containerSizeMl"`
}

// ServiceFields is the validated result of a ServiceForm.
type ServiceFields struct {
	Name                 string
	Description          string
	Price                float64
	LaborCostPerHour     float64
	ExecutionTimeMinutes int
	OtherCosts           float64
	Products             []ServiceProductFields
}

type ServiceProductFields struct {
	ProductID         string
	UsagePerVehicleMl float64
	DilutionRatio     *float64
	ContainerSizeMl   *float64
}

// Parse validates the service editor. Execution time is "HH:MM" or plain minutes
// and dilution ratios are "1:X" or X.
func (f ServiceForm) Parse() (ServiceFields, error) {
	errs := ValidationErrors{}
	out := ServiceFields{
		Name:             strings.TrimSpace(f.Name),
		Description:      strings.TrimSpace(f.Description),
		Price:            errs.number("price", f.Price),
		LaborCostPerHour: errs.number("laborCostPerHour", f.LaborCostPerHour),
		OtherCosts:       errs.number("otherCosts", f.OtherCosts),
	}

	if out.Name == "" {
		errs.add("name", "is required")
	}
	if out.Price <= 0 && errs["price"] == "" {
		errs.add("price", "must be greater than zero")
	}
	out.ExecutionTimeMinutes = parseExecutionTime(errs, f.ExecutionTime)

	for i, p := range f.Products {
		prefix := fmt.Sprintf("products[%d].", i)
		link := ServiceProductFields{
			ProductID:         strings.TrimSpace(p.ProductID),
			UsagePerVehicleMl: errs.number(prefix+"usagePerVehicleMl", p.UsagePerVehicle),
		}
		if link.ProductID == "" {
			errs.add(prefix+"productId", "is required")
		}
		if !p.DilutionRatio.Blank() {
			ratio := ParseDilutionRatioInput(string(p.DilutionRatio))
			if ratio <= 0 {
				errs.add(prefix+"dilutionRatio", "must look like 1:100")
			} else {
				link.DilutionRatio = &ratio
			}
		}
		if !p.ContainerSize.Blank() {
			size := errs.number(prefix+"containerSizeMl", p.ContainerSize)
			link.ContainerSizeMl = &size
		}
		out.Products = append(out.Products, link)
	}

	return out, errs.err()
}

func parseExecutionTime(errs ValidationErrors, v FormValue) int {
	if v.Blank() {
		return 0
	}
	minutes, ok := ParseDuration(string(v))
	if !ok {
		errs.add("executionTime", DurationError(string(v)))
		return 0
	}
	return minutes
}

// DurationError is the message for an execution time ParseDuration rejected.
func DurationError(raw string) string {
	if strings.Contains(raw, ":") {
		return "must be HH:MM"
	}
	return "must be HH:MM or minutes"
}
