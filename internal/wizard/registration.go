// internal/wizard/registration.go
package wizard

import (
	"fmt"
	"strings"
	"time"

	"business-directory/internal/common/config"
	"business-directory/internal/common/validation"
	"business-directory/internal/models"
)

const (
	FieldBusinessName    = "business_name"
	FieldCategory        = "category"
	FieldDescription     = "description"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldWebsite         = "website"
	FieldWhatsApp        = "whatsapp"
	FieldAddress         = "address"
	FieldCity            = "city"
	FieldState           = "state"
	FieldPostalCode      = "postal_code"
	FieldOwnerName       = "owner_name"
	FieldOwnerEmail      = "owner_email"
	FieldOwnerPhone      = "owner_phone"
	FieldYearEstablished = "year_established"
	FieldServices        = "services"
	FieldHours           = "hours"
)

const (
	MinYearEstablished   = 1800
	maxDescriptionLength = 1000
)

// DefaultRegistrationSteps is the built-in five-step layout. The year range
// upper bound is the current year at call time.
func DefaultRegistrationSteps() []Step {
	year := validation.YearInRange(MinYearEstablished, time.Now().Year())

	return []Step{
		{
			Name: "identity",
			Fields: []Field{
				{Name: FieldBusinessName, Label: "Business name", Required: true},
				{Name: FieldCategory, Label: "Category", Required: true},
				{Name: FieldDescription, Label: "Description", Validators: []validation.FieldValidator{validation.MaxLength(maxDescriptionLength)}},
			},
		},
		{
			Name: "contact",
			Fields: []Field{
				{Name: FieldPhone, Label: "Phone", Required: true, Validators: []validation.FieldValidator{validation.Phone()}},
				{Name: FieldEmail, Label: "Email", Required: true, Validators: []validation.FieldValidator{validation.Email()}},
				{Name: FieldWebsite, Label: "Website", Validators: []validation.FieldValidator{validation.URL()}},
				{Name: FieldWhatsApp, Label: "WhatsApp number", Validators: []validation.FieldValidator{validation.Phone()}},
			},
		},
		{
			Name: "location",
			Fields: []Field{
				{Name: FieldAddress, Label: "Address", Required: true},
				{Name: FieldCity, Label: "City", Required: true},
				{Name: FieldState, Label: "State", Required: true},
				{Name: FieldPostalCode, Label: "Postal code"},
			},
		},
		{
			Name: "owner",
			Fields: []Field{
				{Name: FieldOwnerName, Label: "Owner name", Required: true},
				{Name: FieldOwnerEmail, Label: "Owner email", Required: true, Validators: []validation.FieldValidator{validation.Email()}},
				{Name: FieldOwnerPhone, Label: "Owner phone", Validators: []validation.FieldValidator{validation.Phone()}},
			},
		},
		{
			Name: "operations",
			Fields: []Field{
				{Name: FieldYearEstablished, Label: "Year established", Validators: []validation.FieldValidator{year}},
				{Name: FieldServices, Label: "Services", Required: true, Validators: []validation.FieldValidator{atLeastOneService}},
				{Name: FieldHours, Label: "Business hours"},
			},
		},
	}
}

// StepsFromConfig builds steps from the wizard.steps section. An empty list
// yields the default layout.
func StepsFromConfig(steps []config.StepConfig) ([]Step, error) {
	if len(steps) == 0 {
		return DefaultRegistrationSteps(), nil
	}

	out := make([]Step, 0, len(steps))
	for i, sc := range steps {
		step := Step{Name: sc.Name, Fields: make([]Field, 0, len(sc.Fields))}
		for _, fc := range sc.Fields {
			validators, err := validatorsForKind(fc.Kind)
			if err != nil {
				return nil, fmt.Errorf("%w: step %d field %q: %v", ErrInvalidStep, i, fc.Name, err)
			}
			step.Fields = append(step.Fields, Field{
				Name:       fc.Name,
				Label:      fc.Label,
				Required:   fc.Required,
				Validators: validators,
			})
		}
		out = append(out, step)
	}
	return out, nil
}

func validatorsForKind(kind string) ([]validation.FieldValidator, error) {
	switch strings.ToLower(kind) {
	case "", "text":
		return nil, nil
	case "services":
		return []validation.FieldValidator{atLeastOneService}, nil
	case "email":
		return []validation.FieldValidator{validation.Email()}, nil
	case "phone":
		return []validation.FieldValidator{validation.Phone()}, nil
	case "url":
		return []validation.FieldValidator{validation.URL()}, nil
	case "year":
		return []validation.FieldValidator{validation.YearInRange(MinYearEstablished, time.Now().Year())}, nil
	default:
		return nil, fmt.Errorf("unknown field kind %q", kind)
	}
}

// SplitServices splits comma-separated text, trims each entry and drops the
// empty ones. Order is kept.
func SplitServices(text string) []string {
	services := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		if s := strings.TrimSpace(part); s != "" {
			services = append(services, s)
		}
	}
	return services
}

func atLeastOneService(value string) string {
	if len(SplitServices(value)) == 0 {
		return "List at least one service"
	}
	return ""
}

// BuildBusinessRecord is the default Assembler. Fields with no dedicated
// column land in Extra.
func BuildBusinessRecord(d Draft) *models.BusinessRecord {
	record := &models.BusinessRecord{
		BusinessName:    strings.TrimSpace(d[FieldBusinessName]),
		Category:        strings.TrimSpace(d[FieldCategory]),
		Description:     strings.TrimSpace(d[FieldDescription]),
		Phone:           strings.TrimSpace(d[FieldPhone]),
		Email:           strings.TrimSpace(d[FieldEmail]),
		Website:         strings.TrimSpace(d[FieldWebsite]),
		WhatsApp:        strings.TrimSpace(d[FieldWhatsApp]),
		Address:         strings.TrimSpace(d[FieldAddress]),
		City:            strings.TrimSpace(d[FieldCity]),
		State:           strings.TrimSpace(d[FieldState]),
		PostalCode:      strings.TrimSpace(d[FieldPostalCode]),
		OwnerName:       strings.TrimSpace(d[FieldOwnerName]),
		OwnerEmail:      strings.TrimSpace(d[FieldOwnerEmail]),
		OwnerPhone:      strings.TrimSpace(d[FieldOwnerPhone]),
		YearEstablished: strings.TrimSpace(d[FieldYearEstablished]),
		Services:        SplitServices(d[FieldServices]),
		Hours:           strings.TrimSpace(d[FieldHours]),
	}

	for name, value := range d {
		if knownFields[name] || value == "" {
			continue
		}
		if record.Extra == nil {
			record.Extra = make(map[string]string)
		}
		record.Extra[name] = value
	}
	return record
}

var knownFields = map[string]bool{
	FieldBusinessName: true, FieldCategory: true, FieldDescription: true,
	FieldPhone: true, FieldEmail: true, FieldWebsite: true, FieldWhatsApp: true,
	FieldAddress: true, FieldCity: true, FieldState: true, FieldPostalCode: true,
	FieldOwnerName: true, FieldOwnerEmail: true, FieldOwnerPhone: true,
	FieldYearEstablished: true, FieldServices: true, FieldHours: true,
}
