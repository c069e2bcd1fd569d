package transport

import (
	"dealer_backend/internal/leads/domain"
	"dealer_backend/platform/validator"
)

// RegisterValidations installs the lead-specific validation tags.
func RegisterValidations(val *validator.Validator) error {
	rules := map[string]func(string) bool{
		"leadsource":   func(v string) bool { return domain.Source(v).IsValid() },
		"leadstatus":   func(v string) bool { return domain.Status(v).IsValid() },
		"activitytype": func(v string) bool { return domain.ActivityType(v).IsValid() },
	}
	for tag, allowed := range rules {
		if err := val.RegisterValidation(tag, validator.OneOf(allowed)); err != nil {
			return err
		}
	}
	return nil
}
