package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var phoneRegexp = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{5,19}$`)

var (
	requestStatuses = map[string]struct{}{"open": {}, "in_progress": {}, "waiting": {}, "closed": {}}
	userRoles       = map[string]struct{}{"engineer": {}, "technician": {}, "store": {}, "branch": {}, "admin": {}}
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("phone", isPhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("request_status", isRequestStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("role", isRole); err != nil {
		return err
	}
	return nil
}

// isPhoneNumber - цифры, пробелы, дефисы и скобки, необязательный "+"
func isPhoneNumber(fl validator.FieldLevel) bool {
	return phoneRegexp.MatchString(fl.Field().String())
}

func isRequestStatus(fl validator.FieldLevel) bool {
	_, ok := requestStatuses[fl.Field().String()]
	return ok
}

func isRole(fl validator.FieldLevel) bool {
	_, ok := userRoles[fl.Field().String()]
	return ok
}
