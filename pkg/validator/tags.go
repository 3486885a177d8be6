package validator

import (
	"time"

	playground "github.com/go-playground/validator/v10"
)

// Tags maps binding tag names to the rule they run.
var Tags = map[string]func(string) Kind{
	"rut":             ValidateRut,
	"email_domain":    ValidateEmail,
	"password_policy": ValidatePassword,
	"strong_password": ValidateStrongPassword,
	"nombre":          ValidateNombre,
	"telefono":        ValidateTelefono,
	"birthdate": func(s string) Kind {
		return ValidateBirthDate(s, time.Now())
	},
}

// Register installs every rule in Tags as a validator/v10 tag.
func Register(v *playground.Validate) error {
	for tag, rule := range Tags {
		rule := rule
		fn := func(fl playground.FieldLevel) bool {
			return rule(fl.Field().String()).OK()
		}
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// KindForTag returns the Kind reported when a field fails tag.
func KindForTag(tag string, value string) Kind {
	if rule, ok := Tags[tag]; ok {
		if k := rule(value); !k.OK() {
			return k
		}
	}
	if tag == "required" {
		return Required
	}
	return Kind(tag)
}
