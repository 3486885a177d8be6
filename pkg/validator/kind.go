// Package validator holds the field rules shared by every intake form:
// RUT checksum, email shape, password policy, birth date bounds and names.
//
// Each rule is a pure function returning a Kind. The zero Kind means valid.
package validator

// Kind identifies why a value was rejected.
type Kind string

const (
	Valid Kind = ""

	InvalidRut Kind = "invalidRut"

	InvalidEmail  Kind = "invalidEmail"
	InvalidDomain Kind = "invalidDomain"
	InvalidTld    Kind = "invalidTld"

	PasswordLength     Kind = "passwordLength"
	PasswordWhitespace Kind = "passwordWhitespace"
	PasswordPattern    Kind = "passwordPattern"
	PasswordSpecial    Kind = "passwordSpecial"

	InvalidDate  Kind = "invalidDate"
	DateTooEarly Kind = "dateTooEarly"
	FutureDate   Kind = "futureDate"

	InvalidName  Kind = "invalidName"
	InvalidPhone Kind = "invalidPhone"
	Required     Kind = "required"
)

var messages = map[Kind]string{
	InvalidRut:         "RUT inválido",
	InvalidEmail:       "El correo debe contener un único '@'",
	InvalidDomain:      "El dominio del correo no es válido",
	InvalidTld:         "La extensión del dominio debe tener al menos 2 letras",
	PasswordLength:     "La contraseña debe tener entre 6 y 12 caracteres",
	PasswordWhitespace: "La contraseña no puede contener espacios",
	PasswordPattern:    "La contraseña debe incluir mayúsculas, minúsculas y números",
	PasswordSpecial:    "La contraseña debe incluir un carácter especial (@$!%*?&)",
	InvalidDate:        "Fecha inválida",
	DateTooEarly:       "La fecha no puede ser anterior a 1900",
	FutureDate:         "La fecha no puede ser futura",
	InvalidName:        "Debe tener al menos 4 letras y solo contener letras",
	InvalidPhone:       "El teléfono debe tener al menos 10 caracteres",
	Required:           "Campo obligatorio",
}

func (k Kind) OK() bool { return k == Valid }

// Message returns the user-facing text for k.
func (k Kind) Message() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return string(k)
}

// Error lets a non-zero Kind travel as an error.
func (k Kind) Error() string { return k.Message() }

// Err returns nil for a valid Kind.
func (k Kind) Err() error {
	if k.OK() {
		return nil
	}
	return k
}
