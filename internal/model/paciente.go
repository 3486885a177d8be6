package model

type Genero string

const (
	GeneroMasculino Genero = "M"
	GeneroFemenino  Genero = "F"
	GeneroOtro      Genero = "O"
)

type Paciente struct {
	ID              int64  `db:"id" json:"id"`
	Nombres         string `db:"nombres" json:"nombres"`
	Apellidos       string `db:"apellidos" json:"apellidos"`
	Rut             string `db:"rut" json:"rut"`
	Telefono        string `db:"telefono" json:"telefono"`
	Email           string `db:"email" json:"email"`
	FechaNacimiento Date   `db:"fecha_nacimiento" json:"fechaNacimiento"`
	Genero          Genero `db:"genero" json:"genero"`
	Direccion       string `db:"direccion" json:"direccion"`
}

func (p *Paciente) NombreCompleto() string {
	return p.Nombres + " " + p.Apellidos
}

// PacienteRequest is the intake form, used for both create and update.
type PacienteRequest struct {
	Nombres         string `json:"nombres" binding:"required,nombre"`
	Apellidos       string `json:"apellidos" binding:"required,nombre"`
	Rut             string `json:"rut" binding:"required,rut"`
	Telefono        string `json:"telefono" binding:"required,telefono"`
	Email           string `json:"email" binding:"required,email_domain"`
	FechaNacimiento string `json:"fechaNacimiento" binding:"required,birthdate"`
	Genero          Genero `json:"genero" binding:"required,oneof=M F O"`
	Direccion       string `json:"direccion" binding:"required"`
}

// DefaultTelefono is the prefix the intake form starts with.
const DefaultTelefono = "(56) 9 "
