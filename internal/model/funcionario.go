package model

// Funcionario is a hospital staff member and the only kind of user.
type Funcionario struct {
	ID             int64  `db:"id" json:"id"`
	Nombres        string `db:"nombres" json:"nombres"`
	Apellidos      string `db:"apellidos" json:"apellidos"`
	Rut            string `db:"rut" json:"rut"`
	Telefono       string `db:"telefono" json:"telefono"`
	Email          string `db:"email" json:"email"`
	Password       string `db:"password" json:"-"`
	EspecialidadID int64  `db:"esp_id" json:"especialidadId"`

	Roles               []RolNombre `db:"-" json:"roles,omitempty"`
	TieneDisponibilidad *bool       `db:"-" json:"tieneDisponibilidad,omitempty"`
}

func (f *Funcionario) NombreCompleto() string {
	return f.Nombres + " " + f.Apellidos
}

type RegisterFuncionarioRequest struct {
	Nombres        string `json:"nombres" binding:"required,nombre"`
	Apellidos      string `json:"apellidos" binding:"required,nombre"`
	Rut            string `json:"rut" binding:"required,rut"`
	Telefono       string `json:"telefono" binding:"required"`
	Email          string `json:"email" binding:"required,email_domain"`
	Password       string `json:"password" binding:"required,password_policy"`
	EspecialidadID int64  `json:"especialidadId" binding:"required,gt=0"`
}

type UpdateFuncionarioRequest struct {
	Nombres        string `json:"nombres" binding:"required,nombre"`
	Apellidos      string `json:"apellidos" binding:"required,nombre"`
	Telefono       string `json:"telefono" binding:"required"`
	Email          string `json:"email" binding:"required,email_domain"`
	EspecialidadID int64  `json:"especialidadId" binding:"required,gt=0"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,password_policy"`
}

type LoginRequest struct {
	Rut      string `json:"rut" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// FuncionarioFilters narrows List. Zero values mean no filter.
type FuncionarioFilters struct {
	Nombre         string `form:"nombre"`
	Email          string `form:"email"`
	EspecialidadID int64  `form:"especialidadId"`
	Disponibilidad bool   `form:"disponibilidad"`
}
