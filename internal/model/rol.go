package model

type RolNombre string

const (
	RolCitas       RolNombre = "USA_CITAS"
	RolAgenda      RolNombre = "USA_AGENDA"
	RolInscripcion RolNombre = "USA_INSCRIPCION"
)

// AllRoles is every role, in seed id order. Registration grants all of them.
var AllRoles = []RolNombre{RolCitas, RolAgenda, RolInscripcion}

func (r RolNombre) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

type Rol struct {
	ID     int64     `db:"id" json:"id"`
	Nombre RolNombre `db:"nombre" json:"nombre"`
}
