package model

// Especialidad is a medical specialty. Reference data, loaded at seed time.
type Especialidad struct {
	ID     int64  `db:"id" json:"id"`
	Nombre string `db:"nombre" json:"nombre"`
}
