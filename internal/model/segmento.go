package model

import "time"

const (
	SlotDuration = 30 * time.Minute
	MaxCupos     = 48
)

// SegmentoHorario is a block of time a funcionario declares available.
type SegmentoHorario struct {
	ID              int64     `db:"id" json:"id"`
	Nombre          string    `db:"nombre" json:"nombre"`
	FechaHoraInicio time.Time `db:"fecha_hora_inicio" json:"fechaHoraInicio"`
	FechaHoraFin    time.Time `db:"fecha_hora_fin" json:"fechaHoraFin"`
	FuncionarioID   int64     `db:"fun_id" json:"funcionarioId"`
	Free            bool      `db:"free" json:"free"`
}

// Cupos is the number of 30 minute units in the segment's span.
func (s *SegmentoHorario) Cupos() int {
	return int(s.FechaHoraFin.Sub(s.FechaHoraInicio) / SlotDuration)
}

type CupoEstado string

const (
	CupoDisponible CupoEstado = "DISPONIBLE"
	CupoOcupado    CupoEstado = "OCUPADO"
)

// Cupo is one bookable 30 minute slot inside a segment.
type Cupo struct {
	ID              int64      `db:"id" json:"id"`
	Estado          CupoEstado `db:"estado" json:"estado"`
	FechaHoraInicio time.Time  `db:"fecha_hora_inicio" json:"fechaHoraInicio"`
	FechaHoraFin    time.Time  `db:"fecha_hora_fin" json:"fechaHoraFin"`
	Duracion        int        `db:"duracion" json:"duracion"`
	SegmentoID      int64      `db:"sgh_id" json:"segmentoHorarioId"`
}

// SegmentoRequest creates or replaces a segment. Either Cupos or
// FechaHoraFin must be set; Cupos wins when both are.
type SegmentoRequest struct {
	Nombre          string     `json:"nombre" binding:"required"`
	FechaHoraInicio time.Time  `json:"fechaHoraInicio" binding:"required"`
	FechaHoraFin    *time.Time `json:"fechaHoraFin"`
	Cupos           int        `json:"cupos" binding:"omitempty,min=1,max=48"`
	FuncionarioID   int64      `json:"funcionarioId" binding:"required,gt=0"`
}
