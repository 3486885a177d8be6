package model

import "time"

// Cita is a confirmed appointment: one patient booked onto one segment.
type Cita struct {
	ID         int64     `db:"id" json:"id"`
	SegmentoID int64     `db:"sgh_id" json:"segmentoHorarioId"`
	PacienteID int64     `db:"pac_id" json:"pacienteId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// CitaDetalle is the assignment response shape.
type CitaDetalle struct {
	ID              int64            `json:"id"`
	CreatedAt       time.Time        `json:"createdAt"`
	Paciente        *Paciente        `json:"paciente"`
	SegmentoHorario *SegmentoHorario `json:"segmentoHorario"`
}

type AssignCitaRequest struct {
	PacienteID        int64 `form:"pacienteId" json:"pacienteId" binding:"required,gt=0"`
	SegmentoHorarioID int64 `form:"segmentoHorarioId" json:"segmentoHorarioId" binding:"required,gt=0"`
}

// CitaAsignadaEvent is published after an assignment commits.
type CitaAsignadaEvent struct {
	CitaID          int64     `json:"citaId"`
	PacienteID      int64     `json:"pacienteId"`
	PacienteNombre  string    `json:"pacienteNombre"`
	PacienteEmail   string    `json:"pacienteEmail"`
	SegmentoID      int64     `json:"segmentoHorarioId"`
	FuncionarioID   int64     `json:"funcionarioId"`
	FechaHoraInicio time.Time `json:"fechaHoraInicio"`
	FechaHoraFin    time.Time `json:"fechaHoraFin"`
	AsignadaEn      time.Time `json:"asignadaEn"`
}

const EventCitaAsignada = "cita.asignada"
