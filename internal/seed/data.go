package seed

import (
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
)

// DefaultPassword is the clear-text password of every seeded funcionario.
const DefaultPassword = "Abc123"

var especialidades = []string{
	"Cardiología",
	"Neurología",
	"Pediatría",
	"Dermatología",
	"Oncología",
}

// Funcionario and segment owner references below are 1-based positions in
// these slices, not database IDs.
type funcionarioRow struct {
	rut, nombres, apellidos, telefono, email string
	especialidad                             int
}

var funcionarios = []funcionarioRow{
	{"196450963", "María", "González", "555-1001", "maria.gonzalez@ejemplo.com", 1},
	{"13538951K", "José", "Rodríguez", "555-1002", "jose.rodriguez@ejemplo.com", 2},
	{"145092035", "Carmen", "López", "555-1003", "carmen.lopez@ejemplo.com", 3},
	{"199072412", "Luis", "Martínez", "555-1004", "luis.martinez@ejemplo.com", 4},
	{"151205682", "Ana", "García", "555-1005", "ana.garcia@ejemplo.com", 5},
	{"195174571", "Juan", "Sánchez", "555-1006", "juan.sanchez@ejemplo.com", 1},
	{"116726459", "Laura", "Pérez", "555-1007", "laura.perez@ejemplo.com", 2},
	{"170401697", "Carlos", "Torres", "555-1008", "carlos.torres@ejemplo.com", 3},
	{"171939747", "Isabel", "Ramírez", "555-1009", "isabel.ramirez@ejemplo.com", 4},
	{"198848395", "Miguel", "Flores", "555-1010", "miguel.flores@ejemplo.com", 5},
}

type pacienteRow struct {
	rut, nombres, apellidos, telefono, email, nacimiento string
	genero                                               model.Genero
	direccion                                            string
}

var pacientes = []pacienteRow{
	{"111111111", "Diego", "Castro", "555-2001", "diego.castro@ejemplo.com", "1990-05-14", model.GeneroMasculino, "Calle Principal 123"},
	{"222222222", "Lucía", "Morales", "555-2002", "lucia.morales@ejemplo.com", "1985-08-23", model.GeneroFemenino, "Avenida Secundaria 456"},
	{"333333333", "Antonio", "Vargas", "555-2003", "antonio.vargas@ejemplo.com", "1978-12-02", model.GeneroMasculino, "Calle Tercera 789"},
	{"444444444", "Sofía", "Ortega", "555-2004", "sofia.ortega@ejemplo.com", "1992-07-19", model.GeneroFemenino, "Avenida Cuarta 321"},
	{"555555555", "Pedro", "Ramos", "555-2005", "pedro.ramos@ejemplo.com", "1980-03-11", model.GeneroMasculino, "Calle Quinta 654"},
	{"666666666", "Valentina", "Mendoza", "555-2006", "valentina.mendoza@ejemplo.com", "1995-09-30", model.GeneroFemenino, "Avenida Sexta 987"},
	{"777777777", "Andrés", "Silva", "555-2007", "andres.silva@ejemplo.com", "1975-11-05", model.GeneroMasculino, "Calle Séptima 159"},
	{"888888888", "Elena", "Santos", "555-2008", "elena.santos@ejemplo.com", "1988-04-22", model.GeneroFemenino, "Avenida Octava 753"},
	{"999999999", "Jorge", "Cruz", "555-2009", "jorge.cruz@ejemplo.com", "1993-06-17", model.GeneroMasculino, "Calle Novena 852"},
	{"101010101", "Camila", "Reyes", "555-2010", "camila.reyes@ejemplo.com", "1991-01-28", model.GeneroFemenino, "Avenida Décima 951"},
}

type segmentoRow struct {
	day, from, to int
	funcionario   int
}

var segmentos = []segmentoRow{
	{25, 9, 12, 1},
	{25, 14, 17, 1},
	{25, 15, 18, 3},
	{26, 8, 12, 4},
	{27, 9, 12, 8},
	{27, 14, 17, 9},
	{27, 15, 18, 1},
	{28, 14, 18, 3},
	{28, 8, 12, 4},
	{29, 8, 12, 8},
	{29, 15, 18, 9},
}

const segmentoNombre = "Atención general"

func (r segmentoRow) window() (time.Time, time.Time) {
	day := time.Date(2024, time.November, r.day, 0, 0, 0, 0, time.UTC)
	return day.Add(time.Duration(r.from) * time.Hour), day.Add(time.Duration(r.to) * time.Hour)
}

// rolesFor lists the roles granted to the funcionario at 1-based position i.
func rolesFor(i int) []model.RolNombre {
	if i == 1 {
		return model.AllRoles
	}
	return []model.RolNombre{model.RolAgenda, model.RolInscripcion}
}
