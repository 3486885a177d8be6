package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("Paciente no encontrado", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad", nil).HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no", nil).HTTPStatus())
	assert.Equal(t, http.StatusForbidden, Forbidden("no", nil).HTTPStatus())
	assert.Equal(t, http.StatusConflict, Conflict("Este horario ya está ocupado", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal(stderrors.New("boom")).HTTPStatus())
}

func TestAs_ThroughWrapping(t *testing.T) {
	cause := stderrors.New("db down")
	err := fmt.Errorf("assign: %w", Internal(cause))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, ErrInternal, appErr.Code)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, ErrInternal))
	assert.False(t, IsCode(cause, ErrInternal))
}

func TestValidation_SingleFieldUsesItsMessage(t *testing.T) {
	err := Validation(Field{Field: "rut", Kind: "invalidRut", Message: "RUT inválido"})
	assert.Equal(t, "RUT inválido", err.Message)
	assert.Len(t, err.Fields, 1)
}
