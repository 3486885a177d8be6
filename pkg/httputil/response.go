package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	playground "github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/validator"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	MsgTimeout = "La solicitud excedió el tiempo límite"
)

// Response wraps all API responses
type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data"`
	Fields  []apperrors.Field `json:"fields,omitempty"`
}

func NewSuccessResponse(data interface{}) Response {
	return Response{Status: StatusSuccess, Data: data}
}

func NewErrorResponse(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, NewSuccessResponse(data))
}

// RespondWithError renders err through its AppError code. Anything else is
// a 500 with a generic message; the cause stays on the gin context for the
// error middleware to log.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	status := appErr.HTTPStatus()
	resp := NewErrorResponse(appErr.Message)
	resp.Fields = appErr.Fields
	if appErr.Code == apperrors.ErrInternal && stderrors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
		resp.Message = MsgTimeout
	}
	c.AbortWithStatusJSON(status, resp)
}

// BindJSON decodes the body into obj and turns binding failures into a
// validation AppError.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return BindError(err)
	}
	return nil
}

// BindQuery is BindJSON for query parameters.
func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return BindError(err)
	}
	return nil
}

// BindError converts a gin binding error into a BadRequest carrying one
// Field per rejected input.
func BindError(err error) error {
	var verrs playground.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]apperrors.Field, 0, len(verrs))
		for _, fe := range verrs {
			kind := validator.KindForTag(fe.Tag(), fmt.Sprint(fe.Value()))
			fields = append(fields, apperrors.Field{
				Field:   fe.Field(),
				Kind:    string(kind),
				Message: kind.Message(),
			})
		}
		return apperrors.Validation(fields...)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &typeErr):
		return apperrors.Validation(apperrors.Field{
			Field:   typeErr.Field,
			Kind:    "invalidType",
			Message: "Tipo de dato inválido",
		})
	case stderrors.As(err, &syntaxErr):
		return apperrors.BadRequest("JSON mal formado", err)
	}
	return apperrors.BadRequest("Solicitud inválida", err)
}

// ParamID reads a positive int64 path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	return parseID(c.Param(name), name)
}

// QueryID reads a positive int64 query parameter. ok is false when absent.
func QueryID(c *gin.Context, name string) (id int64, ok bool, err error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return 0, false, nil
	}
	id, err = parseID(raw, name)
	return id, err == nil, err
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest(fmt.Sprintf("%s inválido", name), err)
	}
	return id, nil
}

// StatusClass buckets an HTTP status for logging and metrics labels.
func StatusClass(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "5xx"
	case status >= http.StatusBadRequest:
		return "4xx"
	case status >= http.StatusMultipleChoices:
		return "3xx"
	}
	return "2xx"
}
