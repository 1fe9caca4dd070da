package dto

import (
	"github.com/wb-go/wbf/ginext"
	"net/http"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	Unauthorized          = "UNAUTHORIZED"
	ParticipantNotFound   = "PARTICIPANT_NOT_FOUND"
	InvalidTransition     = "INVALID_TRANSITION"
	RegistrationDuplicate = "REGISTRATION_DUPLICATE"
)

// ReviewerKey is the gin context key under which the admin guard stores who is acting.
const ReviewerKey = "reviewer"

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func ErrorResponse(c *ginext.Context, status int, code, desc string) {
	c.AbortWithStatusJSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func BadResponseError(c *ginext.Context, code, desc string) {
	ErrorResponse(c, http.StatusBadRequest, code, desc)
}

func InternalServerError(c *ginext.Context) {
	ErrorResponse(c, http.StatusInternalServerError, ServiceUnavailable, InternalError)
}

// BadGatewayError reports a failed call to the registry backend; desc is shown to the admin.
func BadGatewayError(c *ginext.Context, desc string) {
	ErrorResponse(c, http.StatusBadGateway, ServiceUnavailable, desc)
}

func FieldBadFormatError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldBadFormat, "Field '"+fieldName+"' has bad format")
}

func FieldIncorrectError(c *ginext.Context, desc string) {
	BadResponseError(c, FieldIncorrect, desc)
}

func UnauthorizedError(c *ginext.Context) {
	ErrorResponse(c, http.StatusUnauthorized, Unauthorized, "Admin access required")
}

func ParticipantNotFoundError(c *ginext.Context, desc string) {
	ErrorResponse(c, http.StatusNotFound, ParticipantNotFound, desc)
}

func InvalidTransitionError(c *ginext.Context, desc string) {
	ErrorResponse(c, http.StatusConflict, InvalidTransition, desc)
}

func RegistrationDuplicateError(c *ginext.Context) {
	ErrorResponse(c, http.StatusConflict, RegistrationDuplicate, "This email is already registered")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Status: "ok",
		Data:   data,
	})
}

// PartialFailureResponse reports a bulk operation in which some items failed; data still
// lists the items that were changed.
func PartialFailureResponse(c *ginext.Context, desc string, data any) {
	c.AbortWithStatusJSON(http.StatusBadGateway, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: desc,
		},
		Data: data,
	})
}
