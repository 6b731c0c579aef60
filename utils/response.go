package utils

import (
	"errors"
	"net/http"

	"detailpro-backend/pricing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondWithError aborts the request with a JSON error body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// RespondWithValidation reports form validation failures field by field.
// Other errors are reported as a plain bad request.
func RespondWithValidation(c *gin.Context, err error) {
	var verrs pricing.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input", Details: verrs})
		return
	}
	RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
}

// ParamUUID parses a path parameter, answering 400 when it is malformed.
func ParamUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
