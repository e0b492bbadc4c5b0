package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/instantbranding/brandkit/internal/common"
)

// Error kinds reported in failure envelopes.
const (
	kindValidation     = "validation"
	kindAuthentication = "authentication"
	kindNotFound       = "not_found"
	kindMethod         = "method_not_allowed"
	kindUpstream       = "upstream"
	kindInternal       = "internal"
)

var errNullBody = errors.New("body must be a JSON object")

type errorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Kind    string            `json:"kind"`
	Details map[string]string `json:"details,omitempty"`
}

// classify maps a service error to a status code and a client-safe body.
// Unknown errors collapse to a generic 500.
func classify(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}

	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		body.Kind, body.Error, body.Details = kindValidation, ve.Message, ve.Fields
		return http.StatusBadRequest, body
	case errors.Is(err, common.ErrFileTooLarge):
		body.Kind = kindValidation
		return http.StatusRequestEntityTooLarge, body
	case errors.Is(err, common.ErrInvalidFileType),
		errors.Is(err, common.ErrMissingImage),
		errors.Is(err, common.ErrInvalidSignature):
		body.Kind = kindValidation
		return http.StatusBadRequest, body
	case errors.Is(err, common.ErrAuthenticationRequired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		body.Kind, body.Error = kindAuthentication, common.ErrAuthenticationRequired.Error()
		return http.StatusUnauthorized, body
	case errors.Is(err, common.ErrNotFound):
		body.Kind, body.Error = kindNotFound, "not found"
		return http.StatusNotFound, body
	case errors.Is(err, common.ErrRelatedNotFound):
		body.Kind = kindNotFound
		return http.StatusNotFound, body
	case errors.Is(err, common.ErrUpstream):
		body.Kind, body.Error = kindUpstream, upstreamMessage(err)
		return http.StatusBadGateway, body
	default:
		body.Kind, body.Error = kindInternal, "internal server error"
		return http.StatusInternalServerError, body
	}
}

// upstreamMessage hides transport detail wrapped around upstream failures;
// fail logs the full error.
func upstreamMessage(err error) string {
	for _, known := range []error{common.ErrGeneration, common.ErrInvalidResponse} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return common.ErrUpstream.Error()
}

func (h *handler) fail(c *gin.Context, err error) {
	status, body := classify(err)
	switch {
	case status >= http.StatusInternalServerError:
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	case status == http.StatusUnauthorized:
		h.log.Debug(c.Request.Context(), "unauthenticated request", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func invalidBody(err error) error {
	return &common.ValidationError{Message: "invalid request body: " + err.Error()}
}
