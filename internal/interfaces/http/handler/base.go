package handler

import (
	"errors"
	"net/http"

	identityapp "github.com/autocare/platform/internal/application/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/autocare/platform/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// errNoCaller is returned when a route runs without JWT claims
var errNoCaller = errors.New("caller not found in context")

// getUserID extracts the user ID from JWT claims
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errNoCaller
	}
	return uuid.Parse(raw)
}

// getPartnerID extracts the partner ID from JWT claims
func getPartnerID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTPartnerID(c)
	if raw == "" {
		return uuid.Nil, errNoCaller
	}
	return uuid.Parse(raw)
}

// actor builds the authenticated caller of an operation
func actor(c *gin.Context) (identityapp.Actor, error) {
	userID, err := getUserID(c)
	if err != nil {
		return identityapp.Actor{}, err
	}
	partnerID, err := getPartnerID(c)
	if err != nil {
		return identityapp.Actor{}, err
	}
	return identityapp.Actor{UserID: userID, PartnerID: partnerID, Role: middleware.GetJWTRole(c)}, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Message sends a success response carrying only a message
func (h *BaseHandler) Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// Invalid answers a binding failure: field errors become a validation
// response, anything else (bad JSON, wrong types) a bad request.
func (h *BaseHandler) Invalid(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed request body or query")
}

// HandleError converts an error into an HTTP response. Domain errors keep
// their code; anything else is reported as internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}

// caller resolves the partner and user of the request or answers 401
func (h *BaseHandler) caller(c *gin.Context) (partnerID, userID uuid.UUID, ok bool) {
	partnerID, err := getPartnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return partnerID, userID, true
}

// pathID parses a UUID path parameter or answers 400
func (h *BaseHandler) pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// page sends a paginated service result
func page[T any](h *BaseHandler, c *gin.Context, p *shared.Paginated[T]) {
	h.SuccessWithMeta(c, p.Items, p.Total, p.Page, p.PageSize)
}

// toFilter converts query paging options into a repository filter
func toFilter(req dto.ListRequest) shared.Filter {
	f := shared.DefaultFilter()
	f.Page = req.Page
	f.PageSize = req.PageSize
	f.Search = req.Search
	if req.OrderBy != "" {
		f.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		f.OrderDir = req.OrderDir
	}
	f.Normalize()
	return f
}
