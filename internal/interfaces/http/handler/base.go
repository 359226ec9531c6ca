package handler

import (
	"errors"
	"net/http"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func (h *BaseHandler) getRequestID(c *gin.Context) string {
	if requestID := c.GetString("request_id"); requestID != "" {
		return requestID
	}
	return c.GetHeader("X-Request-ID")
}

// getActorID extracts the acting user's ID from the X-Actor-ID header
func (h *BaseHandler) getActorID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("X-Actor-ID")
	if raw == "" {
		return uuid.Nil, shared.NewDomainError("BAD_REQUEST", "X-Actor-ID header is required")
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.NewDomainError("BAD_REQUEST", "X-Actor-ID header must be a valid UUID")
	}
	return actorID, nil
}

// parseUUIDParam parses a path parameter as a UUID
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, shared.NewDomainError("BAD_REQUEST", "Invalid "+name+" format")
	}
	return id, nil
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response with the given message
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, h.getRequestID(c)))
}

// NotFound sends a 404 response for the named resource
func (h *BaseHandler) NotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, resource+" not found", h.getRequestID(c)))
}

// HandleError maps an error to the appropriate HTTP response. Domain errors
// carry their own code; anything else becomes a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := h.getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}

// HandleBindingError sends a 400 response for a JSON or query binding failure
func (h *BaseHandler) HandleBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, err.Error(), h.getRequestID(c)))
}
