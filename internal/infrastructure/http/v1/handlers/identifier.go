package handlers

import (
	"github.com/gin-gonic/gin"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator"
	"idforge/internal/infrastructure/http/v1/dto"
)

// IdentifierHandler exposes identifier issuance over HTTP.
type IdentifierHandler struct {
	*BaseHandler
	generator numerator.Generator
}

// NewIdentifierHandler creates a new identifier handler.
func NewIdentifierHandler(base *BaseHandler, generator numerator.Generator) *IdentifierHandler {
	return &IdentifierHandler{BaseHandler: base, generator: generator}
}

// Types lists the configured identifier types.
// GET /api/v1/identifiers/types
func (h *IdentifierHandler) Types(c *gin.Context) {
	h.OK(c, dto.TypesResponse{Types: h.generator.Types()})
}

// Next issues the next identifier of a type.
// POST /api/v1/identifiers/:type/next
func (h *IdentifierHandler) Next(c *gin.Context) {
	typeName := c.Param("type")

	identifier, err := h.generator.Next(c.Request.Context(), typeName)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.IdentifierResponse{Type: typeName, Identifier: identifier})
}

// Current returns the last identifier issued for a type without advancing.
// GET /api/v1/identifiers/:type/current
func (h *IdentifierHandler) Current(c *gin.Context) {
	typeName := c.Param("type")

	identifier, err := h.generator.Current(c.Request.Context(), typeName)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.IdentifierResponse{Type: typeName, Identifier: identifier})
}

// Validate reports whether an identifier is well-formed for a type.
// A malformed identifier is a valid answer, not an error.
// POST /api/v1/identifiers/:type/validate
func (h *IdentifierHandler) Validate(c *gin.Context) {
	typeName := c.Param("type")

	var req dto.ValidateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	valid, err := h.generator.Validate(c.Request.Context(), typeName, req.Identifier)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ValidateResponse{Type: typeName, Identifier: req.Identifier, Valid: valid})
}

// CheckDigit computes a check digit for a partial identifier.
// POST /api/v1/checkdigits
func (h *IdentifierHandler) CheckDigit(c *gin.Context) {
	var req dto.CheckDigitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cfg, err := req.Config()
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()).WithDetail("kind", req.Kind))
		return
	}

	digit, err := h.generator.CheckDigit(req.Partial, cfg)
	if err != nil {
		// the configuration came from the caller here
		if appErr, ok := apperror.AsAppError(err); ok && apperror.IsConfiguration(err) {
			err = apperror.NewValidation(appErr.Message)
		}
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CheckDigitResponse{
		Partial:    req.Partial,
		CheckDigit: digit,
		Full:       req.Partial + digit,
	})
}
