// Alias table HTTP handlers.
//
// This file exposes CRUD for the calendar-name → identity mapping:
//   - GET    /aliases        (whole table)
//   - POST   /aliases        (register)
//   - GET    /aliases/:name  (single entry)
//   - PUT    /aliases/:name  (update display name / notes)
//   - DELETE /aliases/:name  (remove)
//
// The :name path parameter is the raw calendar name as it appears in the feed.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-birthday-bot/internal/domain"
	"github.com/tbourn/go-birthday-bot/internal/services"
)

//
// DTOs
//

// RegisterAliasRequest is the JSON payload for creating an alias.
type RegisterAliasRequest struct {
	// CalendarName is the name exactly as it appears in the calendar feed.
	CalendarName string `json:"calendar_name" binding:"required" example:"Johnny D"`
	// DisplayName is the canonical name used for messages and uid derivation.
	DisplayName string `json:"display_name" binding:"required" example:"John Doe"`
	// Notes is free-form operator context.
	Notes string `json:"notes" example:"Goes by Johnny in the team calendar"`
}

// UpdateAliasRequest is the JSON payload for updating an alias.
type UpdateAliasRequest struct {
	// DisplayName replaces the canonical name; the uid is rederived from it.
	DisplayName string `json:"display_name" binding:"required" example:"John Doe"`
	// Notes, when present, replaces the stored notes (empty string included).
	Notes *string `json:"notes,omitempty"`
}

// AliasesResponse wraps the alias table keyed by calendar name.
type AliasesResponse struct {
	Aliases map[string]domain.Alias `json:"aliases"`
	Total   int                     `json:"total"`
}

//
// Handlers
//

// ListAliases godoc
// @ID          listAliases
// @Summary     List all aliases
// @Tags        Aliases
// @Produce     json
//
// @Success     200  {object}  handlers.AliasesResponse
// @Router      /aliases [get]
func (h *Handlers) ListAliases(c *gin.Context) {
	aliases := h.aliasSvc.GetAll()
	ok(c, http.StatusOK, AliasesResponse{Aliases: aliases, Total: len(aliases)})
}

// GetAlias godoc
// @ID          getAlias
// @Summary     Get one alias
// @Tags        Aliases
// @Produce     json
//
// @Param       name  path  string  true  "Calendar name"  example(Johnny D)
//
// @Success     200  {object}  domain.Alias
// @Failure     404  {object}  handlers.ErrorResponse  "Alias not found"
// @Router      /aliases/{name} [get]
func (h *Handlers) GetAlias(c *gin.Context) {
	a := h.aliasSvc.Get(c.Param("name"))
	if a == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "alias not found")
		return
	}
	ok(c, http.StatusOK, a)
}

// RegisterAlias godoc
// @ID          registerAlias
// @Summary     Register an alias
// @Description Maps a raw calendar name to a canonical display name. The LDAP
// @Description uid is derived from the display name (trim, lowercase, spaces
// @Description to dots).
// @Tags        Aliases
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterAliasRequest  true  "Alias payload"
//
// @Success     201  {object}  domain.Alias
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Alias already exists"
// @Router      /aliases [post]
func (h *Handlers) RegisterAlias(c *gin.Context) {
	var req RegisterAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.CalendarName) == "" || strings.TrimSpace(req.DisplayName) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "calendar_name and display_name are required")
		return
	}

	a, err := h.aliasSvc.Register(strings.TrimSpace(req.CalendarName), strings.TrimSpace(req.DisplayName), req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrAliasExists) {
			fail(c, http.StatusConflict, ErrCodeConflict, "alias already exists for this calendar name")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, a)
}

// UpdateAlias godoc
// @ID          updateAlias
// @Summary     Update an alias
// @Description Changes the display name of an existing alias and rederives its
// @Description uid. Omitting notes keeps the stored notes.
// @Tags        Aliases
// @Accept      json
// @Produce     json
//
// @Param       name  path  string  true  "Calendar name"  example(Johnny D)
// @Param       body  body  handlers.UpdateAliasRequest  true  "New display name"
//
// @Success     200  {object}  domain.Alias
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Alias not found"
// @Router      /aliases/{name} [put]
func (h *Handlers) UpdateAlias(c *gin.Context) {
	var req UpdateAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DisplayName) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "display_name is required")
		return
	}

	a, err := h.aliasSvc.Update(c.Param("name"), strings.TrimSpace(req.DisplayName), req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrAliasNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "alias not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, a)
}

// RemoveAlias godoc
// @ID          removeAlias
// @Summary     Remove an alias
// @Tags        Aliases
// @Produce     json
//
// @Param       name  path  string  true  "Calendar name"  example(Johnny D)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Alias not found"
// @Router      /aliases/{name} [delete]
func (h *Handlers) RemoveAlias(c *gin.Context) {
	if !h.aliasSvc.Remove(c.Param("name")) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "alias not found")
		return
	}
	noContent(c)
}
