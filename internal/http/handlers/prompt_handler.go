// Prompt template HTTP handlers.
//
// This file exposes the prompt versioning surface:
//   - GET  /prompt-template   (active template)
//   - PUT  /prompt-template   (replace, placeholder-validated)
//   - GET  /prompt-history    (active entry + append-only history)
//   - POST /prompt-activate   (promote a history entry)
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

// PromptTemplateResponse carries the active template text.
type PromptTemplateResponse struct {
	Template string `json:"template"`
}

// UpdatePromptRequest is the JSON payload for replacing the active template.
type UpdatePromptRequest struct {
	// Template must contain both {employee_name} and {birthday_date}.
	Template string `json:"template" binding:"required"`
	// Description labels the history entry created for the replaced template.
	Description string `json:"description" example:"Shorter, punchier messages"`
}

// PromptHistoryResponse wraps the template history, active entry first.
type PromptHistoryResponse struct {
	History []domain.PromptHistoryEntry `json:"history"`
	Total   int                         `json:"total"`
}

// ActivatePromptRequest selects the history entry to promote.
type ActivatePromptRequest struct {
	PromptID string `json:"prompt_id" binding:"required" example:"3"`
}

//
// Handlers
//

// GetPromptTemplate godoc
// @ID          getPromptTemplate
// @Summary     Get the active prompt template
// @Tags        Prompts
// @Produce     json
//
// @Success     200  {object}  handlers.PromptTemplateResponse
// @Router      /prompt-template [get]
func (h *Handlers) GetPromptTemplate(c *gin.Context) {
	ok(c, http.StatusOK, PromptTemplateResponse{Template: h.promptSvc.Current()})
}

// UpdatePromptTemplate godoc
// @ID          updatePromptTemplate
// @Summary     Replace the active prompt template
// @Description Validates that the new template contains both {employee_name}
// @Description and {birthday_date}, archives the replaced template in history,
// @Description and activates the new one. Rejected templates never enter
// @Description history.
// @Tags        Prompts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.UpdatePromptRequest  true  "New template"
//
// @Success     200  {object}  handlers.PromptTemplateResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing placeholder or bad payload"
// @Router      /prompt-template [put]
func (h *Handlers) UpdatePromptTemplate(c *gin.Context) {
	var req UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Template) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template is required")
		return
	}

	if err := h.promptSvc.Update(req.Template, req.Description); err != nil {
		if errors.Is(err, services.ErrMissingPlaceholder) {
			fail(c, http.StatusBadRequest, ErrCodeTemplateInvalid,
				"template must contain {employee_name} and {birthday_date}")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, PromptTemplateResponse{Template: h.promptSvc.Current()})
}

// GetPromptHistory godoc
// @ID          getPromptHistory
// @Summary     List prompt template history
// @Description Returns the active template (id "current") followed by the
// @Description archived templates in the order they were recorded.
// @Tags        Prompts
// @Produce     json
//
// @Success     200  {object}  handlers.PromptHistoryResponse
// @Router      /prompt-history [get]
func (h *Handlers) GetPromptHistory(c *gin.Context) {
	hist := h.promptSvc.History()
	ok(c, http.StatusOK, PromptHistoryResponse{History: hist, Total: len(hist)})
}

// ActivatePrompt godoc
// @ID          activatePrompt
// @Summary     Reactivate a prompt template from history
// @Description Promotes the history entry with the given id to the active
// @Description template, archiving the one it replaces. The id "current" is a
// @Description no-op success.
// @Tags        Prompts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ActivatePromptRequest  true  "History entry id"
//
// @Success     200  {object}  handlers.PromptTemplateResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown prompt id"
// @Router      /prompt-activate [post]
func (h *Handlers) ActivatePrompt(c *gin.Context) {
	var req ActivatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt_id is required")
		return
	}

	if !h.promptSvc.Activate(strings.TrimSpace(req.PromptID)) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no prompt with that id in history")
		return
	}
	ok(c, http.StatusOK, PromptTemplateResponse{Template: h.promptSvc.Current()})
}
