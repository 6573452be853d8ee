// Message lifecycle HTTP handlers.
//
// This file exposes the dashboard's message controls:
//   - POST /messages/regenerate  (discard and regenerate)
//   - POST /messages/update      (manual edit, pinned against regeneration)
//   - POST /messages/clear-sent  (lift the sent suppression for a recipient)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-birthday-bot/internal/services"
)

//
// DTOs
//

// MessageRef identifies a stored message by recipient and date.
type MessageRef struct {
	// Name is the resolved display name of the recipient.
	Name string `json:"name" binding:"required" example:"John Doe"`
	// Date is the birthday date in YYYY-MM-DD form.
	Date string `json:"date" binding:"required" example:"2026-03-15"`
}

// UpdateMessageRequest is the JSON payload for a manual message edit.
type UpdateMessageRequest struct {
	MessageRef
	// Message is the replacement text.
	Message string `json:"message" binding:"required" example:"Happy birthday, John!"`
}

// RegenerateResponse wraps the freshly generated message record.
type RegenerateResponse struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	Message string `json:"message"`
	// Fallback is true when generation failed and the fixed greeting was stored.
	Fallback bool `json:"fallback"`
}

//
// Handlers
//

// RegenerateMessage godoc
// @ID          regenerateMessage
// @Summary     Regenerate a birthday message
// @Description Discards the stored message for the recipient and date (manual
// @Description edits included) and generates a fresh one.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.MessageRef  true  "Recipient reference"
//
// @Success     200  {object}  handlers.RegenerateResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "No generative backend configured"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/regenerate [post]
func (h *Handlers) RegenerateMessage(c *gin.Context) {
	var req MessageRef
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and date are required")
		return
	}
	date, okDate := parseDate(c, req.Date)
	if !okDate {
		return
	}

	rec, err := h.birthdaySvc.Regenerate(c.Request.Context(), strings.TrimSpace(req.Name), date)
	switch {
	case errors.Is(err, services.ErrGeneratorDisabled):
		fail(c, http.StatusConflict, ErrCodeGeneratorDisabled, "no generative backend configured")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeRegenerateFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, RegenerateResponse{
		Name:     rec.EmployeeName,
		Date:     rec.BirthdayDate,
		Message:  rec.Message,
		Fallback: rec.Fallback,
	})
}

// UpdateMessage godoc
// @ID          updateMessage
// @Summary     Manually edit a birthday message
// @Description Replaces the stored message text for the recipient and date.
// @Description Edited messages are pinned: non-forced regeneration keeps them.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.UpdateMessageRequest  true  "Replacement text"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "No stored message"
// @Router      /messages/update [post]
func (h *Handlers) UpdateMessage(c *gin.Context) {
	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, date and message are required")
		return
	}
	date, okDate := parseDate(c, req.Date)
	if !okDate {
		return
	}

	err := h.birthdaySvc.UpdateMessage(strings.TrimSpace(req.Name), date, req.Message)
	switch {
	case errors.Is(err, services.ErrMessageNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no message stored for this recipient and date")
		return
	case errors.Is(err, services.ErrGeneratorDisabled):
		fail(c, http.StatusConflict, ErrCodeGeneratorDisabled, "no generative backend configured")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}

	noContent(c)
}

// ClearSent godoc
// @ID          clearSent
// @Summary     Clear the sent marker for a recipient
// @Description Removes the delivery record for the recipient and date so the
// @Description next send pass may deliver again.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.MessageRef  true  "Recipient reference"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "No generative backend configured"
// @Router      /messages/clear-sent [post]
func (h *Handlers) ClearSent(c *gin.Context) {
	var req MessageRef
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and date are required")
		return
	}
	date, okDate := parseDate(c, req.Date)
	if !okDate {
		return
	}

	if err := h.birthdaySvc.ClearSent(strings.TrimSpace(req.Name), date); err != nil {
		fail(c, http.StatusConflict, ErrCodeGeneratorDisabled, "no generative backend configured")
		return
	}
	noContent(c)
}
