// Package services implements the business logic of the birthday service:
// identity resolution, message generation and lifecycle, prompt template
// versioning, and the per-date event assembly pipeline. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers with errors.Is.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrAliasExists is returned when registering a calendar name that
	// already has an alias. The existing alias is left unchanged.
	ErrAliasExists = errors.New("alias already exists")

	// ErrAliasNotFound indicates an update or lookup referenced a calendar
	// name with no registered alias.
	ErrAliasNotFound = errors.New("alias not found")

	// ErrMissingPlaceholder is returned when a prompt template update is
	// missing {employee_name} or {birthday_date}. The current template and
	// history are left unchanged.
	ErrMissingPlaceholder = errors.New("template must contain {employee_name} and {birthday_date} placeholders")

	// ErrGeneratorDisabled is returned by operations that require the
	// generative backend when no backend is configured.
	ErrGeneratorDisabled = errors.New("message generator not configured")

	// ErrMessageNotFound indicates a manual edit referenced a (name, date)
	// key with no stored message.
	ErrMessageNotFound = errors.New("message not found")
)
