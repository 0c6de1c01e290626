package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidStep is returned for transitions the current step does not allow.
	ErrInvalidStep = errors.New("wizard: invalid step transition")
	// ErrSubmissionFailed wraps a rejected submission. State is kept for a retry.
	ErrSubmissionFailed = errors.New("wizard: submission failed")
	// ErrSubmissionDisabled is returned when no email credential is configured.
	ErrSubmissionDisabled = errors.New("wizard: submission disabled")
	// ErrUnknownService is returned for ids missing from the catalog.
	ErrUnknownService = errors.New("wizard: unknown service")
	// ErrUnknownProfessional is returned for ids missing from the team.
	ErrUnknownProfessional = errors.New("wizard: unknown professional")
	// ErrDateUnavailable is returned for past days or the professional's days off.
	ErrDateUnavailable = errors.New("wizard: date unavailable")
	// ErrTimeRequiresDate is returned when a time is picked before a date.
	ErrTimeRequiresDate = errors.New("wizard: select a date first")
	// ErrSlotUnavailable is returned for a time that is not a free slot.
	ErrSlotUnavailable = errors.New("wizard: time slot unavailable")
	// ErrHistoryNotFound is returned when rebooking an unknown history entry.
	ErrHistoryNotFound = errors.New("wizard: history entry not found")
	// ErrNotSubmitted is returned when asking for the appointment too early.
	ErrNotSubmitted = errors.New("wizard: booking not submitted")
)

// Messages shown to the client.
const (
	SubmitFailureMessage = "No pudimos enviar tu solicitud de cita. Revisa tu conexión e inténtalo de nuevo."
	ConfigNoticeMessage  = "Las reservas en línea no están disponibles por el momento. Escríbenos por WhatsApp para agendar tu cita."
)

// ValidationError carries field-keyed messages for the step that failed.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("wizard: validation failed at %s: %s", e.Step, strings.Join(keys, ", "))
}

// IsValidationError unwraps err into a *ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
