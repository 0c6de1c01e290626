package wizard

import (
	"regexp"
	"strings"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPhoneDigits = 10

// Field keys used in validation errors.
const (
	FieldServices     = "services"
	FieldProfessional = "professional"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldQuantity     = "quantity"
)

// validateStep returns the field errors blocking a forward move from step.
func validateStep(step Step, sel booking.Selection) map[string]string {
	errs := map[string]string{}
	switch step {
	case StepPreferences:
		if len(sel.Services) == 0 {
			errs[FieldServices] = "Selecciona al menos un servicio."
		}
	case StepProfessional:
		if sel.Professional == nil {
			errs[FieldProfessional] = "Selecciona a una profesional."
		}
	case StepDateTime:
		if sel.Date == nil {
			errs[FieldDate] = "Selecciona una fecha."
		}
		if sel.Time == nil {
			errs[FieldTime] = "Selecciona un horario."
		}
	case StepClientDetails:
		for k, v := range validateClient(sel.Client) {
			errs[k] = v
		}
	}
	return errs
}

func validateClient(c booking.ClientDetails) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(c.Name) == "" {
		errs[FieldName] = "El nombre es obligatorio."
	}
	if !emailPattern.MatchString(strings.TrimSpace(c.Email)) {
		errs[FieldEmail] = "Ingresa un correo electrónico válido."
	}
	if !validPhone(c.Phone) {
		errs[FieldPhone] = "El teléfono debe tener al menos 10 dígitos y solo números."
	}
	return errs
}

func validPhone(phone string) bool {
	if len(phone) < minPhoneDigits {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
