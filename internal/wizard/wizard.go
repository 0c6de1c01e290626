// Package wizard is the booking state machine: step navigation, selections,
// validation, deferred slot loading and submission.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/availability"
	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
	"github.com/wolfman30/pitaya-nails-booking/internal/clock"
	"github.com/wolfman30/pitaya-nails-booking/internal/observability/metrics"
	"github.com/wolfman30/pitaya-nails-booking/internal/reminders"
	"github.com/wolfman30/pitaya-nails-booking/internal/session"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// Gateway delivers the salon and customer emails for a booking.
type Gateway interface {
	Configured() bool
	SendBooking(ctx context.Context, appt booking.Appointment) error
}

// ReminderScheduler queues reminders for a submitted appointment.
type ReminderScheduler interface {
	Schedule(ctx context.Context, appt booking.Appointment) ([]reminders.Reminder, error)
}

// Options wires a wizard to its collaborators.
type Options struct {
	Catalog   *catalog.Catalog
	Store     *session.Store
	Gateway   Gateway
	Loader    *availability.Loader
	Clock     clock.Clock
	Location  *time.Location
	Reminders ReminderScheduler
	Metrics   *metrics.BookingMetrics
	Logger    *logging.Logger

	// Steps overrides DefaultSteps.
	Steps    []StepDef
	Settings Settings
	// MaxQuantity caps customizable quantities. Zero means no cap.
	MaxQuantity int
	// OnExit runs when the client backs out of the first step.
	OnExit func()
}

// Wizard is one client's in-progress booking. All methods are safe for
// concurrent use; transitions and slot deliveries are serialized.
type Wizard struct {
	mu sync.Mutex

	catalog     *catalog.Catalog
	store       *session.Store
	gateway     Gateway
	loader      *availability.Loader
	clock       clock.Clock
	loc         *time.Location
	reminders   ReminderScheduler
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	seq         Sequence
	settings    Settings
	maxQuantity int
	onExit      func()

	step         Step
	sel          booking.Selection
	slots        []string
	slotsLoading bool
	slotTask     *availability.Task
	errors       map[string]string
	submitErr    string
	confirmed    *booking.Appointment
	lastActive   time.Time
}

// New builds a wizard and restores any saved in-progress booking from the store.
func New(ctx context.Context, opts Options) (*Wizard, error) {
	if opts.Catalog == nil {
		return nil, errors.New("wizard: catalog is required")
	}
	if opts.Store == nil {
		opts.Store = session.NewStore(nil, opts.Logger)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Loader == nil {
		opts.Loader = availability.NewLoader(availability.NewCalculator(), opts.Clock, 0)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	steps := opts.Steps
	if steps == nil {
		steps = DefaultSteps
	}

	w := &Wizard{
		catalog:     opts.Catalog,
		store:       opts.Store,
		gateway:     opts.Gateway,
		loader:      opts.Loader,
		clock:       opts.Clock,
		loc:         opts.Location,
		reminders:   opts.Reminders,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		seq:         BuildSequence(steps, opts.Settings),
		settings:    opts.Settings,
		maxQuantity: opts.MaxQuantity,
		onExit:      opts.OnExit,
	}
	w.step = w.seq.First()
	w.lastActive = w.clock.Now()

	var fixed *catalog.TeamMember
	if !w.seq.Contains(StepProfessional) {
		member, err := w.catalog.Member(opts.Settings.DefaultProfessional)
		if err != nil {
			return nil, fmt.Errorf("%w: default professional %d", ErrUnknownProfessional, opts.Settings.DefaultProfessional)
		}
		fixed = &member
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.restoreLocked(ctx)
	if fixed != nil {
		w.sel.Professional = fixed
	}
	if w.step == StepSubmitted {
		return w, nil
	}
	w.dropUnavailableDateLocked()
	w.dropStaleTimeLocked()
	w.step = w.reachableStepLocked(w.step)
	w.refreshSlotsLocked()
	return w, nil
}

func (w *Wizard) restoreLocked(ctx context.Context) {
	rec, ok := w.store.Load(ctx)
	if !ok {
		if appt, found := w.store.LoadConfirmed(ctx); found {
			w.confirmed = &appt
			w.step = StepSubmitted
			w.logger.Info("wizard: restored confirmed booking", "booking_id", appt.ID)
		}
		return
	}
	sel := rec.Selection.Clone()

	// Re-resolve against the catalog so stale ids and edited prices drop out.
	services := make([]string, 0, len(sel.Services))
	for _, id := range sel.Services {
		if _, err := w.catalog.Service(id); err == nil && !containsString(services, id) {
			services = append(services, id)
		}
	}
	sel.Services = services
	for id := range sel.Customizations {
		if !sel.HasService(id) {
			delete(sel.Customizations, id)
		}
	}
	if sel.Professional != nil {
		member, err := w.catalog.Member(sel.Professional.ID)
		if err != nil {
			sel.Professional = nil
		} else {
			sel.Professional = &member
		}
	}
	if sel.Date != nil {
		d := dayIn(*sel.Date, w.loc)
		sel.Date = &d
	}
	if sel.ViewDate != nil {
		v := dayIn(*sel.ViewDate, w.loc)
		sel.ViewDate = &v
	}
	if sel.Date == nil {
		sel.Time = nil
	}

	w.sel = sel
	step := Step(rec.CurrentStep)
	if step >= StepSubmitted {
		step = w.seq.First()
	}
	w.step = w.seq.snap(step)
	w.logger.Info("wizard: restored booking", "step", w.step.String(), "services", len(sel.Services))
}

// dropUnavailableDateLocked keeps the invariant that a committed date is never
// unavailable for the chosen professional.
func (w *Wizard) dropUnavailableDateLocked() {
	if w.sel.Date == nil {
		return
	}
	if availability.IsDateUnavailable(*w.sel.Date, w.sel.Professional, w.now()) {
		w.sel.Date = nil
		w.sel.Time = nil
	}
}

// timeFitsLocked reports whether the chosen time still starts a free slot for
// the chosen date, professional and total duration.
func (w *Wizard) timeFitsLocked() bool {
	if w.sel.Date == nil || w.sel.Time == nil || w.sel.Professional == nil {
		return true
	}
	free := w.loader.Calculator().ComputeSlots(*w.sel.Date, *w.sel.Professional, w.totalDurationLocked())
	return containsString(free, *w.sel.Time)
}

// dropStaleTimeLocked clears a chosen time that no longer fits after the
// services, quantities or professional changed.
func (w *Wizard) dropStaleTimeLocked() {
	if !w.timeFitsLocked() {
		w.logger.Info("wizard: cleared time that no longer fits", "time", *w.sel.Time)
		w.sel.Time = nil
	}
}

// validateLocked is validateStep plus the slot check, which needs the calculator.
func (w *Wizard) validateLocked(step Step) map[string]string {
	errs := validateStep(step, w.sel)
	if step == StepDateTime && len(errs) == 0 && !w.timeFitsLocked() {
		errs[FieldTime] = "El horario elegido ya no está disponible."
	}
	return errs
}

// reachableStepLocked walks forward from the first step and stops at the
// first step whose requirements are not met, capped at target.
func (w *Wizard) reachableStepLocked(target Step) Step {
	step := w.seq.First()
	for step != target {
		if len(w.validateLocked(step)) > 0 {
			return step
		}
		next, ok := w.seq.Next(step)
		if !ok || next == StepSubmitted {
			return step
		}
		step = next
	}
	return step
}

func (w *Wizard) now() time.Time {
	return w.clock.Now().In(w.loc)
}

func dayIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// changedLocked records activity and persists the booking.
func (w *Wizard) changedLocked(ctx context.Context) {
	w.errors = nil
	w.lastActive = w.clock.Now()
	w.persistLocked(ctx)
}

// persistLocked saves the in-progress record unless the booking is done.
func (w *Wizard) persistLocked(ctx context.Context) {
	if w.step == StepSubmitted {
		return
	}
	w.store.Save(ctx, session.Record{CurrentStep: int(w.step), Selection: w.sel.Clone()})
}

func (w *Wizard) requireEditableLocked() error {
	if w.step == StepSubmitted {
		return fmt.Errorf("%w: booking already submitted", ErrInvalidStep)
	}
	return nil
}

// totalDurationLocked is the derived duration of the chosen services.
func (w *Wizard) totalDurationLocked() int {
	return booking.ComputeTotals(w.catalog, w.sel).Duration
}

// refreshSlotsLocked cancels any pending computation and starts a new one
// when a date and professional are chosen.
func (w *Wizard) refreshSlotsLocked() {
	w.slotTask.Cancel()
	w.slotTask = nil
	w.slots = nil
	w.slotsLoading = false

	if w.sel.Date == nil || w.sel.Professional == nil {
		return
	}
	date, professional := *w.sel.Date, *w.sel.Professional
	if availability.IsDateUnavailable(date, &professional, w.now()) {
		return
	}
	duration := w.totalDurationLocked()
	if w.loader.Delay() <= 0 {
		w.slots = w.loader.Calculator().ComputeSlots(date, professional, duration)
		w.metrics.ObserveSlotLoad("immediate")
		return
	}

	w.slotsLoading = true
	w.slotTask = w.loader.Schedule(date, professional, duration, func(task *availability.Task, slots []string) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if task != w.slotTask || task.Cancelled() {
			w.metrics.ObserveSlotLoad("stale")
			return
		}
		w.slots = slots
		w.slotsLoading = false
		w.slotTask = nil
		w.metrics.ObserveSlotLoad("delivered")
	})
}

// Close stops any pending slot computation.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slotTask.Cancel()
	w.slotTask = nil
}

// LastActive is when the wizard last changed.
func (w *Wizard) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Selection returns a copy of the in-progress booking.
func (w *Wizard) Selection() booking.Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.Clone()
}

// Totals derives price and duration from the current services.
func (w *Wizard) Totals() booking.Totals {
	w.mu.Lock()
	defer w.mu.Unlock()
	return booking.ComputeTotals(w.catalog, w.sel)
}

// Slots returns the last delivered slots and whether a computation is pending.
func (w *Wizard) Slots() ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.slots...), w.slotsLoading
}

// SubmitEnabled reports whether a submission can be attempted.
func (w *Wizard) SubmitEnabled() bool {
	return w.gateway != nil && w.gateway.Configured()
}

// ConfigNotice explains why submission is disabled, or is empty.
func (w *Wizard) ConfigNotice() string {
	if w.SubmitEnabled() {
		return ""
	}
	return ConfigNoticeMessage
}

// ToggleService adds or removes a service on the preferences step.
// Customizable services start with quantity 1; removing one drops its
// customization.
func (w *Wizard) ToggleService(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepPreferences {
		return fmt.Errorf("%w: services are chosen on the preferences step", ErrInvalidStep)
	}
	svc, err := w.catalog.Service(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownService, id)
	}
	if w.sel.HasService(id) {
		w.removeServiceLocked(id)
	} else {
		w.addServiceLocked(svc)
	}
	w.dropStaleTimeLocked()
	w.refreshSlotsLocked()
	w.changedLocked(ctx)
	return nil
}

// SetServices replaces the chosen services on the preferences step.
func (w *Wizard) SetServices(ctx context.Context, ids []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepPreferences {
		return fmt.Errorf("%w: services are chosen on the preferences step", ErrInvalidStep)
	}
	resolved := make([]catalog.Service, 0, len(ids))
	for _, id := range ids {
		svc, err := w.catalog.Service(id)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownService, id)
		}
		resolved = append(resolved, svc)
	}
	w.setServicesLocked(resolved)
	w.dropStaleTimeLocked()
	w.refreshSlotsLocked()
	w.changedLocked(ctx)
	return nil
}

func (w *Wizard) setServicesLocked(services []catalog.Service) {
	keep := make(map[string]bool, len(services))
	for _, svc := range services {
		keep[svc.ID] = true
	}
	for _, id := range append([]string(nil), w.sel.Services...) {
		if !keep[id] {
			w.removeServiceLocked(id)
		}
	}
	for _, svc := range services {
		if !w.sel.HasService(svc.ID) {
			w.addServiceLocked(svc)
		}
	}
}

func (w *Wizard) addServiceLocked(svc catalog.Service) {
	w.sel.Services = append(w.sel.Services, svc.ID)
	if svc.IsCustomizable {
		if w.sel.Customizations == nil {
			w.sel.Customizations = map[string]booking.Customization{}
		}
		w.sel.Customizations[svc.ID] = booking.Customization{Quantity: 1}
	}
}

func (w *Wizard) removeServiceLocked(id string) {
	out := w.sel.Services[:0]
	for _, existing := range w.sel.Services {
		if existing != id {
			out = append(out, existing)
		}
	}
	w.sel.Services = out
	delete(w.sel.Customizations, id)
}

// SetCustomization updates quantity and notes for a chosen customizable
// service. Like the services themselves it only changes on the preferences step.
func (w *Wizard) SetCustomization(ctx context.Context, serviceID string, quantity int, notes string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepPreferences {
		return fmt.Errorf("%w: customizations are set on the preferences step", ErrInvalidStep)
	}
	svc, err := w.catalog.Service(serviceID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownService, serviceID)
	}
	if !svc.IsCustomizable || !w.sel.HasService(serviceID) {
		return fmt.Errorf("%w: %s is not a chosen customizable service", ErrUnknownService, serviceID)
	}
	if quantity < 1 {
		return w.rejectLocked(&ValidationError{Step: w.step, Fields: map[string]string{FieldQuantity: "La cantidad debe ser al menos 1."}})
	}
	if w.maxQuantity > 0 && quantity > w.maxQuantity {
		return w.rejectLocked(&ValidationError{Step: w.step, Fields: map[string]string{
			FieldQuantity: fmt.Sprintf("La cantidad máxima es %d.", w.maxQuantity),
		}})
	}
	if w.sel.Customizations == nil {
		w.sel.Customizations = map[string]booking.Customization{}
	}
	w.sel.Customizations[serviceID] = booking.Customization{Quantity: quantity, Notes: notes}
	w.dropStaleTimeLocked()
	w.refreshSlotsLocked()
	w.changedLocked(ctx)
	return nil
}

// SelectProfessional chooses who performs the service. A chosen date that
// falls on one of the professional's days off is cleared together with the time.
func (w *Wizard) SelectProfessional(ctx context.Context, id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditableLocked(); err != nil {
		return err
	}
	if !w.seq.Contains(StepProfessional) {
		return fmt.Errorf("%w: professional is pre-assigned", ErrInvalidStep)
	}
	member, err := w.catalog.Member(id)
	if err != nil {
		return fmt.Errorf("%w: %d", ErrUnknownProfessional, id)
	}
	w.sel.Professional = &member
	if w.sel.Date != nil && member.UnavailableOn(w.sel.Date.Weekday()) {
		w.sel.Date = nil
		w.sel.Time = nil
	}
	w.dropStaleTimeLocked()
	w.refreshSlotsLocked()
	w.changedLocked(ctx)
	return nil
}

// SelectDate picks a calendar day and clears the chosen time. Past days and the
// professional's days off are rejected.
func (w *Wizard) SelectDate(ctx context.Context, date time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditableLocked(); err != nil {
		return err
	}
	day := dayIn(date, w.loc)
	if availability.IsDateUnavailable(day, w.sel.Professional, w.now()) {
		return fmt.Errorf("%w: %s", ErrDateUnavailable, day.Format(time.DateOnly))
	}
	w.sel.Date = &day
	w.sel.Time = nil
	view := availability.ChangeMonth(day, 0)
	w.sel.ViewDate = &view
	w.refreshSlotsLocked()
	w.changedLocked(ctx)
	return nil
}

// SelectTime picks a start time on the chosen date.
func (w *Wizard) SelectTime(ctx context.Context, hhmm string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditableLocked(); err != nil {
		return err
	}
	if w.sel.Date == nil {
		return ErrTimeRequiresDate
	}
	if _, err := availability.ParseTime(hhmm); err != nil {
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	if w.sel.Professional != nil {
		free := w.loader.Calculator().ComputeSlots(*w.sel.Date, *w.sel.Professional, w.totalDurationLocked())
		if !containsString(free, hhmm) {
			return fmt.Errorf("%w: %s", ErrSlotUnavailable, hhmm)
		}
	}
	t := hhmm
	w.sel.Time = &t
	w.changedLocked(ctx)
	return nil
}

// SetClientDetails stores the contact fields. They are validated on Next.
func (w *Wizard) SetClientDetails(ctx context.Context, details booking.ClientDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditableLocked(); err != nil {
		return err
	}
	w.sel.Client = details
	w.changedLocked(ctx)
	return nil
}

// SetReminders stores the reminder opt-ins.
func (w *Wizard) SetReminders(ctx context.Context, r booking.Reminders) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditableLocked(); err != nil {
		return err
	}
	w.sel.Reminders = r
	w.changedLocked(ctx)
	return nil
}

// ChangeViewMonth moves the displayed calendar month by offset.
func (w *Wizard) ChangeViewMonth(ctx context.Context, offset int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireEditableLocked(); err != nil {
		return err
	}
	view := availability.ChangeMonth(w.viewDateLocked(), offset)
	w.sel.ViewDate = &view
	w.changedLocked(ctx)
	return nil
}

func (w *Wizard) viewDateLocked() time.Time {
	switch {
	case w.sel.ViewDate != nil:
		return *w.sel.ViewDate
	case w.sel.Date != nil:
		return *w.sel.Date
	default:
		return dayIn(w.now(), w.loc)
	}
}

// rejectLocked records a validation failure for the view and metrics.
func (w *Wizard) rejectLocked(ve *ValidationError) error {
	w.errors = ve.Fields
	for field := range ve.Fields {
		w.metrics.ObserveValidationFailure(ve.Step.String(), field)
	}
	return ve
}

// Next validates the current step and advances to the following visible step.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepConfirm || w.step == StepSubmitted {
		return fmt.Errorf("%w: cannot advance from %s", ErrInvalidStep, w.step)
	}
	if errs := w.validateLocked(w.step); len(errs) > 0 {
		return w.rejectLocked(&ValidationError{Step: w.step, Fields: errs})
	}
	next, ok := w.seq.Next(w.step)
	if !ok {
		return fmt.Errorf("%w: no step after %s", ErrInvalidStep, w.step)
	}
	w.step = next
	w.submitErr = ""
	w.metrics.ObserveTransition("next", next.String())
	w.changedLocked(ctx)
	return nil
}

// Back moves to the previous visible step. On the first step it exits the
// wizard, clearing the saved booking, and reports exited.
func (w *Wizard) Back(ctx context.Context) (exited bool, err error) {
	w.mu.Lock()
	if w.step == StepSubmitted {
		w.mu.Unlock()
		return false, fmt.Errorf("%w: booking already submitted", ErrInvalidStep)
	}
	prev, ok := w.seq.Prev(w.step)
	if ok {
		w.step = prev
		w.submitErr = ""
		w.metrics.ObserveTransition("back", prev.String())
		w.changedLocked(ctx)
		w.mu.Unlock()
		return false, nil
	}
	w.resetLocked(ctx)
	onExit := w.onExit
	w.mu.Unlock()

	if onExit != nil {
		onExit()
	}
	return true, nil
}

// Exit abandons the booking and clears the saved state.
func (w *Wizard) Exit(ctx context.Context) {
	w.mu.Lock()
	w.resetLocked(ctx)
	onExit := w.onExit
	w.mu.Unlock()
	if onExit != nil {
		onExit()
	}
}

func (w *Wizard) resetLocked(ctx context.Context) {
	w.slotTask.Cancel()
	w.slotTask = nil
	w.store.Clear(ctx)

	fixed := w.sel.Professional
	w.sel = booking.Selection{}
	if !w.seq.Contains(StepProfessional) {
		w.sel.Professional = fixed
	}
	w.store.ClearConfirmed(ctx)
	w.step = w.seq.First()
	w.slots = nil
	w.slotsLoading = false
	w.errors = nil
	w.submitErr = ""
	w.confirmed = nil
	w.lastActive = w.clock.Now()
	w.metrics.ObserveTransition("exit", w.step.String())
	w.logger.Info("wizard: exited")
}

// GoToStep jumps back to a strictly earlier visible step.
func (w *Wizard) GoToStep(ctx context.Context, target Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepSubmitted {
		return fmt.Errorf("%w: booking already submitted", ErrInvalidStep)
	}
	if !w.seq.Before(target, w.step) {
		return fmt.Errorf("%w: %s is not before %s", ErrInvalidStep, target, w.step)
	}
	w.step = target
	w.submitErr = ""
	w.metrics.ObserveTransition("jump", target.String())
	w.changedLocked(ctx)
	return nil
}

// History returns past submissions, newest first.
func (w *Wizard) History(ctx context.Context) []booking.HistoryItem {
	return w.store.History(ctx)
}

// ClearHistory removes all past submissions.
func (w *Wizard) ClearHistory(ctx context.Context) {
	w.store.ClearHistory(ctx)
}

// Rebook starts a new booking from a history entry: its services and
// professional are restored and the client lands on the date step.
func (w *Wizard) Rebook(ctx context.Context, historyID string) error {
	var item *booking.HistoryItem
	for _, h := range w.store.History(ctx) {
		if h.ID == historyID {
			item = &h
			break
		}
	}
	if item == nil {
		return fmt.Errorf("%w: %s", ErrHistoryNotFound, historyID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.slotTask.Cancel()
	w.slotTask = nil

	fixed := w.sel.Professional
	w.sel = booking.Selection{}
	w.confirmed = nil
	w.store.ClearConfirmed(ctx)
	w.submitErr = ""
	services := make([]catalog.Service, 0, len(item.Services))
	for _, ref := range item.Services {
		if svc, err := w.catalog.Service(ref.ID); err == nil {
			services = append(services, svc)
		}
	}
	w.setServicesLocked(services)

	if !w.seq.Contains(StepProfessional) {
		w.sel.Professional = fixed
	} else if item.ProfessionalID != 0 {
		if member, err := w.catalog.Member(item.ProfessionalID); err == nil {
			w.sel.Professional = &member
		}
	}

	w.step = w.reachableStepLocked(StepDateTime)
	w.refreshSlotsLocked()
	w.metrics.ObserveTransition("rebook", w.step.String())
	w.changedLocked(ctx)
	return nil
}
