package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/wolfman30/pitaya-nails-booking/internal/booking"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

const (
	// StateKey holds the in-progress booking.
	StateKey = "pitayaNailsBookingState"
	// HistoryKey holds the bounded list of past bookings.
	HistoryKey = "pitayaNailsBookingHistory"
	// ConfirmedKey holds the last submitted appointment.
	ConfirmedKey = "pitayaNailsBookingConfirmed"
	// MaxHistory is the number of history entries kept.
	MaxHistory = 5
)

// Record is the persisted in-progress booking.
type Record struct {
	CurrentStep int `json:"currentStep"`
	booking.Selection
}

// Store reads and writes booking state through a KV. Storage failures are
// logged and otherwise behave like an absent record or a skipped write.
type Store struct {
	kv     KV
	scope  string
	logger *logging.Logger
}

// NewStore wraps kv.
func NewStore(kv KV, logger *logging.Logger) *Store {
	if kv == nil {
		kv = NewMemoryKV()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Scoped returns a store whose keys are prefixed by id, one per visitor.
func (s *Store) Scoped(id string) *Store {
	return &Store{kv: s.kv, scope: id, logger: s.logger.With("session_id", id)}
}

func (s *Store) key(name string) string {
	if s.scope == "" {
		return name
	}
	return s.scope + ":" + name
}

// Save writes the in-progress record.
func (s *Store) Save(ctx context.Context, rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("session: encode state", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key(StateKey), data); err != nil {
		s.logger.Error("session: save state", "error", err)
	}
}

// Load returns the saved record. Missing or unreadable records report false.
func (s *Store) Load(ctx context.Context) (Record, bool) {
	data, err := s.kv.Get(ctx, s.key(StateKey))
	if errors.Is(err, ErrNotFound) {
		return Record{}, false
	}
	if err != nil {
		s.logger.Error("session: load state", "error", err)
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("session: discarding malformed state", "error", err)
		return Record{}, false
	}
	if rec.CurrentStep < 0 {
		s.logger.Warn("session: discarding state with negative step", "step", rec.CurrentStep)
		return Record{}, false
	}
	return rec, true
}

// Clear removes the in-progress record. Clearing an absent record is a no-op.
func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key(StateKey)); err != nil {
		s.logger.Error("session: clear state", "error", err)
	}
}

// SaveConfirmed writes the last submitted appointment.
func (s *Store) SaveConfirmed(ctx context.Context, appt booking.Appointment) {
	data, err := json.Marshal(appt)
	if err != nil {
		s.logger.Error("session: encode confirmed booking", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key(ConfirmedKey), data); err != nil {
		s.logger.Error("session: save confirmed booking", "error", err)
	}
}

// LoadConfirmed returns the last submitted appointment, if any.
func (s *Store) LoadConfirmed(ctx context.Context) (booking.Appointment, bool) {
	data, err := s.kv.Get(ctx, s.key(ConfirmedKey))
	if errors.Is(err, ErrNotFound) {
		return booking.Appointment{}, false
	}
	if err != nil {
		s.logger.Error("session: load confirmed booking", "error", err)
		return booking.Appointment{}, false
	}
	var appt booking.Appointment
	if err := json.Unmarshal(data, &appt); err != nil || appt.ID == "" {
		s.logger.Warn("session: discarding malformed confirmed booking", "error", err)
		return booking.Appointment{}, false
	}
	return appt, true
}

// ClearConfirmed forgets the last submitted appointment.
func (s *Store) ClearConfirmed(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key(ConfirmedKey)); err != nil {
		s.logger.Error("session: clear confirmed booking", "error", err)
	}
}

// History returns past bookings, newest first.
func (s *Store) History(ctx context.Context) []booking.HistoryItem {
	data, err := s.kv.Get(ctx, s.key(HistoryKey))
	if errors.Is(err, ErrNotFound) {
		return []booking.HistoryItem{}
	}
	if err != nil {
		s.logger.Error("session: load history", "error", err)
		return []booking.HistoryItem{}
	}
	var items []booking.HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("session: discarding malformed history", "error", err)
		return []booking.HistoryItem{}
	}
	if items == nil {
		items = []booking.HistoryItem{}
	}
	return items
}

// AppendHistory prepends item and keeps the newest MaxHistory entries.
func (s *Store) AppendHistory(ctx context.Context, item booking.HistoryItem) {
	items := append([]booking.HistoryItem{item}, s.History(ctx)...)
	if len(items) > MaxHistory {
		items = items[:MaxHistory]
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("session: encode history", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key(HistoryKey), data); err != nil {
		s.logger.Error("session: save history", "error", err)
	}
}

// ClearHistory removes the whole history log.
func (s *Store) ClearHistory(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key(HistoryKey)); err != nil {
		s.logger.Error("session: clear history", "error", err)
	}
}
