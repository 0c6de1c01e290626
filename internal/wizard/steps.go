package wizard

// Step is a wizard screen. The numeric value is what gets persisted as
// currentStep, so values are stable even when steps are skipped.
type Step int

const (
	StepPreferences Step = iota
	StepProfessional
	StepDateTime
	StepClientDetails
	StepReview
	StepConfirm
	StepSubmitted
)

var stepNames = map[Step]string{
	StepPreferences:   "preferences",
	StepProfessional:  "professional_selection",
	StepDateTime:      "date_time",
	StepClientDetails: "client_details",
	StepReview:        "review",
	StepConfirm:       "confirm",
	StepSubmitted:     "submitted",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Settings are the deployment switches steps can be gated on.
type Settings struct {
	SkipProfessional    bool
	DefaultProfessional int
}

// StepDef is one entry of the configurable sequence. A nil Include always
// includes the step.
type StepDef struct {
	Step    Step
	Include func(Settings) bool
}

// DefaultSteps is the full flow with professional selection gated on
// SkipProfessional.
var DefaultSteps = []StepDef{
	{Step: StepPreferences},
	{Step: StepProfessional, Include: func(s Settings) bool { return !s.SkipProfessional }},
	{Step: StepDateTime},
	{Step: StepClientDetails},
	{Step: StepReview},
	{Step: StepConfirm},
	{Step: StepSubmitted},
}

// Sequence is the ordered list of visible steps.
type Sequence struct {
	steps []Step
}

// BuildSequence evaluates each definition's predicate against settings.
func BuildSequence(defs []StepDef, settings Settings) Sequence {
	seq := Sequence{steps: make([]Step, 0, len(defs))}
	for _, def := range defs {
		if def.Include == nil || def.Include(settings) {
			seq.steps = append(seq.steps, def.Step)
		}
	}
	return seq
}

// Steps returns a copy of the visible steps.
func (q Sequence) Steps() []Step {
	return append([]Step(nil), q.steps...)
}

// First is the entry step.
func (q Sequence) First() Step {
	if len(q.steps) == 0 {
		return StepPreferences
	}
	return q.steps[0]
}

// Index is the position of step, or -1 when it is not visible.
func (q Sequence) Index(step Step) int {
	for i, s := range q.steps {
		if s == step {
			return i
		}
	}
	return -1
}

// Contains reports whether step is visible.
func (q Sequence) Contains(step Step) bool { return q.Index(step) >= 0 }

// Next returns the step after current.
func (q Sequence) Next(current Step) (Step, bool) {
	i := q.Index(current)
	if i < 0 || i+1 >= len(q.steps) {
		return current, false
	}
	return q.steps[i+1], true
}

// Prev returns the step before current.
func (q Sequence) Prev(current Step) (Step, bool) {
	i := q.Index(current)
	if i <= 0 {
		return current, false
	}
	return q.steps[i-1], true
}

// Before reports whether a comes strictly earlier than b.
func (q Sequence) Before(a, b Step) bool {
	ia, ib := q.Index(a), q.Index(b)
	return ia >= 0 && ib >= 0 && ia < ib
}

// snap maps a step that is not visible to the next visible one.
func (q Sequence) snap(step Step) Step {
	if q.Contains(step) {
		return step
	}
	for _, s := range q.steps {
		if s > step {
			return s
		}
	}
	return q.First()
}
