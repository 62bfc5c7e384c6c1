package engine

import "sync"

// ProgressFunc receives mapped progress values from a Reporter.
type ProgressFunc func(value float64)

// Reporter maps a cumulative units-completed counter onto a bounded
// output range and fans the mapped value out to listeners. One
// reporter serves one batch operation; a new operation gets a new
// reporter.
type Reporter struct {
	min   float64
	max   float64
	total int

	mu        sync.Mutex
	completed int
	listeners []ProgressFunc
}

// NewReporter builds a reporter mapping [0, total] completed units
// onto [min, max]. A total of zero reports max immediately on the
// first Report call: an empty operation is complete, not stuck.
func NewReporter(minVal, maxVal float64, total int, listeners ...ProgressFunc) *Reporter {
	if maxVal < minVal {
		maxVal = minVal
	}
	return &Reporter{
		min:       minVal,
		max:       maxVal,
		total:     total,
		listeners: listeners,
	}
}

// Report records a cumulative units-completed value and emits the
// mapped output to all listeners. Values are clamped to [min, max]
// and never move backwards: a stale smaller cumulative value keeps
// the previous high-water mark. Listeners run under the reporter's
// lock so delivered values stay non-decreasing even when concurrent
// units report out of order; they must be fast and must not call back
// into the reporter.
func (r *Reporter) Report(unitsCompleted int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if unitsCompleted > r.completed {
		r.completed = unitsCompleted
	}
	value := r.valueLocked()
	for _, emit := range r.listeners {
		emit(value)
	}
}

// Value returns the current mapped progress value.
func (r *Reporter) Value() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLocked()
}

// Completed returns the cumulative units-completed high-water mark.
func (r *Reporter) Completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

func (r *Reporter) valueLocked() float64 {
	if r.total <= 0 {
		return r.max
	}
	value := r.min + (float64(r.completed)/float64(r.total))*(r.max-r.min)
	if value < r.min {
		return r.min
	}
	if value > r.max {
		return r.max
	}
	return value
}
