package scheduler

// MetricHooks carries the metric callbacks injected by main.
// All fields are optional; nil hooks become no-ops.
type MetricHooks struct {
	OnRun         func()
	OnEmailSent   func()
	OnEmailFailed func()
}

func (h *MetricHooks) fill() {
	if h.OnRun == nil {
		h.OnRun = func() {}
	}
	if h.OnEmailSent == nil {
		h.OnEmailSent = func() {}
	}
	if h.OnEmailFailed == nil {
		h.OnEmailFailed = func() {}
	}
}
