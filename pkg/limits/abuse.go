package limits

import "time"

// Monitor is the abuse counter. It observes request volume per key over a
// fixed monitoring window and signals when a key crosses the configured
// threshold. It is purely observational: it never blocks, delays, or denies
// a request.
type Monitor struct {
	threshold int
	window    time.Duration
	state     *shardedKeys[abuseEntry]

	now func() time.Time
}

type abuseEntry struct {
	windowStart  time.Time
	count        int
	lastNotified time.Time
}

// Observation is the result of recording one request against the monitor.
type Observation struct {
	// Count is the key's request count within the current window,
	// including this request.
	Count int

	// Notify reports that the threshold was crossed and a notification
	// is due. Notifications are debounced: at most one per key per
	// window, however many requests keep arriving.
	Notify bool
}

// NewMonitor creates an abuse monitor. A zero threshold disables
// notifications; counting still happens.
func NewMonitor(threshold int, window time.Duration) *Monitor {
	return &Monitor{
		threshold: threshold,
		window:    window,
		state:     newShardedKeys[abuseEntry](),
		now:       time.Now,
	}
}

// Observe records one request for the key. When the window has expired the
// count resets to 1 and a new window starts; otherwise the count
// increments. Notify is set when the count exceeds the threshold and the
// key's last notification is at least one window old.
func (m *Monitor) Observe(key string) Observation {
	var obs Observation
	m.state.update(key, func(e abuseEntry) abuseEntry {
		now := m.now()

		if e.windowStart.IsZero() || now.Sub(e.windowStart) > m.window {
			e.windowStart = now
			e.count = 1
		} else {
			e.count++
		}

		obs.Count = e.count
		if m.threshold > 0 && e.count > m.threshold && now.Sub(e.lastNotified) >= m.window {
			e.lastNotified = now
			obs.Notify = true
		}
		return e
	})
	return obs
}
