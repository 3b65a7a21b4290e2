package limits

import (
	"sync"
	"testing"
	"time"
)

// monitorAt returns a monitor with a controllable clock.
func monitorAt(threshold int, window time.Duration) (*Monitor, *time.Time) {
	m := NewMonitor(threshold, window)
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMonitor_CountsWithinWindow(t *testing.T) {
	m, _ := monitorAt(100, time.Minute)

	for i := 1; i <= 5; i++ {
		obs := m.Observe("k1")
		if obs.Count != i {
			t.Errorf("observation %d: count = %d", i, obs.Count)
		}
		if obs.Notify {
			t.Errorf("observation %d: notify below threshold", i)
		}
	}
}

func TestMonitor_WindowReset(t *testing.T) {
	m, now := monitorAt(100, time.Minute)

	m.Observe("k1")
	m.Observe("k1")
	*now = now.Add(2 * time.Minute)

	if obs := m.Observe("k1"); obs.Count != 1 {
		t.Errorf("count = %d after window expiry, want 1", obs.Count)
	}
}

func TestMonitor_NotifyOnceSuppressedWithinWindow(t *testing.T) {
	m, now := monitorAt(3, time.Minute)

	var notifications int
	for i := 0; i < 10; i++ {
		if m.Observe("k1").Notify {
			notifications++
		}
	}
	if notifications != 1 {
		t.Errorf("notifications = %d within one window, want exactly 1 (debounced)", notifications)
	}

	// A full window later the next breach notifies again.
	*now = now.Add(2 * time.Minute)
	var again int
	for i := 0; i < 10; i++ {
		if m.Observe("k1").Notify {
			again++
		}
	}
	if again != 1 {
		t.Errorf("notifications = %d in second window, want 1", again)
	}
}

func TestMonitor_KeysIndependent(t *testing.T) {
	m, _ := monitorAt(3, time.Minute)

	for i := 0; i < 4; i++ {
		m.Observe("k1")
	}
	if obs := m.Observe("k2"); obs.Count != 1 || obs.Notify {
		t.Errorf("k2 observation %+v influenced by k1", obs)
	}
}

func TestMonitor_ZeroThresholdNeverNotifies(t *testing.T) {
	m, _ := monitorAt(0, time.Minute)
	for i := 0; i < 100; i++ {
		if m.Observe("k1").Notify {
			t.Fatal("zero threshold must disable notifications")
		}
	}
}

func TestMonitor_ConcurrentObserve(t *testing.T) {
	m := NewMonitor(1000000, time.Minute)

	const workers = 8
	const perWorker = 200
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Observe("shared")
				m.Observe("other")
			}
		}()
	}
	wg.Wait()

	if obs := m.Observe("shared"); obs.Count != workers*perWorker+1 {
		t.Errorf("count = %d, want %d (no lost updates)", obs.Count, workers*perWorker+1)
	}
}
