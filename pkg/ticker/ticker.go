// Package ticker fans one frame tick out to every subscribed updater.
// It is driven from the render loop and takes no locks.
package ticker

import (
	"time"

	"github.com/sudorandom/globe-lines/pkg/camera"
)

// Frame is what every updater sees once per rendered frame. Camera is the
// pose after camera controls ran for this frame.
type Frame struct {
	Time   time.Duration
	Delta  time.Duration
	Camera camera.Pose
}

type Updater interface {
	Update(Frame)
}

// UpdaterFunc adapts a plain function to Updater.
type UpdaterFunc func(Frame)

func (f UpdaterFunc) Update(fr Frame) { f(fr) }

// Subscription identifies one Subscribe call.
type Subscription uint64

type entry struct {
	id Subscription
	u  Updater
}

// Manager calls its updaters in subscription order.
type Manager struct {
	entries  []entry
	nextID   Subscription
	elapsed  time.Duration
	emitting bool
	pending  []Subscription
}

func (m *Manager) Subscribe(u Updater) Subscription {
	m.nextID++
	m.entries = append(m.entries, entry{id: m.nextID, u: u})
	return m.nextID
}

// Unsubscribe removes a subscription. Removing one during Emit takes effect
// once the current frame has been delivered; the removed updater is not
// called again within that frame if it has not run yet.
func (m *Manager) Unsubscribe(id Subscription) {
	if m.emitting {
		m.pending = append(m.pending, id)
	}
	for i, e := range m.entries {
		if e.id == id {
			if m.emitting {
				m.entries[i].u = nil
				return
			}
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// Len is the number of live subscriptions.
func (m *Manager) Len() int {
	n := 0
	for _, e := range m.entries {
		if e.u != nil {
			n++
		}
	}
	return n
}

// Tick builds the next frame from dt and the current camera pose and emits it.
func (m *Manager) Tick(dt time.Duration, pose camera.Pose) Frame {
	if dt < 0 {
		dt = 0
	}
	m.elapsed += dt
	f := Frame{Time: m.elapsed, Delta: dt, Camera: pose}
	m.Emit(f)
	return f
}

func (m *Manager) Emit(f Frame) {
	m.emitting = true
	func() {
		defer func() { m.emitting = false }()
		for i := 0; i < len(m.entries); i++ {
			if u := m.entries[i].u; u != nil {
				u.Update(f)
			}
		}
	}()

	if len(m.pending) == 0 {
		return
	}
	live := m.entries[:0]
	for _, e := range m.entries {
		if e.u != nil {
			live = append(live, e)
		}
	}
	m.entries = live
	m.pending = m.pending[:0]
}

// Destroy drops every subscription.
func (m *Manager) Destroy() {
	m.entries = nil
	m.pending = nil
}
