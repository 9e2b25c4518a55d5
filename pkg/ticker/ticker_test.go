package ticker

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/camera"
)

func TestEmitOrder(t *testing.T) {
	var m Manager
	var calls []string
	m.Subscribe(UpdaterFunc(func(Frame) { calls = append(calls, "camera") }))
	m.Subscribe(UpdaterFunc(func(Frame) { calls = append(calls, "globe") }))

	m.Emit(Frame{})
	if len(calls) != 2 || calls[0] != "camera" || calls[1] != "globe" {
		t.Errorf("calls = %v; want [camera globe]", calls)
	}
}

func TestTickAccumulatesTime(t *testing.T) {
	var m Manager
	var last Frame
	m.Subscribe(UpdaterFunc(func(f Frame) { last = f }))

	pose := camera.LookAt(r3.Vector{Z: 5}, r3.Vector{})
	m.Tick(16*time.Millisecond, pose)
	m.Tick(16*time.Millisecond, pose)
	m.Tick(-time.Second, pose)

	if last.Time != 32*time.Millisecond {
		t.Errorf("Time = %v; want 32ms", last.Time)
	}
	if last.Delta != 0 {
		t.Errorf("negative delta passed through: %v", last.Delta)
	}
	if last.Camera != pose {
		t.Errorf("Camera = %+v; want %+v", last.Camera, pose)
	}
}

func TestUnsubscribe(t *testing.T) {
	var m Manager
	n := 0
	id := m.Subscribe(UpdaterFunc(func(Frame) { n++ }))
	m.Emit(Frame{})
	m.Unsubscribe(id)
	m.Unsubscribe(id)
	m.Emit(Frame{})
	if n != 1 {
		t.Errorf("updater called %d times; want 1", n)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d; want 0", m.Len())
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	var m Manager
	var second Subscription
	secondCalls := 0
	m.Subscribe(UpdaterFunc(func(Frame) { m.Unsubscribe(second) }))
	second = m.Subscribe(UpdaterFunc(func(Frame) { secondCalls++ }))
	m.Subscribe(UpdaterFunc(func(Frame) {}))

	m.Emit(Frame{})
	if secondCalls != 0 {
		t.Errorf("updater removed earlier in the frame was still called")
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d; want 2", m.Len())
	}
	m.Emit(Frame{})
	if secondCalls != 0 {
		t.Errorf("removed updater called on the next frame")
	}
}

func TestEmitRecoversFromPanickingUpdater(t *testing.T) {
	var m Manager
	id := m.Subscribe(UpdaterFunc(func(Frame) { panic("boom") }))
	func() {
		defer func() { _ = recover() }()
		m.Emit(Frame{})
	}()
	if m.emitting {
		t.Fatal("manager still emitting after a panicking updater")
	}
	m.Unsubscribe(id)
	if len(m.entries) != 0 {
		t.Errorf("entries = %d after Unsubscribe; want 0", len(m.entries))
	}
}

func TestDestroy(t *testing.T) {
	var m Manager
	m.Subscribe(UpdaterFunc(func(Frame) { t.Fatal("updater called after Destroy") }))
	m.Destroy()
	m.Emit(Frame{})
	if m.Len() != 0 {
		t.Errorf("Len = %d after Destroy", m.Len())
	}
}
