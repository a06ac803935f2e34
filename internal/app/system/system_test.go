package system

import (
	"context"
	"fmt"
	"testing"
)

type recordingService struct {
	name    string
	events  *[]string
	failing bool
}

func (r *recordingService) Name() string { return r.name }

func (r *recordingService) Start(context.Context) error {
	if r.failing {
		return fmt.Errorf("%s refuses to start", r.name)
	}
	*r.events = append(*r.events, "start:"+r.name)
	return nil
}

func (r *recordingService) Stop(context.Context) error {
	*r.events = append(*r.events, "stop:"+r.name)
	return nil
}

func TestManager_StartStopOrder(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"store", "worker", "api"} {
		if err := m.Register(&recordingService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:store", "start:worker", "start:api", "stop:api", "stop:worker", "stop:store"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s (all: %v)", i, want[i], events[i], events)
		}
	}
}

func TestManager_DuplicateName(t *testing.T) {
	var events []string
	m := NewManager()
	if err := m.Register(&recordingService{name: "worker", events: &events}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(&recordingService{name: "worker", events: &events}); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestManager_StartFailureUnwindsStarted(t *testing.T) {
	var events []string
	m := NewManager()
	_ = m.Register(&recordingService{name: "first", events: &events})
	_ = m.Register(&recordingService{name: "second", events: &events, failing: true})

	if err := m.Start(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}

	want := []string{"start:first", "stop:first"}
	if len(events) != len(want) || events[0] != want[0] || events[1] != want[1] {
		t.Fatalf("expected unwind %v, got %v", want, events)
	}
}

func TestNoopService(t *testing.T) {
	svc := NoopService{ServiceName: "placeholder"}
	if svc.Name() != "placeholder" {
		t.Fatalf("unexpected name %s", svc.Name())
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("noop start: %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("noop stop: %v", err)
	}
}
