package monitor

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

// fakeLister список портов, меняемый тестом.
type fakeLister struct {
	mu    sync.Mutex
	ports []string
	err   error
	calls int
}

func (f *fakeLister) set(ports []string, err error) {
	f.mu.Lock()
	f.ports, f.err = ports, err
	f.mu.Unlock()
}

func (f *fakeLister) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return slices.Clone(f.ports), f.err
}

func TestPollReportsChangesOnly(t *testing.T) {
	lister := &fakeLister{ports: []string{"COM8", "COM3"}}
	s := NewService(lister.List, Config{}, nil)

	var got [][]string
	s.SetUpdateCallback(func(p []string) { got = append(got, p) })

	s.Poll()
	s.Poll()
	lister.set([]string{"COM3"}, nil)
	s.Poll()

	want := [][]string{{"COM3", "COM8"}, {"COM3"}}
	if len(got) != len(want) {
		t.Fatalf("callbacks = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("callback %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPollErrorKeepsPorts(t *testing.T) {
	lister := &fakeLister{ports: []string{"COM1"}}
	s := NewService(lister.List, Config{}, nil)
	s.Poll()

	called := false
	s.SetUpdateCallback(func([]string) { called = true })
	lister.set(nil, errors.New("enumeration failed"))
	s.Poll()

	if called {
		t.Error("callback invoked on enumeration error")
	}
	if got := s.CurrentPorts(); !slices.Equal(got, []string{"COM1"}) {
		t.Errorf("CurrentPorts() = %v", got)
	}
}

func TestStartStop(t *testing.T) {
	lister := &fakeLister{ports: []string{"COM4"}}
	s := NewService(lister.List, Config{PollInterval: 5 * time.Millisecond}, nil)

	changed := make(chan []string, 4)
	s.SetUpdateCallback(func(p []string) { changed <- p })
	s.Start()
	defer s.Stop()

	select {
	case p := <-changed:
		if !slices.Equal(p, []string{"COM4"}) {
			t.Errorf("first callback = %v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no callback after Start")
	}

	lister.set([]string{"COM4", "COM5"}, nil)
	select {
	case p := <-changed:
		if !slices.Equal(p, []string{"COM4", "COM5"}) {
			t.Errorf("second callback = %v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("port change not detected")
	}

	s.Stop()
	lister.mu.Lock()
	before := lister.calls
	lister.mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	lister.mu.Lock()
	after := lister.calls
	lister.mu.Unlock()
	if after > before+1 {
		t.Errorf("polling continued after Stop: %d -> %d calls", before, after)
	}
}

func TestPauseSkipsPolling(t *testing.T) {
	lister := &fakeLister{ports: []string{"COM1"}}
	s := NewService(lister.List, Config{PollInterval: 5 * time.Millisecond}, nil)
	s.Pause()
	s.Start()
	defer s.Stop()

	time.Sleep(40 * time.Millisecond)
	lister.mu.Lock()
	calls := lister.calls
	lister.mu.Unlock()
	// только начальный опрос при старте
	if calls != 1 {
		t.Errorf("calls while paused = %d, want 1", calls)
	}

	s.Resume()
	time.Sleep(40 * time.Millisecond)
	lister.mu.Lock()
	calls = lister.calls
	lister.mu.Unlock()
	if calls < 2 {
		t.Errorf("polling did not resume: calls = %d", calls)
	}
}
