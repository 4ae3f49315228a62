package tagctl_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"reactivos/internal/simulator"
	"reactivos/pkg/tagctl"
)

var testRecord = tagctl.ReactiveRecord{
	Producto:     "Metanol",
	Numero:       "001",
	Marca:        "MarcaX",
	Codigo:       "C-100",
	Presentacion: "Botella 1L",
	Lote:         "L2024",
	Vencimiento:  "2026-01-01",
}

// fastSpecs таблица команд с укороченными задержками.
func fastSpecs(timeout time.Duration) tagctl.Specs {
	specs := tagctl.DefaultSpecs()
	for k, s := range specs {
		specs[k] = s.WithTiming(10*time.Millisecond, timeout)
	}
	return specs
}

type noteLog struct {
	mu    sync.Mutex
	notes []tagctl.Note
}

func (l *noteLog) add(n tagctl.Note) {
	l.mu.Lock()
	l.notes = append(l.notes, n)
	l.mu.Unlock()
}

func (l *noteLog) find(kind tagctl.NoteKind) []tagctl.Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []tagctl.Note
	for _, n := range l.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func newClient(t *testing.T, sim *simulator.Controller, timeout time.Duration, notes *noteLog) *tagctl.Client {
	t.Helper()
	cfg := tagctl.Config{
		ReadTimeout:  100 * time.Millisecond,
		PollInterval: 20 * time.Millisecond,
		Specs:        fastSpecs(timeout),
		Opener:       sim.Open,
	}
	if notes != nil {
		cfg.OnNote = notes.add
	}
	c, err := tagctl.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func connected(t *testing.T, sim *simulator.Controller, timeout time.Duration, notes *noteLog) *tagctl.Client {
	t.Helper()
	c := newClient(t, sim, timeout, notes)
	if err := c.Connect("COM8", 115200); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { c.Disconnect() })
	return c
}

func TestWriteSuccess(t *testing.T) {
	sim := simulator.New(simulator.Script{
		"WRITE": {{After: 500 * time.Millisecond, Line: "Datos guardados exitosamente"}},
	})
	c := connected(t, sim, 3*time.Second, nil)

	res := c.RunCommand(context.Background(), tagctl.CommandWrite, &testRecord)
	if res.Outcome.Kind != tagctl.OutcomeSuccess {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if got := res.Lines(); !reflect.DeepEqual(got, []string{"Datos guardados exitosamente"}) {
		t.Errorf("lines = %q", got)
	}
	want := []string{"WRITE", "Metanol,001,MarcaX,C-100,Botella 1L,L2024,2026-01-01"}
	if got := sim.Received(); !reflect.DeepEqual(got, want) {
		t.Errorf("received = %q, want %q", got, want)
	}
	if recs := sim.Records(); len(recs) != 1 || recs[0] != testRecord {
		t.Errorf("records = %+v", recs)
	}
	if res.Duration() >= 3*time.Second {
		t.Errorf("session ran until deadline: %v", res.Duration())
	}
}

func TestOutTwoLinesInOrder(t *testing.T) {
	sim := simulator.New(simulator.Script{
		"OUT": {
			{After: 100 * time.Millisecond, Line: "Fecha de baja registrada"},
			{After: 300 * time.Millisecond, Line: "Lectura completa."},
		},
	})
	c := connected(t, sim, 2*time.Second, nil)

	res := c.RunCommand(context.Background(), tagctl.CommandOut, nil)
	if res.Outcome.Kind != tagctl.OutcomeSuccess {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	want := []string{"Fecha de baja registrada", "Lectura completa."}
	if got := res.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if !reflect.DeepEqual(res.Outcome.Markers, []string{"baja date registered"}) {
		t.Errorf("markers = %v", res.Outcome.Markers)
	}
}

func TestTrackPartialSuccess(t *testing.T) {
	sim := simulator.New(simulator.Script{
		"TRACK": {{After: 50 * time.Millisecond, Line: "Peso: 12.3g"}},
	})
	c := connected(t, sim, 400*time.Millisecond, nil)

	res := c.RunCommand(context.Background(), tagctl.CommandTrack, nil)
	if res.Outcome.Kind != tagctl.OutcomePartialSuccess {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Outcome.Reason != "weight detected, confirmation missing" {
		t.Errorf("reason = %q", res.Outcome.Reason)
	}
	if got := res.Lines(); !reflect.DeepEqual(got, []string{"Peso: 12.3g"}) {
		t.Errorf("lines = %q", got)
	}
}

func TestReadTimeout(t *testing.T) {
	sim := simulator.New(simulator.Script{"READ": nil})
	c := connected(t, sim, 300*time.Millisecond, nil)

	res := c.RunCommand(context.Background(), tagctl.CommandRead, nil)
	if res.Outcome.Kind != tagctl.OutcomeTimeout {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if len(res.Transcript) != 0 {
		t.Errorf("transcript = %+v", res.Transcript)
	}
	if res.Duration() < 300*time.Millisecond {
		t.Errorf("returned before deadline: %v", res.Duration())
	}
}

func TestNotConnected(t *testing.T) {
	sim := simulator.New(simulator.DefaultScript())
	c := newClient(t, sim, time.Second, nil)

	res := c.RunCommand(context.Background(), tagctl.CommandRead, nil)
	if res.Outcome.Kind != tagctl.OutcomeFailure || !errors.Is(res.Outcome.Err, tagctl.ErrNotConnected) {
		t.Fatalf("outcome = %s err=%v", res.Outcome, res.Outcome.Err)
	}
	if sim.Resets() != 0 || len(sim.Received()) != 0 {
		t.Errorf("port touched: resets=%d received=%q", sim.Resets(), sim.Received())
	}
}

func TestMissingPayload(t *testing.T) {
	sim := simulator.New(simulator.DefaultScript())
	c := connected(t, sim, time.Second, nil)

	res := c.RunCommand(context.Background(), tagctl.CommandWrite, nil)
	if !errors.Is(res.Outcome.Err, tagctl.ErrMissingPayload) {
		t.Fatalf("err = %v", res.Outcome.Err)
	}
	if len(sim.Received()) != 0 {
		t.Errorf("received = %q", sim.Received())
	}
}

func TestSuccessStopsReading(t *testing.T) {
	sim := simulator.New(simulator.Script{
		"READ": {
			{After: 50 * time.Millisecond, Line: "Lectura completa"},
			{After: 150 * time.Millisecond, Line: "Linea tardia"},
		},
	})
	c := connected(t, sim, 2*time.Second, nil)

	res := c.RunCommand(context.Background(), tagctl.CommandRead, nil)
	if res.Outcome.Kind != tagctl.OutcomeSuccess {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if got := res.Lines(); !reflect.DeepEqual(got, []string{"Lectura completa"}) {
		t.Errorf("lines = %q", got)
	}

	time.Sleep(250 * time.Millisecond)
	if sim.Pending() == 0 {
		t.Error("late line was consumed after success")
	}
}

func TestStaleInputCleared(t *testing.T) {
	sim := simulator.New(simulator.Script{"READ": nil})
	c := connected(t, sim, 200*time.Millisecond, nil)

	sim.Emit("Lectura completa")
	res := c.RunCommand(context.Background(), tagctl.CommandRead, nil)
	if res.Outcome.Kind != tagctl.OutcomeTimeout {
		t.Fatalf("stale line counted: %s", res.Outcome)
	}
	if sim.Resets() != 1 {
		t.Errorf("resets = %d, want 1", sim.Resets())
	}
}

func TestWriteIOError(t *testing.T) {
	sim := simulator.New(simulator.DefaultScript())
	c := connected(t, sim, time.Second, nil)
	sim.OnWrite = func([]byte) error { return errors.New("device removed") }

	res := c.RunCommand(context.Background(), tagctl.CommandOut, nil)
	if res.Outcome.Kind != tagctl.OutcomeFailure {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	var ioe *tagctl.IOError
	if !errors.As(res.Outcome.Err, &ioe) || ioe.Op != "write" {
		t.Errorf("err = %v, want write IOError", res.Outcome.Err)
	}
}

func TestCancelledDuringDelay(t *testing.T) {
	sim := simulator.New(simulator.DefaultScript())
	cfg := tagctl.Config{
		Opener: sim.Open,
		Specs:  tagctl.DefaultSpecs(),
	}
	c, err := tagctl.NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Connect("COM8", 115200); err != nil {
		t.Fatal(err)
	}
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := c.RunCommand(ctx, tagctl.CommandTrack, nil)
	if res.Outcome.Kind != tagctl.OutcomeCancelled {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if !errors.Is(res.Outcome.Err, context.DeadlineExceeded) {
		t.Errorf("err = %v", res.Outcome.Err)
	}
	if res.Duration() > time.Second {
		t.Errorf("cancellation took %v", res.Duration())
	}
}

func TestSessionNotes(t *testing.T) {
	sim := simulator.New(simulator.Script{
		"READ": {
			{After: 20 * time.Millisecond, Line: "Fecha de alta registrada"},
			{After: 60 * time.Millisecond, Line: "Lectura completa"},
		},
	})
	notes := &noteLog{}
	c := connected(t, sim, time.Second, notes)

	res := c.RunCommand(context.Background(), tagctl.CommandRead, nil)
	if res.Outcome.Kind != tagctl.OutcomeSuccess {
		t.Fatalf("outcome = %s", res.Outcome)
	}

	sent := notes.find(tagctl.NoteSent)
	if len(sent) != 1 || sent[0].Text != "Enviando comando 'READ'..." {
		t.Errorf("sent notes = %+v", sent)
	}
	markers := notes.find(tagctl.NoteMarker)
	if len(markers) != 1 || markers[0].Marker != "alta date registered" {
		t.Errorf("marker notes = %+v", markers)
	}
	if lines := notes.find(tagctl.NoteLine); len(lines) != 2 {
		t.Errorf("line notes = %d, want 2", len(lines))
	}
	outs := notes.find(tagctl.NoteOutcome)
	if len(outs) != 1 || outs[0].Text != "READ: Success" || outs[0].Command != tagctl.CommandRead {
		t.Errorf("outcome notes = %+v", outs)
	}
	if st := notes.find(tagctl.NoteState); len(st) != 1 {
		t.Errorf("state notes = %d, want 1", len(st))
	}
}

func TestSessionStates(t *testing.T) {
	sim := simulator.New(simulator.Script{
		"TRACK": {{After: 20 * time.Millisecond, Line: "Peso: 1.0g"}},
	})
	c := connected(t, sim, 200*time.Millisecond, nil)
	spec, _ := c.Spec(tagctl.CommandTrack)

	s := tagctl.NewSession(c.Connection(), spec, nil, tagctl.SessionOptions{PollInterval: 20 * time.Millisecond})
	if s.State() != tagctl.SessionIdle {
		t.Fatalf("initial state = %s", s.State())
	}
	s.Run(context.Background())
	if s.State() != tagctl.SessionPartialSucceeded || !s.State().Terminal() {
		t.Errorf("final state = %s", s.State())
	}
}
