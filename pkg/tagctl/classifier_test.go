package tagctl

import (
	"reflect"
	"testing"
)

func TestClassifier(t *testing.T) {
	specs := DefaultSpecs()

	tests := []struct {
		name        string
		kind        CommandKind
		lines       []string
		wantTerm    bool
		wantOutcome OutcomeKind
		wantReason  string
		wantMarkers []string
	}{
		{
			name:        "write saved",
			kind:        CommandWrite,
			lines:       []string{"Acerque la etiqueta", "Datos guardados exitosamente"},
			wantTerm:    true,
			wantOutcome: OutcomeSuccess,
			wantMarkers: []string{},
		},
		{
			name:        "write silent",
			kind:        CommandWrite,
			lines:       []string{"Acerque la etiqueta"},
			wantOutcome: OutcomeTimeout,
		},
		{
			name:        "read alta then complete",
			kind:        CommandRead,
			lines:       []string{"Fecha de alta registrada", "Lectura completa"},
			wantTerm:    true,
			wantOutcome: OutcomeSuccess,
			wantMarkers: []string{"alta date registered"},
		},
		{
			name:        "read only alta",
			kind:        CommandRead,
			lines:       []string{"Fecha de alta registrada"},
			wantOutcome: OutcomePartialSuccess,
			wantReason:  "alta date registered, read completion missing",
			wantMarkers: []string{"alta date registered"},
		},
		{
			name:        "track weight only",
			kind:        CommandTrack,
			lines:       []string{"Peso: 12.3g"},
			wantOutcome: OutcomePartialSuccess,
			wantReason:  "weight detected, confirmation missing",
			wantMarkers: []string{"weight detected"},
		},
		{
			name:        "track weight repeated",
			kind:        CommandTrack,
			lines:       []string{"Peso: 12.3g", "Peso: 12.4g", ""},
			wantOutcome: OutcomePartialSuccess,
			wantReason:  "weight detected, confirmation missing",
			wantMarkers: []string{"weight detected"},
		},
		{
			name:        "track confirmed",
			kind:        CommandTrack,
			lines:       []string{"Peso: 12.3g", "Datos enviados con éxito"},
			wantTerm:    true,
			wantOutcome: OutcomeSuccess,
			wantMarkers: []string{"weight detected"},
		},
		{
			name:        "out terminal requires dot",
			kind:        CommandOut,
			lines:       []string{"Lectura completa"},
			wantOutcome: OutcomeTimeout,
		},
		{
			name:        "out complete",
			kind:        CommandOut,
			lines:       []string{"Fecha de baja registrada", "Lectura completa."},
			wantTerm:    true,
			wantOutcome: OutcomeSuccess,
			wantMarkers: []string{"baja date registered"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(specs[tt.kind])
			var term bool
			for _, l := range tt.lines {
				if c.Classify(l).Terminal {
					term = true
					break
				}
			}
			if term != tt.wantTerm {
				t.Fatalf("terminal = %v, want %v", term, tt.wantTerm)
			}

			var out Outcome
			if term {
				out = c.Success()
			} else {
				out = c.Expired()
			}
			if out.Kind != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", out.Kind, tt.wantOutcome)
			}
			if out.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", out.Reason, tt.wantReason)
			}
			if tt.wantMarkers != nil && !reflect.DeepEqual(out.Markers, tt.wantMarkers) {
				t.Errorf("markers = %v, want %v", out.Markers, tt.wantMarkers)
			}
		})
	}
}

func TestClassifierEmptyLine(t *testing.T) {
	c := NewClassifier(DefaultSpecs()[CommandTrack])
	v := c.Classify("")
	if v.Terminal || len(v.Matched) != 0 {
		t.Errorf("empty line matched: %+v", v)
	}
}

func TestClassifierTerminalWinsOnSameLine(t *testing.T) {
	c := NewClassifier(DefaultSpecs()[CommandRead])
	v := c.Classify("Fecha de alta registrada. Lectura completa")
	if !v.Terminal {
		t.Fatal("expected terminal verdict")
	}
	if len(v.Matched) != 2 {
		t.Errorf("matched = %d, want 2", len(v.Matched))
	}
}

func TestPartialSuccessMissing(t *testing.T) {
	c := NewClassifier(DefaultSpecs()[CommandTrack])
	c.Classify("Peso: 3.0g")
	out := c.Expired()
	if out.Missing != "Datos enviados con éxito" {
		t.Errorf("missing = %q", out.Missing)
	}
	if got := out.String(); got != "PartialSuccess(weight detected, confirmation missing)" {
		t.Errorf("String() = %q", got)
	}
}
