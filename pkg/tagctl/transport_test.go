package tagctl

import (
	"testing"
)

func TestLineReaderSplitsLines(t *testing.T) {
	p := &fakePort{}
	p.feed("Etiqueta det", "ectada\r\nPeso: 1", "2.3g\r\n\r\n")
	c, _ := lookupCharset("")
	r := newLineReader(p, c)

	want := []string{"Etiqueta detectada", "Peso: 12.3g", ""}
	for i, w := range want {
		line, ok, err := r.next()
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if !ok || line != w {
			t.Errorf("line %d = %q (ok=%v), want %q", i, line, ok, w)
		}
	}

	line, ok, err := r.next()
	if err != nil || ok {
		t.Errorf("after drain: %q ok=%v err=%v", line, ok, err)
	}
}

func TestLineReaderKeepsPartialAcrossTimeouts(t *testing.T) {
	p := &fakePort{}
	c, _ := lookupCharset("utf-8")
	r := newLineReader(p, c)

	p.feed("Lectura ")
	if _, ok, _ := r.next(); ok {
		t.Fatal("partial line returned early")
	}
	p.feed("completa\n")
	line, ok, err := r.next()
	if err != nil || !ok || line != "Lectura completa" {
		t.Errorf("got %q ok=%v err=%v", line, ok, err)
	}
}

func TestLineReaderReset(t *testing.T) {
	p := &fakePort{}
	c, _ := lookupCharset("utf-8")
	r := newLineReader(p, c)

	p.feed("garbage from before")
	r.next()
	r.reset()
	p.feed("Datos guardados exitosamente\n")
	line, ok, _ := r.next()
	if !ok || line != "Datos guardados exitosamente" {
		t.Errorf("got %q, stale bytes were not discarded", line)
	}
}

func TestCharsetLatin1(t *testing.T) {
	c, err := lookupCharset("iso-8859-1")
	if err != nil {
		t.Fatalf("lookupCharset: %v", err)
	}
	raw, err := c.encode("Datos enviados con éxito\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(raw) != len("Datos enviados con éxito\n")-1 {
		t.Errorf("latin-1 should encode é as one byte, got %d bytes", len(raw))
	}

	p := &fakePort{}
	p.feed(string(raw))
	r := newLineReader(p, c)
	line, ok, _ := r.next()
	if !ok || line != "Datos enviados con éxito" {
		t.Errorf("decoded %q", line)
	}
}

func TestCharsetUnknown(t *testing.T) {
	if _, err := lookupCharset("klingon-8"); err == nil {
		t.Error("expected error for unknown charset")
	}
}
