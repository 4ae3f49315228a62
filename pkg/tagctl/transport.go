package tagctl

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Port минимальный набор операций порта, нужный протоколу.
// serial.Port из go.bug.st/serial удовлетворяет ему напрямую.
// Read должен возвращать (0, nil) по истечении таймаута чтения.
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
}

// Opener открывает порт по имени и скорости.
type Opener func(name string, baudRate int) (Port, error)

// OpenSerial открывает COM-порт в режиме 8N1.
func OpenSerial(name string, baudRate int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// codec переводит строки между UTF-8 и кодировкой контроллера.
type codec struct {
	enc  encoding.Encoding
	name string
}

// lookupCharset находит кодировку по метке (utf-8, windows-1252, iso-8859-1 ...).
func lookupCharset(label string) (codec, error) {
	if strings.TrimSpace(label) == "" {
		label = "utf-8"
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return codec{}, fmt.Errorf("tagctl: unknown charset %q", label)
	}
	return codec{enc: enc, name: name}, nil
}

func (c codec) decode(raw []byte) string {
	out, _, err := transform.Bytes(c.enc.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func (c codec) encode(s string) ([]byte, error) {
	out, _, err := transform.Bytes(c.enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode to %s: %w", c.name, err)
	}
	return out, nil
}

// lineReader собирает строки из порта, читающего кусками с таймаутом.
type lineReader struct {
	port  Port
	codec codec
	buf   []byte
	chunk []byte
}

func newLineReader(port Port, c codec) *lineReader {
	return &lineReader{
		port:  port,
		codec: c,
		chunk: make([]byte, 256),
	}
}

// next возвращает следующую полную строку без завершающих \r\n и пробелов.
// ok=false означает, что чтение истекло по таймауту, не собрав строку.
func (r *lineReader) next() (line string, ok bool, err error) {
	for {
		if i := bytes.IndexByte(r.buf, '\n'); i >= 0 {
			raw := r.buf[:i]
			line = strings.TrimSpace(r.codec.decode(raw))
			r.buf = append(r.buf[:0], r.buf[i+1:]...)
			return line, true, nil
		}
		n, err := r.port.Read(r.chunk)
		if n > 0 {
			r.buf = append(r.buf, r.chunk[:n]...)
		}
		if err != nil {
			return "", false, err
		}
		if n == 0 {
			return "", false, nil
		}
	}
}

// reset отбрасывает незавершённую строку.
func (r *lineReader) reset() {
	r.buf = r.buf[:0]
}
