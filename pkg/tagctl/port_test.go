package tagctl

import (
	"errors"
	"sync"
	"time"
)

// fakePort отдаёт заранее заданные куски данных по одному на чтение.
type fakePort struct {
	mu       sync.Mutex
	chunks   [][]byte
	written  []byte
	resets   int
	closed   bool
	timeouts []time.Duration

	OnRead  func(p []byte) (int, error)
	OnWrite func(p []byte) (int, error)
	OnClose func() error
	OnReset func() error
}

func (f *fakePort) feed(chunks ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		f.chunks = append(f.chunks, []byte(c))
	}
}

func (f *fakePort) Read(p []byte) (int, error) {
	if f.OnRead != nil {
		return f.OnRead(p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.New("closed")
	}
	if len(f.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, f.chunks[0])
	if n < len(f.chunks[0]) {
		f.chunks[0] = f.chunks[0][n:]
	} else {
		f.chunks = f.chunks[1:]
	}
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	if f.OnWrite != nil {
		return f.OnWrite(p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	if f.OnClose != nil {
		return f.OnClose()
	}
	return nil
}

func (f *fakePort) ResetInputBuffer() error {
	f.mu.Lock()
	f.chunks = nil
	f.resets++
	f.mu.Unlock()
	if f.OnReset != nil {
		return f.OnReset()
	}
	return nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts = append(f.timeouts, t)
	return nil
}

func (f *fakePort) Written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.written)
}

func openerFor(p *fakePort) Opener {
	return func(name string, baudRate int) (Port, error) {
		return p, nil
	}
}
