// Package memory provides Origins and Destinations backed by in-memory buffers.
// They are useful for tests, and for staging small amounts of data without touching disk.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Origin is a buffer containing data which will be read as if it were a file
type Origin struct {
	name string
	data []byte
}

// CreateOrigin is a factory for Origins. The name determines decompression by suffix.
func CreateOrigin(name string, data []byte) *Origin {
	return &Origin{name: name, data: data}
}

// Name returns the name of this Origin
func (o *Origin) Name() string {
	return o.name
}

// Open returns a reader over the buffer. Each call starts from the beginning.
func (o *Origin) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(o.data)), nil
}

// Destination is a buffer which collects written data. The data is published to
// Bytes only when the writer returned by Create is closed, so that a reader never
// observes a partially-written stream.
type Destination struct {
	name string
	lock sync.Mutex
	data []byte
}

// CreateDestination is a factory for Destinations. The name determines compression by suffix.
func CreateDestination(name string) *Destination {
	return &Destination{name: name}
}

// Name returns the name of this Destination
func (d *Destination) Name() string {
	return d.name
}

// Create truncates the Destination and returns a writer into it
func (d *Destination) Create(ctx context.Context) (io.WriteCloser, error) {
	d.lock.Lock()
	d.data = nil
	d.lock.Unlock()
	return &writer{dest: d}, nil
}

// Bytes returns the data published by the most recently closed writer
func (d *Destination) Bytes() []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.data
}

// Origin returns an Origin over the data published so far, with the same name
func (d *Destination) Origin() *Origin {
	return CreateOrigin(d.name, d.Bytes())
}

type writer struct {
	dest *Destination
	buf  bytes.Buffer
}

func (w *writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writer) Close() error {
	w.dest.lock.Lock()
	defer w.dest.lock.Unlock()
	w.dest.data = w.buf.Bytes()
	return nil
}
