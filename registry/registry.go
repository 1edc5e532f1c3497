// Package registry maps format identifiers such as "tsv" or "jsonl" to factories for Sources and
// Sinks, so that formats may be chosen by name at runtime.
package registry

import (
	"context"
	"net/url"
	"sort"
	"sync"

	"github.com/go-sif/rowstream"
	"github.com/go-sif/rowstream/codec/dsv"
	"github.com/go-sif/rowstream/codec/jsonl"
	errors "github.com/go-sif/rowstream/errors"
	"github.com/go-sif/rowstream/origin/bucket"
	"github.com/go-sif/rowstream/origin/file"
	"github.com/go-sif/rowstream/stream"
)

// SourceFactory opens a Source reading from location
type SourceFactory func(ctx context.Context, location string, conf *stream.Conf) (*stream.Source, error)

// SinkFactory opens a Sink writing to location
type SinkFactory func(ctx context.Context, location string, conf *stream.Conf) (*stream.Sink, error)

// Registry holds Source and Sink factories by format identifier. It is safe for concurrent use.
type Registry struct {
	lock    sync.RWMutex
	sources map[string]SourceFactory
	sinks   map[string]SinkFactory
}

// New returns an empty Registry
func New() *Registry {
	return &Registry{
		sources: make(map[string]SourceFactory),
		sinks:   make(map[string]SinkFactory),
	}
}

// Default returns a Registry with the "tsv" and "jsonl" formats registered for both reading and
// writing. Locations with a URL scheme (s3://, gs://, file://, mem://...) are treated as bucket
// objects, and anything else as a local path.
func Default() *Registry {
	r := New()
	for _, c := range []rowstream.Codec{dsv.TabDelimited(), jsonl.CreateCodec(&jsonl.CodecConf{})} {
		// registration into an empty Registry cannot collide
		_ = r.RegisterCodec(c)
	}
	return r
}

// RegisterCodec registers a Source and Sink factory under the Codec's name, resolving locations
// as Default does
func (r *Registry) RegisterCodec(codec rowstream.Codec) error {
	err := r.RegisterSource(codec.Name(), func(ctx context.Context, location string, conf *stream.Conf) (*stream.Source, error) {
		origin, err := OriginFor(location)
		if err != nil {
			return nil, err
		}
		return stream.OpenSource(ctx, origin, codec, conf)
	})
	if err != nil {
		return err
	}
	return r.RegisterSink(codec.Name(), func(ctx context.Context, location string, conf *stream.Conf) (*stream.Sink, error) {
		dest, err := DestinationFor(location)
		if err != nil {
			return nil, err
		}
		return stream.OpenSink(ctx, dest, codec, conf)
	})
}

// RegisterSource adds a SourceFactory. Registering a name twice is an errors.ConfigurationError.
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.sources[name]; ok {
		return errors.ConfigurationError{Name: name, Reason: "a source is already registered for this format"}
	}
	r.sources[name] = factory
	return nil
}

// RegisterSink adds a SinkFactory. Registering a name twice is an errors.ConfigurationError.
func (r *Registry) RegisterSink(name string, factory SinkFactory) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.sinks[name]; ok {
		return errors.ConfigurationError{Name: name, Reason: "a sink is already registered for this format"}
	}
	r.sinks[name] = factory
	return nil
}

// NewSource opens a Source for the named format. An unknown format is an errors.ConfigurationError.
func (r *Registry) NewSource(ctx context.Context, name string, location string, conf *stream.Conf) (*stream.Source, error) {
	r.lock.RLock()
	factory, ok := r.sources[name]
	r.lock.RUnlock()
	if !ok {
		return nil, errors.ConfigurationError{Name: name, Reason: "no source is registered for this format"}
	}
	return factory(ctx, location, conf)
}

// NewSink opens a Sink for the named format. An unknown format is an errors.ConfigurationError.
func (r *Registry) NewSink(ctx context.Context, name string, location string, conf *stream.Conf) (*stream.Sink, error) {
	r.lock.RLock()
	factory, ok := r.sinks[name]
	r.lock.RUnlock()
	if !ok {
		return nil, errors.ConfigurationError{Name: name, Reason: "no sink is registered for this format"}
	}
	return factory(ctx, location, conf)
}

// Formats returns the sorted union of registered source and sink formats
func (r *Registry) Formats() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	seen := make(map[string]bool, len(r.sources))
	var names []string
	for name := range r.sources {
		seen[name] = true
		names = append(names, name)
	}
	for name := range r.sinks {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// OriginFor resolves a location to a bucket Origin if it has a URL scheme, or a local file otherwise
func OriginFor(location string) (rowstream.Origin, error) {
	if !hasScheme(location) {
		return file.CreateOrigin(location), nil
	}
	bucketURL, key, err := bucket.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	return bucket.CreateOrigin(bucketURL, key), nil
}

// DestinationFor resolves a location as OriginFor does
func DestinationFor(location string) (rowstream.Destination, error) {
	if !hasScheme(location) {
		return file.CreateDestination(location), nil
	}
	bucketURL, key, err := bucket.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	return bucket.CreateDestination(bucketURL, key), nil
}

// hasScheme is false for plain paths, including Windows drive letters
func hasScheme(location string) bool {
	u, err := url.Parse(location)
	return err == nil && len(u.Scheme) > 1
}
