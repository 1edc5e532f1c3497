// Package bucket provides Origins and Destinations backed by objects in a remote bucket,
// addressed by a (bucket, object-name) pair. Buckets are opened through gocloud.dev/blob,
// so any of its drivers (s3://, gs://, azblob://, file://, mem://) may be used, provided
// the driver package is linked into the binary.
package bucket

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	errors "github.com/go-sif/rowstream/errors"
	"github.com/hashicorp/go-multierror"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ParseLocation splits a location such as "s3://my-bucket/path/to/rows.tsv.gz?region=us-east-1"
// into a bucket URL ("s3://my-bucket?region=us-east-1") and an object key ("path/to/rows.tsv.gz").
// For file:// locations, the directory is the bucket and the file name is the key.
func ParseLocation(location string) (bucketURL string, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", errors.ConfigurationError{Name: location, Reason: err.Error()}
	}
	if u.Scheme == "" {
		return "", "", errors.ConfigurationError{Name: location, Reason: "bucket location requires a URL scheme"}
	}
	b := url.URL{Scheme: u.Scheme, Host: u.Host, RawQuery: u.RawQuery}
	if u.Scheme == "file" {
		b.Path = path.Dir(u.Path)
		key = path.Base(u.Path)
	} else {
		key = strings.TrimPrefix(u.Path, "/")
	}
	if key == "" || key == "." || key == "/" {
		return "", "", errors.ConfigurationError{Name: location, Reason: "bucket location has no object key"}
	}
	return b.String(), key, nil
}

// opener yields a bucket, and whether the caller owns (and must close) it
type opener func(ctx context.Context) (*blob.Bucket, bool, error)

func byURL(bucketURL string) opener {
	return func(ctx context.Context) (*blob.Bucket, bool, error) {
		b, err := blob.OpenBucket(ctx, bucketURL)
		return b, true, err
	}
}

func shared(b *blob.Bucket) opener {
	return func(ctx context.Context) (*blob.Bucket, bool, error) {
		return b, false, nil
	}
}

// Origin is an object in a bucket which will be read sequentially
type Origin struct {
	bucketName string
	key        string
	open       opener
}

// CreateOrigin is a factory for Origins. The bucket is opened by URL on every Open,
// and closed along with the returned reader.
func CreateOrigin(bucketURL string, key string) *Origin {
	return &Origin{bucketName: bucketURL, key: key, open: byURL(bucketURL)}
}

// CreateOriginFromBucket is a factory for Origins reading from a caller-owned bucket,
// which is never closed by the Origin. name is used in descriptions only.
func CreateOriginFromBucket(b *blob.Bucket, name string, key string) *Origin {
	return &Origin{bucketName: name, key: key, open: shared(b)}
}

// Name returns bucket/key for this Origin
func (o *Origin) Name() string {
	return objectName(o.bucketName, o.key)
}

// Open fetches the object for reading
func (o *Origin) Open(ctx context.Context) (io.ReadCloser, error) {
	b, owned, err := o.open(ctx)
	if err != nil {
		return nil, classify("open bucket", o.bucketName, err)
	}
	r, err := b.NewReader(ctx, o.key, nil)
	if err != nil {
		if owned {
			b.Close()
		}
		return nil, classify("open", o.Name(), err)
	}
	if !owned {
		return r, nil
	}
	return &ownedReader{Reader: r, bucket: b}, nil
}

// Destination is an object in a bucket which will be written sequentially
type Destination struct {
	bucketName string
	key        string
	open       opener
	opts       *blob.WriterOptions
}

// CreateDestination is a factory for Destinations. The bucket is opened by URL on every Create,
// and closed along with the returned writer.
func CreateDestination(bucketURL string, key string) *Destination {
	return &Destination{bucketName: bucketURL, key: key, open: byURL(bucketURL)}
}

// CreateDestinationFromBucket is a factory for Destinations writing to a caller-owned bucket
func CreateDestinationFromBucket(b *blob.Bucket, name string, key string) *Destination {
	return &Destination{bucketName: name, key: key, open: shared(b)}
}

// Name returns bucket/key for this Destination
func (d *Destination) Name() string {
	return objectName(d.bucketName, d.key)
}

// Create begins writing the object. The object replaces any existing one only once the
// returned writer is closed; if ctx is cancelled first, the write is abandoned.
func (d *Destination) Create(ctx context.Context) (io.WriteCloser, error) {
	b, owned, err := d.open(ctx)
	if err != nil {
		return nil, classify("open bucket", d.bucketName, err)
	}
	w, err := b.NewWriter(ctx, d.key, d.opts)
	if err != nil {
		if owned {
			b.Close()
		}
		return nil, classify("create", d.Name(), err)
	}
	if !owned {
		return w, nil
	}
	return &ownedWriter{Writer: w, bucket: b}, nil
}

type ownedReader struct {
	*blob.Reader
	bucket *blob.Bucket
}

func (r *ownedReader) Close() error {
	var multierr *multierror.Error
	if err := r.Reader.Close(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if err := r.bucket.Close(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	return multierr.ErrorOrNil()
}

type ownedWriter struct {
	*blob.Writer
	bucket *blob.Bucket
}

func (w *ownedWriter) Close() error {
	var multierr *multierror.Error
	if err := w.Writer.Close(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if err := w.bucket.Close(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	return multierr.ErrorOrNil()
}

func objectName(bucketName string, key string) string {
	if i := strings.IndexByte(bucketName, '?'); i >= 0 {
		bucketName = bucketName[:i]
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(bucketName, "/"), key)
}

func classify(op string, name string, err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return errors.NotFoundError{Origin: name, Err: err}
	}
	return errors.IOError{Op: op, Origin: name, Err: err}
}
