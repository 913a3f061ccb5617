package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// ObjectOpener mở một object trên GCS
type ObjectOpener func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// Reader đọc toàn bộ bảng nguồn theo location: đường dẫn local, file://, http(s):// hoặc gs://
type Reader struct {
	httpClient *retryablehttp.Client
	openObject ObjectOpener
	log        *logrus.Logger
}

// Option cấu hình Reader
type Option func(*Reader)

// WithRetryMax đặt số lần retry khi tải qua http (mặc định 0 = không retry)
func WithRetryMax(n int) Option {
	return func(r *Reader) {
		if n >= 0 {
			r.httpClient.RetryMax = n
		}
	}
}

// WithObjectOpener thay cách mở object GCS
func WithObjectOpener(open ObjectOpener) Option {
	return func(r *Reader) {
		r.openObject = open
	}
}

// NewReader tạo Reader. log dùng cho client http.
func NewReader(log *logrus.Logger, opts ...Option) *Reader {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = log
	// Trả response về cho Reader tự kiểm tra status code
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	r := &Reader{
		httpClient: client,
		openObject: openGCSObject,
		log:        log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read tải và parse toàn bộ bảng. Mọi lỗi đều gắn common.ErrSourceRead hoặc common.ErrSourceFormat.
func (r *Reader) Read(ctx context.Context, location string) (*Table, error) {
	data, err := r.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"location": location,
		"bytes":    len(data),
	}).Debug("Source fetched")

	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return table, nil
}

func (r *Reader) fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// đường dẫn local (kể cả C:\...)
		return readFile(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return r.fetchHTTP(ctx, location)
	case "gs":
		return r.fetchGCS(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", common.ErrSourceRead, u.Scheme)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSourceRead, err)
	}
	return data, nil
}

func (r *Reader) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSourceRead, err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to fetch %s: %v", common.ErrSourceRead, location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unable to fetch %s, response code %d", common.ErrSourceRead, location, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body %s: %v", common.ErrSourceRead, location, err)
	}
	return data, nil
}

func (r *Reader) fetchGCS(ctx context.Context, bucket, object string) ([]byte, error) {
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("%w: gs location needs bucket and object", common.ErrSourceRead)
	}
	rc, err := r.openObject(ctx, bucket, object)
	if err != nil {
		return nil, fmt.Errorf("%w: open gs://%s/%s: %v", common.ErrSourceRead, bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read gs://%s/%s: %v", common.ErrSourceRead, bucket, object, err)
	}
	return data, nil
}

// gcsObjectReader đóng cả reader lẫn client khi Close
type gcsObjectReader struct {
	*storage.Reader
	client *storage.Client
}

func (g *gcsObjectReader) Close() error {
	err := g.Reader.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func openGCSObject(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	rd, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &gcsObjectReader{Reader: rd, client: client}, nil
}
