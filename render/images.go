package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
)

// Fetcher resolves an image source into a decoded image. Sources are
// either http(s) URLs or paths relative to the survey bundle.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (image.Image, error)
}

// FetchError reports a source that could not be resolved. Pages keep
// rendering when they see one; the slot gets a placeholder instead.
type FetchError struct {
	Src string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch image %s: %v", e.Src, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

const defaultFetchTimeout = 15 * time.Second

// ImageFetcher loads images over HTTP or from disk and caches decoded
// results so repeated references hit the network once. Failures are
// not cached; a flaky source gets another chance on the next page.
type ImageFetcher struct {
	client  *http.Client
	baseDir string

	mu    sync.Mutex
	cache map[string]image.Image
}

var _ Fetcher = (*ImageFetcher)(nil)

// NewImageFetcher returns a fetcher resolving relative paths against
// baseDir. A zero timeout falls back to the default.
func NewImageFetcher(baseDir string, timeout time.Duration) *ImageFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &ImageFetcher{
		client:  &http.Client{Timeout: timeout},
		baseDir: baseDir,
		cache:   make(map[string]image.Image),
	}
}

func (f *ImageFetcher) Fetch(ctx context.Context, src string) (image.Image, error) {
	f.mu.Lock()
	img, ok := f.cache[src]
	f.mu.Unlock()
	if ok {
		return img, nil
	}

	var err error
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		img, err = f.fetchHTTP(ctx, src)
	} else {
		img, err = f.fetchFile(src)
	}
	if err != nil {
		return nil, &FetchError{Src: src, Err: err}
	}

	f.mu.Lock()
	f.cache[src] = img
	f.mu.Unlock()
	return img, nil
}

func (f *ImageFetcher) fetchHTTP(ctx context.Context, src string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

func (f *ImageFetcher) fetchFile(src string) (image.Image, error) {
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
