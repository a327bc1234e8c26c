package assets

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"reportpress/internal/report"
)

// Hydrator resolves every image reference in a report into a self-contained
// data URI before rendering starts. Each reference settles independently:
// a failed fetch or read nulls that slot with a warning and never surfaces
// as an error to the caller.
type Hydrator struct {
	client *http.Client
	root   string
	logger *slog.Logger
}

// NewHydrator builds a hydrator reading repo-relative references under
// root. The root is injected at process start rather than derived from the
// binary's location.
func NewHydrator(root string, fetchTimeout time.Duration, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{
		client: &http.Client{Timeout: fetchTimeout},
		root:   root,
		logger: logger,
	}
}

var mimeByExt = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
}

const fallbackContentType = "application/octet-stream"

// Hydrate settles the four asset slots plus every image component url
// concurrently and in place. It returns the names of references that could
// not be resolved; those slots are nil afterwards. It never returns an
// error: rendering proceeds with fallback presentation for missing slots.
func (h *Hydrator) Hydrate(ctx context.Context, r *report.Report) []string {
	refs := r.ImageRefs()
	resolved := make([]*string, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		if *ref.Slot == nil {
			continue
		}
		wg.Add(1)
		go func(i int, name, href string) {
			defer wg.Done()
			resolved[i] = h.resolve(ctx, name, href)
		}(i, ref.Name, **ref.Slot)
	}
	wg.Wait()

	var missing []string
	for i, ref := range refs {
		if *ref.Slot == nil {
			continue
		}
		*ref.Slot = resolved[i]
		if resolved[i] == nil {
			missing = append(missing, ref.Name)
		}
	}
	return missing
}

// resolve turns one reference into a data URI, or nil when it cannot be
// resolved.
func (h *Hydrator) resolve(ctx context.Context, name, href string) *string {
	if strings.HasPrefix(href, "data:") {
		return &href
	}
	if strings.HasPrefix(strings.ToLower(href), "http://") || strings.HasPrefix(strings.ToLower(href), "https://") {
		return h.fetch(ctx, name, href)
	}
	return h.readLocal(name, href)
}

func (h *Hydrator) fetch(ctx context.Context, name, href string) *string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		h.logger.Warn("asset fetch failed", slog.String("ref", name), slog.Any("error", err))
		return nil
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("asset fetch failed", slog.String("ref", name), slog.Any("error", err))
		return nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.logger.Warn("asset fetch failed",
			slog.String("ref", name),
			slog.Int("status", resp.StatusCode),
		)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.logger.Warn("asset fetch failed", slog.String("ref", name), slog.Any("error", err))
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return dataURI(contentType, body)
}

func (h *Hydrator) readLocal(name, href string) *string {
	path := href
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.root, path)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		h.logger.Warn("asset read failed", slog.String("ref", name), slog.Any("error", err))
		return nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	contentType, ok := mimeByExt[ext]
	if !ok {
		contentType = fallbackContentType
	}
	return dataURI(contentType, body)
}

func dataURI(contentType string, body []byte) *string {
	uri := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(body))
	return &uri
}
