package assets

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reportpress/internal/report"
)

func strPtr(s string) *string { return &s }

func newTestHydrator(t *testing.T, root string) *Hydrator {
	t.Helper()
	return NewHydrator(root, 2*time.Second, nil)
}

func TestHydrate_DataURIPassthrough(t *testing.T) {
	uri := "data:image/png;base64,AAAA"
	doc := &report.Report{Assets: report.Assets{Logo: strPtr(uri)}}

	missing := newTestHydrator(t, ".").Hydrate(context.Background(), doc)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing refs: %v", missing)
	}
	if doc.Assets.Logo == nil || *doc.Assets.Logo != uri {
		t.Errorf("data URI should pass through unchanged")
	}
}

func TestHydrate_FetchesRemoteImage(t *testing.T) {
	payload := []byte("fake-image-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	doc := &report.Report{Assets: report.Assets{HeaderImage: strPtr(server.URL + "/h.jpg")}}
	missing := newTestHydrator(t, ".").Hydrate(context.Background(), doc)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing refs: %v", missing)
	}

	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)
	if doc.Assets.HeaderImage == nil || *doc.Assets.HeaderImage != want {
		t.Errorf("remote image not embedded as data URI")
	}
}

func TestHydrate_FailureNullsSlotOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer server.Close()

	good := "data:image/png;base64,AAAA"
	doc := &report.Report{Assets: report.Assets{
		Logo:        strPtr(good),
		HeaderImage: strPtr(server.URL + "/missing.png"),
	}}

	missing := newTestHydrator(t, ".").Hydrate(context.Background(), doc)
	if len(missing) != 1 || missing[0] != "assets.headerImage" {
		t.Fatalf("missing = %v, want [assets.headerImage]", missing)
	}
	if doc.Assets.HeaderImage != nil {
		t.Error("failed slot should be nulled")
	}
	if doc.Assets.Logo == nil || *doc.Assets.Logo != good {
		t.Error("one failed slot must not disturb another")
	}
}

func TestHydrate_ReadsLocalFileUnderRoot(t *testing.T) {
	root := t.TempDir()
	payload := []byte{0x89, 'P', 'N', 'G'}
	if err := os.WriteFile(filepath.Join(root, "logo.png"), payload, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc := &report.Report{Assets: report.Assets{Logo: strPtr("logo.png")}}
	missing := newTestHydrator(t, root).Hydrate(context.Background(), doc)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing refs: %v", missing)
	}
	if doc.Assets.Logo == nil || !strings.HasPrefix(*doc.Assets.Logo, "data:image/png;base64,") {
		t.Errorf("local file should resolve to a png data URI, got %v", doc.Assets.Logo)
	}
}

func TestHydrate_MissingLocalFileNullsSlot(t *testing.T) {
	doc := &report.Report{Assets: report.Assets{FooterImage: strPtr("nope/missing.png")}}
	missing := newTestHydrator(t, t.TempDir()).Hydrate(context.Background(), doc)
	if len(missing) != 1 || missing[0] != "assets.footerImage" {
		t.Fatalf("missing = %v", missing)
	}
	if doc.Assets.FooterImage != nil {
		t.Error("unreadable slot should be nulled")
	}
}

func TestHydrate_ComponentImageSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "bad.png") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	doc := &report.Report{Components: []report.Component{
		{Type: "image", Props: &report.ImageProps{URL: strPtr(server.URL + "/good.png")}},
		{Type: "image", Props: &report.ImageProps{URL: strPtr(server.URL + "/bad.png")}},
	}}

	missing := newTestHydrator(t, ".").Hydrate(context.Background(), doc)
	if len(missing) != 1 || missing[0] != "components[1].url" {
		t.Fatalf("missing = %v, want [components[1].url]", missing)
	}

	good := doc.Components[0].Props.(*report.ImageProps)
	if good.URL == nil || !strings.HasPrefix(*good.URL, "data:image/png;base64,") {
		t.Error("resolvable component url should hydrate in place")
	}
	bad := doc.Components[1].Props.(*report.ImageProps)
	if bad.URL != nil {
		t.Error("failed component url should be nulled")
	}
}

func TestHydrate_EmptyDocumentNeverErrors(t *testing.T) {
	doc := &report.Report{}
	if missing := newTestHydrator(t, ".").Hydrate(context.Background(), doc); len(missing) != 0 {
		t.Errorf("nothing to hydrate, got missing = %v", missing)
	}
}
