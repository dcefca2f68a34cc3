package takeout

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildZip(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create member %q: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write member %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_FindsActivityFileByFragment(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"Takeout/My Activity/Maps/MyActivity.json": `[{"title":"Visited Cafe"}]`,
		"Takeout/archive_browser.html":             "<html></html>",
	})

	content, err := Extract(archive)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if content != `[{"title":"Visited Cafe"}]` {
		t.Errorf("unexpected content: %s", content)
	}
}

func TestExtract_NoActivityFile(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"Takeout/Maps/other.json": "[]",
	})

	_, err := Extract(archive)
	if !errors.Is(err, ErrActivityFileNotFound) {
		t.Errorf("expected ErrActivityFileNotFound, got %v", err)
	}
}

func TestExtract_NotAZip(t *testing.T) {
	_, err := Extract([]byte("definitely not a zip archive"))
	if !errors.Is(err, ErrArchiveFormat) {
		t.Errorf("expected ErrArchiveFormat, got %v", err)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	// Zip writer preserves insertion order; Extract takes the first match in
	// archive order.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	first, _ := w.Create("Takeout/A/MyActivity.json")
	first.Write([]byte(`["first"]`))
	second, _ := w.Create("Takeout/B/MyActivity.json")
	second.Write([]byte(`["second"]`))
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	content, err := Extract(buf.Bytes())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if content != `["first"]` {
		t.Errorf("expected first member, got %s", content)
	}
}
