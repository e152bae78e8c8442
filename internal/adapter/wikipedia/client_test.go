package wikipedia

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/athletics-records-etl/internal/extract"
)

const page = `<html><head><meta charset="utf-8"></head><body>
<table class="wikitable"><tr><th>Men</th></tr><tr><th>Perf.</th></tr><tr><td>100 m</td><td>9.58</td></tr></table>
<table class="infobox"><tr><td>ignored</td></tr></table>
<table class="wikitable sortable"><tr><th>Women</th></tr><tr><th>Perf.</th></tr><tr><td>100 m</td><td>10.49</td></tr></table>
</body></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, robots string, gotUA *string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		if robots == "" {
			http.NotFound(w, nil)
			return
		}
		_, _ = io.WriteString(w, robots)
	})
	mux.HandleFunc("/wiki/Records", func(w http.ResponseWriter, r *http.Request) {
		if gotUA != nil {
			*gotUA = r.Header.Get("User-Agent")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	})
	mux.HandleFunc("/wiki/Missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	var ua string
	srv := newServer(t, "", &ua)
	c := NewClient(srv.URL+"/wiki/Records", "records-test/1.0", 5*time.Second, true, discardLogger())

	doc, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "records-test/1.0", ua)

	men, women, err := RecordTables(doc)
	require.NoError(t, err)
	assert.Contains(t, men.Text(), "9.58")
	assert.Contains(t, women.Text(), "10.49")
}

func TestFetch_RobotsDisallow(t *testing.T) {
	srv := newServer(t, "User-agent: *\nDisallow: /wiki/\n", nil)

	c := NewClient(srv.URL+"/wiki/Records", "records-test/1.0", 5*time.Second, true, discardLogger())
	_, err := c.Fetch(context.Background())
	require.ErrorIs(t, err, ErrDisallowed)

	unchecked := NewClient(srv.URL+"/wiki/Records", "records-test/1.0", 5*time.Second, false, discardLogger())
	_, err = unchecked.Fetch(context.Background())
	require.NoError(t, err)
}

func TestFetch_BadStatus(t *testing.T) {
	srv := newServer(t, "", nil)
	c := NewClient(srv.URL+"/wiki/Missing", "records-test/1.0", 5*time.Second, false, discardLogger())

	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetch_Canceled(t *testing.T) {
	srv := newServer(t, "", nil)
	c := NewClient(srv.URL+"/wiki/Records", "records-test/1.0", 5*time.Second, false, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o600))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	_, _, err = RecordTables(doc)
	require.NoError(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}

func TestRecordTables_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<table class="wikitable"><tr><td>x</td></tr></table>`), 0o600))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	_, _, err = RecordTables(doc)
	require.ErrorIs(t, err, extract.ErrTableNotFound)
}

func TestFile_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o600))

	doc, err := File(path).Fetch(context.Background())
	require.NoError(t, err)
	men, women, err := RecordTables(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, men.Length())
	assert.Equal(t, 1, women.Length())
}

// lateNamePage puts the first non-ASCII text past the 1024 bytes sniffed for
// a charset.
func lateNamePage() string {
	return "<html><body><p>" + strings.Repeat("athletics ", 110) + "</p>" +
		"<table><tr><td>Jarmila Kratochvílová</td></tr></table></body></html>"
}

func TestParse_UTF8WithoutCharset(t *testing.T) {
	const want = "Jarmila Kratochvílová"

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(lateNamePage()), 0o600))
	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, doc.Find("td").Text())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, lateNamePage())
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/wiki/Records", "records-test/1.0", 5*time.Second, false, discardLogger())
	doc, err = c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, doc.Find("td").Text())
}

func TestParse_DeclaredCharset(t *testing.T) {
	// "í" is 0xED in windows-1252.
	body := []byte("<html><body><table><tr><td>Kratochv\xedlov\xe1</td></tr></table></body></html>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1252")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/wiki/Records", "records-test/1.0", 5*time.Second, false, discardLogger())
	doc, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Kratochvílová", doc.Find("td").Text())
}
