package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// fakeSheets emulates the subset of the Sheets REST API used by Sink
type fakeSheets struct {
	mu        sync.Mutex
	tabs      map[string][][]interface{}
	calls     []string
	clearCode int
	writeCode int
	getCode   int
}

func newFakeSheets(tabs ...string) *fakeSheets {
	f := &fakeSheets{tabs: make(map[string][][]interface{})}
	for _, tab := range tabs {
		f.tabs[tab] = [][]interface{}{{"stale", "data"}, {"more", "stale"}}
	}
	return f
}

func apiError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": http.StatusText(code),
		},
	})
}

// tabOf extracts the tab name from an A1 range such as 'Export'!A1
func tabOf(rng string) string {
	name := rng[:strings.LastIndex(rng, "!")]
	name = strings.TrimSuffix(strings.TrimPrefix(name, "'"), "'")
	return strings.ReplaceAll(name, "''", "'")
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/sheet-id")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && path == "":
		f.calls = append(f.calls, "get")
		if f.getCode != 0 {
			apiError(w, f.getCode)
			return
		}
		var sheets []map[string]interface{}
		for title := range f.tabs {
			sheets = append(sheets, map[string]interface{}{"properties": map[string]interface{}{"title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": "sheet-id", "sheets": sheets})

	case r.Method == http.MethodPost && path == ":batchUpdate":
		f.calls = append(f.calls, "batchUpdate")
		var rq struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&rq)
		for _, req := range rq.Requests {
			f.tabs[req.AddSheet.Properties.Title] = nil
		}
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id","replies":[{}]}`)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		rng := strings.TrimSuffix(strings.TrimPrefix(path, "/values/"), ":clear")
		f.calls = append(f.calls, "clear "+rng)
		if f.clearCode != 0 {
			apiError(w, f.clearCode)
			return
		}
		f.tabs[tabOf(rng)] = nil
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/values/"):
		rng := strings.TrimPrefix(path, "/values/")
		f.calls = append(f.calls, "update "+rng+" "+r.URL.Query().Get("valueInputOption"))
		if f.writeCode != 0 {
			apiError(w, f.writeCode)
			return
		}
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.tabs[tabOf(rng)] = vr.Values
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)

	default:
		http.Error(w, "unexpected request "+r.Method+" "+r.URL.Path, http.StatusNotImplemented)
	}
}

func newTestSink(t *testing.T, fake *fakeSheets) *Sink {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	sink, err := New(context.Background(), "sheet-id",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return sink
}

func TestEnsureTabCreatesMissingTab(t *testing.T) {
	fake := newFakeSheets("Sheet1")
	sink := newTestSink(t, fake)

	require.NoError(t, sink.EnsureTab(context.Background(), "Export_2026-10-15"))

	assert.Equal(t, []string{"get", "batchUpdate"}, fake.calls)
	assert.Contains(t, fake.tabs, "Export_2026-10-15")
}

func TestEnsureTabReusesExistingTab(t *testing.T) {
	fake := newFakeSheets("Export_2026-10-15")
	sink := newTestSink(t, fake)

	require.NoError(t, sink.EnsureTab(context.Background(), "Export_2026-10-15"))

	assert.Equal(t, []string{"get"}, fake.calls)
}

func TestEnsureTabForbidden(t *testing.T) {
	fake := newFakeSheets()
	fake.getCode = http.StatusForbidden
	sink := newTestSink(t, fake)

	err := sink.EnsureTab(context.Background(), "Export_2026-10-15")
	assert.ErrorIs(t, err, ErrForbidden)

	var gerr *googleapi.Error
	assert.True(t, errors.As(err, &gerr))
}

func TestReplaceTabContents(t *testing.T) {
	fake := newFakeSheets("Export_2026-10-15")
	sink := newTestSink(t, fake)

	rows := [][]string{
		{"Product", "Assignee (developer)"},
		{"Widget", "alice"},
	}
	require.NoError(t, sink.ReplaceTabContents(context.Background(), "Export_2026-10-15", rows))

	assert.Equal(t, []string{
		"clear 'Export_2026-10-15'!A:Z",
		"update 'Export_2026-10-15'!A1 RAW",
	}, fake.calls)
	assert.Equal(t, [][]interface{}{
		{"Product", "Assignee (developer)"},
		{"Widget", "alice"},
	}, fake.tabs["Export_2026-10-15"])
}

func TestReplaceTabContentsTwiceIsIdempotent(t *testing.T) {
	fake := newFakeSheets()
	sink := newTestSink(t, fake)
	rows := [][]string{{"Product"}, {"Widget"}}

	require.NoError(t, sink.EnsureTab(context.Background(), "Export_2026-10-15"))
	require.NoError(t, sink.ReplaceTabContents(context.Background(), "Export_2026-10-15", rows))
	first := fake.tabs["Export_2026-10-15"]

	require.NoError(t, sink.EnsureTab(context.Background(), "Export_2026-10-15"))
	require.NoError(t, sink.ReplaceTabContents(context.Background(), "Export_2026-10-15", rows))

	assert.Len(t, fake.tabs, 1)
	assert.Equal(t, first, fake.tabs["Export_2026-10-15"])
}

func TestReplaceTabContentsIgnoresClearFailure(t *testing.T) {
	fake := newFakeSheets()
	fake.clearCode = http.StatusBadRequest
	sink := newTestSink(t, fake)

	require.NoError(t, sink.ReplaceTabContents(context.Background(), "Fresh", [][]string{{"Product"}}))
	assert.Equal(t, [][]interface{}{{"Product"}}, fake.tabs["Fresh"])
}

func TestReplaceTabContentsWriteFailure(t *testing.T) {
	fake := newFakeSheets()
	fake.writeCode = http.StatusTooManyRequests
	sink := newTestSink(t, fake)

	err := sink.ReplaceTabContents(context.Background(), "Export", [][]string{{"Product"}})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorContains(t, err, "failed to write rows")
}

func TestA1QuotesTabNames(t *testing.T) {
	assert.Equal(t, "'Export_2026-10-15'!A1", a1("Export_2026-10-15", "A1"))
	assert.Equal(t, "'Bob''s tab'!A:Z", a1("Bob's tab", "A:Z"))
	assert.Equal(t, "Bob's tab", tabOf(a1("Bob's tab", "A1")))
}

func TestSpreadsheetID(t *testing.T) {
	tests := map[string]string{
		"1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms":                                             "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"  1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms ":                                         "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms":      "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit": "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
	}
	for in, want := range tests {
		assert.Equal(t, want, SpreadsheetID(in), in)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ")
	assert.ErrorContains(t, err, "spreadsheet ID not set")
}

func TestCredentialsOption(t *testing.T) {
	_, err := CredentialsOption(context.Background(), "")
	assert.ErrorContains(t, err, "credentials not set")

	_, err = CredentialsOption(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "unable to read credentials file")

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account","client_email":"export@example.iam.gserviceaccount.com","private_key":"","token_uri":"https://oauth2.googleapis.com/token"}`), 0600))

	opt, err := CredentialsOption(context.Background(), path)
	require.NoError(t, err)
	assert.NotNil(t, opt)
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, WrapError(plain))

	assert.ErrorIs(t, WrapError(&googleapi.Error{Code: http.StatusUnauthorized}), ErrUnauthorized)
	assert.ErrorIs(t, WrapError(&googleapi.Error{Code: http.StatusNotFound}), ErrNotFound)

	other := &googleapi.Error{Code: http.StatusInternalServerError}
	assert.Equal(t, error(other), WrapError(other))
}
