package paperless

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliweber/bill-analyzer/internal/bill"
)

func testBill() *bill.Bill {
	return &bill.Bill{
		Store: "REWE",
		Date:  "10.12.25",
		Items: []bill.Item{{Name: "Milch", Price: bill.Amount{Raw: "1.19"}}},
		Total: bill.Amount{Raw: "23.55"},
	}
}

func testPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receipt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))
	return path
}

func TestUpload(t *testing.T) {
	var gotAuth, gotTitle, gotCreated, gotFields, gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/documents/post_document/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1 << 20))
		gotTitle = r.FormValue("title")
		gotCreated = r.FormValue("created")
		gotFields = r.FormValue("custom_fields")

		_, header, err := r.FormFile("document")
		require.NoError(t, err)
		gotFilename = header.Filename

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`"a1b2c3d4-0000-0000-0000-000000000000"`))
	}))
	defer srv.Close()

	client := New(srv.URL, "secret-token", 7)
	taskID, err := client.Upload(context.Background(), testPDF(t), testBill())
	require.NoError(t, err)

	assert.Equal(t, "a1b2c3d4-0000-0000-0000-000000000000", taskID)
	assert.Equal(t, "Token secret-token", gotAuth)
	assert.Equal(t, "REWE", gotTitle)
	assert.Equal(t, "2025-12-10T00:00:00Z", gotCreated)
	assert.Equal(t, `{"field": 7, "value": 23.55}`, gotFields)
	assert.Equal(t, "receipt.pdf", gotFilename)
}

func TestUpload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no thanks", http.StatusForbidden)
	}))
	defer srv.Close()

	client := New(srv.URL, "bad-token", 1)
	_, err := client.Upload(context.Background(), testPDF(t), testBill())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestUpload_MissingPDF(t *testing.T) {
	client := New("http://localhost:1", "token", 1)
	_, err := client.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), testBill())
	assert.Error(t, err)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	client := New("https://paperless.example/", "t", 1)
	assert.Equal(t, "https://paperless.example", client.baseURL)
}
