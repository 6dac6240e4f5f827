package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var sample = core.Expense{
	ID:        9,
	UserID:    1,
	Amount:    core.Money{Cents: 1550},
	Category:  "FOOD",
	CreatedAt: time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC),
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	require.Error(t, err)
	assert.Equal(t, "missing spreadsheet id", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet-id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestLoadCredentials(t *testing.T) {
	b, err := loadCredentials(Options{CredentialsJSON: ` {"type":"service_account"} `, CredentialsFile: "/does/not/exist"})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(b))

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o600))
	b, err = loadCredentials(Options{CredentialsFile: path})
	require.NoError(t, err)
	assert.Equal(t, `{"from":"file"}`, string(b))

	_, err = loadCredentials(Options{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorContains(t, err, "read service account file")
}

func TestExpenseRow(t *testing.T) {
	assert.Equal(t, []any{"2025-06-15 12:30:00", int64(1), "FOOD", "15.50"}, expenseRow(sample))
}

func TestAppend_ValidatesBeforeCalling(t *testing.T) {
	c := &Client{spreadsheetID: "test"} // svc is nil
	_, err := c.Append(context.Background(), core.Expense{UserID: 1, Category: ""})
	assert.ErrorIs(t, err, core.ErrEmptyCategory)

	_, err = c.Append(context.Background(), sample)
	assert.ErrorContains(t, err, "sheets service not initialized")
}

func TestAppend_SendsRow(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotBody  gsheet.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updates":{"updatedRange":"Expenses!A7:D7","updatedRows":1}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(),
		Options{SpreadsheetID: "sheet-id"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication(),
	)
	require.NoError(t, err)

	ref, err := c.Append(context.Background(), sample)
	require.NoError(t, err)
	assert.Equal(t, "Expenses!A7:D7", ref)

	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Contains(t, gotPath, "sheet-id")
	assert.Contains(t, gotQuery, "valueInputOption=USER_ENTERED")
	require.Len(t, gotBody.Values, 1)
	assert.Equal(t, []any{"2025-06-15 12:30:00", float64(1), "FOOD", "15.50"}, gotBody.Values[0])
}
