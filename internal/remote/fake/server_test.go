package fake

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/remote"
)

func do(t *testing.T, h http.Handler, method, path, body, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_RequiresToken(t *testing.T) {
	srv := New(WithToken("k", "s"))
	h := srv.Handler()

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, ResourcePath, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, ResourcePath, "", "token k:wrong").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, ResourcePath, "", "token k:s").Code)
}

func TestServer_CreateRecordsCall(t *testing.T) {
	clock := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	srv := New(WithClock(func() time.Time { return clock }))

	resp := do(t, srv.Handler(), http.MethodPost, ResourcePath, `{"description":"buy milk","status":"Open"}`, "")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"name":"TODO-00001"`)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, remote.WriteRequest{Description: "buy milk", Status: "Open"}, calls[0].Body)

	rec, ok := srv.Record("TODO-00001")
	require.True(t, ok)
	assert.Equal(t, "2025-04-01 12:00:00", rec.Creation)
}

func TestServer_MalformedBody(t *testing.T) {
	srv := New()

	resp := do(t, srv.Handler(), http.MethodPost, ResourcePath, `{not json`, "")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, srv.Records())
}

func TestServer_UnknownRecord(t *testing.T) {
	srv := New()
	h := srv.Handler()

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, ResourcePath+"/TODO-1", `{"description":"x","status":"Open"}`, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, ResourcePath+"/TODO-1", "", "").Code)
}

func TestServer_FailNextIsConsumedOnce(t *testing.T) {
	srv := New()
	name := srv.Seed("x", remote.StatusOpen)
	srv.FailNext(http.MethodDelete, http.StatusInternalServerError)
	h := srv.Handler()

	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodDelete, ResourcePath+"/"+name, "", "").Code)
	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodDelete, ResourcePath+"/"+name, "", "").Code)
	assert.Empty(t, srv.Records())
}

func TestServer_Reset(t *testing.T) {
	srv := New()
	srv.Seed("x", remote.StatusOpen)
	srv.FailNext(http.MethodGet, http.StatusTeapot)

	srv.Reset()

	assert.Empty(t, srv.Records())
	assert.Equal(t, http.StatusOK, do(t, srv.Handler(), http.MethodGet, ResourcePath, "", "").Code)
}
