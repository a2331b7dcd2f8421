package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/menuboard/config"
	"github.com/ray-remotestate/menuboard/database"
)

var fixedTime = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type envelope struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details map[string]any  `json:"details"`
}

func useMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	prev := database.Restro
	database.Restro = sqlx.NewDb(db, "postgres")
	t.Cleanup(func() {
		database.Restro = prev
		db.Close()
	})
	return mock
}

func setSecret(t *testing.T) {
	t.Helper()
	prev := config.SecretKey
	config.SecretKey = []byte("handlers-test-secret")
	t.Cleanup(func() { config.SecretKey = prev })
}

// serve runs h with the given mux vars and returns the recorder.
func serve(h http.HandlerFunc, req *http.Request, vars map[string]string) *httptest.ResponseRecorder {
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func jsonUnmarshal(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}
