package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method         string
	path           string
	query          string
	idempotencyKey string
	authorization  string
	body           map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.idempotencyKey = r.Header.Get("Idempotency-Key")
		rec.authorization = r.Header.Get("Authorization")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSubmitTransaction(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusCreated, `{"transactionID":"tx-1"}`)

	out, err := execute(t, "--url", srv.URL, "--user", "admin", "--password", "secret",
		"transactions", "submit", "--sender", "s", "--receiver", "r", "--amount", "40.00", "--type", "presentment", "--id", "tx-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/transactions", rec.path)
	assert.NotEmpty(t, rec.idempotencyKey)
	assert.Contains(t, rec.authorization, "Basic ")
	assert.Equal(t, "presentment", rec.body["transactionType"])
	assert.Equal(t, "tx-1", rec.body["transactionID"])
	assert.InDelta(t, 40.0, rec.body["amount"], 0.0001)
	assert.Contains(t, out, `"transactionID": "tx-1"`)
}

func TestLoadUsesGivenIdempotencyKey(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)

	_, err := execute(t, "--url", srv.URL, "--token", "jwt",
		"accounts", "load", "acc-1", "--amount", "25", "--idempotency-key", "key-1")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/accounts/acc-1/load", rec.path)
	assert.Equal(t, "key-1", rec.idempotencyKey)
	assert.Equal(t, "Bearer jwt", rec.authorization)
	assert.NotContains(t, rec.body, "transactionID")
}

func TestListAccountsPagination(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"accounts":[],"total":0}`)

	_, err := execute(t, "--url", srv.URL, "accounts", "list", "--limit", "5", "--offset", "10")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "limit=5&offset=10", rec.query)
	assert.Empty(t, rec.idempotencyKey)
}

func TestErrorStatusFailsCommand(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"error":"not found","kind":"not_found"}`)

	out, err := execute(t, "--url", srv.URL, "accounts", "get", "missing")
	require.Error(t, err)
	assert.Contains(t, out, `"kind": "not_found"`)
}

func TestCheckConsistency(t *testing.T) {
	t.Run("passed", func(t *testing.T) {
		srv, rec := newTestServer(t, http.StatusOK, `{"status":"consistent","consistent":true,"unbalanced":[]}`)

		out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/ledger/consistency", rec.path)
		assert.Contains(t, out, "Consistency check PASSED")
		assert.Contains(t, out, "Status: consistent")
	})

	t.Run("inconsistent", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusConflict,
			`{"status":"inconsistent","consistent":false,"unbalanced":[{"transactionID":"tx-9","sum":"0.01"}]}`)

		out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
		require.Error(t, err)
		assert.Contains(t, out, "Unbalanced transactions: 1")
	})

	t.Run("server error", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusInternalServerError, `boom`)

		out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
		require.Error(t, err)
		assert.Contains(t, out, "Status: 500")
	})
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, []byte(`{"a":1}`))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	buf.Reset()
	printJSON(&buf, []byte("plain"))
	assert.Equal(t, "plain\n", buf.String())
}

func TestHashPasswordCmd(t *testing.T) {
	orig := bcryptGenerate
	bcryptGenerate = func(p []byte, cost int) ([]byte, error) {
		return []byte("hashed-value"), nil
	}
	defer func() { bcryptGenerate = orig }()

	out, err := execute(t, "hash-password", "secret")
	require.NoError(t, err)
	assert.Equal(t, "hashed-value\n", out)
}
