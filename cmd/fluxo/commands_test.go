package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/config"
	"github.com/fluxo-app/fluxo-go/internal/observability"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, mux *http.ServeMux) (*app, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := fluxo.NewClient(&fluxo.ClientOptions{BaseURL: srv.URL, Location: time.UTC})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &app{
		cfg:     &config.Config{ListenAddr: ":0", Timeout: time.Second},
		client:  client,
		logger:  zap.NewNop(),
		metrics: observability.NewMetrics(),
		out:     out,
	}, out
}

func TestRun_Dashboard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "description": "Lunch", "amount": "25.00", "date": "2025-08-03", "type": "DESPESA", "category": {"id": 3, "name": "Food"}}]`))
	})
	mux.HandleFunc("/transactions/recent-activity", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	a, out := newTestApp(t, mux)

	require.NoError(t, a.run(context.Background(), "dashboard", []string{"-month", "2025-08"}))
	assert.Contains(t, out.String(), "August 2025")
	assert.Contains(t, out.String(), "Food")

	out.Reset()
	require.NoError(t, a.run(context.Background(), "dashboard", []string{"-month", "2025-08", "-json"}))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Contains(t, resp, "summary")

	assert.Error(t, a.run(context.Background(), "dashboard", []string{"-month", "08/2025"}))
}

func TestRun_Preview(t *testing.T) {
	a, out := newTestApp(t, http.NewServeMux())

	require.NoError(t, a.run(context.Background(), "preview", []string{"-amount", "100", "-date", "2025-01-10", "-count", "3", "-distribute"}))
	assert.Contains(t, out.String(), "R$ 33,34")
	assert.Contains(t, out.String(), "total R$ 100,00")
}

func TestRun_UpdateSendsOnlyGivenFlags(t *testing.T) {
	var body map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/transactions/5", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id": 5, "description": "Gym", "amount": "89.90", "type": "DESPESA"}`))
	})
	a, out := newTestApp(t, mux)

	require.NoError(t, a.run(context.Background(), "update", []string{"-id", "5", "-amount", "89,90"}))
	assert.Equal(t, map[string]interface{}{"amount": "89.90"}, body)
	assert.Contains(t, out.String(), "Gym")

	assert.Error(t, a.run(context.Background(), "update", []string{"-amount", "1"}))
	assert.Error(t, a.run(context.Background(), "update", []string{"-id", "5", "-date", "tomorrow"}))
}

func TestRun_CategoriesByType(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Salary", "type": "RECEITA"}, {"id": 2, "name": "Food", "type": "DESPESA"}]`))
	})
	a, out := newTestApp(t, mux)

	require.NoError(t, a.run(context.Background(), "categories", []string{"-type", "income"}))
	assert.Contains(t, out.String(), "Salary")
	assert.NotContains(t, out.String(), "Food")

	assert.Error(t, a.run(context.Background(), "categories", []string{"-type", "transfer"}))
}

func TestRun_Unknown(t *testing.T) {
	a, _ := newTestApp(t, http.NewServeMux())
	assert.Error(t, a.run(context.Background(), "frobnicate", nil))
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want fluxo.TransactionType
	}{
		{"", ""},
		{"income", fluxo.TypeIncome},
		{"DESPESA", fluxo.TypeExpense},
	}
	for _, tt := range tests {
		got, err := parseType(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseType("both")
	assert.Error(t, err)
}
