package fluxo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, time.Local, client.Location())
	assert.Equal(t, DefaultPageSize, client.pageSize())
	assert.NotNil(t, client.Transactions)
	assert.NotNil(t, client.Categories)
	assert.NotNil(t, client.PaymentMethods)
}

func TestClient_EndToEnd(t *testing.T) {
	var created map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			_, _ = w.Write([]byte(`[{"id": 1, "amount": "42.10", "date": "2025-08-03", "type": "DESPESA", "status": "PAGO"}]`))
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 2, "amount": "10.00", "date": "2025-08-04", "type": "RECEITA"}`))
		}
	})
	mux.HandleFunc("/transactions/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"statusCode": 404, "message": "Transaction 99 not found", "error": "Not Found"}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(&ClientOptions{BaseURL: server.URL, Location: time.UTC})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	list, err := client.Transactions.Monthly(ctx, NewMonthWindow(2025, time.August, time.UTC))
	require.NoError(t, err)
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, "42.10", FormatAmount(list.Transactions[0].Amount))

	txns, err := client.Transactions.Create(ctx, &CreateTransactionParams{
		Description:     "Refund",
		Amount:          dec("10"),
		Date:            time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
		Type:            TypeIncome,
		CategoryID:      1,
		PaymentMethodID: 1,
	})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "10.00", created["amount"])
	assert.Equal(t, "2025-08-04", created["date"])
	assert.Equal(t, float64(1), created["repeatCount"])
	assert.Equal(t, false, created["distributeTotal"])

	_, err = client.Transactions.Get(ctx, 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Transaction 99 not found", UserMessage(err, "fallback"))
}

func TestClient_FailedLoadIsNotRetriedByDefault(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(&ClientOptions{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Transactions.Monthly(context.Background(), NewMonthWindow(2025, time.August, nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type countingLimiter struct {
	calls int32
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	atomic.AddInt32(&l.calls, 1)
	return ctx.Err()
}

func TestClient_RateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	client, err := NewClient(&ClientOptions{BaseURL: server.URL, RateLimiter: limiter})
	require.NoError(t, err)

	_, err = client.PaymentMethods.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&limiter.calls))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.PaymentMethods.List(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
