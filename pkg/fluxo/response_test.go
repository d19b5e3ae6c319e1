package fluxo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures warnings
type recordingLogger struct {
	mock.Mock
}

func (l *recordingLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {}
func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {}
func (l *recordingLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Called(msg)
}

func TestListResponse_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantShape listShape
		wantLen   int
		wantPage  Pagination
		wantMore  bool
	}{
		{
			name:      "raw array",
			payload:   `[{"id": 1}, {"id": 2}, {"id": 3}]`,
			wantShape: shapeArray,
			wantLen:   3,
			wantPage:  Pagination{Total: 3, TotalPages: 1, CurrentPage: 1, PageSize: 3},
		},
		{
			name:      "full envelope",
			payload:   `{"items": [{"id": 1}], "total": 41, "totalPages": 5, "currentPage": 2, "pageSize": 10}`,
			wantShape: shapeEnvelope,
			wantLen:   1,
			wantPage:  Pagination{Total: 41, TotalPages: 5, CurrentPage: 2, PageSize: 10},
			wantMore:  true,
		},
		{
			name:      "envelope without pagination",
			payload:   `{"items": [{"id": 1}, {"id": 2}]}`,
			wantShape: shapeEnvelope,
			wantLen:   2,
			wantPage:  Pagination{Total: 2, TotalPages: 1, CurrentPage: 1, PageSize: 2},
		},
		{
			name:      "envelope without items",
			payload:   `{"total": 0}`,
			wantShape: shapeEnvelope,
			wantPage:  Pagination{Total: 0, TotalPages: 1, CurrentPage: 1, PageSize: 0},
		},
		{
			name:      "null",
			payload:   `null`,
			wantShape: shapeArray,
			wantPage:  Pagination{TotalPages: 1, CurrentPage: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp listResponse
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &resp))

			assert.Equal(t, tt.wantShape, resp.shape)

			list := resp.normalize(nil, time.UTC)
			assert.Len(t, list.Transactions, tt.wantLen)
			assert.Equal(t, tt.wantPage, list.Pagination)
			assert.Equal(t, tt.wantMore, list.HasMore)
		})
	}
}

func TestListResponse_RejectsScalars(t *testing.T) {
	var resp listResponse
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &resp))
	assert.Error(t, json.Unmarshal([]byte(`42`), &resp))
}

func TestWireTransaction_Normalize(t *testing.T) {
	payload := `[{
		"id": 5,
		"description": "Internet",
		"amount": "119.90",
		"date": "2025-08-18",
		"type": "DESPESA",
		"status": "PENDENTE",
		"categoryId": 0,
		"paymentMethodId": 0,
		"seriesId": "abc",
		"installmentNumber": 2,
		"installmentTotal": 12,
		"createdAt": "2025-08-01T10:00:00Z",
		"updatedAt": "2025-08-02T10:00:00Z",
		"category": {"id": 4, "name": "Utilities", "type": "DESPESA"},
		"paymentMethod": {"id": 2, "name": "Credit card"}
	}]`

	var resp listResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	txns := resp.normalize(nil, time.UTC).Transactions
	require.Len(t, txns, 1)

	txn := txns[0]
	assert.Equal(t, "119.90", FormatAmount(txn.Amount))
	assert.Equal(t, "2025-08-18", txn.Date.String())
	assert.Equal(t, "Utilities", txn.CategoryName)
	assert.Equal(t, int64(4), txn.CategoryID)
	assert.Equal(t, "Credit card", txn.PaymentMethodName)
	assert.Equal(t, int64(2), txn.PaymentMethodID)
	assert.Equal(t, "abc", txn.SeriesID)
	assert.Equal(t, 2, txn.InstallmentNumber)
	assert.Equal(t, 12, txn.InstallmentTotal)
	assert.True(t, txn.InSeries())
	assert.Equal(t, time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC), txn.CreatedAt.UTC())
}

func TestWireTransaction_MalformedFieldsDegrade(t *testing.T) {
	logger := new(recordingLogger)
	logger.On("Warn", "malformed transaction amount, using zero").Once()
	logger.On("Warn", "malformed transaction date").Once()

	var resp listResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"id": 1, "amount": "n/a", "date": "yesterday", "seriesId": null}]`), &resp))

	txns := resp.normalize(logger, time.UTC).Transactions
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Amount.IsZero())
	assert.True(t, txns[0].Date.IsZero())
	assert.Equal(t, "", txns[0].CategoryName)
	assert.False(t, txns[0].InSeries())

	logger.AssertExpectations(t)
}

func TestCreatedResponse_Shapes(t *testing.T) {
	for _, tc := range []struct {
		name    string
		payload string
		want    int
	}{
		{name: "single", payload: `{"id": 1, "amount": "10"}`, want: 1},
		{name: "series array", payload: `[{"id": 1}, {"id": 2}]`, want: 2},
		{name: "series envelope", payload: `{"items": [{"id": 1}, {"id": 2}, {"id": 3}]}`, want: 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var resp createdResponse
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &resp))
			assert.Len(t, resp.normalize(nil, time.UTC), tc.want)
		})
	}
}
