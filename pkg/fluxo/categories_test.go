package fluxo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const categoriesJSON = `[
	{"id": 1, "name": "Salary", "type": "RECEITA"},
	{"id": 2, "name": "Groceries", "type": "DESPESA"},
	{"id": 3, "name": "Housing", "type": "DESPESA"},
	{"id": 4, "name": "Other"}
]`

func TestCategoryService_List(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, matchRequest("GET", "/categories", nil), mock.Anything).Return(categoriesJSON, nil)

	categories, err := client.Categories.List(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 4)
	assert.Equal(t, "Groceries", categories[1].Name)
	assert.Equal(t, TypeExpense, categories[1].Type)
	mockTransport.AssertExpectations(t)
}

func TestCategoryService_ForType(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, matchRequest("GET", "/categories", nil), mock.Anything).Return(categoriesJSON, nil)

	expense, err := client.Categories.ForType(context.Background(), TypeExpense)
	require.NoError(t, err)

	names := make([]string, 0, len(expense))
	for _, c := range expense {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Groceries", "Housing", "Other"}, names)
}

func TestCategoryService_List_Error(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	categories, err := client.Categories.List(context.Background())

	assert.Nil(t, categories)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list categories")
}

func TestPaymentMethodService_List(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, matchRequest("GET", "/payment-methods", nil), mock.Anything).
		Return(`[{"id": 1, "name": "Pix"}, {"id": 2, "name": "Credit card"}]`, nil)

	methods, err := client.PaymentMethods.List(context.Background())

	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "Pix", methods[0].Name)
	mockTransport.AssertExpectations(t)
}

func TestPaymentMethodService_List_EmptyBody(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	methods, err := client.PaymentMethods.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, methods)
	assert.Empty(t, methods)
}
