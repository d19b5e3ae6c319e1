package fluxo

import (
	"context"
	"net/http"

	internalTypes "github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/pkg/errors"
)

// categoryService implements CategoryService
type categoryService struct {
	client *Client
}

// List retrieves all categories
func (s *categoryService) List(ctx context.Context) ([]*Category, error) {
	var result []*Category
	req := &internalTypes.Request{Method: http.MethodGet, Path: "/categories"}
	if err := s.client.execute(ctx, req, &result); err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	if result == nil {
		result = []*Category{}
	}
	return result, nil
}

// ForType keeps the categories of one transaction type. Categories
// without a type are offered for both.
func (s *categoryService) ForType(ctx context.Context, t TransactionType) ([]*Category, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*Category, 0, len(all))
	for _, c := range all {
		if c == nil {
			continue
		}
		if c.Type == "" || c.Type == t {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// paymentMethodService implements PaymentMethodService
type paymentMethodService struct {
	client *Client
}

// List retrieves all payment methods
func (s *paymentMethodService) List(ctx context.Context) ([]*PaymentMethod, error) {
	var result []*PaymentMethod
	req := &internalTypes.Request{Method: http.MethodGet, Path: "/payment-methods"}
	if err := s.client.execute(ctx, req, &result); err != nil {
		return nil, errors.Wrap(err, "failed to list payment methods")
	}

	if result == nil {
		result = []*PaymentMethod{}
	}
	return result, nil
}
