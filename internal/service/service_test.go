package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	perrors "github.com/abgdnv/productapi/internal/errors"
	"github.com/abgdnv/productapi/internal/store"
	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/abgdnv/productapi/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []store.Product
	product  store.Product
	error    error

	createParams store.CreateParams
	updateParams store.UpdateParams
}

// Simulate finding a product by ID
func (m *mockProductStore) FindByID(_ context.Context, _ int64) (*store.Product, error) {
	return &m.product, m.error
}

// Simulate finding all products
func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	return m.products, m.error
}

// Simulate creating a product
func (m *mockProductStore) Create(_ context.Context, params store.CreateParams) (*store.Product, error) {
	m.createParams = params
	return &m.product, m.error
}

// Simulate updating a product
func (m *mockProductStore) Update(_ context.Context, params store.UpdateParams) (*store.Product, error) {
	m.updateParams = params
	return &m.product, m.error
}

// Simulate deleting a product by ID
func (m *mockProductStore) DeleteByID(_ context.Context, _ int64) (*store.Product, error) {
	return &m.product, m.error
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []messaging.Event
	error  error
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.events = append(p.events, event)
	return p.error
}

func ptr[T any](v T) *T { return &v }

func Test_ProductService_FindByID(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		productID   int64
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product found",
			mockStore: &mockProductStore{
				product: store.Product{ID: 7, Name: "Toy", Description: "wooden", Price: 9.5, Qty: 3},
			},
			productID: 7,
			expected:  &ProductDto{ID: 7, Name: "Toy", Description: "wooden", Price: 9.5, Qty: 3},
		},
		{
			name: "Error - product not found",
			mockStore: &mockProductStore{
				error: perrors.ErrProductNotFound,
			},
			productID:   7,
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, nil)
			// when
			found, err := service.FindByID(context.Background(), tc.productID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name         string
		mockStore    *mockProductStore
		expectedList []ProductDto
		expectError  error
	}{
		{
			name: "Success - products found",
			mockStore: &mockProductStore{
				products: []store.Product{{ID: 1, Name: "Toy"}, {ID: 2, Name: "Ball", Qty: 4}},
			},
			expectedList: []ProductDto{{ID: 1, Name: "Toy"}, {ID: 2, Name: "Ball", Qty: 4}},
		},
		{
			name: "Success - no products",
			mockStore: &mockProductStore{
				products: []store.Product{},
			},
			expectedList: []ProductDto{},
		},
		{
			name: "Error - store error",
			mockStore: &mockProductStore{
				error: ErrStoreError,
			},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, nil)
			// when
			found, err := service.FindAll(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedList, found)
		})
	}
}

func Test_ProductService_Create(t *testing.T) {
	testCases := []struct {
		name           string
		mockStore      *mockProductStore
		product        ProductCreateDto
		expected       *ProductDto
		expectedParams store.CreateParams
		expectError    error
	}{
		{
			name: "Success - product created",
			mockStore: &mockProductStore{
				product: store.Product{ID: 1, Name: "Toy", Description: "red", Price: 100, Qty: 10},
			},
			product:        ProductCreateDto{Name: ptr("Toy"), Description: ptr("red"), Price: ptr(100.0), Qty: ptr(int32(10))},
			expected:       &ProductDto{ID: 1, Name: "Toy", Description: "red", Price: 100, Qty: 10},
			expectedParams: store.CreateParams{Name: "Toy", Description: "red", Price: 100, Qty: 10},
		},
		{
			name: "Success - zero price and qty are kept",
			mockStore: &mockProductStore{
				product: store.Product{ID: 2, Name: "Free sample"},
			},
			product:        ProductCreateDto{Name: ptr("Free sample"), Description: ptr(""), Price: ptr(0.0), Qty: ptr(int32(0))},
			expected:       &ProductDto{ID: 2, Name: "Free sample"},
			expectedParams: store.CreateParams{Name: "Free sample"},
		},
		{
			name: "Error - name conflict",
			mockStore: &mockProductStore{
				error: perrors.ErrProductNameConflict,
			},
			product:        ProductCreateDto{Name: ptr("Toy"), Description: ptr("red"), Price: ptr(100.0), Qty: ptr(int32(10))},
			expectedParams: store.CreateParams{Name: "Toy", Description: "red", Price: 100, Qty: 10},
			expectError:    perrors.ErrProductNameConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &recordingPublisher{}
			service := NewService(tc.mockStore, publisher)
			// when
			created, err := service.Create(context.Background(), tc.product)
			// then
			assert.Equal(t, tc.expectedParams, tc.mockStore.createParams)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				assert.Empty(t, publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, created)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, messaging.ProductsCreatedSubject, publisher.events[0].Subject())
		})
	}
}

func Test_ProductService_Update(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		id          int64
		product     ProductUpdateDto
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product updated",
			mockStore: &mockProductStore{
				product: store.Product{ID: 5, Name: "Toy v2", Description: "blue", Price: 12.25, Qty: 1},
			},
			id:       5,
			product:  ProductUpdateDto{Name: ptr("Toy v2"), Description: ptr("blue"), Price: ptr(12.25), Qty: ptr(int32(1))},
			expected: &ProductDto{ID: 5, Name: "Toy v2", Description: "blue", Price: 12.25, Qty: 1},
		},
		{
			name: "Error - product not found",
			mockStore: &mockProductStore{
				error: perrors.ErrProductNotFound,
			},
			id:          5,
			product:     ProductUpdateDto{Name: ptr("Toy v2"), Description: ptr("blue"), Price: ptr(12.25), Qty: ptr(int32(1))},
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &recordingPublisher{}
			service := NewService(tc.mockStore, publisher)
			// when
			updated, err := service.Update(context.Background(), tc.id, tc.product)
			// then
			assert.Equal(t, tc.id, tc.mockStore.updateParams.ID)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				assert.Empty(t, publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, messaging.ProductsUpdatedSubject, publisher.events[0].Subject())
		})
	}
}

func Test_ProductService_DeleteByID(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product deleted",
			mockStore: &mockProductStore{
				product: store.Product{ID: 3, Name: "Gone", Price: 1, Qty: 2},
			},
			expected: &ProductDto{ID: 3, Name: "Gone", Price: 1, Qty: 2},
		},
		{
			name: "Error - product not found",
			mockStore: &mockProductStore{
				error: perrors.ErrProductNotFound,
			},
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &recordingPublisher{}
			service := NewService(tc.mockStore, publisher)
			// when
			deleted, err := service.DeleteByID(context.Background(), 3)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, deleted)
				assert.Empty(t, publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, deleted)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, messaging.ProductsDeletedSubject, publisher.events[0].Subject())

			payload, err := publisher.events[0].Payload()
			require.NoError(t, err)
			var event events.ProductEvent
			require.NoError(t, json.Unmarshal(payload, &event))
			assert.Equal(t, int64(3), event.Product.ID)
			assert.Equal(t, "Gone", event.Product.Name)
		})
	}
}

func Test_ProductService_PublishFailureIsNotReturned(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: store.Product{ID: 1, Name: "Toy"}}
	publisher := &recordingPublisher{error: errors.New("nats down")}
	service := NewService(mockStore, publisher)

	// when
	created, err := service.Create(context.Background(),
		ProductCreateDto{Name: ptr("Toy"), Description: ptr(""), Price: ptr(1.0), Qty: ptr(int32(1))})

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Len(t, publisher.events, 1)
}
