package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-api/internal/cart"
	"storefront-api/internal/category"
	"storefront-api/internal/order"
	"storefront-api/internal/product"
	"storefront-api/internal/user"
	"storefront-api/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserService mocks user.Service
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, username, email, password string) (string, user.User, error) {
	args := m.Called(ctx, username, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, username, password string) (string, user.User, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

// MockProductService mocks product.Service
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetProduct(ctx context.Context, productID int64, includeInactive bool) (*product.Product, error) {
	args := m.Called(ctx, productID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetList(ctx context.Context, opts product.ListOptions) ([]*product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Search(ctx context.Context, opts product.SearchOptions) ([]*product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, params product.CreateProductParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, params product.UpdateProductParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Deactivate(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// MockCategoryService mocks category.Service
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) GetCategories(ctx context.Context, filter *string, limit, page *int32) ([]*category.Category, error) {
	args := m.Called(ctx, filter, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) AddCategory(ctx context.Context, name string, description *string) (*category.Category, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

// MockCartService mocks cart.Service
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Add(ctx context.Context, userID, productID int64, quantity int) (*cart.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartItem), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartService) Remove(ctx context.Context, userID, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartService) List(ctx context.Context, userID int64) ([]cart.CartRow, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.CartRow), args.Error(1)
}

func (m *MockCartService) Total(ctx context.Context, userID int64) (cart.CartSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(cart.CartSummary), args.Error(1)
}

// MockOrderService mocks order.Service
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateFromCart(ctx context.Context, userID int64) (*order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID int64, next order.Status) (*order.Order, error) {
	args := m.Called(ctx, orderID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, userID int64, status *order.Status, limit, page int32) ([]*order.Order, int64, error) {
	args := m.Called(ctx, userID, status, limit, page)
	var orders []*order.Order
	if args.Get(0) != nil {
		orders = args.Get(0).([]*order.Order)
	}
	return orders, args.Get(1).(int64), args.Error(2)
}

type testServer struct {
	mux      *http.ServeMux
	users    *MockUserService
	products *MockProductService
	cats     *MockCategoryService
	carts    *MockCartService
	orders   *MockOrderService
}

func newTestServer() *testServer {
	ts := &testServer{
		users:    new(MockUserService),
		products: new(MockProductService),
		cats:     new(MockCategoryService),
		carts:    new(MockCartService),
		orders:   new(MockOrderService),
	}
	ts.mux = NewRouter(&Handler{
		UserSvc:     ts.users,
		ProductSvc:  ts.products,
		CategorySvc: ts.cats,
		CartSvc:     ts.carts,
		OrderSvc:    ts.orders,
	})
	return ts
}

// do issues a request against the router, optionally as an
// authenticated user.
func (ts *testServer) do(t *testing.T, method, target, body string, userID int64, role string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}

	if userID != 0 {
		r = r.WithContext(utils.SetUserContext(r.Context(), userID, "tester", role))
	}

	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, r)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHealth(t *testing.T) {
	ts := newTestServer()

	w, env := ts.do(t, http.MethodGet, "/health", "", 0, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestRegisterHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ts := newTestServer()

		ts.users.On("Register", mock.Anything, "alice", "alice@example.com", "s3cret").
			Return("tok", user.User{ID: 1, Username: "alice"}, nil).Once()

		w, env := ts.do(t, http.MethodPost, "/api/auth/register",
			`{"username":"alice","email":"alice@example.com","password":"s3cret"}`, 0, "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
		ts.users.AssertExpectations(t)
	})

	t.Run("Duplicate username maps to conflict", func(t *testing.T) {
		ts := newTestServer()

		ts.users.On("Register", mock.Anything, "alice", "alice@example.com", "s3cret").
			Return("", user.User{}, user.ErrUsernameExists).Once()

		w, env := ts.do(t, http.MethodPost, "/api/auth/register",
			`{"username":"alice","email":"alice@example.com","password":"s3cret"}`, 0, "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, codeConflict, env.ErrorCode)
	})

	t.Run("Missing fields rejected before the service", func(t *testing.T) {
		ts := newTestServer()

		w, env := ts.do(t, http.MethodPost, "/api/auth/register",
			`{"username":"alice"}`, 0, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, codeValidationError, env.ErrorCode)
		ts.users.AssertNotCalled(t, "Register")
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("Bad credentials map to unauthorized", func(t *testing.T) {
		ts := newTestServer()

		ts.users.On("Login", mock.Anything, "alice", "wrong").
			Return("", user.User{}, user.ErrInvalidCredentials).Once()

		w, env := ts.do(t, http.MethodPost, "/api/auth/login",
			`{"username":"alice","password":"wrong"}`, 0, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, codeUnauthorized, env.ErrorCode)
	})
}

func TestGetProductHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ts := newTestServer()

		ts.products.On("GetProduct", mock.Anything, int64(42), false).
			Return(&product.Product{ID: 42, Name: "Keyboard", Price: decimal.RequireFromString("59.90")}, nil).Once()

		w, env := ts.do(t, http.MethodGet, "/api/products/42", "", 0, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
	})

	t.Run("Not found", func(t *testing.T) {
		ts := newTestServer()

		ts.products.On("GetProduct", mock.Anything, int64(42), false).
			Return(nil, product.ErrProductNotFound).Once()

		w, env := ts.do(t, http.MethodGet, "/api/products/42", "", 0, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, codeNotFound, env.ErrorCode)
	})

	t.Run("Non-numeric id rejected", func(t *testing.T) {
		ts := newTestServer()

		w, env := ts.do(t, http.MethodGet, "/api/products/abc", "", 0, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, codeValidationError, env.ErrorCode)
	})
}

func TestCreateProductHandler(t *testing.T) {
	t.Run("Requires authentication", func(t *testing.T) {
		ts := newTestServer()

		w, env := ts.do(t, http.MethodPost, "/api/products",
			`{"name":"Keyboard","price":"59.90","stock":10}`, 0, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, codeUnauthorized, env.ErrorCode)
	})

	t.Run("Requires admin role", func(t *testing.T) {
		ts := newTestServer()

		w, env := ts.do(t, http.MethodPost, "/api/products",
			`{"name":"Keyboard","price":"59.90","stock":10}`, 1, "user")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, codeForbidden, env.ErrorCode)
	})

	t.Run("Success as admin", func(t *testing.T) {
		ts := newTestServer()

		ts.products.On("Create", mock.Anything, mock.Anything).
			Return(&product.Product{ID: 42, Name: "Keyboard"}, nil).Once()

		w, env := ts.do(t, http.MethodPost, "/api/products",
			`{"name":"Keyboard","price":"59.90","stock":10}`, 1, "admin")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
	})
}

func TestAddToCartHandler(t *testing.T) {
	t.Run("Requires authentication", func(t *testing.T) {
		ts := newTestServer()

		w, env := ts.do(t, http.MethodPost, "/api/cart/items/42", `{"quantity":2}`, 0, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, codeUnauthorized, env.ErrorCode)
		ts.carts.AssertNotCalled(t, "Add")
	})

	t.Run("Success", func(t *testing.T) {
		ts := newTestServer()

		ts.carts.On("Add", mock.Anything, int64(1), int64(42), 2).
			Return(&cart.CartItem{ID: 7}, nil).Once()

		w, env := ts.do(t, http.MethodPost, "/api/cart/items/42", `{"quantity":2}`, 1, "user")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
		ts.carts.AssertExpectations(t)
	})

	t.Run("Missing body defaults to quantity one", func(t *testing.T) {
		ts := newTestServer()

		ts.carts.On("Add", mock.Anything, int64(1), int64(42), 1).
			Return(&cart.CartItem{ID: 7}, nil).Once()

		w, _ := ts.do(t, http.MethodPost, "/api/cart/items/42", "", 1, "user")

		assert.Equal(t, http.StatusCreated, w.Code)
		ts.carts.AssertExpectations(t)
	})

	t.Run("Insufficient stock maps to conflict", func(t *testing.T) {
		ts := newTestServer()

		ts.carts.On("Add", mock.Anything, int64(1), int64(42), 9).
			Return(nil, &product.StockError{ProductID: 42, Requested: 9, Available: 5}).Once()

		w, env := ts.do(t, http.MethodPost, "/api/cart/items/42", `{"quantity":9}`, 1, "user")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, codeInsufficientStock, env.ErrorCode)
		assert.Contains(t, env.Message, "available 5")
	})
}

func TestGetCartTotalHandler(t *testing.T) {
	ts := newTestServer()

	ts.carts.On("Total", mock.Anything, int64(1)).
		Return(cart.CartSummary{
			Total:       decimal.RequireFromString("35.00"),
			ItemCount:   5,
			UniqueItems: 2,
		}, nil).Once()

	w, env := ts.do(t, http.MethodGet, "/api/cart/total", "", 1, "user")

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var resp cartTotalResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, 5, resp.ItemCount)
	assert.Equal(t, 2, resp.UniqueItems)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("35.00")))
}

func TestCreateOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ts := newTestServer()

		ts.orders.On("CreateFromCart", mock.Anything, int64(1)).
			Return(&order.Order{
				ID:     9,
				Status: order.StatusPending,
				Total:  decimal.RequireFromString("30.00"),
				Items: []order.OrderItem{
					{ProductID: 42, Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
				},
			}, nil).Once()

		w, env := ts.do(t, http.MethodPost, "/api/orders", "", 1, "user")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
	})

	t.Run("Empty cart maps to bad request", func(t *testing.T) {
		ts := newTestServer()

		ts.orders.On("CreateFromCart", mock.Anything, int64(1)).
			Return(nil, order.ErrEmptyCart).Once()

		w, env := ts.do(t, http.MethodPost, "/api/orders", "", 1, "user")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, codeEmptyCart, env.ErrorCode)
	})
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	t.Run("Requires admin", func(t *testing.T) {
		ts := newTestServer()

		w, env := ts.do(t, http.MethodPut, "/api/orders/9/status", `{"status":"confirmed"}`, 1, "user")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, codeForbidden, env.ErrorCode)
	})

	t.Run("Invalid status value rejected", func(t *testing.T) {
		ts := newTestServer()

		w, env := ts.do(t, http.MethodPut, "/api/orders/9/status", `{"status":"teleported"}`, 1, "admin")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, codeValidationError, env.ErrorCode)
	})

	t.Run("Invalid transition maps to conflict", func(t *testing.T) {
		ts := newTestServer()

		ts.orders.On("UpdateStatus", mock.Anything, int64(9), order.StatusCancelled).
			Return(nil, &order.TransitionError{From: order.StatusDelivered, To: order.StatusCancelled}).Once()

		w, env := ts.do(t, http.MethodPut, "/api/orders/9/status", `{"status":"cancelled"}`, 1, "admin")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, codeInvalidTransition, env.ErrorCode)
	})
}

func TestCancelOrderHandler(t *testing.T) {
	ts := newTestServer()

	ts.orders.On("Cancel", mock.Anything, int64(1), int64(9)).
		Return(&order.Order{ID: 9, Status: order.StatusCancelled}, nil).Once()

	w, env := ts.do(t, http.MethodPut, "/api/orders/9/cancel", "", 1, "user")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	ts.orders.AssertExpectations(t)
}
