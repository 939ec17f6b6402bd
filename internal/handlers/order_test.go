package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ecomm-labs/ecommerce-backend/internal/db"
	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]models.Order)}
}

func orderKey(email, id string) string { return email + "/" + id }

func (s *fakeOrderStore) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[orderKey(order.PK, order.SK)] = *order
	return nil
}

func (s *fakeOrderStore) GetAll(ctx context.Context, limit int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeOrderStore) GetByEmail(ctx context.Context, email string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.PK == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) GetOne(ctx context.Context, email, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderKey(email, orderID)]; ok {
		return &o, nil
	}
	return nil, db.ErrOrderNotFound
}

func (s *fakeOrderStore) Delete(ctx context.Context, email, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderKey(email, orderID)]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	delete(s.orders, orderKey(email, orderID))
	return &o, nil
}

func setupOrders(t *testing.T) (*fakeOrderStore, *fakeProductStore, *fakeNotifier, http.Handler) {
	t.Helper()
	orders := newFakeOrderStore()
	products := newFakeProductStore()
	notifier := newFakeNotifier()
	h := NewOrderHandler(orders, products, notifier, 100)
	return orders, products, notifier, NewOrderRouter(h)
}

func seedProduct(t *testing.T, store *fakeProductStore, code string, price float64) models.Product {
	t.Helper()
	p, err := store.Create(context.Background(), models.ProductInput{
		ProductName: code, Code: code, Price: price,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return *p
}

func validOrderRequest(productIDs ...string) map[string]any {
	return map[string]any{
		"email":      "customer@example.com",
		"productIds": productIDs,
		"payment":    "CASH",
		"shipping": map[string]any{
			"type":    "ECONOMIC",
			"carrier": "CORREIOS",
		},
	}
}

func TestCreateOrderUnresolvedProductIs404(t *testing.T) {
	orders, products, notifier, mux := setupOrders(t)
	p1 := seedProduct(t, products, "P1", 10)

	rr := doJSON(t, mux, http.MethodPost, "/orders", validOrderRequest(p1.ID, "MISSING"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != "Some product was not found" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
	if len(orders.orders) != 0 {
		t.Fatalf("no partial order may be persisted")
	}
	select {
	case ev := <-notifier.orderEvents:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateOrderComputesTotalAndPublishes(t *testing.T) {
	orders, products, notifier, mux := setupOrders(t)
	p1 := seedProduct(t, products, "P1", 10)
	p2 := seedProduct(t, products, "P2", 25)

	rr := doJSON(t, mux, http.MethodPost, "/orders", validOrderRequest(p1.ID, p2.ID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.OrderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Billing.TotalPrice != 35 {
		t.Fatalf("expected total 35, got %v", resp.Billing.TotalPrice)
	}
	if resp.Email != "customer@example.com" || resp.ID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(orders.orders) != 1 {
		t.Fatalf("expected one persisted order")
	}

	// The publish is awaited before the response, so the event is
	// already recorded.
	select {
	case published := <-notifier.orderEvents:
		if published.eventType != models.OrderCreated {
			t.Fatalf("expected CREATED, got %s", published.eventType)
		}
		if published.event.OrderID != resp.ID {
			t.Fatalf("event order id mismatch: %+v", published.event)
		}
		if len(published.event.ProductCodes) != 2 {
			t.Fatalf("expected 2 product codes, got %+v", published.event.ProductCodes)
		}
	default:
		t.Fatalf("expected exactly one published event before the response")
	}
	select {
	case ev := <-notifier.orderEvents:
		t.Fatalf("expected exactly one event, got a second: %+v", ev)
	default:
	}
}

func TestDeleteOrderPublishesDeleted(t *testing.T) {
	_, products, notifier, mux := setupOrders(t)
	p1 := seedProduct(t, products, "P1", 10)

	rr := doJSON(t, mux, http.MethodPost, "/orders", validOrderRequest(p1.ID))
	var resp models.OrderResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	<-notifier.orderEvents // drain the CREATED event

	rr = doJSON(t, mux, http.MethodDelete,
		"/orders?email=customer@example.com&orderId="+resp.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var removed models.OrderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &removed); err != nil {
		t.Fatalf("decode removed: %v", err)
	}
	if removed.ID != resp.ID {
		t.Fatalf("expected the removed record back, got %+v", removed)
	}

	published := <-notifier.orderEvents
	if published.eventType != models.OrderDeleted {
		t.Fatalf("expected DELETED, got %s", published.eventType)
	}
}

func TestDeleteOrderMissingIs404(t *testing.T) {
	_, _, _, mux := setupOrders(t)

	rr := doJSON(t, mux, http.MethodDelete, "/orders?email=a@b.c&orderId=nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestDeleteOrderRequiresParams(t *testing.T) {
	_, _, _, mux := setupOrders(t)

	rr := doJSON(t, mux, http.MethodDelete, "/orders?email=a@b.c", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetOneOrderMissingIs404(t *testing.T) {
	_, _, _, mux := setupOrders(t)

	rr := doJSON(t, mux, http.MethodGet, "/orders?email=a@b.c&orderId=nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListOrdersByEmail(t *testing.T) {
	_, products, notifier, mux := setupOrders(t)
	p1 := seedProduct(t, products, "P1", 10)

	doJSON(t, mux, http.MethodPost, "/orders", validOrderRequest(p1.ID))
	<-notifier.orderEvents

	rr := doJSON(t, mux, http.MethodGet, "/orders?email=customer@example.com", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var list []models.OrderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 order, got %d", len(list))
	}

	rr = doJSON(t, mux, http.MethodGet, "/orders?email=other@example.com", nil)
	var empty []models.OrderResponse
	json.Unmarshal(rr.Body.Bytes(), &empty)
	if len(empty) != 0 {
		t.Fatalf("expected no orders for another email")
	}
}

func TestCreateOrderRejectsMalformedBody(t *testing.T) {
	_, _, _, mux := setupOrders(t)

	rr := doJSON(t, mux, http.MethodPost, "/orders", map[string]any{"email": "not-an-order"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
