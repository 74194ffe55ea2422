package services_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/mercadopago"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway emulates the two gateway endpoints the shop talks to: the
// preference creation and the payment lookup.
type fakeGateway struct {
	mu       sync.Mutex
	payments map[string]mercadopago.Payment

	preferenceCalls int
	lastPreference  map[string]any
}

func (g *fakeGateway) setPayment(id, status, externalReference string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.payments == nil {
		g.payments = make(map[string]mercadopago.Payment)
	}
	g.payments[id] = mercadopago.Payment{
		ID:                json.Number(id),
		Status:            status,
		ExternalReference: externalReference,
	}
}

func (g *fakeGateway) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/checkout/preferences":
			g.preferenceCalls++
			g.lastPreference = map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&g.lastPreference)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":         "pref-1",
				"init_point": "https://pay.example.com/checkout/pref-1",
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/payments/"):
			id := strings.TrimPrefix(r.URL.Path, "/v1/payments/")
			payment, ok := g.payments[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(payment)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newPaymentService(t *testing.T, db *gorm.DB, gw *fakeGateway) *services.PaymentService {
	t.Helper()

	server := httptest.NewServer(gw.handler())
	t.Cleanup(server.Close)

	client := mercadopago.NewClient(mercadopago.Config{
		AccessToken: "TEST-token",
		APIBase:     server.URL,
	})
	orderRepo := repositories.NewGORMOrderRepository(db)
	return services.NewPaymentService(db, orderRepo, client, nil, nil, "https://shop.example.com")
}

func webhookFor(paymentID string) services.WebhookPayload {
	var payload services.WebhookPayload
	payload.Type = "payment"
	payload.Data.ID = paymentID
	return payload
}

func TestPaymentService_CreatePreference(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := newPaymentService(t, db, gw)

	ring := seedProduct(t, db, "Anillo", 250000, 3)

	result, err := svc.CreatePreference(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 2},
	), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/checkout/pref-1", result.InitPoint)

	// A PENDING order exists, carrying the computed total, and stock is
	// untouched until the payment confirms.
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 500000, int(order.Total))

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 3, got.Stock)

	// The order ID rides along as the external reference so the webhook can
	// find its way back.
	assert.Equal(t, result.OrderID, gw.lastPreference["external_reference"])
}

func TestPaymentService_CreatePreference_NotConfigured(t *testing.T) {
	db := newTestDB(t)
	orderRepo := repositories.NewGORMOrderRepository(db)
	svc := services.NewPaymentService(db, orderRepo, mercadopago.NewClient(mercadopago.Config{}), nil, nil, "https://shop.example.com")

	ring := seedProduct(t, db, "Anillo", 250000, 3)

	_, err := svc.CreatePreference(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 1},
	), nil)
	assert.ErrorIs(t, err, services.ErrGatewayUnavailable)
}

func TestPaymentService_Webhook_ApprovedDecrementsOnce(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := newPaymentService(t, db, gw)

	ring := seedProduct(t, db, "Anillo", 250000, 3)

	result, err := svc.CreatePreference(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 2},
	), nil)
	require.NoError(t, err)

	gw.setPayment("777", "approved", result.OrderID)

	require.NoError(t, svc.HandleWebhook(webhookFor("777")))

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 1, got.Stock)

	// Gateways redeliver webhooks; a replay must not decrement again.
	require.NoError(t, svc.HandleWebhook(webhookFor("777")))
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 1, got.Stock)
}

func TestPaymentService_Webhook_IgnoresNonApproved(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := newPaymentService(t, db, gw)

	ring := seedProduct(t, db, "Anillo", 250000, 3)

	result, err := svc.CreatePreference(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 1},
	), nil)
	require.NoError(t, err)

	gw.setPayment("888", "pending", result.OrderID)
	require.NoError(t, svc.HandleWebhook(webhookFor("888")))

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 3, got.Stock)
}

func TestPaymentService_Webhook_IgnoresUnknowns(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := newPaymentService(t, db, gw)

	// Wrong event type.
	var payload services.WebhookPayload
	payload.Type = "merchant_order"
	payload.Data.ID = "123"
	require.NoError(t, svc.HandleWebhook(payload))

	// Unknown payment: the gateway 404s and the webhook is acknowledged.
	require.NoError(t, svc.HandleWebhook(webhookFor("does-not-exist")))

	// Approved payment referencing an order this shop never created.
	gw.setPayment("999", "approved", "no-such-order")
	require.NoError(t, svc.HandleWebhook(webhookFor("999")))
}

func TestPaymentService_Webhook_ClampsOversoldStock(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := newPaymentService(t, db, gw)

	ring := seedProduct(t, db, "Anillo", 250000, 2)

	result, err := svc.CreatePreference(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 2},
	), nil)
	require.NoError(t, err)

	// Someone else bought the stock during the unpaid window.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", ring.ID).Update("stock", 1).Error)

	gw.setPayment("555", "approved", result.OrderID)
	require.NoError(t, svc.HandleWebhook(webhookFor("555")))

	// The confirmed payment stands; stock clamps rather than going negative.
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 1, got.Stock)
}
