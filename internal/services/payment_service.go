package services

import (
	"fmt"
	"log"
	"strings"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
	"goldlegacy/pkg/events"
	"goldlegacy/pkg/mailer"
	"goldlegacy/pkg/mercadopago"

	"gorm.io/gorm"
)

// PreferenceResult is returned to the storefront so it can redirect the
// customer to the hosted checkout.
type PreferenceResult struct {
	OrderID   string `json:"orderId"`
	InitPoint string `json:"init_point"`
}

// PaymentService creates Mercado Pago checkout sessions and reconciles
// asynchronous payment confirmations.
//
// Preference creation validates stock but does not decrement it; the
// decrement is deferred to webhook confirmation. Concurrent orders may
// oversell during the PENDING-but-unpaid window; the guarded decrement keeps
// stock from ever going negative even then.
type PaymentService struct {
	db        *gorm.DB
	orderRepo repositories.OrderRepository
	gateway   *mercadopago.Client
	mail      *mailer.Mailer
	publisher *events.Publisher
	baseURL   string
}

// NewPaymentService creates a new PaymentService. mail and publisher may be
// nil.
func NewPaymentService(db *gorm.DB, orderRepo repositories.OrderRepository, gateway *mercadopago.Client, mail *mailer.Mailer, publisher *events.Publisher, baseURL string) *PaymentService {
	return &PaymentService{
		db:        db,
		orderRepo: orderRepo,
		gateway:   gateway,
		mail:      mail,
		publisher: publisher,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Configured reports whether the gateway integration is enabled.
func (s *PaymentService) Configured() bool {
	return s.gateway.Configured()
}

// CreatePreference validates the cart, persists a PENDING order without
// touching stock, and requests a hosted-checkout session from the gateway.
func (s *PaymentService) CreatePreference(input CheckoutInput, userID *string) (*PreferenceResult, error) {
	if !s.gateway.Configured() {
		return nil, ErrGatewayUnavailable
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines, total, err := resolveCart(tx, input.Items)
		if err != nil {
			return err
		}

		// Stock is intentionally not decremented here; that happens when
		// the webhook confirms the payment.
		order = buildOrder(input, userID, total, lines)
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create pending order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	full, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, err
	}

	items := make([]mercadopago.PreferenceItem, 0, len(full.Items))
	for _, item := range full.Items {
		title := item.ProductID
		if item.Product != nil {
			title = item.Product.Name
		}
		items = append(items, mercadopago.PreferenceItem{
			Title:      title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: "COP",
		})
	}

	pref, err := s.gateway.CreatePreference(mercadopago.PreferenceRequest{
		OrderID:    order.ID,
		PayerEmail: order.CustomerEmail,
		Items:      items,
		BackURLs: mercadopago.BackURLs{
			Success: fmt.Sprintf("%s/checkout/exito?order_id=%s", s.baseURL, order.ID),
			Pending: fmt.Sprintf("%s/checkout/pendiente?order_id=%s", s.baseURL, order.ID),
			Failure: fmt.Sprintf("%s/checkout/error?order_id=%s", s.baseURL, order.ID),
		},
		NotificationURL: s.baseURL + "/api/v1/payments/mercadopago/webhook",
	})
	if err != nil {
		log.Printf("Failed to create payment preference for order %s: %v", order.ID, err)
		return nil, fmt.Errorf("failed to create payment preference: %w", err)
	}

	return &PreferenceResult{OrderID: order.ID, InitPoint: pref.InitPoint}, nil
}

// WebhookPayload is the gateway notification body: {type, data:{id}}.
type WebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	ID string `json:"id"`
}

// PaymentID returns the payment identifier from either body shape.
func (p WebhookPayload) PaymentID() string {
	if p.Data.ID != "" {
		return p.Data.ID
	}
	return p.ID
}

// HandleWebhook processes an asynchronous payment notification. Events this
// system does not care about (wrong type, unknown payment, non-approved
// status, unknown or already-PAID order) are silent no-ops so the gateway
// does not retry them. On first approval the order flips to PAID and stock is
// decremented atomically; the confirmation email afterwards is best-effort.
func (s *PaymentService) HandleWebhook(payload WebhookPayload) error {
	paymentID := payload.PaymentID()
	if payload.Type != "payment" || paymentID == "" {
		return nil
	}

	payment, err := s.gateway.GetPayment(paymentID)
	if err != nil {
		// Fail closed: an unreachable gateway means "no payment found".
		log.Printf("Webhook: could not fetch payment %s: %v", paymentID, err)
		return nil
	}
	if payment.Status != "approved" || payment.ExternalReference == "" {
		return nil
	}

	order, err := s.orderRepo.GetByID(payment.ExternalReference)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if order.Status == models.OrderStatusPaid {
		// Duplicate webhook for an already-confirmed payment.
		return nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusPaid)
		if res.Error != nil {
			return fmt.Errorf("failed to mark order %s paid: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race against a concurrent webhook delivery.
			return nil
		}

		for _, item := range order.Items {
			if err := decrementStock(tx, item.ProductID, item.Quantity); err != nil {
				if err == ErrInsufficientStock {
					// Oversold during the unpaid window; clamp rather than
					// undo a confirmed payment.
					log.Printf("Webhook: stock for product %s below ordered quantity %d (order %s)", item.ProductID, item.Quantity, order.ID)
					continue
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.sendConfirmation(order)

	if s.publisher != nil {
		pubErr := s.publisher.PublishOrderEvent(events.OrderPaid, map[string]interface{}{
			"orderId":   order.ID,
			"paymentId": paymentID,
			"total":     order.Total,
		})
		if pubErr != nil {
			log.Printf("Warning: failed to publish order paid event for order %s: %v", order.ID, pubErr)
		}
	}

	return nil
}

// sendConfirmation emails the customer. Failure is logged and never
// propagated; a notification problem must not undo a confirmed payment.
func (s *PaymentService) sendConfirmation(order *models.Order) {
	if s.mail == nil || !s.mail.Configured() {
		log.Printf("SMTP not configured, skipping confirmation email for order %s", order.ID)
		return
	}

	items := make([]mailer.OrderEmailItem, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductID
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, mailer.OrderEmailItem{
			ProductName: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	err := s.mail.SendOrderConfirmation(mailer.OrderEmailData{
		OrderID:         order.ID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		Total:           order.Total,
		ShippingAddress: order.ShippingAddress,
		ShippingCity:    order.ShippingCity,
		CreatedAt:       order.CreatedAt,
		Items:           items,
	})
	if err != nil {
		log.Printf("Failed to send confirmation email for order %s: %v", order.ID, err)
	}
}
