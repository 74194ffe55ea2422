package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	gomail "gopkg.in/gomail.v2"
)

// Config holds SMTP connection settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer sends transactional mail for the shop.
type Mailer struct {
	cfg Config
}

// NewMailer creates a Mailer. Callers should check Configured before relying
// on delivery.
func NewMailer(cfg Config) *Mailer {
	if cfg.From == "" {
		cfg.From = "Gold Legacy <noreply@goldlegacy.com>"
	}
	if cfg.Port == 0 {
		cfg.Port = 2525
	}
	return &Mailer{cfg: cfg}
}

// Configured reports whether SMTP credentials are present.
func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.User != "" && m.cfg.Password != ""
}

// OrderEmailItem is one line of the confirmation summary.
type OrderEmailItem struct {
	ProductName string
	Quantity    int
	UnitPrice   float64
}

// OrderEmailData carries everything the confirmation template needs.
type OrderEmailData struct {
	OrderID         string
	CustomerName    string
	CustomerEmail   string
	Total           float64
	ShippingAddress string
	ShippingCity    string
	CreatedAt       time.Time
	Items           []OrderEmailItem
}

var confirmationTmpl = template.Must(template.New("order_confirmation").Funcs(template.FuncMap{
	"price": formatPriceCOP,
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Confirmación de orden</title></head>
<body style="font-family:sans-serif;max-width:560px;margin:0 auto;padding:24px;color:#333">
  <h1 style="font-size:22px;margin:0 0 8px">Gold Legacy</h1>
  <p style="color:#666;margin:0 0 24px">Confirmación de tu orden</p>
  <p>Hola <strong>{{.CustomerName}}</strong>, recibimos tu pedido correctamente. Resumen:</p>
  <table style="width:100%;border-collapse:collapse;margin-bottom:20px">
    <thead>
      <tr style="background:#1a1a1a;color:#fff">
        <th style="padding:10px 12px;text-align:left;font-size:12px">Producto</th>
        <th style="padding:10px 12px;text-align:center;font-size:12px">Cant.</th>
        <th style="padding:10px 12px;text-align:right;font-size:12px">Precio</th>
      </tr>
    </thead>
    <tbody>
    {{range .Items}}<tr>
      <td style="padding:8px 12px;border-bottom:1px solid #eee">{{.ProductName}}</td>
      <td style="padding:8px 12px;border-bottom:1px solid #eee;text-align:center">{{.Quantity}}</td>
      <td style="padding:8px 12px;border-bottom:1px solid #eee;text-align:right">{{price .UnitPrice}}</td>
    </tr>{{end}}
    </tbody>
  </table>
  <p style="margin:0 0 4px"><strong>Total:</strong> {{price .Total}}</p>
  <p style="margin:0 0 4px"><strong>Envío a:</strong> {{.ShippingAddress}}, {{.ShippingCity}}</p>
  <p style="margin:16px 0 0;font-size:12px;color:#888">Orden {{.OrderID}}</p>
  <p style="margin:24px 0 0;font-size:14px;color:#666">Gracias por confiar en Gold Legacy.</p>
</body>
</html>`))

func formatPriceCOP(v float64) string {
	return fmt.Sprintf("$%.0f COP", v)
}

// SendOrderConfirmation emails the customer an order summary. Returns an
// error when SMTP is unconfigured or delivery fails; callers on the payment
// path log and move on.
func (m *Mailer) SendOrderConfirmation(data OrderEmailData) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: smtp not configured")
	}

	var html bytes.Buffer
	if err := confirmationTmpl.Execute(&html, data); err != nil {
		return fmt.Errorf("mailer: render confirmation: %w", err)
	}

	plain := fmt.Sprintf(
		"Gold Legacy – Hola %s, recibimos tu pedido. Total: %s. Envío a: %s, %s. Orden %s.",
		data.CustomerName, formatPriceCOP(data.Total), data.ShippingAddress, data.ShippingCity, data.OrderID,
	)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", data.CustomerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Gold Legacy – Confirmación de orden %s", data.OrderID))
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html.String())

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	dialer.SSL = m.cfg.Port == 465
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer: send confirmation for order %s: %w", data.OrderID, err)
	}
	return nil
}
