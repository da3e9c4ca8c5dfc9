// Package paymentprovider имитирует провайдера криптоплатежей: выставляет счёт
// в выбранной сети и подписывает уведомления о смене статуса платежа.
package paymentprovider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/lib/delay"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Адреса кошельков, на которые выставляются счета.
const (
	AddressTRC20 = "TQn9Y2khEsLMWD2fhes17SB4SJ6VpzhGfZ"
	AddressBEP20 = "0x742d35Cc5C6aF0f8C44cfb9c9B4A089b4c73704"
)

// SignatureHeader заголовок с подписью уведомления.
const SignatureHeader = "X-Api-Signature"

var networks = []models.NetworkOption{
	{Value: models.NetworkTRC20, Label: "USDT TRC20 (Tron)", Warning: "TRC20 (Tron)"},
	{Value: models.NetworkBEP20, Label: "USDT BEP20 (BSC)", Warning: "BEP20 (Binance Smart Chain)"},
}

// Networks возвращает сети, в которых принимается оплата.
func Networks() []models.NetworkOption {
	out := make([]models.NetworkOption, len(networks))
	copy(out, networks)
	return out
}

// KnownNetwork сообщает, поддерживается ли сеть.
func KnownNetwork(network string) bool {
	for _, n := range networks {
		if n.Value == network {
			return true
		}
	}
	return false
}

// IDGenerator выдаёт идентификаторы заказов и платежей.
type IDGenerator interface {
	Prefixed(prefix string) string
}

// InvoiceParams параметры счёта.
type InvoiceParams struct {
	PlanID  models.Plan
	Network string
	Amount  float64
}

// Client заглушка провайдера: ждёт delay и возвращает счёт со статусом waiting.
type Client struct {
	ids   IDGenerator
	delay time.Duration
	now   func() time.Time
}

// NewClient создаёт заглушку провайдера.
func NewClient(ids IDGenerator, latency time.Duration) *Client {
	return &Client{
		ids:   ids,
		delay: latency,
		now:   time.Now,
	}
}

// CreateInvoice выставляет счёт. Отмена ctx во время ожидания прерывает вызов.
func (c *Client) CreateInvoice(ctx context.Context, p InvoiceParams) (*models.Invoice, error) {
	const op = "paymentprovider.CreateInvoice"
	if !KnownNetwork(p.Network) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnknownNetwork)
	}
	if err := delay.Wait(ctx, c.delay); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	address := PayAddress(p.Network)
	return &models.Invoice{
		PaymentID:   c.ids.Prefixed("mock"),
		PlanID:      p.PlanID,
		Network:     p.Network,
		Status:      models.PaymentWaiting,
		PayAddress:  address,
		PayAmount:   p.Amount,
		PayCurrency: p.Network,
		QRCode:      QRCode(address),
		OrderID:     c.ids.Prefixed("order"),
		CreatedAt:   c.now().UTC(),
	}, nil
}

// PayAddress возвращает адрес для оплаты в сети network.
func PayAddress(network string) string {
	if network == models.NetworkTRC20 {
		return AddressTRC20
	}
	return AddressBEP20
}

// QRCode возвращает data URI с SVG-изображением для адреса.
func QRCode(address string) string {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200">` +
		`<rect width="200" height="200" fill="#fff"/>` +
		`<text x="100" y="100" font-size="8" text-anchor="middle">` + address + `</text></svg>`
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// Sign вычисляет подпись уведомления: base64(HMAC-SHA256(secret, body)).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature сравнивает подпись за постоянное время.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
