package stripe

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
)

// Stripe charges these currencies in whole units.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true, "mga": true,
	"pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// Gateway adapts Client to checkout's decimal amounts.
type Gateway struct {
	client Client
}

func NewGateway(client Client) *Gateway {
	return &Gateway{client: client}
}

// ToMinorUnits rounds half away from zero to the currency's smallest unit.
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

func (g *Gateway) CapturePayment(ctx context.Context, req models.PaymentCapture) (*models.PaymentReceipt, error) {

	intent, err := g.client.CapturePayment(ctx, CaptureRequest{
		AmountMinor:     ToMinorUnits(req.Amount, req.Currency),
		Currency:        req.Currency,
		Description:     req.Description,
		PaymentMethodID: req.PaymentMethodID,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		var stripeErr *stripe.Error
		if stdErrors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, errors.ThirdPartyError("Your card was declined").WithDetail(stripeErr.Msg).WithError(err)
		}
		return nil, errors.ThirdPartyError("Payment could not be processed").WithError(err)
	}

	return &models.PaymentReceipt{
		TransactionID: intent.ID,
		Status:        models.PaymentStatusCaptured,
	}, nil
}
