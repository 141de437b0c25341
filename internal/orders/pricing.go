package orders

import (
	"github.com/shopspring/decimal"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Pricing computes order totals from catalog snapshots.
type Pricing struct {
	FlatRate      decimal.Decimal
	FreeThreshold decimal.Decimal
	TaxRate       decimal.Decimal
}

// DefaultPricing charges 4.99 shipping up to 50.00 and no tax.
func DefaultPricing() Pricing {
	return Pricing{
		FlatRate:      decimal.RequireFromString("4.99"),
		FreeThreshold: decimal.NewFromInt(50),
		TaxRate:       decimal.Zero,
	}
}

type Totals struct {
	ItemsPrice    models.Money
	ShippingPrice models.Money
	TaxPrice      models.Money
	TotalPrice    models.Money
}

// SuppliedTotals are the client's figures. Nil means not supplied.
type SuppliedTotals struct {
	ItemsPrice    *models.Money
	ShippingPrice *models.Money
	TaxPrice      *models.Money
	TotalPrice    *models.Money
}

func (p Pricing) Compute(items []models.OrderItem) Totals {
	itemsPrice := models.NewMoney(decimal.Zero)
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Subtotal())
	}

	shipping := models.NewMoney(p.FlatRate)
	if itemsPrice.GreaterThan(p.FreeThreshold) {
		shipping = models.NewMoney(decimal.Zero)
	}
	tax := models.NewMoney(itemsPrice.Mul(p.TaxRate))

	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax),
	}
}

// Reconcile checks each supplied figure against the computed one.
func (t Totals) Reconcile(s SuppliedTotals) error {
	checks := []struct {
		field    string
		supplied *models.Money
		computed models.Money
	}{
		{"itemsPrice", s.ItemsPrice, t.ItemsPrice},
		{"shippingPrice", s.ShippingPrice, t.ShippingPrice},
		{"taxPrice", s.TaxPrice, t.TaxPrice},
		{"totalPrice", s.TotalPrice, t.TotalPrice},
	}
	for _, c := range checks {
		if c.supplied == nil || c.supplied.Equal(c.computed) {
			continue
		}
		return apperr.New(apperr.KindValidation, apperr.CodePriceMismatch,
			"Supplied "+c.field+" does not match the calculated amount").
			WithDetails(map[string]any{
				"field":    c.field,
				"supplied": c.supplied.String(),
				"expected": c.computed.String(),
			})
	}
	return nil
}
