package service

// Pricing holds the totals policy applied to cart summaries and order
// creation. Amounts are integer cents throughout; tax rounds down.
type Pricing struct {
	// Currency is the ISO 4217 code every amount is denominated in.
	Currency string

	// ShippingFlatCents is a flat shipping fee charged on any non-empty cart.
	ShippingFlatCents int64

	// TaxRateBps is the tax rate in basis points, applied to the subtotal
	// after discount.
	TaxRateBps int64
}

// Shipping returns the shipping charge for a cart or order subtotal.
func (p Pricing) Shipping(subtotalCents int64) int64 {
	if subtotalCents == 0 {
		return 0
	}
	return p.ShippingFlatCents
}

// Tax returns the tax on the given taxable amount.
func (p Pricing) Tax(taxableCents int64) int64 {
	if taxableCents <= 0 {
		return 0
	}
	return taxableCents * p.TaxRateBps / 10000
}
