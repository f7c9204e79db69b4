package commission

import (
	"tradefy/internal/money"
)

// Result is the commission split for one sale.
type Result struct {
	Sales        int64        `json:"sales"`
	Rank         string       `json:"rank"`
	RateBps      int64        `json:"rate_bps"`
	Price        money.Amount `json:"price"`
	Commission   money.Amount `json:"commission_amount"`
	VendorAmount money.Amount `json:"vendor_amount"`
}

// Compute splits price between the platform and the seller using the band
// for sales. The commission is rounded half-up to the cent and the vendor
// receives the remainder, so Commission + VendorAmount == Price exactly.
func (t *Table) Compute(sales int64, price money.Amount) (Result, error) {
	if sales < 0 {
		return Result{}, ErrInvalidSales
	}
	if !price.IsPositive() {
		return Result{}, ErrInvalidPrice
	}

	band := t.Rank(sales)
	commission := price.MulBps(band.RateBps)

	return Result{
		Sales:        sales,
		Rank:         band.Name,
		RateBps:      band.RateBps,
		Price:        price,
		Commission:   commission,
		VendorAmount: price.Sub(commission),
	}, nil
}
