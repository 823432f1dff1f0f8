package valueobject

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Price цена товара со скидкой в процентах.
type Price struct {
	Base            decimal.Decimal
	OfferPercentage decimal.Decimal
}

// Final возвращает base - base * offer / 100, округлённую до копеек.
func (p Price) Final() decimal.Decimal {
	if p.OfferPercentage.IsZero() {
		return p.Base
	}
	discount := p.Base.Mul(p.OfferPercentage).Div(hundred)
	return p.Base.Sub(discount).Round(2)
}

// FinalPrice считает итоговую цену без проверки входных данных.
// При нулевой скидке возвращает basePrice без изменений.
func FinalPrice(basePrice, offerPercentage float64) float64 {
	if offerPercentage == 0 {
		return basePrice
	}
	p := Price{
		Base:            decimal.NewFromFloat(basePrice),
		OfferPercentage: decimal.NewFromFloat(offerPercentage),
	}
	f, _ := p.Final().Float64()
	return f
}
