package domain

// Fee rates in basis points. Integer basis-point math keeps every quote
// byte-for-byte reproducible; floating point never enters the pipeline.
const (
	DefaultServiceFeeRateBps = 1200 // 12% of base price
	DefaultTaxRateBps        = 800  // 8% of subtotal
	DefaultCommissionRateBps = 1000 // 10% of total amount
)

// PricingRates carries the adjustable percentages for a quote.
type PricingRates struct {
	ServiceFeeBps int64
	TaxBps        int64
	CommissionBps int64
}

// DefaultPricingRates returns the platform's standard rates.
func DefaultPricingRates() PricingRates {
	return PricingRates{
		ServiceFeeBps: DefaultServiceFeeRateBps,
		TaxBps:        DefaultTaxRateBps,
		CommissionBps: DefaultCommissionRateBps,
	}
}

// Quote is the price breakdown for a stay. The security deposit is held
// separately and never folded into TotalAmount.
type Quote struct {
	BasePrice       int64 `json:"base_price"`
	CleaningFee     int64 `json:"cleaning_fee"`
	ServiceFee      int64 `json:"service_fee"`
	Taxes           int64 `json:"taxes"`
	SecurityDeposit int64 `json:"security_deposit"`
	TotalAmount     int64 `json:"total_amount"`
}

// roundBps applies a basis-point rate to an amount, rounding half up.
func roundBps(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}

// PriceStay computes the quote for a stay. Each step rounds to a whole
// unit before feeding the next:
//
//	base    = rate * nights
//	service = round(base * serviceFeeRate)
//	taxes   = round((base + cleaning + service) * taxRate)
//	total   = base + cleaning + service + taxes
func PriceStay(nightlyRate int64, nights int, cleaningFee, securityDeposit int64, rates PricingRates) (Quote, error) {
	if nightlyRate <= 0 {
		return Quote{}, ErrInvalidNightlyRate
	}
	if nights <= 0 {
		return Quote{}, ErrInvalidDateRange
	}
	if cleaningFee < 0 || securityDeposit < 0 {
		return Quote{}, ErrInvalidFeeAmount
	}

	base := nightlyRate * int64(nights)
	service := roundBps(base, rates.ServiceFeeBps)
	subtotal := base + cleaningFee + service
	taxes := roundBps(subtotal, rates.TaxBps)

	return Quote{
		BasePrice:       base,
		CleaningFee:     cleaningFee,
		ServiceFee:      service,
		Taxes:           taxes,
		SecurityDeposit: securityDeposit,
		TotalAmount:     subtotal + taxes,
	}, nil
}

// SplitCommission divides a booked total into the platform's cut and the
// host's payout. The two always sum back to the total.
func SplitCommission(totalAmount int64, rates PricingRates) (commission, hostPayout int64) {
	commission = roundBps(totalAmount, rates.CommissionBps)
	return commission, totalAmount - commission
}
