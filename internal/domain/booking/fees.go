package booking

import "errors"

var ErrUnknownFeePolicy = errors.New("unknown fee policy")

// FeeBreakdown is the persisted fee decomposition, in paise.
// Total is always the sum of its parts.
type FeeBreakdown struct {
	PlatformFee  int32
	EmergencyFee int32
	Tax          int32
	Total        int32
}

// FeeConfig is the slice of hospital configuration the calculator needs.
type FeeConfig struct {
	Policy       string
	BasePrice    int32
	PlatformFee  int32
	EmergencyFee int32
	TaxRateBps   int32
}

// FeeCalculator computes a fee breakdown from hospital configuration.
// Implementations are pure.
type FeeCalculator interface {
	Calculate(cfg FeeConfig, emergency bool) FeeBreakdown
}

// FlatFeeCalculator charges the hospital's fixed platform fee, adding
// the fixed emergency surcharge when the emergency flag is set.
type FlatFeeCalculator struct{}

func (FlatFeeCalculator) Calculate(cfg FeeConfig, emergency bool) FeeBreakdown {
	return buildBreakdown(cfg.PlatformFee, cfg.EmergencyFee, cfg.TaxRateBps, emergency)
}

// PercentFeeCalculator derives the platform fee as a fraction of the
// hospital's base booking price. The percentage rides in PlatformFee as
// basis points for this policy.
type PercentFeeCalculator struct{}

func (PercentFeeCalculator) Calculate(cfg FeeConfig, emergency bool) FeeBreakdown {
	platform := roundHalfUpBps(cfg.BasePrice, cfg.PlatformFee)
	return buildBreakdown(platform, cfg.EmergencyFee, cfg.TaxRateBps, emergency)
}

func buildBreakdown(platformFee, emergencyFee, taxRateBps int32, emergency bool) FeeBreakdown {
	var emergencyPart int32
	if emergency {
		emergencyPart = emergencyFee
	}
	subtotal := platformFee + emergencyPart
	tax := roundHalfUpBps(subtotal, taxRateBps)
	return FeeBreakdown{
		PlatformFee:  platformFee,
		EmergencyFee: emergencyPart,
		Tax:          tax,
		Total:        subtotal + tax,
	}
}

// roundHalfUpBps applies a basis-point rate with round-half-up at the
// smallest currency unit.
func roundHalfUpBps(amount, rateBps int32) int32 {
	return int32((int64(amount)*int64(rateBps) + 5000) / 10000)
}

// FeeCalculatorFor selects the strategy for a hospital's configured
// policy. Unknown policies are a configuration bug, not a fallback.
func FeeCalculatorFor(policy string) (FeeCalculator, error) {
	switch policy {
	case "flat":
		return FlatFeeCalculator{}, nil
	case "percent":
		return PercentFeeCalculator{}, nil
	default:
		return nil, ErrUnknownFeePolicy
	}
}
