package usecase

import (
	"KisTrader/internal/domain/models"
)

// WeightPolicy turns the candidate list into portfolio weights. Policies
// must return one weight per item, summing to 1.0.
type WeightPolicy func(items []models.PortfolioItem) []float64

// EqualWeights splits capital evenly across all candidates.
func EqualWeights(items []models.PortfolioItem) []float64 {
	weights := make([]float64, len(items))
	for i := range weights {
		weights[i] = 1.0 / float64(len(items))
	}
	return weights
}

// AllocationCalculator turns total cash plus candidate symbols into
// per-symbol tranche allocations. Pure: no I/O.
type AllocationCalculator struct {
	policy WeightPolicy
}

// NewAllocationCalculator creates a calculator; a nil policy means equal
// weighting.
func NewAllocationCalculator(policy WeightPolicy) *AllocationCalculator {
	if policy == nil {
		policy = EqualWeights
	}
	return &AllocationCalculator{policy: policy}
}

// Calculate splits totalCash across items by weight, then splits each
// symbol's share into an immediate tranche and a DCA tranche. The prices
// map supplies the reference close for the discounted limit hint; a
// missing or zero price yields hint 0 rather than an error.
func (c *AllocationCalculator) Calculate(
	totalCash float64,
	items []models.PortfolioItem,
	initialBuyRatio, discountRate float64,
	prices map[string]float64,
) ([]models.AllocationItem, error) {
	if totalCash <= 0 {
		return nil, models.NewInvalidInput("total_cash must be positive, got %v", totalCash)
	}
	if len(items) == 0 {
		return nil, models.NewInvalidInput("items cannot be empty")
	}
	if initialBuyRatio <= 0 || initialBuyRatio >= 1 {
		return nil, models.NewInvalidInput("initial_buy_ratio must be in (0,1), got %v", initialBuyRatio)
	}
	if discountRate < 0 || discountRate >= 1 {
		return nil, models.NewInvalidInput("discount_rate must be in [0,1), got %v", discountRate)
	}

	weights := c.policy(items)
	out := make([]models.AllocationItem, 0, len(items))
	for i, item := range items {
		symbolCash := totalCash * weights[i]
		initialCash := symbolCash * initialBuyRatio
		// subtraction keeps initial + dca == symbolCash exact
		dcaCash := symbolCash - initialCash

		hint := 0.0
		if p := prices[item.Symbol]; p > 0 {
			hint = p * (1 - discountRate)
		}

		out = append(out, models.AllocationItem{
			Symbol:         item.Symbol,
			Weight:         weights[i],
			InitialBuyCash: initialCash,
			DCACash:        dcaCash,
			LimitPriceHint: hint,
		})
	}
	return out, nil
}
