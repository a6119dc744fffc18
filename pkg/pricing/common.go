package pricing

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// priceListItem is the part of a Price List product document that carries on-demand terms
type priceListItem struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// ExtractOnDemandPrice extracts the USD on-demand price from a Price List product document.
// Offers and dimensions are visited in key order so the result is stable.
func ExtractOnDemandPrice(priceJSON string) (float64, error) {
	var item priceListItem
	if err := json.Unmarshal([]byte(priceJSON), &item); err != nil {
		return 0, fmt.Errorf("error parsing pricing data: %w", err)
	}

	if len(item.Terms.OnDemand) == 0 {
		return 0, fmt.Errorf("OnDemand field not found or empty")
	}

	for _, offerKey := range sortedKeys(item.Terms.OnDemand) {
		dimensions := item.Terms.OnDemand[offerKey].PriceDimensions
		for _, dimKey := range sortedKeys(dimensions) {
			usd, ok := dimensions[dimKey].PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				return 0, fmt.Errorf("error parsing price %q: %w", usd, err)
			}
			return price, nil
		}
	}

	return 0, fmt.Errorf("USD price not found")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Comparison is a document price set against the Pricing API's price
type Comparison struct {
	InstanceType  string
	Region        string
	DocumentPrice float64
	APIPrice      float64
}

// Difference is the API price minus the document price
func (c Comparison) Difference() float64 {
	return c.APIPrice - c.DocumentPrice
}

// Matches reports whether both prices agree to a thousandth of a cent
func (c Comparison) Matches() bool {
	return math.Abs(c.Difference()) < 1e-5
}
