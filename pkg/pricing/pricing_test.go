package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/jj/internal/errs"
)

const m5LargeProduct = `{
  "product": {"attributes": {"instanceType": "m5.large", "location": "US West (Oregon)"}},
  "terms": {
    "OnDemand": {
      "ABCDEF.JRTCKXETXF": {
        "priceDimensions": {
          "ABCDEF.JRTCKXETXF.6YS6EN2CT7": {
            "unit": "Hrs",
            "pricePerUnit": {"USD": "0.0960000000"}
          }
        }
      }
    }
  }
}`

type fakePricing struct {
	priceList []string
	err       error
	calls     int
	input     *pricing.GetProductsInput
}

func (f *fakePricing) GetProducts(_ context.Context, in *pricing.GetProductsInput, _ ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	f.calls++
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &pricing.GetProductsOutput{PriceList: f.priceList}, nil
}

func TestOnDemandHourly(t *testing.T) {
	fake := &fakePricing{priceList: []string{m5LargeProduct}}
	client := NewClientFromAPI(fake, zerolog.Nop())

	price, err := client.OnDemandHourly(context.Background(), "m5.large", "us-west-2")
	require.NoError(t, err)
	assert.InDelta(t, 0.096, price, 1e-12)

	require.NotNil(t, fake.input)
	assert.Equal(t, "AmazonEC2", aws.ToString(fake.input.ServiceCode))
	filters := map[string]string{}
	for _, f := range fake.input.Filters {
		filters[aws.ToString(f.Field)] = aws.ToString(f.Value)
	}
	assert.Equal(t, map[string]string{
		"instanceType":    "m5.large",
		"location":        "US West (Oregon)",
		"operatingSystem": "Linux",
		"tenancy":         "Shared",
		"preInstalledSw":  "NA",
		"capacitystatus":  "Used",
	}, filters)

	// Second lookup is served from the cache
	_, err = client.OnDemandHourly(context.Background(), "m5.large", "us-west-2")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestOnDemandHourlyErrors(t *testing.T) {
	tests := []struct {
		name   string
		fake   *fakePricing
		region string
		kind   errs.Kind
	}{
		{name: "api failure", fake: &fakePricing{err: errors.New("AccessDenied")}, region: "us-west-2", kind: errs.KindAWS},
		{name: "no products", fake: &fakePricing{}, region: "us-west-2", kind: errs.KindMissingKey},
		{name: "bad document", fake: &fakePricing{priceList: []string{`{"terms": {}}`}}, region: "us-west-2", kind: errs.KindParse},
		{name: "unknown location", fake: &fakePricing{priceList: []string{m5LargeProduct}}, region: "xx-none-1", kind: errs.KindConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClientFromAPI(tt.fake, zerolog.Nop()).OnDemandHourly(context.Background(), "m5.large", tt.region)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestExtractOnDemandPrice(t *testing.T) {
	price, err := ExtractOnDemandPrice(m5LargeProduct)
	require.NoError(t, err)
	assert.InDelta(t, 0.096, price, 1e-12)

	for _, bad := range []string{
		`not json`,
		`{"terms": {"OnDemand": {}}}`,
		`{"terms": {"OnDemand": {"a": {"priceDimensions": {"b": {"pricePerUnit": {"EUR": "1"}}}}}}}`,
		`{"terms": {"OnDemand": {"a": {"priceDimensions": {"b": {"pricePerUnit": {"USD": "cheap"}}}}}}}`,
	} {
		_, err := ExtractOnDemandPrice(bad)
		assert.Error(t, err, bad)
	}
}

func TestComparison(t *testing.T) {
	c := Comparison{InstanceType: "m5.large", Region: "us-west-2", DocumentPrice: 0.096, APIPrice: 0.096}
	assert.True(t, c.Matches())

	c.APIPrice = 0.1
	assert.False(t, c.Matches())
	assert.InDelta(t, 0.004, c.Difference(), 1e-9)
}
