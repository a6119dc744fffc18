package pricing

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/rs/zerolog"

	"github.com/younsl/jj/internal/errs"
)

// The Pricing API is only served from us-east-1 and ap-south-1
const apiRegion = "us-east-1"

// PricingAPI is the subset of the Price List client used here
type PricingAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// Client looks up on-demand prices and caches them per region and type
type Client struct {
	api    PricingAPI
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[string]float64
}

// NewClient creates a Client against the us-east-1 Pricing endpoint
func NewClient(ctx context.Context, profile string, logger zerolog.Logger) (*Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(apiRegion)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.Errorf(errs.KindAWS, "pricing.NewClient", "error loading AWS config for pricing API: %w", err)
	}

	logger.Debug().Str("endpoint", "https://api.pricing."+apiRegion+".amazonaws.com").Msg("AWS Pricing API initialized")
	return NewClientFromAPI(pricing.NewFromConfig(cfg), logger), nil
}

// NewClientFromAPI wraps an existing Pricing API implementation
func NewClientFromAPI(api PricingAPI, logger zerolog.Logger) *Client {
	return &Client{
		api:    api,
		logger: logger,
		cache:  make(map[string]float64),
	}
}

// getProducts returns the first price list document matching filters
func (c *Client) getProducts(ctx context.Context, serviceCode string, filters []types.Filter, resource, region string) (string, error) {
	const op = "pricing.getProducts"

	resp, err := c.api.GetProducts(ctx, &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(1),
	})
	if err != nil {
		return "", errs.Errorf(errs.KindAWS, op, "error calling AWS Pricing API: %w", err)
	}

	if len(resp.PriceList) == 0 {
		return "", errs.Errorf(errs.KindMissingKey, op, "no pricing found for %s in region %s", resource, region)
	}
	return resp.PriceList[0], nil
}
