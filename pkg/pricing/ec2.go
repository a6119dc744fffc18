package pricing

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/pkg/utils"
)

// OnDemandHourly returns the Linux on-demand hourly USD price of an instance type in region
func (c *Client) OnDemandHourly(ctx context.Context, instanceType, region string) (float64, error) {
	const op = "pricing.OnDemandHourly"

	cacheKey := fmt.Sprintf("%s:%s", region, instanceType)

	c.mu.RLock()
	price, ok := c.cache[cacheKey]
	c.mu.RUnlock()
	if ok {
		c.logger.Debug().Str("key", cacheKey).Msg("Pricing cache hit")
		return price, nil
	}

	location, ok := utils.GetRegionDescriptiveName(region)
	if !ok {
		return 0, errs.Errorf(errs.KindConfig, op, "no Pricing API location known for region %s", region)
	}

	priceJSON, err := c.getProducts(ctx, "AmazonEC2", ec2Filters(instanceType, location), instanceType, region)
	if err != nil {
		return 0, err
	}

	price, err = ExtractOnDemandPrice(priceJSON)
	if err != nil {
		return 0, errs.Errorf(errs.KindParse, op, "%s in %s: %w", instanceType, region, err)
	}

	c.mu.Lock()
	c.cache[cacheKey] = price
	c.mu.Unlock()

	c.logger.Debug().Str("instance_type", instanceType).Str("region", region).Float64("price", price).Msg("Fetched on-demand price")
	return price, nil
}

// ec2Filters selects shared-tenancy Linux instances with no pre-installed software
func ec2Filters(instanceType, location string) []types.Filter {
	term := func(field, value string) types.Filter {
		return types.Filter{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String(field),
			Value: aws.String(value),
		}
	}

	return []types.Filter{
		term("instanceType", instanceType),
		term("location", location),
		term("operatingSystem", "Linux"),
		term("tenancy", "Shared"),
		term("preInstalledSw", "NA"),
		term("capacitystatus", "Used"),
	}
}
