package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableRegionsAreNamed(t *testing.T) {
	assert.Len(t, TableRegions, 25)
	for _, region := range TableRegions {
		assert.True(t, IsValidRegion(region), region)
		assert.True(t, IsRegionCode(region), region)
	}
}

func TestIsRegionCode(t *testing.T) {
	for _, ok := range []string{
		"us-west-2", "us-gov-east-1", "ap-southeast-4", "cn-northwest-1",
		"us-west-2-lax-1", "us-east-1-bos-1", "eusc-de-east-1",
	} {
		assert.True(t, IsRegionCode(ok), ok)
	}
	for _, bad := range []string{"", "uswest2", "US-WEST-2", "us_west_2", "us-west-2-", "-us-west-2", "us--west-2", "Oregon", "us west 2"} {
		assert.False(t, IsRegionCode(bad), bad)
	}
}

func TestGetRegionDescriptiveName(t *testing.T) {
	name, ok := GetRegionDescriptiveName("us-west-2")
	assert.True(t, ok)
	assert.Equal(t, "US West (Oregon)", name)

	_, ok = GetRegionDescriptiveName("xx-none-1")
	assert.False(t, ok)
}
