package catalog

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

const (
	// OperatingSystem is the pricing OS key the tables are built from
	OperatingSystem = "linux"

	// PricingModel is the pricing model key the tables are built from
	PricingModel = "ondemand"
)

// PricedRecord is an instance record with its parsed on-demand price for one region
type PricedRecord struct {
	Record models.InstanceRecord
	Price  float64
}

// FilterByRegion returns the records that publish pricing for region, in input order
func FilterByRegion(records []models.InstanceRecord, region string) []models.InstanceRecord {
	filtered := make([]models.InstanceRecord, 0, len(records))
	for _, record := range records {
		// Not every instance type is offered in every region
		if record.HasRegion(region) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// OnDemandPrice extracts pricing[region]["linux"]["ondemand"] as a float.
// A missing key is a missing-key error, an unparsable value a parse error.
func OnDemandPrice(record models.InstanceRecord, region string) (float64, error) {
	const op = "catalog.OnDemandPrice"

	byOS, ok := record.Pricing[region]
	if !ok {
		return 0, errs.Errorf(errs.KindMissingKey, op, "%s: no pricing for region %q", record.InstanceType, region)
	}

	rawOS, ok := byOS[OperatingSystem]
	if !ok {
		return 0, errs.Errorf(errs.KindMissingKey, op, "%s: no %q pricing in %s", record.InstanceType, OperatingSystem, region)
	}

	var byModel map[string]json.RawMessage
	if err := json.Unmarshal(rawOS, &byModel); err != nil {
		return 0, errs.Errorf(errs.KindParse, op, "%s: %q pricing in %s is not an object: %w", record.InstanceType, OperatingSystem, region, err)
	}

	rawPrice, ok := byModel[PricingModel]
	if !ok {
		return 0, errs.Errorf(errs.KindMissingKey, op, "%s: no %q %s price in %s", record.InstanceType, PricingModel, OperatingSystem, region)
	}

	price, err := parsePrice(rawPrice)
	if err != nil {
		return 0, errs.Errorf(errs.KindParse, op, "%s: %s price in %s: %w", record.InstanceType, PricingModel, region, err)
	}
	return price, nil
}

// parsePrice accepts a price published either as a JSON string or a bare number
func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	}
	return strconv.ParseFloat(text, 64)
}

// Price attaches the on-demand price for region to each record.
// Every record must already publish pricing for region.
func Price(records []models.InstanceRecord, region string) ([]PricedRecord, error) {
	priced := make([]PricedRecord, 0, len(records))
	for _, record := range records {
		price, err := OnDemandPrice(record, region)
		if err != nil {
			return nil, err
		}
		priced = append(priced, PricedRecord{Record: record, Price: price})
	}
	return priced, nil
}

// SortKey returns "<family> <price>". Keys compare as strings, so within a
// family a price of 10.0 orders before 2.0.
func SortKey(p PricedRecord) string {
	return p.Record.Family() + " " + FormatFloat(p.Price)
}

// Sort orders records by SortKey. Equal keys keep their input order.
func Sort(priced []PricedRecord) {
	keys := make([]string, len(priced))
	for i := range priced {
		keys[i] = SortKey(priced[i])
	}
	sort.Stable(byKey{records: priced, keys: keys})
}

type byKey struct {
	records []PricedRecord
	keys    []string
}

func (b byKey) Len() int           { return len(b.records) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// Project formats a priced record as a display row
func Project(p PricedRecord) models.DisplayRow {
	return models.DisplayRow{
		InstanceType: p.Record.InstanceType,
		VCPU:         FormatNumber(p.Record.VCPU) + " vCPU",
		ClockSpeed:   FormatNumber(p.Record.ClockSpeedGHz),
		Memory:       FormatNumber(p.Record.Memory) + "Gb",
		Price:        "$" + FormatFloat(p.Price) + "/hr",
	}
}

// BuildRows runs filter, price, sort and projection for one region
func BuildRows(records []models.InstanceRecord, region string) ([]models.DisplayRow, error) {
	priced, err := Price(FilterByRegion(records, region), region)
	if err != nil {
		return nil, err
	}
	Sort(priced)

	rows := make([]models.DisplayRow, 0, len(priced))
	for _, p := range priced {
		rows = append(rows, Project(p))
	}
	return rows, nil
}
