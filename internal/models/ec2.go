package models

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// InstanceRecord represents one instance type as published in instances.json
type InstanceRecord struct {
	InstanceType  string `json:"instance_type"`
	VCPU          Number `json:"vCPU"`
	ClockSpeedGHz Number `json:"clock_speed_ghz"`
	Memory        Number `json:"memory"`

	// Pricing maps region -> operating system -> raw pricing model document.
	// Values under an OS are usually price strings ("ondemand") but some
	// models ("reserved") are nested objects, so they stay raw until read.
	Pricing map[string]map[string]json.RawMessage `json:"pricing"`
}

// Family returns the part of the instance type before the first "."
func (r InstanceRecord) Family() string {
	family, _, _ := strings.Cut(r.InstanceType, ".")
	return family
}

// HasRegion reports whether pricing is published for region
func (r InstanceRecord) HasRegion(region string) bool {
	_, ok := r.Pricing[region]
	return ok
}

// DisplayRow is one rendered table line
type DisplayRow struct {
	InstanceType string
	VCPU         string
	ClockSpeed   string
	Memory       string
	Price        string
}

// Cells returns the row as an ordered slice of column values
func (d DisplayRow) Cells() []string {
	return []string{d.InstanceType, d.VCPU, d.ClockSpeed, d.Memory, d.Price}
}

// Number keeps a JSON scalar exactly as published. Upstream fields such as
// clock_speed_ghz are numbers in most records, null in some and strings in a few.
type Number struct {
	Literal string
	Quoted  bool
	Valid   bool
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*n = Number{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number{Literal: s, Quoted: true, Valid: true}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*n = Number{Literal: string(data), Valid: true}
	default:
		return fmt.Errorf("unexpected JSON value %s for a number field", data)
	}
	return nil
}

// IsInteger reports whether the literal is a bare JSON integer
func (n Number) IsInteger() bool {
	if !n.Valid || n.Quoted {
		return false
	}
	return !strings.ContainsAny(n.Literal, ".eE")
}
