package models

import "fmt"

// InstanceState is the lifecycle state of an EC2 instance
type InstanceState string

const (
	StatePending      InstanceState = "pending"
	StateRunning      InstanceState = "running"
	StateShuttingDown InstanceState = "shutting-down"
	StateTerminated   InstanceState = "terminated"
	StateStopping     InstanceState = "stopping"
	StateStopped      InstanceState = "stopped"
)

// ParseInstanceState maps an EC2 state name onto an InstanceState
func ParseInstanceState(name string) (InstanceState, error) {
	switch s := InstanceState(name); s {
	case StatePending, StateRunning, StateShuttingDown, StateTerminated, StateStopping, StateStopped:
		return s, nil
	}
	return "", fmt.Errorf("unknown instance state %q", name)
}

// Up reports whether the instance is booting or booted
func (s InstanceState) Up() bool {
	return s == StatePending || s == StateRunning
}

// Stopping reports whether the instance is on its way down but not yet stopped
func (s InstanceState) Stopping() bool {
	return s == StateStopping || s == StateShuttingDown
}

// TableType is one selectable row of a rendered instance table
type TableType struct {
	InstanceType string
	Line         string
}
