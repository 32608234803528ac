// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package capacity manages the lifecycle of Microsoft Fabric capacities:
// reading their provisioning state, resuming and suspending them, and
// scaling them to a different SKU.
package capacity

// State is the provisioning state of a capacity as reported by the
// resource provider.
type State string

const (
	StateActive       State = "Active"
	StatePaused       State = "Paused"
	StatePausing      State = "Pausing"
	StateResuming     State = "Resuming"
	StateScaling      State = "Scaling"
	StateProvisioning State = "Provisioning"
	StateUpdating     State = "Updating"
	StateDeleting     State = "Deleting"
	StateSuspending   State = "Suspending"
)

// Transitional reports whether the state is an in-progress state, i.e.
// the platform is already moving the capacity between steady states.
func (s State) Transitional() bool {
	switch s {
	case StatePausing, StateResuming, StateScaling, StateProvisioning, StateUpdating, StateDeleting, StateSuspending:
		return true
	}
	return false
}

// Recognized reports whether the state is one the manager knows how to
// act on. Anything else routes to the abort branch.
func (s State) Recognized() bool {
	return s == StateActive || s == StatePaused || s.Transitional()
}

// SKU is the size designation of a capacity. The tier for fabric
// capacities is always "Fabric".
type SKU struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// Properties is the properties bag of the capacity resource.
type Properties struct {
	State State `json:"state"`
}

// Capacity is the resource body returned by a capacity GET.
type Capacity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	SKU        SKU        `json:"sku"`
	Properties Properties `json:"properties"`
}

// State is a shorthand for the provisioning state of the capacity.
func (c Capacity) State() State {
	return c.Properties.State
}
