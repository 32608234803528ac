// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package capacity

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mondoo.com/fabricops/utils/retryx"
)

var (
	// ErrUnknownState is returned when the platform reports a state the
	// manager does not recognize. No write call is issued in that case.
	ErrUnknownState = errors.New("capacity is in an unknown state")
	// ErrTransitioning is returned when the capacity is already moving
	// between states and no action can be taken.
	ErrTransitioning = errors.New("capacity is transitioning between states")
)

// API is the set of capacity operations the manager drives. It is
// implemented by Client and faked in tests.
type API interface {
	Get(ctx context.Context, resourceGroup, name string) (Capacity, error)
	Resume(ctx context.Context, resourceGroup, name string) error
	Suspend(ctx context.Context, resourceGroup, name string) error
	UpdateSKU(ctx context.Context, resourceGroup, name string, sku SKU) error
}

// ManagerOptions tune the retry behavior of the manager.
type ManagerOptions struct {
	Attempts      int
	RetryInterval time.Duration
}

// Manager implements the operational semantics on top of the raw
// capacity API: read the state, branch on it, issue at most one write.
// Every operation is wrapped in a bounded retry with a fixed delay.
type Manager struct {
	api   API
	retry retryx.Policy
}

func NewManager(api API, options *ManagerOptions) *Manager {
	m := &Manager{api: api}
	if options != nil {
		m.retry = retryx.Policy{
			Attempts: options.Attempts,
			Interval: options.RetryInterval,
		}
	}
	return m
}

// EnsureActive resumes the capacity if it is paused. An already active
// capacity is left untouched.
func (m *Manager) EnsureActive(ctx context.Context, resourceGroup, name string) error {
	return m.retry.Do(ctx, func() error {
		c, err := m.api.Get(ctx, resourceGroup, name)
		if err != nil {
			return err
		}
		switch c.State() {
		case StateActive:
			log.Info().Str("capacity", name).Msg("capacity is already active, nothing to do")
			return nil
		case StatePaused:
			if err := m.api.Resume(ctx, resourceGroup, name); err != nil {
				return err
			}
			log.Info().Str("capacity", name).Msg("capacity resume accepted")
			return nil
		default:
			return retryx.Permanent(m.abort(name, c.State()))
		}
	})
}

// EnsureSuspended suspends the capacity if it is active. An already
// paused capacity is left untouched.
func (m *Manager) EnsureSuspended(ctx context.Context, resourceGroup, name string) error {
	return m.retry.Do(ctx, func() error {
		c, err := m.api.Get(ctx, resourceGroup, name)
		if err != nil {
			return err
		}
		switch c.State() {
		case StatePaused:
			log.Info().Str("capacity", name).Msg("capacity is already paused, nothing to do")
			return nil
		case StateActive:
			if err := m.api.Suspend(ctx, resourceGroup, name); err != nil {
				return err
			}
			log.Info().Str("capacity", name).Msg("capacity suspend accepted")
			return nil
		default:
			return retryx.Permanent(m.abort(name, c.State()))
		}
	})
}

// Scale patches the capacity to the requested SKU. Only an active
// capacity can be scaled; scaling a paused one is rejected by the
// platform, so we surface that before issuing the write.
func (m *Manager) Scale(ctx context.Context, resourceGroup, name string, sku SKU) error {
	return m.retry.Do(ctx, func() error {
		c, err := m.api.Get(ctx, resourceGroup, name)
		if err != nil {
			return err
		}
		switch c.State() {
		case StateActive:
			if c.SKU.Name == sku.Name {
				log.Info().Str("capacity", name).Str("sku", sku.Name).Msg("capacity already runs the requested sku, nothing to do")
				return nil
			}
			if err := m.api.UpdateSKU(ctx, resourceGroup, name, sku); err != nil {
				return err
			}
			log.Info().Str("capacity", name).Str("sku", sku.Name).Msg("capacity scale accepted")
			return nil
		case StatePaused:
			return retryx.Permanent(errors.Errorf("capacity %s is paused, resume it before scaling", name))
		default:
			return retryx.Permanent(m.abort(name, c.State()))
		}
	})
}

// Status returns the current capacity resource.
func (m *Manager) Status(ctx context.Context, resourceGroup, name string) (Capacity, error) {
	var c Capacity
	err := m.retry.Do(ctx, func() error {
		var err error
		c, err = m.api.Get(ctx, resourceGroup, name)
		return err
	})
	return c, err
}

// abort is the default branch of the state switch: log and surface a
// terminal error without issuing any write call.
func (m *Manager) abort(name string, state State) error {
	if state.Transitional() {
		log.Error().Str("capacity", name).Str("state", string(state)).Msg("capacity is busy, try again once it settles")
		return errors.Wrapf(ErrTransitioning, "capacity %s is %s", name, state)
	}
	log.Error().Str("capacity", name).Str("state", string(state)).Msg("capacity reported an unrecognized state")
	return errors.Wrapf(ErrUnknownState, "capacity %s reported state %q", name, state)
}
