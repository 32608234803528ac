// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package retryx

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoStopsAfterAttemptBudget(t *testing.T) {
	calls := 0
	p := Policy{Attempts: 3, Interval: time.Millisecond}

	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsOnFirstSuccess(t *testing.T) {
	calls := 0
	p := Policy{Attempts: 3, Interval: time.Millisecond}

	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRecoversWithinBudget(t *testing.T) {
	calls := 0
	p := Policy{Attempts: 3, Interval: time.Millisecond}

	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoPermanentErrorShortCircuits(t *testing.T) {
	calls := 0
	sentinel := errors.New("terminal")
	p := Policy{Attempts: 3, Interval: time.Millisecond}

	err := p.Do(context.Background(), func() error {
		calls++
		return Permanent(sentinel)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{Attempts: 3, Interval: time.Hour}

	err := p.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "the fixed delay is not waited out after cancellation")
}

func TestDoDefaults(t *testing.T) {
	p := Policy{}
	calls := 0
	// only verify the default attempt bound, not the 30s interval
	p.Interval = time.Millisecond
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, DefaultAttempts, calls)
}
