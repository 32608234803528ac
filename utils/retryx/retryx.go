// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package retryx implements the bounded fixed-delay retry used for all
// platform calls: a fixed number of attempts with a constant interval,
// then a terminal error.
package retryx

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAttempts = 3
	DefaultInterval = 30 * time.Second
)

// Policy describes how often and how fast an operation is re-tried.
// The zero value uses the defaults.
type Policy struct {
	Attempts int
	Interval time.Duration
}

// Permanent marks an error as terminal so it is surfaced without
// further attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is canceled. Failed attempts are logged together with the
// delay before the next one.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(attempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry-in", wait).Msg("call failed, will retry")
	}
	return backoff.RetryNotify(op, bo, notify)
}
