// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logger

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	calls int
}

func (t *countingTransport) Do(req *http.Request) (*http.Response, error) {
	t.calls++
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func TestTraceTransporterForwardsRequests(t *testing.T) {
	inner := &countingTransport{}
	transport := TraceTransporter(inner)

	req, err := http.NewRequest(http.MethodGet, "https://example.com/x", nil)
	require.NoError(t, err)

	resp, err := transport.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, inner.calls)
}

func TestTraceTransporterDefaultsToHTTPClient(t *testing.T) {
	transport := TraceTransporter(nil)
	assert.NotNil(t, transport)
}
