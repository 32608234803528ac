// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logger

import (
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog/log"
)

// Transporter matches the azure sdk transport interface so the logging
// wrapper can be injected into client options.
type Transporter interface {
	Do(req *http.Request) (*http.Response, error)
}

type defaultTransporter struct{}

func (defaultTransporter) Do(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

type loggingTransporter struct {
	transport Transporter
}

func (t *loggingTransporter) Do(req *http.Request) (*http.Response, error) {
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return nil, err
	}
	log.Trace().Msg(string(dump))
	return t.transport.Do(req)
}

// TraceTransporter wraps a transport and dumps every outgoing request
// at trace level. A nil transport wraps the default http client.
func TraceTransporter(transport Transporter) Transporter {
	if transport == nil {
		transport = defaultTransporter{}
	}
	return &loggingTransporter{transport: transport}
}
