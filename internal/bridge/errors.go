// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItems is returned (wrapped in a DiscoveryError) when the registry
	// has no monitored item matching the pattern.
	ErrNoItems = errors.New("no monitored items matched")

	// ErrUnresolvedHost is returned (wrapped in a DiscoveryError) when a host
	// id has no name in the registry.
	ErrUnresolvedHost = errors.New("unresolved host id")

	// ErrMalformedKey is returned (wrapped in a DiscoveryError) when the
	// first item's key has no bracketed parameter list.
	ErrMalformedKey = errors.New("malformed item key")
)

// DiscoveryError aborts a run before any fetch.
type DiscoveryError struct {
	Pattern string
	Err     error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery for %q failed: %v", e.Pattern, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// FetchError is a per-item failure. It is logged and never aborts a run.
type FetchError struct {
	Host       string
	MetricSpec string
	Query      string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s [%s] failed: %v", e.Host, e.MetricSpec, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DeliveryError means the sink rejected or never received the batch.
type DeliveryError struct {
	Addr  string
	Count int
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery of %d values to %s failed: %v", e.Count, e.Addr, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
