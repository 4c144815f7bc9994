// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package graphite

import (
	"encoding/json"
	"fmt"
)

// Series is one element of a render API response.
type Series struct {
	Target     string      `json:"target"`
	Datapoints []Datapoint `json:"datapoints"`
}

// Datapoint is a single [value, timestamp] pair. Value is nil when Graphite
// reports null for the slot.
type Datapoint struct {
	Value     *float64
	Timestamp float64
}

// UnmarshalJSON decodes the two-element array form used by the render API.
func (d *Datapoint) UnmarshalJSON(data []byte) error {
	var pair []*float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode datapoint: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode datapoint: expected 2 elements, got %d", len(pair))
	}
	if pair[1] == nil {
		return fmt.Errorf("decode datapoint: null timestamp")
	}
	d.Value = pair[0]
	d.Timestamp = *pair[1]
	return nil
}

// MarshalJSON encodes the datapoint back into [value, timestamp] form.
func (d Datapoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{d.Value, d.Timestamp})
}
