// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package zabbix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// HostID identifies a Zabbix host. The API encodes ids as JSON strings;
// numbers are accepted too.
type HostID int64

// UnmarshalJSON accepts "10084" or 10084.
func (id *HostID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid host id %s: %w", data, err)
	}
	*id = HostID(n)
	return nil
}

// MarshalJSON encodes the id the way the API expects it.
func (id HostID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(id), 10))
}

func (id HostID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Item is a monitored item as returned by item.get.
type Item struct {
	HostID HostID `json:"hostid"`
	Key    string `json:"key_"`
}

// Host is a host as returned by host.get.
type Host struct {
	ID   HostID `json:"hostid"`
	Name string `json:"host"`
}

// Metric is one value pushed to the trapper port.
type Metric struct {
	Host  string
	Key   string
	Value float64
	Clock float64 // Unix seconds, fractional part becomes ns
}

// SendResult summarizes the server's answer to a sender request.
type SendResult struct {
	Processed int
	Failed    int
	Total     int
}

// APIError is a JSON-RPC error object returned by the Zabbix API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *APIError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("zabbix api error %d: %s %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("zabbix api error %d: %s", e.Code, e.Message)
}
