// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/elastic/graphzab/internal/zabbix"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// outboundEntry is the dry-run view of one value.
type outboundEntry struct {
	Host  string  `json:"host"`
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Clock float64 `json:"clock"`
}

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want text or json)", format)
	}
}

// writeOutbound prints the batch that a real run would send.
func writeOutbound(w io.Writer, format string, metrics []zabbix.Metric) error {
	if format == outputJSON {
		entries := make([]outboundEntry, 0, len(metrics))
		for _, m := range metrics {
			entries = append(entries, outboundEntry{Host: m.Host, Key: m.Key, Value: m.Value, Clock: m.Clock})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tKEY\tVALUE\tCLOCK")
	for _, m := range metrics {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Host, m.Key,
			strconv.FormatFloat(m.Value, 'f', -1, 64),
			strconv.FormatFloat(m.Clock, 'f', -1, 64))
	}
	return tw.Flush()
}
