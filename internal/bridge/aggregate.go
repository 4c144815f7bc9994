// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import "github.com/elastic/graphzab/internal/graphite"

// FilterNull drops datapoints without a value.
func FilterNull(points []graphite.Datapoint) []Sample {
	samples := make([]Sample, 0, len(points))
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		samples = append(samples, Sample{Timestamp: p.Timestamp, Value: *p.Value})
	}
	return samples
}

// Aggregate returns the mean value and the mean timestamp of samples.
// An empty slice yields the zero result; callers filter that case out first.
func Aggregate(samples []Sample) AggregatedResult {
	if len(samples) == 0 {
		return AggregatedResult{}
	}
	var sumValue, sumTS float64
	for _, s := range samples {
		sumValue += s.Value
		sumTS += s.Timestamp
	}
	n := float64(len(samples))
	return AggregatedResult{
		Value:     sumValue / n,
		Timestamp: sumTS / n,
	}
}
