// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	unitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyglot_units_total",
			Help: "Total pipeline units by phase and status",
		},
		[]string{"phase", "status"},
	)

	unitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyglot_unit_duration_seconds",
			Help:    "Duration of pipeline units by phase",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"phase"},
	)
)

func recordUnit(phase Phase, status Status, seconds float64) {
	unitsTotal.WithLabelValues(string(phase), status.String()).Inc()
	unitDuration.WithLabelValues(string(phase)).Observe(seconds)
}
