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

package filestore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyglot_file_operations_total",
			Help: "Total file store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	bytesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyglot_file_bytes_read_total",
		Help: "Total bytes read from files",
	})

	bytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyglot_file_bytes_written_total",
		Help: "Total bytes written to files",
	})
)

// recordMetrics records metrics for a file operation
func recordMetrics(operation string, status string, bytesReadCount int64, bytesWrittenCount int64) {
	operationsTotal.WithLabelValues(operation, status).Inc()

	if bytesReadCount > 0 {
		bytesRead.Add(float64(bytesReadCount))
	}
	if bytesWrittenCount > 0 {
		bytesWritten.Add(float64(bytesWrittenCount))
	}
}
