// Copyright 2025 Blink Labs Software
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

package prefs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type storeMetrics struct {
	writes      prometheus.Counter
	writeErrors prometheus.Counter
	keys        prometheus.Gauge
}

func newStoreMetrics(promRegistry prometheus.Registerer) *storeMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &storeMetrics{
		writes: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "civicprep_prefs_writes_total",
				Help: "committed preference writes",
			},
		),
		writeErrors: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "civicprep_prefs_write_errors_total",
				Help: "failed preference writes",
			},
		),
		keys: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "civicprep_prefs_keys",
				Help: "stored preference keys",
			},
		),
	}
}
