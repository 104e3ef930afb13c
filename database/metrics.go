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

package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type databaseMetrics struct {
	writes     *prometheus.CounterVec
	liveViews  prometheus.Gauge
	viewErrors prometheus.Counter
}

func newDatabaseMetrics(promRegistry prometheus.Registerer) *databaseMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &databaseMetrics{
		writes: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civicprep_database_election_writes_total",
				Help: "committed election writes by operation",
			},
			[]string{"op"},
		),
		liveViews: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "civicprep_database_live_views",
				Help: "active live election views",
			},
		),
		viewErrors: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "civicprep_database_live_view_errors_total",
				Help: "failed live view refreshes",
			},
		),
	}
}
