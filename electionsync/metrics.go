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

package electionsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type workerMetrics struct {
	runs      prometheus.Counter
	failures  prometheus.Counter
	elections prometheus.Gauge
}

func newWorkerMetrics(promRegistry prometheus.Registerer) *workerMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &workerMetrics{
		runs: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "civicprep_sync_runs_total",
				Help: "successful election syncs",
			},
		),
		failures: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "civicprep_sync_failures_total",
				Help: "failed election syncs",
			},
		),
		elections: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "civicprep_sync_elections",
				Help: "elections written by the last successful sync",
			},
		),
	}
}
