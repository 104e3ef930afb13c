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

package node

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/internal/config"
)

func TestRedacted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APIKey = "secret"
	cfg.Postgres.Password = "hunter2"
	out := redacted(cfg)
	require.Equal(t, "REDACTED", out.APIKey)
	require.Equal(t, "REDACTED", out.Postgres.Password)
	require.Empty(t, out.Postgres.DSN)
	// the original is untouched
	require.Equal(t, "secret", cfg.APIKey)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	n, err := New(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, n.Open(context.Background()))
	require.NotNil(t, n.Database())
	require.NotNil(t, n.Prefs())
	require.NoError(t, n.Stop())
}
