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

package civicprep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/database"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, database.MetadataPluginSqlite, cfg.metadataPlugin)
	assert.Equal(t, DefaultSyncInterval, cfg.syncInterval)
	assert.Equal(t, DefaultRequestTimeout, cfg.requestTimeout)
	assert.Empty(t, cfg.dataDir)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDatabasePath("/tmp/civicprep"),
		WithAPIKey("key"),
		WithSyncInterval(time.Minute),
		WithPurgeDeleted(true),
		WithTracing(true),
		WithTracingStdout(true),
	)
	assert.Equal(t, "/tmp/civicprep", cfg.dataDir)
	assert.Equal(t, "key", cfg.apiKey)
	assert.Equal(t, time.Minute, cfg.syncInterval)
	assert.True(t, cfg.purgeDeleted)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
}

func TestConfigValidate(t *testing.T) {
	testDefs := []struct {
		name string
		opts []ConfigOptionFunc
	}{
		{
			name: "unknown plugin",
			opts: []ConfigOptionFunc{WithMetadataPlugin("mysql")},
		},
		{
			name: "zero interval",
			opts: []ConfigOptionFunc{WithSyncInterval(0)},
		},
		{
			name: "negative timeout",
			opts: []ConfigOptionFunc{WithRequestTimeout(-time.Second)},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := New(NewConfig(testDef.opts...))
			require.Error(t, err)
		})
	}
}
