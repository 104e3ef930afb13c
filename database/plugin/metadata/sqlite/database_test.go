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

package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/database/models"
)

func TestNewInMemoryIsolated(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	defer a.Close()
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.DB().Create(&models.Election{ID: 1, Name: "a"}).Error)
	var count int64
	require.NoError(t, b.DB().Model(&models.Election{}).Count(&count).Error)
	require.Zero(t, count, "in-memory stores must not share data")
	require.NoError(t, a.DB().Model(&models.Election{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestNewOnDisk(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested")
	reg := prometheus.NewRegistry()
	db, err := New(WithDataDir(dataDir), WithPromRegistry(reg))
	require.NoError(t, err)
	require.NoError(t, db.DB().Create(&models.Election{ID: 7, Name: "x"}).Error)
	require.NoError(t, db.runVacuum())
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
	_, err = os.Stat(filepath.Join(dataDir, DatabaseFile))
	require.NoError(t, err)

	db, err = New(WithDataDir(dataDir))
	require.NoError(t, err)
	defer db.Close()
	var row models.Election
	require.NoError(t, db.DB().First(&row, 7).Error)
	require.Equal(t, "x", row.Name)
}
