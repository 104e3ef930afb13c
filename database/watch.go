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
	"context"
	"errors"
	"slices"

	"github.com/blinklabs-io/civicprep/database/models"
	"github.com/blinklabs-io/civicprep/event"
	"github.com/blinklabs-io/civicprep/observable"
)

// watch runs query now and again after every election change until ctx is
// done, publishing each differing result into the returned cell
func watch[T any](
	ctx context.Context,
	d *Database,
	name string,
	query func() (T, error),
	equal func(a, b T) bool,
) (*observable.Cell[T], error) {
	// Subscribe before the initial query so no write falls between them
	var cell *observable.Cell[T]
	ready := make(chan struct{})
	subId := d.eventBus.SubscribeFunc(
		event.ElectionChangedEventType,
		func(evt event.Event) {
			<-ready
			if cell == nil || ctx.Err() != nil {
				return
			}
			value, err := query()
			if err != nil {
				if d.metrics != nil {
					d.metrics.viewErrors.Inc()
				}
				d.logger.Error(
					"failed to refresh live view",
					"component", "database",
					"view", name,
					"error", err,
				)
				return
			}
			cell.Set(value)
		},
	)
	initial, err := query()
	if err != nil {
		close(ready)
		d.eventBus.Unsubscribe(event.ElectionChangedEventType, subId)
		return nil, err
	}
	cell = observable.NewCell(initial, observable.WithEqual(equal))
	close(ready)
	if d.metrics != nil {
		d.metrics.liveViews.Inc()
	}
	context.AfterFunc(ctx, func() {
		d.eventBus.Unsubscribe(event.ElectionChangedEventType, subId)
		if d.metrics != nil {
			d.metrics.liveViews.Dec()
		}
	})
	return cell, nil
}

func electionsEqual(a, b []models.Election) bool {
	return slices.EqualFunc(a, b, models.Election.Equal)
}

func electionPtrEqual(a, b *models.Election) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// WatchAllElections is a live view of AllElections. It follows the store
// until ctx is done.
func (d *Database) WatchAllElections(
	ctx context.Context,
) (*observable.Cell[[]models.Election], error) {
	return watch(ctx, d, "all", d.AllElections, electionsEqual)
}

// WatchSavedElections is a live view of AllSavedElections
func (d *Database) WatchSavedElections(
	ctx context.Context,
) (*observable.Cell[[]models.Election], error) {
	return watch(ctx, d, "saved", d.AllSavedElections, electionsEqual)
}

// WatchElection is a live view of a single election. The cell holds nil
// while no row has the id.
func (d *Database) WatchElection(
	ctx context.Context,
	id int64,
) (*observable.Cell[*models.Election], error) {
	query := func() (*models.Election, error) {
		e, err := d.ElectionByID(id)
		if errors.Is(err, ErrElectionNotFound) {
			return nil, nil
		}
		return e, err
	}
	return watch(ctx, d, "by-id", query, electionPtrEqual)
}
