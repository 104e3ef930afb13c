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

package viewstate_test

import (
	"context"
	"errors"
	"sync"

	"github.com/blinklabs-io/civicprep/civic"
)

var errRemote = errors.New("remote unavailable")

// fakeCivic answers from canned data. A hook, when set, replaces the
// canned answer for its call.
type fakeCivic struct {
	mu              sync.Mutex
	elections       []civic.Election
	representatives []civic.Representative
	err             error
	addresses       []string
	voterInfoFn     func(ctx context.Context, id int64, address string) (*civic.VoterInfo, error)
}

func (f *fakeCivic) Elections(ctx context.Context) ([]civic.Election, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.elections, nil
}

func (f *fakeCivic) VoterInfo(
	ctx context.Context,
	id int64,
	address string,
) (*civic.VoterInfo, error) {
	f.mu.Lock()
	fn := f.voterInfoFn
	err := f.err
	f.addresses = append(f.addresses, address)
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, id, address)
	}
	if err != nil {
		return nil, err
	}
	return &civic.VoterInfo{Election: civic.Election{ID: id}}, nil
}

func (f *fakeCivic) Representatives(
	ctx context.Context,
	address string,
) ([]civic.Representative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, address)
	if f.err != nil {
		return nil, f.err
	}
	return f.representatives, nil
}

func (f *fakeCivic) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeCivic) lastAddress() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.addresses) == 0 {
		return ""
	}
	return f.addresses[len(f.addresses)-1]
}

type fakeGeocoder struct {
	addresses []civic.Address
	err       error
}

func (g fakeGeocoder) ReverseGeocode(
	ctx context.Context,
	lat float64,
	lng float64,
) ([]civic.Address, error) {
	return g.addresses, g.err
}
