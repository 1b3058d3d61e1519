// This file is part of PBD.
//
// PBD is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// PBD is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with PBD. If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Theldus/PBD/curated"
)

func TestValidateRejectsIgnoreAndWatchTogether(t *testing.T) {
	opts := &Options{IgnoreList: []string{"a"}, WatchList: []string{"b"}}
	err := validate(opts)
	assert.True(t, curated.Has(err, curated.ConflictingFlags))
}

func TestValidateRejectsOnlyLocalsAndOnlyGlobalsTogether(t *testing.T) {
	opts := &Options{OnlyLocals: true, OnlyGlobals: true}
	err := validate(opts)
	assert.True(t, curated.Has(err, curated.ConflictingFlags))
}

func TestValidateAcceptsDisjointFlags(t *testing.T) {
	opts := &Options{WatchList: []string{"a"}, OnlyLocals: true}
	assert.NoError(t, validate(opts))
}

func TestWatchedWithWatchListIsAllowlist(t *testing.T) {
	opts := &Options{WatchList: []string{"a", "B"}}
	assert.True(t, opts.Watched("a"))
	assert.True(t, opts.Watched("b"))
	assert.False(t, opts.Watched("c"))
}

func TestWatchedWithIgnoreListIsDenylist(t *testing.T) {
	opts := &Options{IgnoreList: []string{"a"}}
	assert.False(t, opts.Watched("a"))
	assert.True(t, opts.Watched("b"))
}

func TestWatchedWithNoListsWatchesEverything(t *testing.T) {
	opts := &Options{}
	assert.True(t, opts.Watched("anything"))
}
