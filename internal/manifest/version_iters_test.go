// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/pebble-versionset/internal/base"
	"github.com/cockroachdb/pebble-versionset/internal/manifest"
)

// drain exhausts an InternalIterator from its unpositioned state, returning
// the keys it produced in the order it produced them and asserting that the
// order is strictly ascending under cmp.
func drain(t *testing.T, cmp base.InternalKeyCmp, it manifest.InternalIterator) []base.InternalKey {
	t.Helper()
	var keys []base.InternalKey
	for it.Advance() {
		k, _, ok := it.Current()
		require.True(t, ok)
		if len(keys) > 0 {
			require.True(t, cmp.Cmp(keys[len(keys)-1], k) < 0,
				"iterator produced %s after %s out of order", k, keys[len(keys)-1])
		}
		keys = append(keys, k)
	}
	require.False(t, it.Valid())
	return keys
}

// TestVersionNewIters_ScenarioAlpha builds Scenario alpha and checks the
// iterator set NewIters returns against Scenario eta: one iterator per
// level-0 file, one concatenating levelIter per non-empty level >= 1, a
// per-level entry count of [—, 9, 6, 4], a total entry count of 25 across
// every iterator, and strictly ascending order within each iterator.
func TestVersionNewIters_ScenarioAlpha(t *testing.T) {
	v, _ := buildScenarioAlpha(t)
	cmp := base.MakeInternalKeyCmp(base.DefaultCompare)

	iters, err := v.NewIters()
	require.NoError(t, err)

	// Two level-0 files (not concatenated, since level 0 may overlap) plus
	// one concatenating iterator for each of levels 1, 2, 3.
	require.Len(t, iters, 5)

	wantCounts := []int{3, 3, 9, 6, 4}
	total := 0
	for i, it := range iters {
		keys := drain(t, cmp, it)
		require.Lenf(t, keys, wantCounts[i], "iterator %d entry count", i)
		total += len(keys)
	}
	require.Equal(t, 25, total)
}

// TestVersionNewIters_LevelIterConcatenatesInOrder checks that a single
// level's concatenating iterator walks its files' entries in ascending
// order across file boundaries, not just within one file.
func TestVersionNewIters_LevelIterConcatenatesInOrder(t *testing.T) {
	v, _ := buildScenarioAlpha(t)
	cmp := base.MakeInternalKeyCmp(base.DefaultCompare)

	iters, err := v.NewIters()
	require.NoError(t, err)

	// iters[2] is level 1's concatenating iterator: files 3, 4, 5.
	level1 := iters[2]
	keys := drain(t, cmp, level1)
	require.Len(t, keys, 9)
	require.Equal(t, "aaa", string(keys[0].UserKey))
	require.Equal(t, "fab", string(keys[len(keys)-1].UserKey))
}

// TestVersionNewIters_SeekWithinLevel checks that levelIter.Seek lands on
// the correct file and entry: a seek that falls between two entries of one
// file, a seek onto the first key of the next file, and a seek past the
// level's last key.
func TestVersionNewIters_SeekWithinLevel(t *testing.T) {
	v, _ := buildScenarioAlpha(t)

	iters, err := v.NewIters()
	require.NoError(t, err)

	level2 := iters[3] // files 6 {cab,fab,fba}, 7 {gaa,gab,gba}
	require.True(t, level2.Seek(mk("faa", 0)))
	k, _, ok := level2.Current()
	require.True(t, ok)
	require.Equal(t, "fab", string(k.UserKey))

	require.True(t, level2.Seek(mk("gaa", 19)))
	k, _, ok = level2.Current()
	require.True(t, ok)
	require.Equal(t, "gaa", string(k.UserKey))

	require.False(t, level2.Seek(mk("zzz", 0)))
	require.False(t, level2.Valid())
}
