// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupFilterMaybeSeen(t *testing.T) {
	d := newDedupFilter()
	require.False(t, d.maybeSeen(42))

	d.add(42)
	require.True(t, d.maybeSeen(42))
}

func TestDedupFilterDistinctIDsRarelyCollide(t *testing.T) {
	d := newDedupFilter()
	d.add(1)
	d.add(2)
	d.add(3)
	require.True(t, d.maybeSeen(1))
	require.True(t, d.maybeSeen(2))
	require.True(t, d.maybeSeen(3))
	// an ID never added is not reported by a near-empty filter.
	require.False(t, d.maybeSeen(4))
}
