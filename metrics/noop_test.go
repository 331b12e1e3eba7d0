// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()

	assert.Nil(t, m.GetOrCreateHandler())

	// none of these may panic
	m.GetOrCreateCountMeter("count").Add(1)
	m.GetOrCreateCountVecMeter("countVec", []string{"kind"}).AddWithLabel(1, map[string]string{"whatever": "x"})
	m.GetOrCreateGaugeMeter("gauge").Set(10)
	m.GetOrCreateGaugeMeter("gauge").Add(-1)
	m.GetOrCreateHistogramVecMeter("hist", []string{"kind"}, nil).ObserveWithLabels(5, nil)
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := LazyLoad(func() int {
		calls++
		return calls
	})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, calls)
}
