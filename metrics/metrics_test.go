// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

type fakeSource struct{}

func (fakeSource) ScoreboardDepth() int     { return 2 }
func (fakeSource) UnackedLen() int          { return 5 }
func (fakeSource) UnwrittenLen() int        { return 1 }
func (fakeSource) RetransmitCount() uint64  { return 7 }
func (fakeSource) ConnectionIDHex() string  { return "abcd" }

func TestConnectionCollectorCollect(t *testing.T) {
	c := NewConnectionCollector(fakeSource{}, prometheus.Labels{"connection_id": "abcd"})

	ch := make(chan prometheus.Metric, 4)
	c.Collect(ch)
	close(ch)

	values := map[string]float64{}
	for m := range ch {
		var out dto.Metric
		require.NoError(t, m.Write(&out))
		name := m.Desc().String()
		switch {
		case out.Gauge != nil:
			values[name] = out.Gauge.GetValue()
		case out.Counter != nil:
			values[name] = out.Counter.GetValue()
		}
	}
	require.Len(t, values, 4)
}

func TestConnectionCollectorDescribe(t *testing.T) {
	c := NewConnectionCollector(fakeSource{}, nil)
	ch := make(chan *prometheus.Desc, 4)
	c.Describe(ch)
	close(ch)
	count := 0
	for range ch {
		count++
	}
	require.Equal(t, 4, count)
}
