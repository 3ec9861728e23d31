package engine

import (
	"fmt"
	"sort"
)

// MetricsSummary formats the latest metrics interval, one line per metric,
// sorted by name.
func (e *Engine) MetricsSummary() []string {
	data := e.sink.Data()
	if len(data) == 0 {
		return nil
	}
	iv := data[len(data)-1]
	iv.RLock()
	defer iv.RUnlock()

	var lines []string
	for name, g := range iv.Gauges {
		lines = append(lines, fmt.Sprintf("%s = %g", name, g.Value))
	}
	for name, c := range iv.Counters {
		lines = append(lines, fmt.Sprintf("%s count=%d sum=%g", name, c.Count, c.Sum))
	}
	for name, s := range iv.Samples {
		lines = append(lines, fmt.Sprintf("%s count=%d mean=%.3fms max=%.3fms", name, s.Count, s.Mean, s.Max))
	}
	sort.Strings(lines)
	return lines
}
