package visdump

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats is the running total of everything a dump emitted.
// Sum and Count cover raw sample values, before any encoding.
type Stats struct {
	Sum      float64
	Count    uint64
	Records  uint64
	Slices   int
	Duration time.Duration
}

func (s *Stats) addRecord(sum float64, count uint64) {
	s.Sum += sum
	s.Count += count
	s.Records++
}

func (s Stats) String() string {
	return fmt.Sprintf("Sum was %v, count was %d floats", s.Sum, s.Count)
}

// WriteMetricsFile writes the stats in the Prometheus text exposition format,
// suitable for the node exporter textfile collector
func WriteMetricsFile(path string, s Stats, labels prometheus.Labels) error {
	reg := prometheus.NewRegistry()
	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "visdump",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		reg.MustRegister(g)
	}

	gauge("sample_sum", "Sum of all raw sample values emitted by the last dump.", s.Sum)
	gauge("sample_count", "Number of sample values emitted by the last dump.", float64(s.Count))
	gauge("records", "Number of visibility records emitted by the last dump.", float64(s.Records))
	gauge("slices", "Number of (timestep, coarse channel) slices read by the last dump.", float64(s.Slices))
	gauge("duration_seconds", "Wall time of the last dump.", s.Duration.Seconds())
	gauge("last_success_timestamp_seconds", "Unix time the last dump finished.", float64(time.Now().Unix()))

	return prometheus.WriteToTextfile(path, reg)
}
