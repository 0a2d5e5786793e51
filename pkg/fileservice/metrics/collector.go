// Package metrics exports content cache and event counters to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

const namespace = "fileservice"

// StatsSource is anything that can report cache statistics
type StatsSource interface {
	CacheStats() fileservice.CacheStats
}

// CacheCollector reads a fresh snapshot from its source on every scrape
type CacheCollector struct {
	source StatsSource

	entries *prometheus.Desc
	bytes   *prometheus.Desc
	hits    *prometheus.Desc
	misses  *prometheus.Desc
}

// NewCacheCollector creates a collector over source
func NewCacheCollector(source StatsSource) *CacheCollector {
	return &CacheCollector{
		source:  source,
		entries: prometheus.NewDesc(namespace+"_cache_entries", "Number of files held in the content cache.", nil, nil),
		bytes:   prometheus.NewDesc(namespace+"_cache_bytes", "Total bytes of cached content.", nil, nil),
		hits:    prometheus.NewDesc(namespace+"_cache_hits_total", "Reads served from the content cache.", nil, nil),
		misses:  prometheus.NewDesc(namespace+"_cache_misses_total", "Reads that went to the blob store.", nil, nil),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.bytes
	ch <- c.hits
	ch <- c.misses
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.CacheStats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.Entries))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(stats.Bytes))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
}

// EventCounter is an EventSink counting lifecycle events by type
type EventCounter struct {
	events *prometheus.CounterVec
	bytes  prometheus.Counter
}

// NewEventCounter creates the counters and registers them with reg
func NewEventCounter(reg prometheus.Registerer) (*EventCounter, error) {
	c := &EventCounter{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Lifecycle events by type.",
		}, []string{"event"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "written_bytes_total",
			Help:      "Bytes written through the service.",
		}),
	}
	for _, col := range []prometheus.Collector{c.events, c.bytes} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *EventCounter) FileWritten(ctx context.Context, name string, size int64) error {
	c.events.WithLabelValues("file_written").Inc()
	c.bytes.Add(float64(size))
	return nil
}

func (c *EventCounter) FileDeleted(ctx context.Context, name string) error {
	c.events.WithLabelValues("file_deleted").Inc()
	return nil
}

func (c *EventCounter) UserCreated(ctx context.Context, user *fileservice.User) error {
	c.events.WithLabelValues("user_created").Inc()
	return nil
}

func (c *EventCounter) UserUpdated(ctx context.Context, user *fileservice.User) error {
	c.events.WithLabelValues("user_updated").Inc()
	return nil
}
