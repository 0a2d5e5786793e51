package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

type fixedStats fileservice.CacheStats

func (f fixedStats) CacheStats() fileservice.CacheStats {
	return fileservice.CacheStats(f)
}

func TestCacheCollector(t *testing.T) {
	c := NewCacheCollector(fixedStats{Entries: 2, Bytes: 30, Hits: 5, Misses: 1})

	expected := `
# HELP fileservice_cache_entries Number of files held in the content cache.
# TYPE fileservice_cache_entries gauge
fileservice_cache_entries 2
# HELP fileservice_cache_hits_total Reads served from the content cache.
# TYPE fileservice_cache_hits_total counter
fileservice_cache_hits_total 5
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"fileservice_cache_entries", "fileservice_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 4, testutil.CollectAndCount(c))
}

func TestEventCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEventCounter(reg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.FileWritten(ctx, "a", 10))
	require.NoError(t, c.FileWritten(ctx, "b", 5))
	require.NoError(t, c.FileDeleted(ctx, "a"))

	assert.Equal(t, float64(2), testutil.ToFloat64(c.events.WithLabelValues("file_written")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.events.WithLabelValues("file_deleted")))
	assert.Equal(t, float64(15), testutil.ToFloat64(c.bytes))

	_, err = NewEventCounter(reg)
	assert.Error(t, err, "registering twice must fail")
}
