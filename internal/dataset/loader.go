package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/metrics"
)

// Loader reads the six dataset tables once and serves the cached result afterwards
type Loader struct {
	reader TableReader
	logger *slog.Logger

	// mu serializes first-time loads; data is published once and never replaced
	mu   sync.Mutex
	data atomic.Pointer[Dataset]
}

// tableLoadResult holds the result of reading a single table
type tableLoadResult struct {
	index int
	table *Table
	err   error
}

// NewLoader creates a loader over the given table reader
func NewLoader(reader TableReader, logger *slog.Logger) *Loader {
	return &Loader{
		reader: reader,
		logger: logger,
	}
}

// Load returns the dataset, reading it on the first successful call only.
// Concurrent first callers block until the single in-flight load finishes.
// A failed load is not cached, so a later call retries.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if ds := l.data.Load(); ds != nil {
		return ds, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ds := l.data.Load(); ds != nil {
		return ds, nil
	}

	start := time.Now()
	tables, err := l.readAll(ctx)
	if err != nil {
		return nil, err
	}

	ds, err := Build(tables)
	if err != nil {
		var dle *DataLoadError
		if errors.As(err, &dle) {
			metrics.DatasetLoadErrors.WithLabelValues(dle.Table).Inc()
		}
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
	for name, rows := range ds.Stats().Rows {
		metrics.DatasetRows.WithLabelValues(name).Set(float64(rows))
	}

	l.logger.Info("dataset loaded",
		"restaurants", len(ds.Restaurants),
		"cuisine_links", len(ds.CuisineLinks),
		"reviews", len(ds.Reviews),
		"timing_slots", len(ds.Timing),
		"duration_ms", elapsed.Milliseconds(),
	)

	l.data.Store(ds)
	return ds, nil
}

// Loaded reports whether a dataset has been cached
func (l *Loader) Loaded() bool {
	return l.data.Load() != nil
}

// readAll reads every table concurrently. Returns the first error in table order.
func (l *Loader) readAll(ctx context.Context) (map[string]*Table, error) {
	resultChan := make(chan tableLoadResult, len(TableNames))

	var wg sync.WaitGroup
	for i, name := range TableNames {
		wg.Add(1)
		go func(index int, tableName string) {
			defer wg.Done()

			table, err := l.reader.ReadTable(ctx, tableName)
			resultChan <- tableLoadResult{
				index: index,
				table: table,
				err:   err,
			}
		}(i, name)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]tableLoadResult, len(TableNames))
	for result := range resultChan {
		results[result.index] = result
	}

	tables := make(map[string]*Table, len(TableNames))
	for i, result := range results {
		name := TableNames[i]
		if result.err != nil {
			metrics.DatasetLoadErrors.WithLabelValues(name).Inc()
			l.logger.Error("failed to read dataset table", "table", name, "error", result.err)
			return nil, loadError(name, result.err)
		}
		tables[name] = result.table
	}

	return tables, nil
}
