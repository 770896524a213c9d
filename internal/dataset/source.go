package dataset

import (
	"context"
	"fmt"
	"log/slog"
)

// Source types
const (
	SourceDir      = "dir"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
)

// SourceConfig selects and configures where the dataset tables are read from
type SourceConfig struct {
	Type        string
	Dir         string
	S3          S3Config
	HTTP        HTTPConfig
	PostgresURL string
}

// OpenReader builds the table reader for cfg. The returned close function
// releases any held connections and is always safe to call.
func OpenReader(ctx context.Context, cfg SourceConfig, logger *slog.Logger) (TableReader, func(), error) {
	noop := func() {}

	switch cfg.Type {
	case SourceDir, "":
		logger.Info("dataset source is local directory", "dir", cfg.Dir)
		return NewCSVReader(NewDirOpener(cfg.Dir)), noop, nil
	case SourceS3:
		opener, err := NewS3Opener(cfg.S3, logger)
		if err != nil {
			return nil, noop, err
		}
		return NewCSVReader(opener), noop, nil
	case SourceHTTP:
		logger.Info("dataset source is http", "base_url", cfg.HTTP.BaseURL, "gzip", cfg.HTTP.Gzip)
		return NewCSVReader(NewHTTPOpener(cfg.HTTP)), noop, nil
	case SourcePostgres:
		reader, err := NewPostgresReader(ctx, cfg.PostgresURL, logger)
		if err != nil {
			return nil, noop, err
		}
		return reader, reader.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownSourceType, cfg.Type)
	}
}
