package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fileLoader implements Loader for reading gzipped promo files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based promo loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads a gzipped promo file from the local file system.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Set, error) {
	l.logger.Info().Str("file", filePath).Msg("loading promo file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := parseGzip(ctx, file, l.logger.With().Str("file", filePath).Logger())
	if err != nil {
		return nil, fmt.Errorf("promo file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("codes_loaded", set.Size()).
		Msg("promo file loaded successfully")

	return set, nil
}

// parseGzip reads CODE,RATE lines from a gzip stream. Blank lines and lines
// starting with # are skipped; malformed lines are logged and skipped.
func parseGzip(ctx context.Context, r io.Reader, logger zerolog.Logger) (*mapSet, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	set := newMapSet(64)
	scanner := bufio.NewScanner(gzipReader)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Msg("promo loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, rate, err := parseLine(line)
		if err != nil {
			logger.Warn().Err(err).Int("line", lineNo).Msg("skipping malformed promo line")
			continue
		}
		set.Add(code, rate)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("error reading promo file")
		return nil, fmt.Errorf("error reading promo file: %w", err)
	}

	return set, nil
}

func parseLine(line string) (string, decimal.Decimal, error) {
	code, rawRate, ok := strings.Cut(line, ",")
	if !ok {
		return "", decimal.Zero, fmt.Errorf("expected CODE,RATE but got %q", line)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return "", decimal.Zero, fmt.Errorf("empty promo code")
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(rawRate))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("invalid rate for %s: %w", code, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return "", decimal.Zero, fmt.Errorf("rate for %s out of range: %s", code, rate)
	}

	return code, rate, nil
}
