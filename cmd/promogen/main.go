// Command promogen writes gzip promo files in the CODE,RATE line format read
// by the promo registry.
package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shopstream/internal/config"

	"github.com/shopspring/decimal"
)

// samplePromos are written when no -code flags are given. Later files win,
// so SPRING15 in spring.gz shows an override.
var samplePromos = map[string]map[string]string{
	"seasonal.gz": {
		"SUMMER25": "0.25",
		"WINTER15": "0.15",
		"SPRING15": "0.10",
	},
	"spring.gz": {
		"SPRING15": "0.15",
		"FLOWERS5": "0.05",
	},
}

type codeFlags map[string]string

func (c codeFlags) String() string { return fmt.Sprint(map[string]string(c)) }

func (c codeFlags) Set(v string) error {
	code, rate, err := splitPair(v)
	if err != nil {
		return err
	}
	c[code] = rate
	return nil
}

func main() {
	dir := flag.String("dir", "data/promos", "output directory")
	name := flag.String("name", "custom.gz", "file name used with -code")
	codes := codeFlags{}
	flag.Var(codes, "code", "CODE=RATE entry, repeatable (e.g. -code VIP30=0.30)")
	flag.Parse()

	logger := config.NewLogger(config.LoggerConfig{Level: "info", Format: "console"})

	files := samplePromos
	if len(codes) > 0 {
		files = map[string]map[string]string{*name: codes}
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", *dir).Msg("failed to create directory")
	}

	for filename, entries := range files {
		path := filepath.Join(*dir, filename)
		if err := writePromoFile(path, entries); err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("failed to write promo file")
		}
		logger.Info().Str("path", path).Int("code_count", len(entries)).Msg("promo file written")
	}

	logger.Info().Msg("set PROMO_FILES to a comma-separated list of these paths, in priority order")
}

func splitPair(v string) (string, string, error) {
	code, rate, ok := strings.Cut(v, "=")
	if !ok {
		return "", "", fmt.Errorf("expected CODE=RATE, got %q", v)
	}
	if code == "" {
		return "", "", fmt.Errorf("empty code in %q", v)
	}
	if _, err := decimal.NewFromString(rate); err != nil {
		return "", "", fmt.Errorf("invalid rate in %q: %w", v, err)
	}
	return code, rate, nil
}

func writePromoFile(path string, entries map[string]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)

	codes := make([]string, 0, len(entries))
	for code := range entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if _, err := fmt.Fprintln(gz, "# code,rate"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, code := range codes {
		if _, err := fmt.Fprintf(gz, "%s,%s\n", code, entries[code]); err != nil {
			return fmt.Errorf("failed to write promo %s: %w", code, err)
		}
	}

	return gz.Close()
}
