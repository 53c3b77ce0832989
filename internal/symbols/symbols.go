package symbols

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExchangeSuffix is stripped from listed symbols.
const ExchangeSuffix = ".IS"

// Load reads symbols from every CSV file matching the patterns. Missing files
// are skipped. The result is de-duplicated and sorted.
func Load(patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad symbol pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			if err := readFile(path, seen); err != nil {
				return nil, err
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func readFile(path string, seen map[string]struct{}) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := Parse(f, seen); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// Parse adds the first column of every CSV row to seen, upper-cased and
// without the exchange suffix.
func Parse(r io.Reader, seen map[string]struct{}) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if s := Normalize(row[0]); s != "" {
			seen[s] = struct{}{}
		}
	}
}

// Normalize trims, upper-cases and strips the exchange suffix.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
	return strings.TrimSuffix(s, ExchangeSuffix)
}
