package portfolio

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

var (
	// ErrNotFound is returned when the portfolio file does not exist.
	ErrNotFound = eris.New("portfolio file not found")

	// ErrEmpty is returned when the portfolio file holds no loan rows.
	ErrEmpty = eris.New("portfolio is empty")

	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = eris.New("portfolio header is missing required columns")

	// ErrTooLarge is returned when the file exceeds the configured size limit.
	ErrTooLarge = eris.New("portfolio file exceeds size limit")
)

// ctxCheckInterval is how many rows are decoded between context checks.
const ctxCheckInterval = 1024

// Load reads and parses the portfolio file at path.
func Load(ctx context.Context, path string) (*Portfolio, error) {
	return load(ctx, path, 0)
}

// LoadWithLimit returns a LoadFunc that refuses files larger than maxBytes.
// A non-positive limit disables the check.
func LoadWithLimit(maxBytes int64) LoadFunc {
	return func(ctx context.Context, path string) (*Portfolio, error) {
		return load(ctx, path, maxBytes)
	}
}

func load(ctx context.Context, path string, maxBytes int64) (*Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "portfolio: load cancelled")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "portfolio: %s", path)
		}
		return nil, eris.Wrapf(err, "portfolio: stat %s", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, eris.Wrapf(ErrTooLarge, "portfolio: %s is %d bytes, limit %d", path, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "portfolio: %s", path)
		}
		return nil, eris.Wrapf(err, "portfolio: read %s", path)
	}

	loans, err := Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "portfolio: parse %s", path)
	}

	return &Portfolio{
		Loans:       loans,
		Source:      path,
		ModTime:     info.ModTime(),
		Size:        info.Size(),
		Fingerprint: Fingerprint(data),
		LoadedAt:    time.Now(),
	}, nil
}

// Fingerprint returns the hex xxhash64 digest of the file contents.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Parse decodes portfolio rows from CSV. The header must carry every
// required column; extra columns are ignored and cells are trimmed.
func Parse(ctx context.Context, r io.Reader) ([]Loan, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(&trimReader{r: reader})
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.Wrap(ErrEmpty, "no header row")
		}
		return nil, eris.Wrap(err, "read header")
	}

	if missing := missingColumns(dec.Header()); len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumns, "missing %s", strings.Join(missing, ", "))
	}

	var loans []Loan
	for row := 1; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "parse cancelled")
			}
		}

		var loan Loan
		if err := dec.Decode(&loan); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "row %d", row)
		}
		if loan.Default != 0 && loan.Default != 1 {
			return nil, eris.Errorf("row %d: %s must be 0 or 1, got %d", row, constants.ColumnDefault, loan.Default)
		}
		loans = append(loans, loan)
	}

	if len(loans) == 0 {
		return nil, eris.Wrap(ErrEmpty, "no loan rows")
	}
	return loans, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, column := range header {
		present[column] = struct{}{}
	}

	var missing []string
	for _, column := range constants.RequiredColumns {
		if _, ok := present[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// trimReader strips surrounding whitespace from every field, header included.
type trimReader struct {
	r *csv.Reader
}

func (t *trimReader) Read() ([]string, error) {
	record, err := t.r.Read()
	if err != nil {
		return nil, err
	}
	for i, field := range record {
		record[i] = strings.TrimSpace(field)
	}
	return record, nil
}
