// Package generate writes synthetic transaction batches with injected
// data-quality issues, for demos and smoke tests of the pipeline.
package generate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// DefaultRecords is the number of base records when Options.Records is unset.
const DefaultRecords = 1000

// Columns is the header of generated batches.
var Columns = []string{"transaction_id", "user_id", "amount", "timestamp", "status"}

// Statuses are the valid transaction statuses.
var Statuses = []string{"COMPLETED", "PENDING", "FAILED"}

// InvalidStatus is injected into a fraction of rows.
const InvalidStatus = "UNKNOWN_STATUS"

// Injection rates and sizes.
const (
	nullUserRate      = 0.05
	negativeRate      = 0.02
	invalidStatusRate = 0.03
	duplicatedRows    = 10
	maxAgeDays        = 30
)

// Options controls generation.
type Options struct {
	// Records is the number of base records before duplicates are appended.
	Records int
	// Seed makes output deterministic. Zero picks a random seed.
	Seed int64
	// Now anchors timestamps. Defaults to time.Now.
	Now func() time.Time
}

type row struct {
	id     string
	user   int64
	null   bool
	amount float64
	ts     time.Time
	status string
}

// Write generates a batch as CSV into w and returns the number of data rows.
func Write(w io.Writer, opts Options) (int, error) {
	n := opts.Records
	if n <= 0 {
		n = DefaultRecords
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	seed := uint64(opts.Seed) //nolint:gosec // sign is irrelevant for seeding
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data
	anchor := now()

	rows := make([]row, 0, n+min(n, duplicatedRows))
	for i := 0; i < n; i++ {
		rows = append(rows, row{
			id:     "TXN_" + strconv.Itoa(i),
			user:   1000 + rng.Int64N(9000),
			amount: float64(1000+rng.IntN(99001)) / 100,
			ts:     anchor.Add(-time.Duration(rng.IntN(maxAgeDays+1)) * 24 * time.Hour),
			status: Statuses[rng.IntN(len(Statuses))],
		})
	}
	for i := range rows {
		rows[i].null = rng.Float64() < nullUserRate
	}
	rows = append(rows, rows[:min(n, duplicatedRows)]...)
	for i := range rows {
		if rng.Float64() < negativeRate {
			rows[i].amount = -rows[i].amount
		}
	}
	for i := range rows {
		if rng.Float64() < invalidStatusRate {
			rows[i].status = InvalidStatus
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, err
	}
	rec := make([]string, len(Columns))
	for _, r := range rows {
		rec[0] = r.id
		rec[1] = ""
		if !r.null {
			rec[1] = strconv.FormatInt(r.user, 10)
		}
		rec[2] = strconv.FormatFloat(r.amount, 'f', 2, 64)
		rec[3] = r.ts.Format(core.TimestampLayout)
		rec[4] = r.status
		if err := cw.Write(rec); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}

// WriteFile generates a batch into path, creating parent directories.
func WriteFile(path string, opts Options) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // path is user supplied on purpose
	if err != nil {
		return 0, err
	}
	n, err := Write(f, opts)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
