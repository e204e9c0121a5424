package generate

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	csvadapter "github.com/leapstack-labs/leapdq/pkg/adapters/csv"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func generate(t *testing.T, opts Options) [][]string {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return anchor }
	}
	var buf bytes.Buffer
	n, err := Write(&buf, opts)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, n+1)
	return records
}

func TestWrite_Shape(t *testing.T) {
	records := generate(t, Options{Records: 200, Seed: 7})

	assert.Equal(t, Columns, records[0])
	rows := records[1:]
	assert.Len(t, rows, 210, "base records plus ten duplicates")

	for i := 0; i < 10; i++ {
		assert.Equal(t, rows[i][0], rows[200+i][0], "row %d should be repeated", i)
		assert.Equal(t, rows[i][1], rows[200+i][1])
	}

	oldest := anchor.Add(-maxAgeDays * 24 * time.Hour)
	for i, r := range rows {
		if i < 200 {
			assert.Equal(t, "TXN_"+strconv.Itoa(i), r[0])
		}
		if r[1] != "" {
			user, err := strconv.Atoi(r[1])
			require.NoError(t, err)
			assert.GreaterOrEqual(t, user, 1000)
			assert.LessOrEqual(t, user, 9999)
		}

		amount, err := strconv.ParseFloat(r[2], 64)
		require.NoError(t, err)
		if amount < 0 {
			amount = -amount
		}
		assert.GreaterOrEqual(t, amount, 10.0)
		assert.LessOrEqual(t, amount, 1000.0)
		assert.Regexp(t, `^-?\d+\.\d{2}$`, r[2])

		ts, err := time.Parse(core.TimestampLayout, r[3])
		require.NoError(t, err)
		assert.False(t, ts.After(anchor))
		assert.False(t, ts.Before(oldest))

		assert.Contains(t, append(Statuses, InvalidStatus), r[4])
	}
}

func TestWrite_Deterministic(t *testing.T) {
	a := generate(t, Options{Records: 100, Seed: 42})
	b := generate(t, Options{Records: 100, Seed: 42})
	c := generate(t, Options{Records: 100, Seed: 43})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestWrite_SmallBatch(t *testing.T) {
	records := generate(t, Options{Records: 3, Seed: 1})
	assert.Len(t, records, 1+6, "every base row is duplicated when fewer than ten")
}

func TestWrite_DefaultRecords(t *testing.T) {
	records := generate(t, Options{Seed: 1})
	assert.Len(t, records, 1+DefaultRecords+10)
}

func TestWrite_InjectsIssues(t *testing.T) {
	rows := generate(t, Options{Records: 1000, Seed: 3})[1:]

	var nulls, negatives, invalid int
	for _, r := range rows {
		if r[1] == "" {
			nulls++
		}
		if strings.HasPrefix(r[2], "-") {
			negatives++
		}
		if r[4] == InvalidStatus {
			invalid++
		}
	}
	assert.Positive(t, nulls)
	assert.Positive(t, negatives)
	assert.Positive(t, invalid)
	assert.Less(t, nulls, 150)
	assert.Less(t, negatives, 100)
	assert.Less(t, invalid, 100)
}

func TestWriteFile_FailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "transactions.csv")
	n, err := WriteFile(path, Options{Records: 500, Seed: 11})
	require.NoError(t, err)
	assert.Equal(t, 510, n)

	a := csvadapter.New(nil)
	require.NoError(t, a.Connect(context.Background(), core.SourceConfig{Type: "csv", Path: path}))
	ds, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 510, ds.Len())

	v := validate.New(ds, "Transactions")
	v.CheckSchema(Columns)
	v.CheckNulls([]string{"user_id"}, 0)
	v.CheckDuplicates([]string{"transaction_id"}, 0)
	r := v.Report()
	assert.Equal(t, 1, r.PassedChecks)
	assert.Equal(t, 2, r.FailedChecks)
}
