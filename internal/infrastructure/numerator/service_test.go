package numerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "stockroom/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

type fakeQuerier struct {
	val  int64
	err  error
	keys []string
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if len(args) > 0 {
		q.keys = append(q.keys, args[0].(string))
	}
	q.val++
	return fakeRow{val: q.val, err: q.err}
}

func TestGetNextNumber(t *testing.T) {
	querier := &fakeQuerier{}
	svc := New(querier)
	period := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	number, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("PO"), period)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00001", number)
	require.Len(t, querier.keys, 1)
	assert.Equal(t, "PO_2026", querier.keys[0])

	number, err = svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("PO"), period)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00002", number)
}

func TestGetNextNumberQueryError(t *testing.T) {
	svc := New(&fakeQuerier{err: errors.New("connection refused")})

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("INV"), time.Now())
	require.Error(t, err)
}

func TestGetNextNumberNilService(t *testing.T) {
	var svc *Service
	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("SO"), time.Now())
	require.Error(t, err)
}

func TestBuildKey(t *testing.T) {
	period := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		reset string
		want  string
	}{
		{"year", "SO_2026"},
		{"month", "SO_2026_02"},
		{"never", "SO"},
	}
	for _, tt := range tests {
		t.Run(tt.reset, func(t *testing.T) {
			cfg := corenumerator.Config{Prefix: "SO", ResetPeriod: tt.reset}
			assert.Equal(t, tt.want, buildKey(cfg, period))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	withYear := corenumerator.Config{Prefix: "INV", IncludeYear: true, PadWidth: 5}
	assert.Equal(t, "INV-2026-00042", formatNumber(withYear, period, 42))

	noYear := corenumerator.Config{Prefix: "INV"}
	assert.Equal(t, "INV-00042", formatNumber(noYear, period, 42))

	wide := corenumerator.Config{Prefix: "INV", PadWidth: 8}
	assert.Equal(t, "INV-00000042", formatNumber(wide, period, 42))
}
