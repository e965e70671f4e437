package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ParkLedger/internal/model"
	"ParkLedger/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBackend wraps a MemoryBackend and fails SaveLedger while failing is set.
type flakyBackend struct {
	*store.MemoryBackend
	failing bool
	saves   int
}

func (f *flakyBackend) SaveLedger(ctx context.Context, records []model.DailyRecord) error {
	f.saves++
	if f.failing {
		return errors.New("disk full")
	}
	return f.MemoryBackend.SaveLedger(ctx, records)
}

type brokenLoader struct{ *store.MemoryBackend }

func (brokenLoader) LoadLedger(context.Context) (map[string]model.DailyRecord, error) {
	return nil, errors.New("corrupt blob")
}

type recordingObserver struct {
	upserts  int
	failures []error
}

func (o *recordingObserver) Upserted(model.DailyRecord, model.ModuleKind) { o.upserts++ }
func (o *recordingObserver) PersistFailed(err error)                      { o.failures = append(o.failures, err) }

func report(kind model.ModuleKind, gross int64) model.ModuleReport {
	return model.ModuleReport{
		Kind:          kind,
		GrossTotal:    decimal.NewFromInt(gross),
		DepositAmount: decimal.NewFromInt(gross),
		FinalizedAt:   time.Date(2024, 2, 23, 16, 0, 0, 0, time.UTC),
	}
}

func TestUpsert_CreatesRecordWithDisplayDate(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryBackend(), time.UTC)

	rec := s.Upsert("2024-02-23", model.KindPool, report(model.KindPool, 230500))
	assert.Equal(t, "2024-02-23", rec.DateKey)
	assert.Equal(t, "23 février 2024", rec.DisplayDate)
	assert.True(t, rec.DayTotal.Equal(decimal.NewFromInt(230500)))

	got, ok := s.Get("2024-02-23")
	require.True(t, ok)
	assert.Len(t, got.ModuleReports, 1)

	_, ok = s.Get("2024-02-24")
	assert.False(t, ok)
}

func TestUpsert_TotalPreservationAnyOrder(t *testing.T) {
	reports := map[model.ModuleKind]model.ModuleReport{
		model.KindPool:       report(model.KindPool, 230500),
		model.KindSnackbar:   report(model.KindSnackbar, 180000),
		model.KindApparel:    report(model.KindApparel, 3000),
		model.KindWristbands: report(model.KindWristbands, 999999),
	}
	orders := [][]model.ModuleKind{
		{model.KindPool, model.KindSnackbar, model.KindApparel, model.KindWristbands},
		{model.KindWristbands, model.KindApparel, model.KindSnackbar, model.KindPool},
		{model.KindSnackbar, model.KindWristbands, model.KindPool, model.KindApparel},
		{model.KindApparel, model.KindPool, model.KindWristbands, model.KindSnackbar},
	}

	for _, order := range orders {
		s := Open(context.Background(), store.NewMemoryBackend(), time.UTC)
		var rec model.DailyRecord
		for _, k := range order {
			rec = s.Upsert("2024-02-23", k, reports[k])
		}
		assert.True(t, rec.DayTotal.Equal(decimal.NewFromInt(413500)), "order %v: got %s", order, rec.DayTotal)
	}
}

func TestUpsert_PartialDayCountsOnlyFinalizedModules(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryBackend(), time.UTC)
	s.Upsert("2024-02-23", model.KindWristbands, report(model.KindWristbands, 0))
	rec := s.Upsert("2024-02-23", model.KindSnackbar, report(model.KindSnackbar, 180000))
	assert.True(t, rec.DayTotal.Equal(decimal.NewFromInt(180000)))
	assert.Len(t, rec.ModuleReports, 2)
}

func TestUpsert_RefinalizeOverwrites(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryBackend(), time.UTC)
	s.Upsert("2024-02-23", model.KindPool, report(model.KindPool, 100000))
	s.Upsert("2024-02-23", model.KindSnackbar, report(model.KindSnackbar, 50000))
	rec := s.Upsert("2024-02-23", model.KindPool, report(model.KindPool, 230500))

	assert.True(t, rec.DayTotal.Equal(decimal.NewFromInt(280500)))
	assert.True(t, rec.ModuleReports[model.KindPool].GrossTotal.Equal(decimal.NewFromInt(230500)))
}

func TestUpsert_ReturnedRecordIsACopy(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryBackend(), time.UTC)
	rec := s.Upsert("2024-02-23", model.KindPool, report(model.KindPool, 100))
	delete(rec.ModuleReports, model.KindPool)

	got, _ := s.Get("2024-02-23")
	assert.Contains(t, got.ModuleReports, model.KindPool)
}

func TestUpsert_WritesThroughAndReloads(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	s := Open(ctx, backend, time.UTC)
	s.Upsert("2024-02-23", model.KindPool, report(model.KindPool, 230500))
	s.Upsert("2024-02-24", model.KindApparel, report(model.KindApparel, 3000))

	reloaded := Open(ctx, backend, time.UTC)

	want, err := json.Marshal(indexByKey(s.ListAll()))
	require.NoError(t, err)
	got, err := json.Marshal(indexByKey(reloaded.ListAll()))
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestOpen_UnreadableHistoryIsEmpty(t *testing.T) {
	s := Open(context.Background(), brokenLoader{store.NewMemoryBackend()}, time.UTC)
	assert.Empty(t, s.ListAll())
}

func TestPersistFailure_NonFatalAndHealed(t *testing.T) {
	backend := &flakyBackend{MemoryBackend: store.NewMemoryBackend(), failing: true}
	obs := &recordingObserver{}
	s := Open(context.Background(), backend, time.UTC, obs)

	rec := s.Upsert("2024-02-23", model.KindPool, report(model.KindPool, 100))
	assert.True(t, rec.DayTotal.Equal(decimal.NewFromInt(100)))
	assert.Error(t, s.LastPersistError())
	assert.Len(t, obs.failures, 1)

	_, ok := s.Get("2024-02-23")
	assert.True(t, ok, "in-memory ledger stays authoritative")

	backend.failing = false
	s.Upsert("2024-02-24", model.KindPool, report(model.KindPool, 200))
	assert.NoError(t, s.LastPersistError())

	persisted, err := backend.MemoryBackend.LoadLedger(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 2, "the next write carries the missed day too")
	assert.Equal(t, 2, obs.upserts)
}

func TestSortNewestFirst(t *testing.T) {
	recs := []model.DailyRecord{{DateKey: "2024-02-22"}, {DateKey: "2024-03-01"}, {DateKey: "2024-02-23"}}
	SortNewestFirst(recs)
	assert.Equal(t, []string{"2024-03-01", "2024-02-23", "2024-02-22"},
		[]string{recs[0].DateKey, recs[1].DateKey, recs[2].DateKey})
}

func indexByKey(recs []model.DailyRecord) map[string]model.DailyRecord {
	out := make(map[string]model.DailyRecord, len(recs))
	for _, r := range recs {
		out[r.DateKey] = r
	}
	return out
}
