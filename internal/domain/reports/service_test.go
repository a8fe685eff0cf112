package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/registers/stock"
)

type fakeRepo struct {
	expected []ExpectedBalance
	docs     []ConfirmedDocument
	from, to time.Time
}

func (f *fakeRepo) ExpectedBalances(ctx context.Context, filter ReconcileFilter) ([]ExpectedBalance, error) {
	return f.expected, nil
}

func (f *fakeRepo) ConfirmedDocuments(ctx context.Context, kind documents.Kind, from, to time.Time, warehouseID *id.ID) ([]ConfirmedDocument, error) {
	f.from, f.to = from, to
	return f.docs, nil
}

func (f *fakeRepo) LowStock(ctx context.Context, warehouseID *id.ID) ([]LowStockLine, error) {
	return nil, nil
}

type fakeBalances []stock.Balance

func (f fakeBalances) List(ctx context.Context, filter stock.Filter) ([]stock.Balance, error) {
	return f, nil
}

type snapshotKey struct{}

// fakeTx marks the context handed to ReadOnly so readers can tell whether
// they ran inside it.
type fakeTx struct {
	readOnlyCalls int
}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	f.readOnlyCalls++
	return fn(context.WithValue(ctx, snapshotKey{}, f.readOnlyCalls))
}

type snapshotRepo struct {
	fakeRepo
	snapshot any
}

func (r *snapshotRepo) ExpectedBalances(ctx context.Context, filter ReconcileFilter) ([]ExpectedBalance, error) {
	r.snapshot = ctx.Value(snapshotKey{})
	return r.fakeRepo.ExpectedBalances(ctx, filter)
}

type snapshotBalances struct {
	fakeBalances
	snapshot any
}

func (b *snapshotBalances) List(ctx context.Context, filter stock.Filter) ([]stock.Balance, error) {
	b.snapshot = ctx.Value(snapshotKey{})
	return b.fakeBalances.List(ctx, filter)
}

func TestReconcile_ReadsBothSidesInOneSnapshot(t *testing.T) {
	txm := &fakeTx{}
	repo := &snapshotRepo{}
	balances := &snapshotBalances{}

	res, err := NewService(repo, balances, txm).Reconcile(context.Background(), ReconcileFilter{})
	require.NoError(t, err)
	assert.True(t, res.Consistent())

	assert.Equal(t, 1, txm.readOnlyCalls)
	assert.Equal(t, 1, repo.snapshot)
	assert.Equal(t, 1, balances.snapshot)
}

func TestReconcile_ReportsDrift(t *testing.T) {
	w := id.New()
	p1, p2, p3 := id.New(), id.New(), id.New()

	repo := &fakeRepo{expected: []ExpectedBalance{
		{WarehouseID: w, ProductID: p1, Quantity: types.NewQuantity(70)},
		{WarehouseID: w, ProductID: p2, Quantity: types.NewQuantity(10)},
	}}
	balances := fakeBalances{
		{WarehouseID: w, ProductID: p1, Quantity: types.NewQuantity(70)},
		{WarehouseID: w, ProductID: p2, Quantity: types.NewQuantity(12)},
		{WarehouseID: w, ProductID: p3, Quantity: types.NewQuantity(0)},
	}

	res, err := NewService(repo, balances, &fakeTx{}).Reconcile(context.Background(), ReconcileFilter{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Checked)
	assert.Equal(t, 1, res.Mismatches)
	assert.False(t, res.Consistent())
	require.Len(t, res.Lines, 3)

	res, err = NewService(repo, balances, &fakeTx{}).Reconcile(context.Background(), ReconcileFilter{OnlyMismatches: true})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, p2, res.Lines[0].ProductID)
	assert.True(t, res.Lines[0].Drift.Equal(types.NewQuantity(2)))
}

func TestPeriodSummary_YearHasTwelveMonths(t *testing.T) {
	repo := &fakeRepo{docs: []ConfirmedDocument{
		{ID: id.New(), ConfirmedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), TotalQuantity: types.NewQuantity(4)},
		{ID: id.New(), ConfirmedAt: time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC), TotalQuantity: types.NewQuantity(6)},
		{ID: id.New(), ConfirmedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), TotalQuantity: types.MustQuantity("1.5")},
	}}
	svc := NewService(repo, fakeBalances{}, &fakeTx{})

	sum, err := svc.PeriodSummary(context.Background(), SummaryFilter{
		Kind:   documents.KindStockIn,
		Period: Period{Type: PeriodYear, Year: 2024},
	})
	require.NoError(t, err)

	assert.Equal(t, "2024", sum.Period)
	require.Len(t, sum.Buckets, 12)
	assert.Equal(t, "2024-01", sum.Buckets[0].Period)
	assert.Equal(t, "2024-03", sum.Buckets[2].Period)
	assert.Equal(t, 2, sum.Buckets[2].DocumentCount)
	assert.True(t, sum.Buckets[2].TotalQuantity.Equal(types.NewQuantity(10)))
	assert.Equal(t, 1, sum.Buckets[11].DocumentCount)
	assert.Equal(t, 3, sum.DocumentCount)
	assert.True(t, sum.TotalQuantity.Equal(types.MustQuantity("11.5")))

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), repo.to)
}

func TestPeriodSummary_QuarterLabels(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeBalances{}, &fakeTx{})

	sum, err := svc.PeriodSummary(context.Background(), SummaryFilter{
		Kind:   documents.KindStockOut,
		Period: Period{Type: PeriodQuarter, Year: 2025},
	})
	require.NoError(t, err)
	require.Len(t, sum.Buckets, 4)
	assert.Equal(t, "Q1-2025", sum.Buckets[0].Period)
	assert.Equal(t, "Q4-2025", sum.Buckets[3].Period)

	sum, err = svc.PeriodSummary(context.Background(), SummaryFilter{
		Kind:   documents.KindStockOut,
		Period: Period{Type: PeriodQuarter, Year: 2025, Quarter: 2},
	})
	require.NoError(t, err)
	require.Len(t, sum.Buckets, 1)
	assert.Equal(t, "Q2-2025", sum.Period)
}

func TestPeriodSummary_Validation(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeBalances{}, &fakeTx{})

	tests := []struct {
		name   string
		filter SummaryFilter
	}{
		{"unknown kind", SummaryFilter{Kind: "invoice", Period: Period{Type: PeriodYear, Year: 2024}}},
		{"missing year", SummaryFilter{Kind: documents.KindStockIn, Period: Period{Type: PeriodYear}}},
		{"month without month", SummaryFilter{Kind: documents.KindStockIn, Period: Period{Type: PeriodMonth, Year: 2024}}},
		{"bad type", SummaryFilter{Kind: documents.KindStockIn, Period: Period{Type: "week", Year: 2024}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PeriodSummary(context.Background(), tt.filter)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}
