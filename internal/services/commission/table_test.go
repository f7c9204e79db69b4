package commission

import (
	"math"
	"testing"

	"tradefy/internal/config"
	"tradefy/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Partition(t *testing.T) {
	table := DefaultTable()
	bands := table.Bands()

	check := func(sales int64) {
		matches := 0
		for _, b := range bands {
			if b.Contains(sales) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "sales=%d", sales)
	}

	for sales := int64(0); sales <= 5000; sales++ {
		check(sales)
	}
	check(math.MaxInt64)
}

func TestTable_Rank(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		sales int64
		rank  string
		rate  int64
	}{
		{0, "profane", 450},
		{24, "profane", 450},
		{25, "debutant", 425},
		{227, "marchand", 400},
		{228, "negociant", 375},
		{1004, "courtier", 350},
		{2849, "magnat", 325},
		{2850, "senior", 300},
		{1_000_000, "senior", 300},
		{-3, "profane", 450},
	}

	for _, tt := range tests {
		b := table.Rank(tt.sales)
		assert.Equal(t, tt.rank, b.Name, "sales=%d", tt.sales)
		assert.Equal(t, tt.rate, b.RateBps, "sales=%d", tt.sales)
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name  string
		bands []Band
	}{
		{"empty", nil},
		{"does not start at zero", []Band{{Name: "a", MinSales: 1, RateBps: 100}}},
		{"gap", []Band{
			{Name: "a", MinSales: 0, MaxSales: bound(9), RateBps: 100},
			{Name: "b", MinSales: 11, RateBps: 100},
		}},
		{"overlap", []Band{
			{Name: "a", MinSales: 0, MaxSales: bound(9), RateBps: 100},
			{Name: "b", MinSales: 9, RateBps: 100},
		}},
		{"bounded last band", []Band{{Name: "a", MinSales: 0, MaxSales: bound(9), RateBps: 100}}},
		{"unbounded middle band", []Band{
			{Name: "a", MinSales: 0, RateBps: 100},
			{Name: "b", MinSales: 10, RateBps: 100},
		}},
		{"rate too high", []Band{{Name: "a", MinSales: 0, RateBps: 10001}}},
		{"negative rate", []Band{{Name: "a", MinSales: 0, RateBps: -1}}},
		{"duplicate name", []Band{
			{Name: "a", MinSales: 0, MaxSales: bound(9), RateBps: 100},
			{Name: "a", MinSales: 10, RateBps: 100},
		}},
		{"inverted band", []Band{
			{Name: "a", MinSales: 0, MaxSales: bound(-1), RateBps: 100},
			{Name: "b", MinSales: 0, RateBps: 100},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.bands)
			assert.Error(t, err)
		})
	}
}

func TestNewTable_CopiesInput(t *testing.T) {
	bands := []Band{
		{Name: "a", MinSales: 0, MaxSales: bound(9), RateBps: 500},
		{Name: "b", MinSales: 10, RateBps: 250},
	}
	table, err := NewTable(bands)
	require.NoError(t, err)

	*bands[0].MaxSales = 100
	bands[1].RateBps = 1

	assert.Equal(t, "b", table.Rank(10).Name)
	assert.Equal(t, int64(250), table.Rank(10).RateBps)
}

func TestTableFromConfig(t *testing.T) {
	table, err := TableFromConfig(config.Commission{})
	require.NoError(t, err)
	assert.Len(t, table.Bands(), 7)

	nine := int64(9)
	table, err = TableFromConfig(config.Commission{Ranks: []config.RankBand{
		{Name: "starter", MinSales: 0, MaxSales: &nine, RateBps: 500},
		{Name: "pro", MinSales: 10, RateBps: 250},
	}})
	require.NoError(t, err)
	assert.Equal(t, "pro", table.Rank(10).Name)

	_, err = TableFromConfig(config.Commission{Ranks: []config.RankBand{
		{Name: "starter", MinSales: 5, RateBps: 500},
	}})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestTable_Breakdown(t *testing.T) {
	table := DefaultTable()

	b := table.Breakdown(20)
	assert.Equal(t, "profane", b.Rank)
	assert.Equal(t, 4.5, b.RatePercent)
	require.NotNil(t, b.NextRank)
	assert.Equal(t, "debutant", b.NextRank.Name)
	assert.Equal(t, int64(5), b.SalesToNext)

	top := table.Breakdown(3000)
	assert.Equal(t, "senior", top.Rank)
	assert.Nil(t, top.NextRank)
	assert.Zero(t, top.SalesToNext)
}

func TestCompute(t *testing.T) {
	table := DefaultTable()

	res, err := table.Compute(0, money.MustParse("100.00"))
	require.NoError(t, err)
	assert.Equal(t, "profane", res.Rank)
	assert.Equal(t, int64(450), res.RateBps)
	assert.Equal(t, money.MustParse("4.50"), res.Commission)
	assert.Equal(t, money.MustParse("95.50"), res.VendorAmount)

	res, err = table.Compute(3000, money.MustParse("19.99"))
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("0.60"), res.Commission) // 0.5997
	assert.Equal(t, money.MustParse("19.39"), res.VendorAmount)

	_, err = table.Compute(0, money.Zero)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = table.Compute(-1, money.MustParse("1.00"))
	assert.ErrorIs(t, err, ErrInvalidSales)
}

func TestCompute_SplitAddsUpAndIsDeterministic(t *testing.T) {
	table := DefaultTable()
	for _, sales := range []int64{0, 30, 100, 300, 600, 1500, 4000} {
		for cents := int64(1); cents <= 20000; cents += 7 {
			price := money.FromMinor(cents)
			a, err := table.Compute(sales, price)
			require.NoError(t, err)
			b, err := table.Compute(sales, price)
			require.NoError(t, err)

			assert.Equal(t, a, b)
			assert.Equal(t, price, a.Commission.Add(a.VendorAmount))
			assert.GreaterOrEqual(t, a.Commission.Minor(), int64(0))
			assert.LessOrEqual(t, a.Commission.Minor(), price.Minor())
		}
	}
}

func TestCompute_LargePrice(t *testing.T) {
	table := DefaultTable()
	price := money.MustParse("10000000000000000")

	res, err := table.Compute(0, price)
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("450000000000000.00"), res.Commission)
	assert.Equal(t, money.MustParse("9550000000000000.00"), res.VendorAmount)
	assert.Equal(t, price, res.Commission.Add(res.VendorAmount))
}
