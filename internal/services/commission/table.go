package commission

import (
	"fmt"

	"tradefy/internal/config"
)

// BasisPointsPerUnit is 100%.
const BasisPointsPerUnit = 10000

// Band is one sales-count range with its commission rate. MaxSales == nil
// means the band has no upper bound.
type Band struct {
	Name     string `json:"name"`
	MinSales int64  `json:"min_sales"`
	MaxSales *int64 `json:"max_sales"`
	RateBps  int64  `json:"rate_bps"`
}

// Contains reports whether sales falls inside the band.
func (b Band) Contains(sales int64) bool {
	if sales < b.MinSales {
		return false
	}
	return b.MaxSales == nil || sales <= *b.MaxSales
}

// RatePercent is the rate as a percentage, for display.
func (b Band) RatePercent() float64 {
	return float64(b.RateBps) / 100
}

func bound(n int64) *int64 {
	return &n
}

// DefaultBands is the canonical rank table used when the configuration does
// not provide one.
func DefaultBands() []Band {
	return []Band{
		{Name: "profane", MinSales: 0, MaxSales: bound(24), RateBps: 450},
		{Name: "debutant", MinSales: 25, MaxSales: bound(74), RateBps: 425},
		{Name: "marchand", MinSales: 75, MaxSales: bound(227), RateBps: 400},
		{Name: "negociant", MinSales: 228, MaxSales: bound(554), RateBps: 375},
		{Name: "courtier", MinSales: 555, MaxSales: bound(1004), RateBps: 350},
		{Name: "magnat", MinSales: 1005, MaxSales: bound(2849), RateBps: 325},
		{Name: "senior", MinSales: 2850, MaxSales: nil, RateBps: 300},
	}
}

// Table is an immutable, validated list of contiguous bands ordered by
// MinSales. Every non-negative sales count maps to exactly one band.
type Table struct {
	bands []Band
}

// NewTable validates bands and returns a table that owns a copy of them.
func NewTable(bands []Band) (*Table, error) {
	if len(bands) == 0 {
		return nil, ErrEmptyTable
	}
	if bands[0].MinSales != 0 {
		return nil, fmt.Errorf("%w: first band %q must start at 0 sales", ErrInvalidTable, bands[0].Name)
	}

	seen := make(map[string]bool, len(bands))
	out := make([]Band, len(bands))
	for i, b := range bands {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: band %d has no name", ErrInvalidTable, i)
		}
		if seen[b.Name] {
			return nil, fmt.Errorf("%w: duplicate band %q", ErrInvalidTable, b.Name)
		}
		seen[b.Name] = true

		if b.RateBps < 0 || b.RateBps > BasisPointsPerUnit {
			return nil, fmt.Errorf("%w: band %q rate %d bps out of range", ErrInvalidTable, b.Name, b.RateBps)
		}

		last := i == len(bands)-1
		if b.MaxSales == nil && !last {
			return nil, fmt.Errorf("%w: only the last band may be unbounded, got %q", ErrInvalidTable, b.Name)
		}
		if b.MaxSales != nil && last {
			return nil, fmt.Errorf("%w: last band %q must be unbounded", ErrInvalidTable, b.Name)
		}
		if b.MaxSales != nil && *b.MaxSales < b.MinSales {
			return nil, fmt.Errorf("%w: band %q ends before it starts", ErrInvalidTable, b.Name)
		}
		if i > 0 && b.MinSales != *bands[i-1].MaxSales+1 {
			return nil, fmt.Errorf("%w: band %q does not follow %q", ErrInvalidTable, b.Name, bands[i-1].Name)
		}

		out[i] = b
		if b.MaxSales != nil {
			out[i].MaxSales = bound(*b.MaxSales)
		}
	}

	return &Table{bands: out}, nil
}

// DefaultTable returns the canonical table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultBands())
	if err != nil {
		panic(err)
	}
	return t
}

// TableFromConfig builds the table from configured rank bands, falling back
// to the canonical table when none are configured.
func TableFromConfig(cfg config.Commission) (*Table, error) {
	if len(cfg.Ranks) == 0 {
		return DefaultTable(), nil
	}
	bands := make([]Band, len(cfg.Ranks))
	for i, r := range cfg.Ranks {
		bands[i] = Band{Name: r.Name, MinSales: r.MinSales, MaxSales: r.MaxSales, RateBps: r.RateBps}
	}
	return NewTable(bands)
}

// Bands returns a copy of the table rows.
func (t *Table) Bands() []Band {
	out := make([]Band, len(t.bands))
	copy(out, t.bands)
	return out
}

// Rank returns the band for a sales count. Counts below zero, which a
// validated table cannot match, fall back to the lowest band.
func (t *Table) Rank(sales int64) Band {
	return t.bands[t.index(sales)]
}

func (t *Table) index(sales int64) int {
	for i, b := range t.bands {
		if b.Contains(sales) {
			return i
		}
	}
	return 0
}

// Breakdown describes where a sales count sits in the table.
type Breakdown struct {
	Sales       int64   `json:"sales"`
	Rank        string  `json:"rank"`
	RateBps     int64   `json:"rate_bps"`
	RatePercent float64 `json:"rate_percent"`
	NextRank    *Band   `json:"next_rank,omitempty"`
	SalesToNext int64   `json:"sales_to_next"`
}

// Breakdown is the read-only view used by reporting and UI callers.
func (t *Table) Breakdown(sales int64) Breakdown {
	i := t.index(sales)
	b := t.bands[i]
	out := Breakdown{
		Sales:       sales,
		Rank:        b.Name,
		RateBps:     b.RateBps,
		RatePercent: b.RatePercent(),
	}
	if i+1 < len(t.bands) {
		next := t.bands[i+1]
		out.NextRank = &next
		if need := next.MinSales - sales; need > 0 {
			out.SalesToNext = need
		}
	}
	return out
}
