package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/sales"
)

func sampleTable() sales.Table {
	return sales.NewTable([]sales.Record{
		{Product: "Iphone 6", Seller: "Ana", Location: "SP", Price: 1200, PurchaseDate: sales.NewDate(2020, time.January, 10)},
		{Product: "Cadeira", Seller: "Bia", Location: "RJ", Price: 300, PurchaseDate: sales.NewDate(2021, time.June, 5)},
		{Product: "Cadeira", Seller: "Ana", Location: "BA", Price: 350, PurchaseDate: sales.NewDate(2021, time.July, 1)},
		{Product: "Livro", Seller: "Caio", Location: "RS", Price: 45, PurchaseDate: sales.NewDate(2022, time.March, 20)},
		{Product: "Livro", Seller: "Caio", Location: "RS", Price: 60},
	})
}

func TestEmptyPredicatesKeepEverything(t *testing.T) {
	table := sampleTable()
	out, err := Apply(table, Predicates{Sellers: []string{}, Products: nil})
	require.NoError(t, err)
	assert.Equal(t, table.Len(), out.Len())
	assert.Equal(t, sales.AllColumns, out.Columns)
}

func TestMembershipFilters(t *testing.T) {
	out, err := Apply(sampleTable(), Predicates{Sellers: []string{"Ana"}, Products: []string{"Cadeira"}})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "BA", out.Records[0].Location)
}

func TestRangeFiltersAreInclusive(t *testing.T) {
	out, err := Apply(sampleTable(), Predicates{Price: &PriceRange{Min: 300, Max: 1200}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())

	out, err = Apply(sampleTable(), Predicates{Dates: DateRange{
		From: time.Date(2021, time.June, 5, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestOpenDateBoundExcludesUndatedRows(t *testing.T) {
	out, err := Apply(sampleTable(), Predicates{Dates: DateRange{From: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 45.0, out.Records[0].Price)
}

func TestRegionAndYear(t *testing.T) {
	out, err := Apply(sampleTable(), Predicates{Region: "Sudeste"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	out, err = Apply(sampleTable(), Predicates{Region: sales.RegionAll, Year: 2021})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestFilteringIsIdempotent(t *testing.T) {
	preds := Predicates{
		Sellers: []string{"Ana", "Caio"},
		Price:   &PriceRange{Min: 40, Max: 2000},
		Columns: []string{sales.ColProduct, sales.ColPrice},
	}
	once, err := Apply(sampleTable(), preds)
	require.NoError(t, err)
	twice, err := Apply(once, preds)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestColumnSubsetKeepsRowFilters(t *testing.T) {
	out, err := Apply(sampleTable(), Predicates{
		Products: []string{"Livro"},
		Columns:  []string{sales.ColPrice, "unknown", sales.ColProduct},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []string{sales.ColProduct, sales.ColPrice}, out.Columns)
}

func TestNoValidColumnsFallsBack(t *testing.T) {
	out, err := Apply(sampleTable(), Predicates{Products: []string{"Livro"}, Columns: []string{"nope"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoColumns))
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, sales.AllColumns, out.Columns)

	_, err = Apply(sampleTable(), Predicates{Columns: []string{}})
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Predicates{}.Validate())
	assert.NoError(t, Predicates{Year: 2022, Region: "sul", Price: &PriceRange{Min: 0, Max: 5000}}.Validate())

	invalid := []Predicates{
		{Year: 1999},
		{Price: &PriceRange{Min: 10, Max: 5}},
		{Price: &PriceRange{Min: -1, Max: 5}},
		{Region: "Atlantis"},
		{Dates: DateRange{From: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC), To: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}
	for _, p := range invalid {
		err := p.Validate()
		assert.ErrorIs(t, err, ErrInvalid, "%+v", p)
	}
}
