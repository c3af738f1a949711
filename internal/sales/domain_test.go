package sales

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `[
  {"Produto":"Modelagem preditiva","Categoria do Produto":"livros","Preço":92.45,"Frete":5.6096965236,
   "Data da Compra":"01/01/2020","Vendedor":"Thiago Silva","Local da compra":"BA",
   "Avaliação da compra":1,"Tipo de pagamento":"cartao_credito","Quantidade de parcelas":3,
   "lat":-13.29,"lon":-41.71},
  {"Produto":"Iphone 6","Categoria do Produto":"eletronicos","Preço":445.0,"Frete":23.08,
   "Data da Compra":"not-a-date","Vendedor":"Thiago Silva","Local da compra":"SP",
   "Avaliação da compra":4,"Tipo de pagamento":"boleto","Quantidade de parcelas":1,
   "lat":-22.19,"lon":-48.79}
]`

func TestRecordDecodesEndpointPayload(t *testing.T) {
	var records []Record
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &records))
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Modelagem preditiva", first.Product)
	assert.Equal(t, "livros", first.Category)
	assert.InDelta(t, 92.45, first.Price, 1e-9)
	assert.Equal(t, NewDate(2020, time.January, 1), first.PurchaseDate)
	assert.Equal(t, "BA", first.Location)
	assert.Equal(t, 3, first.Installments)

	assert.True(t, records[1].PurchaseDate.IsZero(), "malformed date decodes to zero")
}

func TestDateJSONRoundTrip(t *testing.T) {
	in := Record{Product: "Cadeira", PurchaseDate: NewDate(2022, time.March, 15)}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Data da Compra":"15/03/2022"`)

	var out Record
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestRecordText(t *testing.T) {
	r := Record{Price: 1500.5, Rating: 5, PurchaseDate: NewDate(2021, time.December, 2), Seller: "Ana"}
	assert.Equal(t, "1500.5", r.Text(ColPrice))
	assert.Equal(t, "5", r.Text(ColRating))
	assert.Equal(t, "02/12/2021", r.Text(ColPurchaseDate))
	assert.Equal(t, "Ana", r.Text(ColSeller))
	assert.Equal(t, "", r.Text("missing"))
}

func TestTableDistinctAndBounds(t *testing.T) {
	table := NewTable([]Record{
		{Seller: "Ana", PurchaseDate: NewDate(2021, time.May, 3)},
		{Seller: "Bia", PurchaseDate: NewDate(2020, time.February, 1)},
		{Seller: "Ana"},
	})
	assert.Equal(t, []string{"Ana", "Bia"}, table.Distinct(ColSeller))

	minDate, maxDate := table.DateBounds()
	assert.Equal(t, NewDate(2020, time.February, 1).Time, minDate)
	assert.Equal(t, NewDate(2021, time.May, 3).Time, maxDate)
}

func TestRegions(t *testing.T) {
	assert.True(t, InRegion("SP", "Sudeste"))
	assert.True(t, InRegion("sp", "sudeste"))
	assert.False(t, InRegion("BA", "Sul"))
	assert.True(t, InRegion("BA", RegionAll))
	assert.True(t, InRegion("BA", ""))
	assert.False(t, InRegion("BA", "Atlantis"))
	assert.Equal(t, "Centro-Oeste", CanonicalRegion("centro-oeste"))
}
