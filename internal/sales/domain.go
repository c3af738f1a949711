package sales

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Column names as served by the products endpoint.
const (
	ColProduct      = "Produto"
	ColCategory     = "Categoria do Produto"
	ColPrice        = "Preço"
	ColFreight      = "Frete"
	ColPurchaseDate = "Data da Compra"
	ColSeller       = "Vendedor"
	ColLocation     = "Local da compra"
	ColRating       = "Avaliação da compra"
	ColPaymentType  = "Tipo de pagamento"
	ColInstallments = "Quantidade de parcelas"
	ColLat          = "lat"
	ColLon          = "lon"
)

// DateLayout is the textual purchase date format used by the endpoint.
const DateLayout = "02/01/2006"

// AllColumns lists every column in endpoint order.
var AllColumns = []string{
	ColProduct,
	ColCategory,
	ColPrice,
	ColFreight,
	ColPurchaseDate,
	ColSeller,
	ColLocation,
	ColRating,
	ColPaymentType,
	ColInstallments,
	ColLat,
	ColLon,
}

// Record is one sales transaction as received from the data source.
type Record struct {
	Product      string  `json:"Produto"`
	Category     string  `json:"Categoria do Produto"`
	Price        float64 `json:"Preço"`
	Freight      float64 `json:"Frete"`
	PurchaseDate Date    `json:"Data da Compra"`
	Seller       string  `json:"Vendedor"`
	Location     string  `json:"Local da compra"`
	Rating       int     `json:"Avaliação da compra"`
	PaymentType  string  `json:"Tipo de pagamento"`
	Installments int     `json:"Quantidade de parcelas"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

// Value returns the typed cell for column. Dates are returned in DateLayout.
func (r Record) Value(column string) (any, bool) {
	switch column {
	case ColProduct:
		return r.Product, true
	case ColCategory:
		return r.Category, true
	case ColPrice:
		return r.Price, true
	case ColFreight:
		return r.Freight, true
	case ColPurchaseDate:
		return r.PurchaseDate.String(), true
	case ColSeller:
		return r.Seller, true
	case ColLocation:
		return r.Location, true
	case ColRating:
		return r.Rating, true
	case ColPaymentType:
		return r.PaymentType, true
	case ColInstallments:
		return r.Installments, true
	case ColLat:
		return r.Lat, true
	case ColLon:
		return r.Lon, true
	default:
		return nil, false
	}
}

// Text renders the cell for column as plain text.
func (r Record) Text(column string) string {
	value, ok := r.Value(column)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// Date is a calendar day decoded from the dd/mm/yyyy text format.
// A malformed or empty value decodes to the zero Date.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a dd/mm/yyyy value.
func ParseDate(value string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date in DateLayout, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date in the endpoint format.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the endpoint format; malformed input yields the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}
