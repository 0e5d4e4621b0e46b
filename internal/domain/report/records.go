package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the presentation layout for calendar dates on reports (dd.MM.yyyy)
const DateLayout = "02.01.2006"

// TransactionRecord is one product sale as read for a report
type TransactionRecord struct {
	ID          int64           `json:"id"`
	ClientName  string          `json:"client_name"`
	ProductName string          `json:"product_name"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
}

// FormattedDate returns the record date as dd.MM.yyyy
func (r TransactionRecord) FormattedDate() string {
	return r.Date.Format(DateLayout)
}

// MembershipRecord is one membership payment as read for a report
type MembershipRecord struct {
	ID         int64           `json:"id"`
	ClientName string          `json:"client_name"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
}

// FormattedDate returns the payment date as dd.MM.yyyy
func (r MembershipRecord) FormattedDate() string {
	return r.Date.Format(DateLayout)
}

// ProductRecord is the current inventory snapshot of a product.
// It is not time-ranged.
type ProductRecord struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
}

// StockValue returns price multiplied by quantity on hand
func (r ProductRecord) StockValue() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.StockQuantity)))
}

// Dataset holds everything fetched for one report run.
// Slices are never nil after a run so that empty reports render headers.
type Dataset struct {
	Transactions []TransactionRecord
	Memberships  []MembershipRecord
	Products     []ProductRecord
	// AllProducts is the unfiltered inventory used for the stock value summary
	AllProducts []ProductRecord
}

// NewDataset returns a dataset with empty, non-nil slices
func NewDataset() *Dataset {
	return &Dataset{
		Transactions: []TransactionRecord{},
		Memberships:  []MembershipRecord{},
		Products:     []ProductRecord{},
		AllProducts:  []ProductRecord{},
	}
}
