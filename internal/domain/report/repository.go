package report

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRecordNotFound is returned by FindByID when no row matches
var ErrRecordNotFound = errors.New("record not found")

// Entity names used in storage errors and fetch warnings
const (
	EntityTransactions = "transactions"
	EntityMemberships  = "memberships"
	EntityProducts     = "products"
	EntityUsers        = "users"
)

// RangeFilter selects rows whose date falls inside [Start, End], both inclusive
type RangeFilter struct {
	Start time.Time
	End   time.Time
	// ProductName is an optional equality filter; empty means all products
	ProductName string
}

// FilterFor builds a range filter from a resolved period
func FilterFor(p Period, productName string) RangeFilter {
	return RangeFilter{Start: p.Start, End: p.End, ProductName: productName}
}

// TransactionRepository reads and writes product sales
type TransactionRepository interface {
	// FindByPeriod returns matching sales ordered newest first
	FindByPeriod(ctx context.Context, filter RangeFilter) ([]TransactionRecord, error)
	FindByID(ctx context.Context, id int64) (*TransactionRecord, error)
	Create(ctx context.Context, clientID, productID int64, date time.Time, amount decimal.Decimal) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// MembershipRepository reads and writes membership payments
type MembershipRepository interface {
	// FindByPeriod returns matching payments ordered newest first.
	// ProductName on the filter is ignored.
	FindByPeriod(ctx context.Context, filter RangeFilter) ([]MembershipRecord, error)
	FindByID(ctx context.Context, id int64) (*MembershipRecord, error)
	Create(ctx context.Context, clientID int64, date time.Time, amount decimal.Decimal) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// ProductRepository reads and writes the product inventory
type ProductRepository interface {
	// FindAll returns every product ordered by name
	FindAll(ctx context.Context) ([]ProductRecord, error)
	// FindNames returns distinct product names ordered by name
	FindNames(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id int64) (*ProductRecord, error)
	Create(ctx context.Context, product *ProductRecord) error
	Update(ctx context.Context, product *ProductRecord) error
	Delete(ctx context.Context, id int64) error
}
