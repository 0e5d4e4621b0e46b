package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/gym/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// sqlDateLayout formats range bounds so DATE(column) compares as a calendar day
const sqlDateLayout = "2006-01-02"

// GormTransactionRepository implements report.TransactionRepository
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

var _ report.TransactionRepository = (*GormTransactionRepository)(nil)

type transactionRow struct {
	ID              int64
	ClientName      string
	ProductName     string
	TransactionDate time.Time
	Amount          decimal.Decimal
}

func (r transactionRow) toRecord() report.TransactionRecord {
	return report.TransactionRecord{
		ID:          r.ID,
		ClientName:  r.ClientName,
		ProductName: r.ProductName,
		Date:        r.TransactionDate,
		Amount:      r.Amount,
	}
}

func (r *GormTransactionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.id, u.name AS client_name, p.name AS product_name, t.transaction_date, t.amount").
		Joins("JOIN users u ON t.client_id = u.id").
		Joins("JOIN products p ON t.product_id = p.id")
}

// FindByPeriod returns sales whose calendar date falls in the filter range,
// newest first
func (r *GormTransactionRepository) FindByPeriod(ctx context.Context, filter report.RangeFilter) ([]report.TransactionRecord, error) {
	query := r.baseQuery(ctx).
		Where("DATE(t.transaction_date) BETWEEN ? AND ?",
			filter.Start.Format(sqlDateLayout), filter.End.Format(sqlDateLayout))
	if filter.ProductName != "" {
		query = query.Where("p.name = ?", filter.ProductName)
	}

	var rows []transactionRow
	if err := query.Order("t.transaction_date DESC").Scan(&rows).Error; err != nil {
		return nil, report.NewStorageError(report.EntityTransactions, "failed to fetch transactions", err)
	}

	records := make([]report.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// FindByID returns one sale
func (r *GormTransactionRepository) FindByID(ctx context.Context, id int64) (*report.TransactionRecord, error) {
	var rows []transactionRow
	if err := r.baseQuery(ctx).Where("t.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, report.NewStorageError(report.EntityTransactions, "failed to fetch transaction", err)
	}
	if len(rows) == 0 {
		return nil, report.ErrRecordNotFound
	}
	record := rows[0].toRecord()
	return &record, nil
}

// Create records a sale and returns its ID
func (r *GormTransactionRepository) Create(ctx context.Context, clientID, productID int64, date time.Time, amount decimal.Decimal) (int64, error) {
	model := &TransactionModel{
		ClientID:        clientID,
		ProductID:       productID,
		TransactionDate: date,
		Amount:          amount,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, report.NewStorageError(report.EntityTransactions, "failed to create transaction", err)
	}
	return model.ID, nil
}

// Delete removes a sale
func (r *GormTransactionRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &TransactionModel{}, id, report.EntityTransactions)
}

// deleteByID deletes one row and maps a zero row count to ErrRecordNotFound
func deleteByID(ctx context.Context, db *gorm.DB, model any, id int64, entity string) error {
	result := db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return report.NewStorageError(entity, "failed to delete record", result.Error)
	}
	if result.RowsAffected == 0 {
		return report.ErrRecordNotFound
	}
	return nil
}

// translateNotFound maps gorm's not-found error to the domain one
func translateNotFound(err error, entity, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return report.ErrRecordNotFound
	}
	return report.NewStorageError(entity, message, err)
}
