package persistence

import (
	"context"
	"time"

	"github.com/gym/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMembershipRepository implements report.MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a membership payment repository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

var _ report.MembershipRepository = (*GormMembershipRepository)(nil)

type membershipRow struct {
	ID          int64
	ClientName  string
	Amount      decimal.Decimal
	PaymentDate time.Time
}

func (r membershipRow) toRecord() report.MembershipRecord {
	return report.MembershipRecord{
		ID:         r.ID,
		ClientName: r.ClientName,
		Amount:     r.Amount,
		Date:       r.PaymentDate,
	}
}

func (r *GormMembershipRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("membership_payments AS mp").
		Select("mp.id, u.name AS client_name, mp.amount, mp.payment_date").
		Joins("JOIN users u ON mp.client_id = u.id")
}

// FindByPeriod returns payments in the filter range, newest first.
// Memberships are not tied to products so ProductName is ignored.
func (r *GormMembershipRepository) FindByPeriod(ctx context.Context, filter report.RangeFilter) ([]report.MembershipRecord, error) {
	var rows []membershipRow
	err := r.baseQuery(ctx).
		Where("DATE(mp.payment_date) BETWEEN ? AND ?",
			filter.Start.Format(sqlDateLayout), filter.End.Format(sqlDateLayout)).
		Order("mp.payment_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, report.NewStorageError(report.EntityMemberships, "failed to fetch membership payments", err)
	}

	records := make([]report.MembershipRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// FindByID returns one payment
func (r *GormMembershipRepository) FindByID(ctx context.Context, id int64) (*report.MembershipRecord, error) {
	var rows []membershipRow
	if err := r.baseQuery(ctx).Where("mp.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, report.NewStorageError(report.EntityMemberships, "failed to fetch membership payment", err)
	}
	if len(rows) == 0 {
		return nil, report.ErrRecordNotFound
	}
	record := rows[0].toRecord()
	return &record, nil
}

// Create records a payment and returns its ID
func (r *GormMembershipRepository) Create(ctx context.Context, clientID int64, date time.Time, amount decimal.Decimal) (int64, error) {
	model := &MembershipPaymentModel{
		ClientID:    clientID,
		Amount:      amount,
		PaymentDate: date,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, report.NewStorageError(report.EntityMemberships, "failed to create membership payment", err)
	}
	return model.ID, nil
}

// Delete removes a payment
func (r *GormMembershipRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &MembershipPaymentModel{}, id, report.EntityMemberships)
}
