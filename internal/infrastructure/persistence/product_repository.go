package persistence

import (
	"context"

	"github.com/gym/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormProductRepository implements report.ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var _ report.ProductRepository = (*GormProductRepository)(nil)

func (m ProductModel) toRecord() report.ProductRecord {
	return report.ProductRecord{
		ID:            m.ID,
		Name:          m.Name,
		UnitPrice:     m.Price,
		StockQuantity: m.Stock,
	}
}

func productModelFrom(p *report.ProductRecord) *ProductModel {
	return &ProductModel{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.UnitPrice,
		Stock: p.StockQuantity,
	}
}

// FindAll returns the whole inventory ordered by name
func (r *GormProductRepository) FindAll(ctx context.Context) ([]report.ProductRecord, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, report.NewStorageError(report.EntityProducts, "failed to fetch products", err)
	}

	records := make([]report.ProductRecord, 0, len(models))
	for _, m := range models {
		records = append(records, m.toRecord())
	}
	return records, nil
}

// FindNames returns distinct product names ordered by name
func (r *GormProductRepository) FindNames(ctx context.Context) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Model(&ProductModel{}).
		Distinct("name").
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, report.NewStorageError(report.EntityProducts, "failed to fetch product names", err)
	}
	return names, nil
}

// FindByID returns one product
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*report.ProductRecord, error) {
	var m ProductModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateNotFound(err, report.EntityProducts, "failed to fetch product")
	}
	record := m.toRecord()
	return &record, nil
}

// Create inserts a product and sets its ID
func (r *GormProductRepository) Create(ctx context.Context, product *report.ProductRecord) error {
	m := productModelFrom(product)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return report.NewStorageError(report.EntityProducts, "failed to create product", err)
	}
	product.ID = m.ID
	return nil
}

// Update overwrites name, price and stock of an existing product
func (r *GormProductRepository) Update(ctx context.Context, product *report.ProductRecord) error {
	result := r.db.WithContext(ctx).
		Model(&ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":  product.Name,
			"price": product.UnitPrice,
			"stock": product.StockQuantity,
		})
	if result.Error != nil {
		return report.NewStorageError(report.EntityProducts, "failed to update product", result.Error)
	}
	if result.RowsAffected == 0 {
		return report.ErrRecordNotFound
	}
	return nil
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &ProductModel{}, id, report.EntityProducts)
}
