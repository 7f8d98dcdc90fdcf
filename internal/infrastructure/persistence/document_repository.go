package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a document by ID for a specific company
func (r *GormDocumentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		First(&model, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds by document number for a company
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*ledger.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		First(&model, "document_number = ? AND company_id = ?", number, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds documents for a company with filtering
func (r *GormDocumentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter ledger.DocumentFilter) ([]ledger.Document, error) {
	var documentModels []models.DocumentModel
	query := r.applyDocumentFilter(
		r.db.WithContext(ctx).Where("company_id = ?", companyID),
		filter,
	)

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "document_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		Find(&documentModels).Error; err != nil {
		return nil, err
	}
	documents := make([]ledger.Document, len(documentModels))
	for i, model := range documentModels {
		documents[i] = *model.ToDomain()
	}
	return documents, nil
}

// FindOutstandingByParty finds PENDING/PARTIAL documents of a party, oldest
// due first so callers can settle in maturity order
func (r *GormDocumentRepository) FindOutstandingByParty(ctx context.Context, companyID, partyID uuid.UUID) ([]ledger.Document, error) {
	var documentModels []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND party_id = ? AND status IN ?",
			companyID, partyID,
			[]ledger.DocumentStatus{ledger.DocumentStatusPending, ledger.DocumentStatusPartial}).
		Order("due_date ASC, document_date ASC").
		Find(&documentModels).Error; err != nil {
		return nil, err
	}
	documents := make([]ledger.Document, len(documentModels))
	for i, model := range documentModels {
		documents[i] = *model.ToDomain()
	}
	return documents, nil
}

// Save creates or updates a document including its lines
func (r *GormDocumentRepository) Save(ctx context.Context, doc *ledger.Document) error {
	var model models.DocumentModel
	model.FromDomain(doc)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with an optimistic version check. The predicate matches
// the version the aggregate was loaded with and the bump happens in SQL, so
// the save succeeds whether or not the domain operation changed the status.
// Lines are immutable after creation so only the header row is updated.
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *ledger.Document) error {
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version).
		Updates(map[string]interface{}{
			"status":                  doc.Status,
			"total_amount":            doc.TotalAmount,
			"description":             doc.Description,
			"reversed_by_document_id": doc.ReversedByDocumentID,
			"reversed_at":             doc.ReversedAt,
			"reversal_reason":         doc.ReversalReason,
			"cancelled_at":            doc.CancelledAt,
			"cancel_reason":           doc.CancelReason,
			"version":                 gorm.Expr("version + 1"),
			"updated_at":              doc.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Document was modified by another transaction")
	}
	// Keep the in-memory aggregate in step with the stored row so a later
	// save in the same transaction matches again.
	doc.IncrementVersion()
	return nil
}

// CountForCompany counts documents for a company with optional filters
func (r *GormDocumentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter ledger.DocumentFilter) (int64, error) {
	var count int64
	query := r.applyDocumentFilter(
		r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumUnpaidByParty sums unpaid amounts over a party's open documents in the
// given direction. Unpaid is total minus the sum of ACTIVE allocations, so
// the result reflects cancelled allocations immediately.
func (r *GormDocumentRepository) SumUnpaidByParty(ctx context.Context, companyID, partyID uuid.UUID, direction ledger.DocumentDirection) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(d.total_amount - COALESCE(a.allocated, 0)), 0) AS total
		FROM documents d
		LEFT JOIN (
			SELECT document_id, SUM(amount) AS allocated
			FROM payment_allocations
			WHERE status = ?
			GROUP BY document_id
		) a ON a.document_id = d.id
		WHERE d.company_id = ? AND d.party_id = ? AND d.direction = ? AND d.status IN (?, ?)`,
		ledger.AllocationStatusActive,
		companyID, partyID, direction,
		ledger.DocumentStatusPending, ledger.DocumentStatusPartial,
	).Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyDocumentFilter applies the filter conditions shared by list and count
func (r *GormDocumentRepository) applyDocumentFilter(query *gorm.DB, filter ledger.DocumentFilter) *gorm.DB {
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	} else if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("document_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("document_date <= ?", *filter.ToDate)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("due_date < NOW() AND status IN ?",
			[]ledger.DocumentStatus{ledger.DocumentStatusPending, ledger.DocumentStatusPartial})
	}
	if filter.Search != "" {
		query = query.Where("document_number ILIKE ? OR description ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ ledger.DocumentRepository = (*GormDocumentRepository)(nil)
