package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDocumentRepository creates a GormDocumentRepository with a mocked SQL connection
func newMockDocumentRepository(t *testing.T) (*GormDocumentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormDocumentRepository(gormDB), mock, mockDB
}

func documentRows(id, companyID, partyID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "company_id", "party_id",
		"document_number", "type", "direction", "status",
		"document_date", "due_date", "period_year", "period_month", "total_amount",
	}).AddRow(
		id, now, now, 1, companyID, partyID,
		"CUS-202603-0001", "CUSTOMER_INVOICE", "RECEIVABLE", "PENDING",
		now, now, 2026, 3, decimal.NewFromInt(1000),
	)
}

func TestGormDocumentRepository_FindByID(t *testing.T) {
	t.Run("finds existing document with lines", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		documentID := uuid.New()
		companyID := uuid.New()
		partyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(documentID, 1).
			WillReturnRows(documentRows(documentID, companyID, partyID))

		lineRows := sqlmock.NewRows([]string{
			"id", "document_id", "line_number", "description",
			"quantity", "unit_price", "subtotal", "total",
		}).AddRow(
			uuid.New(), documentID, 1, "Consulting",
			decimal.NewFromInt(10), decimal.NewFromInt(100),
			decimal.NewFromInt(1000), decimal.NewFromInt(1000),
		)
		mock.ExpectQuery(`SELECT \* FROM "document_lines" WHERE "document_lines"\."document_id" = \$1 ORDER BY line_number`).
			WithArgs(documentID).
			WillReturnRows(lineRows)

		doc, err := repo.FindByID(context.Background(), documentID)

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, documentID, doc.ID)
		assert.Equal(t, "CUS-202603-0001", doc.DocumentNumber)
		assert.Equal(t, ledger.DocumentStatusPending, doc.Status)
		assert.Equal(t, time.March, doc.PeriodMonth)
		require.Len(t, doc.Lines, 1)
		assert.Equal(t, "Consulting", doc.Lines[0].Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing document", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		documentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(documentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		doc, err := repo.FindByID(context.Background(), documentID)

		assert.NoError(t, err)
		assert.Nil(t, doc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_FindByIDForCompany(t *testing.T) {
	t.Run("scopes lookup to the company", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		documentID := uuid.New()
		companyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1 AND company_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(documentID, companyID, 1).
			WillReturnRows(documentRows(documentID, companyID, uuid.New()))
		mock.ExpectQuery(`SELECT \* FROM "document_lines"`).
			WithArgs(documentID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "document_id"}))

		doc, err := repo.FindByIDForCompany(context.Background(), companyID, documentID)

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, companyID, doc.CompanyID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_SaveWithLock(t *testing.T) {
	buildDocument := func(version int) *ledger.Document {
		doc := &ledger.Document{
			DocumentNumber: "CUS-202603-0001",
			Type:           ledger.DocumentTypeCustomerInvoice,
			Direction:      ledger.DirectionReceivable,
			Status:         ledger.DocumentStatusPartial,
			PartyID:        uuid.New(),
			DocumentDate:   time.Now(),
			DueDate:        time.Now(),
			PeriodYear:     2026,
			PeriodMonth:    time.March,
			TotalAmount:    decimal.NewFromInt(1000),
		}
		doc.CompanyAggregateRoot = shared.NewCompanyAggregateRoot(uuid.New())
		doc.Version = version
		return doc
	}

	t.Run("matches loaded version and bumps it in SQL", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := buildDocument(3)

		mock.ExpectExec(`(?s)UPDATE "documents" SET .*"version"=version \+ 1.* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), doc)

		assert.NoError(t, err)
		assert.Equal(t, 4, doc.Version, "in-memory version should track the stored row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeated saves in one transaction keep matching", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := buildDocument(1)

		mock.ExpectExec(`(?s)UPDATE "documents" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`(?s)UPDATE "documents" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), doc))
		require.NoError(t, repo.SaveWithLock(context.Background(), doc))

		assert.Equal(t, 3, doc.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version is stale", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := buildDocument(3)

		mock.ExpectExec(`UPDATE "documents" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), doc)

		assert.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_SumUnpaidByParty(t *testing.T) {
	t.Run("returns derived unpaid total", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()
		partyID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(d\.total_amount - COALESCE\(a\.allocated, 0\)\), 0\) AS total`).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.NewFromInt(600)))

		total, err := repo.SumUnpaidByParty(context.Background(), companyID, partyID, ledger.DirectionReceivable)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(600)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_CountForCompany(t *testing.T) {
	t.Run("counts with status filter", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()
		status := ledger.DocumentStatusPending

		mock.ExpectQuery(`SELECT count\(\*\) FROM "documents" WHERE company_id = \$1 AND status = \$2`).
			WithArgs(companyID, status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := repo.CountForCompany(context.Background(), companyID, ledger.DocumentFilter{Status: &status})

		assert.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
