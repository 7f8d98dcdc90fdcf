package ledger

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodStatus represents the state of an accounting period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusLocked PeriodStatus = "LOCKED"
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	return s == PeriodStatusOpen || s == PeriodStatusLocked
}

// String returns the string representation of PeriodStatus
func (s PeriodStatus) String() string {
	return string(s)
}

// AccountingPeriod is a per-company month window. Once finance locks it,
// every mutation dated inside the window is rejected. Lock and Unlock are
// the only legal status transitions.
type AccountingPeriod struct {
	shared.CompanyAggregateRoot
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	Status    PeriodStatus `json:"status"`
	LockedBy  *uuid.UUID   `json:"locked_by,omitempty"`
	LockedAt  *time.Time   `json:"locked_at,omitempty"`
	LockNotes string       `json:"lock_notes,omitempty"`
}

// NewAccountingPeriod creates an open period for the given company and month
func NewAccountingPeriod(companyID uuid.UUID, year int, month time.Month) (*AccountingPeriod, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Company ID cannot be empty")
	}
	if year < 1970 || year > 9999 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Year %d is out of range", year))
	}
	if month < time.January || month > time.December {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Month %d is out of range", month))
	}

	return &AccountingPeriod{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Year:                 year,
		Month:                month,
		Status:               PeriodStatusOpen,
	}, nil
}

// NewAccountingPeriodForDate creates an open period covering the given date
func NewAccountingPeriodForDate(companyID uuid.UUID, date time.Time) (*AccountingPeriod, error) {
	return NewAccountingPeriod(companyID, date.Year(), date.Month())
}

// IsLocked returns true if the period is locked
func (p *AccountingPeriod) IsLocked() bool {
	return p.Status == PeriodStatusLocked
}

// Contains reports whether the given date falls inside this period
func (p *AccountingPeriod) Contains(date time.Time) bool {
	return date.Year() == p.Year && date.Month() == p.Month
}

// Label returns the period in YYYY-MM form
func (p *AccountingPeriod) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Lock closes the period. Fails if already locked.
func (p *AccountingPeriod) Lock(actorID uuid.UUID, notes string) error {
	if p.Status == PeriodStatusLocked {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Period %s is already locked", p.Label()))
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Locking actor ID is required")
	}

	now := time.Now()
	p.Status = PeriodStatusLocked
	p.LockedBy = &actorID
	p.LockedAt = &now
	p.LockNotes = notes
	p.Touch()

	p.AddDomainEvent(NewPeriodLockedEvent(p))

	return nil
}

// Unlock reopens the period. Fails if already open.
func (p *AccountingPeriod) Unlock(actorID uuid.UUID, reason string) error {
	if p.Status == PeriodStatusOpen {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Period %s is already open", p.Label()))
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unlocking actor ID is required")
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unlock reason is required")
	}

	p.Status = PeriodStatusOpen
	p.LockedBy = nil
	p.LockedAt = nil
	p.LockNotes = ""
	p.Touch()

	p.AddDomainEvent(NewPeriodUnlockedEvent(p, actorID, reason))

	return nil
}
