package models

import (
	"github.com/finbooks/backend/internal/domain/party"
)

// PartyModel is the persistence model for the Party aggregate root.
type PartyModel struct {
	CompanyAggregateModel
	Code     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_party_company_code,priority:2"`
	Type     party.PartyType `gorm:"type:varchar(20);not null;index"`
	Name     string          `gorm:"type:varchar(200);not null;index"`
	Email    string          `gorm:"type:varchar(100)"`
	Phone    string          `gorm:"type:varchar(50)"`
	Address  string          `gorm:"type:varchar(500)"`
	TaxID    string          `gorm:"type:varchar(50)"`
	Remark   string          `gorm:"type:varchar(500)"`
	IsActive bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party entity.
func (m *PartyModel) ToDomain() *party.Party {
	p := &party.Party{
		Code:     m.Code,
		Type:     m.Type,
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		Address:  m.Address,
		TaxID:    m.TaxID,
		Remark:   m.Remark,
		IsActive: m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Party entity.
func (m *PartyModel) FromDomain(p *party.Party) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.Code = p.Code
	m.Type = p.Type
	m.Name = p.Name
	m.Email = p.Email
	m.Phone = p.Phone
	m.Address = p.Address
	m.TaxID = p.TaxID
	m.Remark = p.Remark
	m.IsActive = p.IsActive
}
