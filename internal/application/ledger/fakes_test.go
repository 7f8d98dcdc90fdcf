package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/party"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// testEnv wires the services over in-memory repositories sharing one state
type testEnv struct {
	state       *fakeState
	scope       *NoOpTransactionScope
	published   *recordingPublisher
	obligations *ObligationService
	payments    *PaymentService
	allocations *AllocationService
	reversals   *ReversalService
	periods     *PeriodService
}

func newTestEnv() *testEnv {
	state := &fakeState{
		documents:    make(map[uuid.UUID]*ledger.Document),
		payments:     make(map[uuid.UUID]*ledger.Payment),
		allocations:  make(map[uuid.UUID]*ledger.PaymentAllocation),
		periods:      make(map[uuid.UUID]*ledger.AccountingPeriod),
		cashboxes:    make(map[uuid.UUID]*ledger.Cashbox),
		bankAccounts: make(map[uuid.UUID]*ledger.BankAccount),
		parties:      make(map[uuid.UUID]*party.Party),
		sequences:    make(map[string]int),
	}
	scope := NewNoOpTransactionScope(
		&fakeDocumentRepo{state},
		&fakePaymentRepo{state},
		&fakeAllocationRepo{state},
		&fakePeriodRepo{state},
		&fakeCashboxRepo{state},
		&fakeBankAccountRepo{state},
		&fakePartyRepo{state},
		&fakeAuditRepo{state},
		&fakeSequenceGenerator{state},
	)
	tx := &fakeTxScope{repos: scope, state: state}
	published := &recordingPublisher{}
	return &testEnv{
		state:       state,
		scope:       scope,
		published:   published,
		obligations: NewObligationService(tx, published),
		payments:    NewPaymentService(tx, published),
		allocations: NewAllocationService(tx, published),
		reversals:   NewReversalService(tx, published),
		periods:     NewPeriodService(tx, nil, published),
	}
}

// recordingPublisher collects published events for assertions
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

// eventTypes returns the types of all recorded events in publish order
func (p *recordingPublisher) eventTypes() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// fakeTxScope snapshots the state before each Execute and restores it when
// the function fails, mirroring a real rollback. Repo methods always store
// and return fresh copies, so a shallow map copy is a complete snapshot.
type fakeTxScope struct {
	repos *NoOpTransactionScope
	state *fakeState
}

func (s *fakeTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	snap := s.state.snapshot()
	if err := fn(s.repos); err != nil {
		s.state.restore(snap)
		return err
	}
	return nil
}

func (s *fakeState) snapshot() *fakeState {
	snap := &fakeState{
		documents:    make(map[uuid.UUID]*ledger.Document, len(s.documents)),
		payments:     make(map[uuid.UUID]*ledger.Payment, len(s.payments)),
		allocations:  make(map[uuid.UUID]*ledger.PaymentAllocation, len(s.allocations)),
		periods:      make(map[uuid.UUID]*ledger.AccountingPeriod, len(s.periods)),
		cashboxes:    make(map[uuid.UUID]*ledger.Cashbox, len(s.cashboxes)),
		bankAccounts: make(map[uuid.UUID]*ledger.BankAccount, len(s.bankAccounts)),
		parties:      make(map[uuid.UUID]*party.Party, len(s.parties)),
		auditEntries: append([]*audit.Entry(nil), s.auditEntries...),
		sequences:    make(map[string]int, len(s.sequences)),
	}
	for k, v := range s.documents {
		snap.documents[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	for k, v := range s.allocations {
		snap.allocations[k] = v
	}
	for k, v := range s.periods {
		snap.periods[k] = v
	}
	for k, v := range s.cashboxes {
		snap.cashboxes[k] = v
	}
	for k, v := range s.bankAccounts {
		snap.bankAccounts[k] = v
	}
	for k, v := range s.parties {
		snap.parties[k] = v
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *fakeState) restore(snap *fakeState) {
	s.documents = snap.documents
	s.payments = snap.payments
	s.allocations = snap.allocations
	s.periods = snap.periods
	s.cashboxes = snap.cashboxes
	s.bankAccounts = snap.bankAccounts
	s.parties = snap.parties
	s.auditEntries = snap.auditEntries
	s.sequences = snap.sequences
}

type fakeState struct {
	documents    map[uuid.UUID]*ledger.Document
	payments     map[uuid.UUID]*ledger.Payment
	allocations  map[uuid.UUID]*ledger.PaymentAllocation
	periods      map[uuid.UUID]*ledger.AccountingPeriod
	cashboxes    map[uuid.UUID]*ledger.Cashbox
	bankAccounts map[uuid.UUID]*ledger.BankAccount
	parties      map[uuid.UUID]*party.Party
	auditEntries []*audit.Entry
	sequences    map[string]int
}

func (s *fakeState) activeAllocations() []ledger.PaymentAllocation {
	out := make([]ledger.PaymentAllocation, 0, len(s.allocations))
	for _, a := range s.allocations {
		if a.IsActive() {
			out = append(out, *a)
		}
	}
	return out
}

type fakeDocumentRepo struct{ state *fakeState }

func (r *fakeDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Document, error) {
	doc, ok := r.state.documents[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Document, error) {
	doc, err := r.FindByID(ctx, id)
	if err != nil || doc == nil || doc.CompanyID != companyID {
		return nil, err
	}
	return doc, nil
}

func (r *fakeDocumentRepo) FindByNumber(_ context.Context, companyID uuid.UUID, number string) (*ledger.Document, error) {
	for _, doc := range r.state.documents {
		if doc.CompanyID == companyID && doc.DocumentNumber == number {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ ledger.DocumentFilter) ([]ledger.Document, error) {
	var out []ledger.Document
	for _, doc := range r.state.documents {
		if doc.CompanyID == companyID {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentNumber < out[j].DocumentNumber })
	return out, nil
}

func (r *fakeDocumentRepo) FindOutstandingByParty(_ context.Context, companyID, partyID uuid.UUID) ([]ledger.Document, error) {
	var out []ledger.Document
	for _, doc := range r.state.documents {
		if doc.CompanyID == companyID && doc.PartyID == partyID && doc.Status.CanAcceptAllocation() {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *fakeDocumentRepo) Save(_ context.Context, doc *ledger.Document) error {
	copied := *doc
	r.state.documents[doc.ID] = &copied
	return nil
}

// SaveWithLock mirrors the real repository: the update only lands when the
// aggregate still carries the version it was loaded with, and a successful
// save bumps both the stored row and the in-memory copy.
func (r *fakeDocumentRepo) SaveWithLock(ctx context.Context, doc *ledger.Document) error {
	stored, ok := r.state.documents[doc.ID]
	if !ok || stored.Version != doc.Version {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Document was modified by another transaction")
	}
	doc.IncrementVersion()
	return r.Save(ctx, doc)
}

func (r *fakeDocumentRepo) CountForCompany(ctx context.Context, companyID uuid.UUID, filter ledger.DocumentFilter) (int64, error) {
	docs, _ := r.FindAllForCompany(ctx, companyID, filter)
	return int64(len(docs)), nil
}

func (r *fakeDocumentRepo) SumUnpaidByParty(_ context.Context, companyID, partyID uuid.UUID, direction ledger.DocumentDirection) (decimal.Decimal, error) {
	sum := decimal.Zero
	active := r.state.activeAllocations()
	for _, doc := range r.state.documents {
		if doc.CompanyID != companyID || doc.PartyID != partyID || doc.Direction != direction {
			continue
		}
		if !doc.Status.CanAcceptAllocation() {
			continue
		}
		sum = sum.Add(ledger.DeriveDocumentBalances(doc, active).UnpaidAmount)
	}
	return sum, nil
}

type fakePaymentRepo struct{ state *fakeState }

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
	p, ok := r.state.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Payment, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil || p == nil || p.CompanyID != companyID {
		return nil, err
	}
	return p, nil
}

func (r *fakePaymentRepo) FindByNumber(_ context.Context, companyID uuid.UUID, number string) (*ledger.Payment, error) {
	for _, p := range r.state.payments {
		if p.CompanyID == companyID && p.PaymentNumber == number {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ ledger.PaymentFilter) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range r.state.payments {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentNumber < out[j].PaymentNumber })
	return out, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *ledger.Payment) error {
	copied := *p
	r.state.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) CountForCompany(ctx context.Context, companyID uuid.UUID, filter ledger.PaymentFilter) (int64, error) {
	payments, _ := r.FindAllForCompany(ctx, companyID, filter)
	return int64(len(payments)), nil
}

func (r *fakePaymentRepo) CashboxBalance(_ context.Context, companyID, cashboxID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, p := range r.state.payments {
		if p.CompanyID != companyID || p.Status != ledger.PaymentStatusConfirmed {
			continue
		}
		if eq(p.Sources.CashboxID, cashboxID) {
			if p.Direction == ledger.PaymentDirectionIn {
				balance = balance.Add(p.Amount)
			} else {
				balance = balance.Sub(p.Amount)
			}
		}
		if eq(p.Sources.ToCashboxID, cashboxID) {
			balance = balance.Add(p.Amount)
		}
		if eq(p.Sources.FromCashboxID, cashboxID) {
			balance = balance.Sub(p.Amount)
		}
	}
	return balance, nil
}

func (r *fakePaymentRepo) BankAccountBalance(_ context.Context, companyID, bankAccountID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, p := range r.state.payments {
		if p.CompanyID != companyID || p.Status != ledger.PaymentStatusConfirmed {
			continue
		}
		if eq(p.Sources.BankAccountID, bankAccountID) {
			if p.Direction == ledger.PaymentDirectionIn {
				balance = balance.Add(p.Amount)
			} else {
				balance = balance.Sub(p.Amount)
			}
		}
		if eq(p.Sources.ToBankAccountID, bankAccountID) {
			balance = balance.Add(p.Amount)
		}
		if eq(p.Sources.FromBankAccountID, bankAccountID) {
			balance = balance.Sub(p.Amount)
		}
	}
	return balance, nil
}

func eq(id *uuid.UUID, target uuid.UUID) bool {
	return id != nil && *id == target
}

type fakeAllocationRepo struct{ state *fakeState }

func (r *fakeAllocationRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.PaymentAllocation, error) {
	a, ok := r.state.allocations[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAllocationRepo) FindActiveByDocument(_ context.Context, documentID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var out []ledger.PaymentAllocation
	for _, a := range r.state.allocations {
		if a.DocumentID == documentID && a.IsActive() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) FindActiveByPayment(_ context.Context, paymentID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var out []ledger.PaymentAllocation
	for _, a := range r.state.allocations {
		if a.PaymentID == paymentID && a.IsActive() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var out []ledger.PaymentAllocation
	for _, a := range r.state.allocations {
		if a.PaymentID == paymentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) Save(_ context.Context, a *ledger.PaymentAllocation) error {
	copied := *a
	r.state.allocations[a.ID] = &copied
	return nil
}

type fakePeriodRepo struct{ state *fakeState }

func (r *fakePeriodRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.AccountingPeriod, error) {
	p, ok := r.state.periods[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePeriodRepo) FindByMonth(_ context.Context, companyID uuid.UUID, year int, month time.Month) (*ledger.AccountingPeriod, error) {
	for _, p := range r.state.periods {
		if p.CompanyID == companyID && p.Year == year && p.Month == month {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePeriodRepo) FindOrCreateForDate(ctx context.Context, companyID uuid.UUID, date time.Time) (*ledger.AccountingPeriod, error) {
	if p, err := r.FindByMonth(ctx, companyID, date.Year(), date.Month()); err != nil || p != nil {
		return p, err
	}
	p, err := ledger.NewAccountingPeriodForDate(companyID, date)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *fakePeriodRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]ledger.AccountingPeriod, error) {
	var out []ledger.AccountingPeriod
	for _, p := range r.state.periods {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePeriodRepo) Save(_ context.Context, p *ledger.AccountingPeriod) error {
	copied := *p
	r.state.periods[p.ID] = &copied
	return nil
}

func (r *fakePeriodRepo) SaveWithLock(ctx context.Context, p *ledger.AccountingPeriod) error {
	stored, ok := r.state.periods[p.ID]
	if !ok || stored.Version != p.Version {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Period was modified by another transaction")
	}
	p.IncrementVersion()
	return r.Save(ctx, p)
}

type fakeCashboxRepo struct{ state *fakeState }

func (r *fakeCashboxRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Cashbox, error) {
	c, ok := r.state.cashboxes[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCashboxRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Cashbox, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil || c == nil || c.CompanyID != companyID {
		return nil, err
	}
	return c, nil
}

func (r *fakeCashboxRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]ledger.Cashbox, error) {
	var out []ledger.Cashbox
	for _, c := range r.state.cashboxes {
		if c.CompanyID == companyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCashboxRepo) Save(_ context.Context, c *ledger.Cashbox) error {
	copied := *c
	r.state.cashboxes[c.ID] = &copied
	return nil
}

type fakeBankAccountRepo struct{ state *fakeState }

func (r *fakeBankAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.BankAccount, error) {
	a, ok := r.state.bankAccounts[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeBankAccountRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	a, err := r.FindByID(ctx, id)
	if err != nil || a == nil || a.CompanyID != companyID {
		return nil, err
	}
	return a, nil
}

func (r *fakeBankAccountRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]ledger.BankAccount, error) {
	var out []ledger.BankAccount
	for _, a := range r.state.bankAccounts {
		if a.CompanyID == companyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeBankAccountRepo) Save(_ context.Context, a *ledger.BankAccount) error {
	copied := *a
	r.state.bankAccounts[a.ID] = &copied
	return nil
}

type fakePartyRepo struct{ state *fakeState }

func (r *fakePartyRepo) FindByID(_ context.Context, id uuid.UUID) (*party.Party, error) {
	p, ok := r.state.parties[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePartyRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.Party, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil || p == nil || p.CompanyID != companyID {
		return nil, err
	}
	return p, nil
}

func (r *fakePartyRepo) FindByCode(_ context.Context, companyID uuid.UUID, code string) (*party.Party, error) {
	for _, p := range r.state.parties {
		if p.CompanyID == companyID && p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePartyRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ party.PartyFilter) ([]party.Party, error) {
	var out []party.Party
	for _, p := range r.state.parties {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePartyRepo) Save(_ context.Context, p *party.Party) error {
	copied := *p
	r.state.parties[p.ID] = &copied
	return nil
}

func (r *fakePartyRepo) CountForCompany(ctx context.Context, companyID uuid.UUID, filter party.PartyFilter) (int64, error) {
	parties, _ := r.FindAllForCompany(ctx, companyID, filter)
	return int64(len(parties)), nil
}

type fakeAuditRepo struct{ state *fakeState }

func (r *fakeAuditRepo) Append(_ context.Context, entry *audit.Entry) error {
	r.state.auditEntries = append(r.state.auditEntries, entry)
	return nil
}

type fakeSequenceGenerator struct{ state *fakeState }

func (g *fakeSequenceGenerator) Next(_ context.Context, scope ledger.SequenceScope) (int, error) {
	g.state.sequences[scope.Key()]++
	return g.state.sequences[scope.Key()], nil
}
