package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

type mockInvoiceHistory struct {
	mock.Mock
}

func (m *mockInvoiceHistory) FindCandidates(ctx context.Context, vendorID string, amount entity.Amount) ([]*entity.InvoiceRecord, error) {
	args := m.Called(ctx, vendorID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.InvoiceRecord), args.Error(1)
}

type mockInvoiceRepo struct {
	mockInvoiceHistory
	createFunc       func(ctx context.Context, invoice *entity.InvoiceRecord) error
	listByVendorFunc func(ctx context.Context, vendorID string, limit int) ([]*entity.InvoiceRecord, error)
	created          []*entity.InvoiceRecord
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.InvoiceRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, invoice)
	}
	invoice.ID = "inv-1"
	m.created = append(m.created, invoice)
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.InvoiceRecord, error) {
	for _, inv := range m.created {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInvoiceRepo) ListByVendor(ctx context.Context, vendorID string, limit int) ([]*entity.InvoiceRecord, error) {
	if m.listByVendorFunc != nil {
		return m.listByVendorFunc(ctx, vendorID, limit)
	}
	return m.created, nil
}

type mockConfigRepo struct {
	saved   *detection.DetectionConfig
	getErr  error
	saveErr error
	saves   int
}

func (m *mockConfigRepo) Get(ctx context.Context, id string) (*detection.DetectionConfig, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.saved, nil
}

func (m *mockConfigRepo) Save(ctx context.Context, id string, cfg detection.DetectionConfig) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = &cfg
	return nil
}

type mockCaseRepo struct {
	cases      map[string]*entity.Case
	order      []string
	activities []*entity.CaseActivity
	createErr  error
	summary    *entity.CaseSummary
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{cases: make(map[string]*entity.Case)}
}

func (m *mockCaseRepo) Create(ctx context.Context, c *entity.Case) error {
	if m.createErr != nil {
		return m.createErr
	}
	c.ID = fmt.Sprintf("case-%d", len(m.order)+1)
	c.CaseNumber = entity.CaseNumber(c.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	stored := *c
	m.cases[c.ID] = &stored
	m.order = append(m.order, c.ID)
	return nil
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (m *mockCaseRepo) List(ctx context.Context, status entity.CaseStatus, limit int) ([]*entity.Case, error) {
	out := make([]*entity.Case, 0)
	for _, id := range m.order {
		if c := m.cases[id]; status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out[:min(limit, len(out))], nil
}

func (m *mockCaseRepo) UpdateStatus(ctx context.Context, id string, from, to entity.CaseStatus) (bool, error) {
	c, ok := m.cases[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (m *mockCaseRepo) AddActivity(ctx context.Context, activity *entity.CaseActivity) error {
	activity.ID = fmt.Sprintf("act-%d", len(m.activities)+1)
	m.activities = append(m.activities, activity)
	return nil
}

func (m *mockCaseRepo) ListActivities(ctx context.Context, caseID string) ([]*entity.CaseActivity, error) {
	out := make([]*entity.CaseActivity, 0)
	for _, a := range m.activities {
		if a.CaseID == caseID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockCaseRepo) Summary(ctx context.Context) (*entity.CaseSummary, error) {
	if m.summary == nil {
		return nil, fmt.Errorf("summary unavailable")
	}
	return m.summary, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func record(number, vendor, amount, date string) entity.InvoiceRecord {
	return entity.InvoiceRecord{
		InvoiceNumber: number,
		VendorID:      vendor,
		Amount:        entity.ParseAmount(amount),
		InvoiceDate:   entity.ParseInvoiceDate(date),
	}
}
