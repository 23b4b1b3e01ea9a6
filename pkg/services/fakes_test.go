package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
)

// In-memory repository fakes. They implement just enough semantics for
// the service flows: ids are assigned sequentially, lookups miss with
// ErrNotFound, and stock never goes negative.

type fakeProductRepo struct {
	products map[int64]*models.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*models.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) List(_ context.Context) ([]*repositories.ProductDetail, error) {
	out := make([]*repositories.ProductDetail, 0, len(f.products))
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, &repositories.ProductDetail{Product: *p})
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) AdjustStock(_ context.Context, id int64, delta int) error {
	p, ok := f.products[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if p.StockQuantity+delta < 0 {
		return apperrors.ErrInsufficientStock
	}
	p.StockQuantity += delta
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeSaleRepo struct {
	sales    map[int64]*models.Sale
	products *fakeProductRepo
	nextID   int64
}

func newFakeSaleRepo(products *fakeProductRepo) *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[int64]*models.Sale), products: products}
}

func (f *fakeSaleRepo) Create(_ context.Context, s *models.Sale) error {
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.sales[s.ID] = &cp
	return nil
}

func (f *fakeSaleRepo) GetByID(_ context.Context, id int64) (*models.Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSaleRepo) List(_ context.Context) ([]*repositories.SaleDetail, error) {
	out := make([]*repositories.SaleDetail, 0, len(f.sales))
	for id := int64(1); id <= f.nextID; id++ {
		s, ok := f.sales[id]
		if !ok {
			continue
		}
		detail := &repositories.SaleDetail{Sale: *s}
		if p, ok := f.products.products[s.ProductID]; ok {
			detail.ProductName = p.Name
		}
		out = append(out, detail)
	}
	return out, nil
}

func (f *fakeSaleRepo) Update(_ context.Context, s *models.Sale) error {
	if _, ok := f.sales[s.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *s
	f.sales[s.ID] = &cp
	return nil
}

func (f *fakeSaleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.sales[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.sales, id)
	return nil
}

type fakeReceivableRepo struct {
	receivables map[int64]*models.Receivable
	nextID      int64
}

func newFakeReceivableRepo() *fakeReceivableRepo {
	return &fakeReceivableRepo{receivables: make(map[int64]*models.Receivable)}
}

func (f *fakeReceivableRepo) Create(_ context.Context, rec *models.Receivable) error {
	f.nextID++
	rec.ID = f.nextID
	cp := *rec
	f.receivables[rec.ID] = &cp
	return nil
}

func (f *fakeReceivableRepo) GetByID(_ context.Context, id int64) (*models.Receivable, error) {
	rec, ok := f.receivables[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeReceivableRepo) GetBySaleID(_ context.Context, saleID int64) (*models.Receivable, error) {
	for _, rec := range f.receivables {
		if rec.SaleID != nil && *rec.SaleID == saleID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeReceivableRepo) List(_ context.Context) ([]*repositories.ReceivableDetail, error) {
	out := make([]*repositories.ReceivableDetail, 0, len(f.receivables))
	for id := int64(1); id <= f.nextID; id++ {
		if rec, ok := f.receivables[id]; ok {
			out = append(out, &repositories.ReceivableDetail{Receivable: *rec})
		}
	}
	return out, nil
}

func (f *fakeReceivableRepo) Update(_ context.Context, rec *models.Receivable) error {
	if _, ok := f.receivables[rec.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *rec
	f.receivables[rec.ID] = &cp
	return nil
}

func (f *fakeReceivableRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.receivables[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.receivables, id)
	return nil
}

func (f *fakeReceivableRepo) DeleteBySaleID(_ context.Context, saleID int64) error {
	for id, rec := range f.receivables {
		if rec.SaleID != nil && *rec.SaleID == saleID {
			delete(f.receivables, id)
		}
	}
	return nil
}

type fakePayableRepo struct {
	payables map[int64]*models.Payable
	nextID   int64
}

func newFakePayableRepo() *fakePayableRepo {
	return &fakePayableRepo{payables: make(map[int64]*models.Payable)}
}

func (f *fakePayableRepo) Create(_ context.Context, p *models.Payable) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.payables[p.ID] = &cp
	return nil
}

func (f *fakePayableRepo) GetByID(_ context.Context, id int64) (*models.Payable, error) {
	p, ok := f.payables[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayableRepo) List(_ context.Context) ([]*repositories.PayableDetail, error) {
	out := make([]*repositories.PayableDetail, 0, len(f.payables))
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.payables[id]; ok {
			out = append(out, &repositories.PayableDetail{Payable: *p})
		}
	}
	return out, nil
}

func (f *fakePayableRepo) Update(_ context.Context, p *models.Payable) error {
	if _, ok := f.payables[p.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *p
	f.payables[p.ID] = &cp
	return nil
}

func (f *fakePayableRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.payables[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.payables, id)
	return nil
}

type fakeChatRepo struct {
	messages []*models.ChatMessage
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, m *models.ChatMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	cp := *m
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeChatRepo) History(_ context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

var (
	_ repositories.ProductRepository    = (*fakeProductRepo)(nil)
	_ repositories.SaleRepository       = (*fakeSaleRepo)(nil)
	_ repositories.ReceivableRepository = (*fakeReceivableRepo)(nil)
	_ repositories.PayableRepository    = (*fakePayableRepo)(nil)
	_ repositories.ChatRepository       = (*fakeChatRepo)(nil)
)
