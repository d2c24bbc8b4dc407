package handler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"catalog-service/internal/model"
	"catalog-service/internal/store"
	"catalog-service/pkg/mailer"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeStore struct {
	mu           sync.Mutex
	products     []model.Product
	testimonials []model.Testimonial
	categories   []model.Category
	renditions   []model.ImageRendition
	contacts     []model.ContactMessage
	subscribers  map[string]model.NewsletterSubscription
	listCalls    int
}

func newFakeStore(products ...model.Product) *fakeStore {
	return &fakeStore{products: products, subscribers: map[string]model.NewsletterSubscription{}}
}

func (s *fakeStore) ActiveProducts(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	var out []model.Product
	for _, p := range s.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	for _, p := range s.products {
		if p.Active && p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStore) RelatedProducts(ctx context.Context, p *model.Product, limit int) ([]model.Product, error) {
	var out []model.Product
	for _, it := range s.products {
		if it.Active && it.ID != p.ID && it.CategoryID == p.CategoryID && len(out) < limit {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *fakeStore) FeaturedProducts(ctx context.Context, limit int) ([]model.Product, error) {
	var out []model.Product
	for _, it := range s.products {
		if it.Active && it.Featured && len(out) < limit {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *fakeStore) Testimonials(ctx context.Context, productID *uint, limit int) ([]model.Testimonial, error) {
	var out []model.Testimonial
	for _, t := range s.testimonials {
		if productID != nil && (t.ProductID == nil || *t.ProductID != *productID) {
			continue
		}
		if len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) ActiveCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories, nil
}

func (s *fakeStore) Stats(ctx context.Context) (store.Stats, error) {
	products, _ := s.ActiveProducts(ctx)
	return store.Stats{
		Products:     int64(len(products)),
		Categories:   int64(len(s.categories)),
		Testimonials: int64(len(s.testimonials)),
	}, nil
}

func (s *fakeStore) CreateContact(ctx context.Context, m *model.ContactMessage) error {
	if !m.Consent {
		return errors.New("consent required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uint(len(s.contacts) + 1)
	s.contacts = append(s.contacts, *m)
	return nil
}

func (s *fakeStore) Subscribe(ctx context.Context, sub *model.NewsletterSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(sub.Email)
	if _, ok := s.subscribers[key]; ok {
		return store.ErrAlreadySubscribed
	}
	sub.ID = uint(len(s.subscribers) + 1)
	s.subscribers[key] = *sub
	return nil
}

func (s *fakeStore) Renditions(ctx context.Context, ids ...uint) ([]model.ImageRendition, error) {
	want := map[uint]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []model.ImageRendition
	for _, r := range s.renditions {
		if want[r.ProductID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func product(id uint, name string, price string) model.Product {
	return model.Product{
		ID:         id,
		Name:       name,
		Slug:       strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		CategoryID: 1,
		Category:   model.Category{ID: 1, Name: "Ortopédicos", Slug: "ortopedicos", Active: true},
		Brand:      model.Brand{ID: 1, Name: "Dormilón"},
		Size:       model.SizeQueen,
		Firmness:   model.FirmnessFirm,
		Price:      decimal.RequireFromString(price),
		Stock:      3,
		Active:     true,
	}
}
