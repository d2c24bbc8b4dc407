package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"catalog-service/internal/model"
	"catalog-service/internal/storage"
)

type memBackend struct {
	mu      sync.Mutex
	name    string
	objects map[string][]byte
	puts    int
}

func newMemBackend() *memBackend {
	return &memBackend{name: "memory", objects: map[string][]byte{}}
}

func (m *memBackend) Name() string { return m.name }

func (m *memBackend) Put(ctx context.Context, key string, data []byte, contentType string) (storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	m.puts++
	return storage.Object{Ref: key, URL: m.URL(key), Size: int64(len(data))}, nil
}

func (m *memBackend) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBackend) URL(ref string) string { return "https://cdn.test/" + ref }

func (m *memBackend) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
}

// Render produces a deterministic payload derived from its inputs
func (r *fakeRenderer) Render(src []byte, spec Spec, format model.ImageFormat, quality int) (Output, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if bytes.Equal(src, []byte("corrupt")) {
		return Output{}, errors.New("not an image")
	}
	data := []byte(fmt.Sprintf("%s|%s|q%d|%s", spec.Name, format, quality, Fingerprint(src)[:8]))
	return Output{Data: data, Width: spec.Width, Height: spec.Height}, nil
}

type memStore struct {
	mu         sync.Mutex
	products   []model.Product
	renditions map[string]model.ImageRendition
}

func newMemStore(products ...model.Product) *memStore {
	return &memStore{products: products, renditions: map[string]model.ImageRendition{}}
}

func (s *memStore) ProductsWithImages(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, p := range s.products {
		if p.HasImages() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) Renditions(ctx context.Context, ids ...uint) ([]model.ImageRendition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memStore) SaveRenditions(ctx context.Context, productID uint, slot model.ImageSlot, rows []model.ImageRendition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.renditions[fmt.Sprintf("%d/%s/%s/%s", r.ProductID, r.Slot, r.Name, r.Format)] = r
	}
	return nil
}

func (s *memStore) UpdateImageRef(ctx context.Context, productID uint, slot model.ImageSlot, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == productID {
			s.products[i].SetImageRef(slot, ref)
			return nil
		}
	}
	return errors.New("product not found")
}
