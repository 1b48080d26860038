package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/pkg/e"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type fakeCatalogRepo struct {
	products   map[int64]domain.Product
	categories []string
	getCalls   int
	catCalls   int
}

func (f *fakeCatalogRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	f.getCalls++
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeCatalogRepo) List(_ context.Context, _, _ int, _ string) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	result := make([]domain.Product, 0)
	for _, p := range f.products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeCatalogRepo) ListCategories(_ context.Context) ([]string, error) {
	f.catCalls++
	return f.categories, nil
}

func (f *fakeCatalogRepo) Search(_ context.Context, _ string) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) Create(_ context.Context, _ *domain.Product) (*domain.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) Update(_ context.Context, _ int64, _ *ProductPatch) (*domain.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) SetPhotoURL(_ context.Context, _ int64, _ string) error { return nil }

func (f *fakeCatalogRepo) Archive(_ context.Context, _ int64) error { return nil }

type fakeCacheRepo struct {
	mu            sync.Mutex
	fail          bool
	products      map[int64]domain.Product
	categories    []string
	hasCategories bool
	filled        chan struct{}
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{
		products: make(map[int64]domain.Product),
		filled:   make(chan struct{}, 8),
	}
}

func (f *fakeCacheRepo) GetProducts(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("cache unavailable")
	}
	result := make(map[int64]domain.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (f *fakeCacheRepo) SetProducts(_ context.Context, products []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("cache unavailable")
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	f.filled <- struct{}{}
	return nil
}

func (f *fakeCacheRepo) DeleteProducts(_ context.Context, _ []int64) error { return nil }

func (f *fakeCacheRepo) GetCategories(_ context.Context) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, false, errors.New("cache unavailable")
	}
	return f.categories, f.hasCategories, nil
}

func (f *fakeCacheRepo) SetCategories(_ context.Context, categories []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("cache unavailable")
	}
	f.categories = categories
	f.hasCategories = true
	f.filled <- struct{}{}
	return nil
}

func (f *fakeCacheRepo) DeleteCategories(_ context.Context) error { return nil }

func waitFilled(t *testing.T, cache *fakeCacheRepo) {
	t.Helper()
	select {
	case <-cache.filled:
	case <-time.After(2 * time.Second):
		t.Fatalf("background cache fill never happened")
	}
}

func TestGetByIDCacheMissReadsDBAndFillsCache(t *testing.T) {
	repo := &fakeCatalogRepo{products: map[int64]domain.Product{
		7: {ID: 7, Name: "Шу Булан", Category: "Шу пуэры", Price: 45000, IsActive: true},
	}}
	cache := newFakeCacheRepo()
	uc := NewCatalogUC(repo, cache, nopLogger{})

	res, err := uc.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if res.Name != "Шу Булан" || res.Price != 45000 {
		t.Fatalf("unexpected product: %+v", res)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected 1 db read, got %d", repo.getCalls)
	}

	waitFilled(t, cache)
	cache.mu.Lock()
	_, cached := cache.products[7]
	cache.mu.Unlock()
	if !cached {
		t.Fatalf("product not cached after db read")
	}
}

func TestGetByIDCacheFailureFallsBackToDB(t *testing.T) {
	repo := &fakeCatalogRepo{products: map[int64]domain.Product{
		7: {ID: 7, Name: "Шу Булан", Category: "Шу пуэры", Price: 45000, IsActive: true},
	}}
	cache := newFakeCacheRepo()
	cache.fail = true
	uc := NewCatalogUC(repo, cache, nopLogger{})

	res, err := uc.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID with broken cache: %v", err)
	}
	if res.ID != 7 {
		t.Fatalf("unexpected product: %+v", res)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected 1 db read, got %d", repo.getCalls)
	}
}

func TestGetByIDCacheHitSkipsDB(t *testing.T) {
	repo := &fakeCatalogRepo{products: map[int64]domain.Product{}}
	cache := newFakeCacheRepo()
	cache.products[7] = domain.Product{ID: 7, Name: "Шу Булан", Price: 45000, IsActive: true}
	uc := NewCatalogUC(repo, cache, nopLogger{})

	res, err := uc.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if res.Name != "Шу Булан" {
		t.Fatalf("unexpected product: %+v", res)
	}
	if repo.getCalls != 0 {
		t.Fatalf("cache hit must not touch db, got %d reads", repo.getCalls)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	uc := NewCatalogUC(&fakeCatalogRepo{products: map[int64]domain.Product{}}, newFakeCacheRepo(), nopLogger{})

	_, err := uc.GetByID(context.Background(), 404)
	if !errors.Is(err, e.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestListCategoriesCacheAside(t *testing.T) {
	repo := &fakeCatalogRepo{categories: []string{"Улуны", "Шу пуэры"}}
	cache := newFakeCacheRepo()
	uc := NewCatalogUC(repo, cache, nopLogger{})

	categories, err := uc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 || repo.catCalls != 1 {
		t.Fatalf("expected db read with 2 categories, got %v (calls %d)", categories, repo.catCalls)
	}

	waitFilled(t, cache)

	if _, err := uc.ListCategories(context.Background()); err != nil {
		t.Fatalf("ListCategories from cache: %v", err)
	}
	if repo.catCalls != 1 {
		t.Fatalf("cached categories must not touch db, got %d reads", repo.catCalls)
	}
}

func TestListCategoriesEmptyCachedList(t *testing.T) {
	repo := &fakeCatalogRepo{categories: []string{}}
	cache := newFakeCacheRepo()
	cache.hasCategories = true
	uc := NewCatalogUC(repo, cache, nopLogger{})

	categories, err := uc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 0 || repo.catCalls != 0 {
		t.Fatalf("empty cached list must be served as-is, got %v (calls %d)", categories, repo.catCalls)
	}
}
