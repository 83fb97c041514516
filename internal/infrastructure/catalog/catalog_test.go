package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/chunwon/market/services/recommendation-service/internal/infrastructure/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ProductLookup(t *testing.T) {
	ctx := context.Background()
	c := catalog.NewSeeded()

	p, err := c.Product(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "주방", p.CategoryID)

	_, err = c.Product(ctx, 999)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestMemory_SeedMatchesStorefrontAssortment(t *testing.T) {
	ctx := context.Background()
	c := catalog.NewSeeded()

	// Spot checks against the demo assortment the frontend renders.
	want := []domain.Product{
		{ID: 6, Name: "실리콘 주방장갑 내열 오븐장갑", Price: 3000, ImageURL: "/placeholder-product.jpg", Rating: 4.3, ReviewCount: 345, CategoryID: "주방"},
		{ID: 7, Name: "보습 핸드크림 시어버터 50ml", Price: 2000, ImageURL: "/placeholder-product.jpg", Rating: 4.7, ReviewCount: 1567, CategoryID: "뷰티"},
		{ID: 11, Name: "천원마켓 마스킹 테이프 세트 데코", Price: 1000, ImageURL: "/placeholder-product.jpg", Rating: 4.9, ReviewCount: 3210, CategoryID: "문구"},
		{ID: 12, Name: "스프레이 물병 공병 화장품 용기", Price: 1000, ImageURL: "/placeholder-product.jpg", Rating: 4.2, ReviewCount: 789, CategoryID: "뷰티"},
	}
	for _, w := range want {
		got, err := c.Product(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestMemory_BatchSkipsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	c := catalog.NewSeeded()

	products, err := c.Products(ctx, []int64{2, 999, 5})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2), products[0].ID)
	assert.Equal(t, int64(5), products[1].ID)
}

func TestMemory_AllIsSortedAndCopied(t *testing.T) {
	ctx := context.Background()
	c := catalog.NewSeeded()

	all, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 12)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	// Mutating the returned slice must not affect the catalog.
	all[0].Name = "변조"
	again, err := c.All(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "변조", again[0].Name)
}

func TestClient_ProductAndNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/3":
			_ = json.NewEncoder(w).Encode(domain.Product{ID: 3, Name: "청소포", CategoryID: "청소"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := catalog.NewClient(srv.URL, srv.Client())

	p, err := c.Product(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "청소포", p.Name)

	_, err = c.Product(context.Background(), 4)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestClient_BatchPostsIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/products/batch", r.URL.Path)

		var req struct {
			ProductIDs []int64 `json:"productIds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int64{1, 2}, req.ProductIDs)

		_ = json.NewEncoder(w).Encode([]domain.Product{{ID: 1}, {ID: 2}})
	}))
	defer srv.Close()

	c := catalog.NewClient(srv.URL, srv.Client())
	products, err := c.Products(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestClient_TimeoutMapsToDependencyError(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := catalog.NewClient(srv.URL, &http.Client{Timeout: 50 * time.Millisecond})

	_, err := c.Product(context.Background(), 1)
	assert.True(t, errors.Is(err, domain.ErrDependencyTimeout))
}
