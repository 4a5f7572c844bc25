package fdc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriscope/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com/fdc")

	assert.True(t, client.Configured())
	assert.Equal(t, "https://api.example.com/fdc", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.Nil(t, client.httpClient.Logger)

	assert.False(t, NewClient("", "https://api.example.com").Configured())
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("maps hits and pagination", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/foods/search", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "test-api-key", q.Get("api_key"))
			assert.Equal(t, "milk", q.Get("query"))
			assert.Equal(t, "25", q.Get("pageSize"))
			assert.Equal(t, "2", q.Get("pageNumber"))

			json.NewEncoder(w).Encode(map[string]any{
				"totalHits":   120,
				"currentPage": 2,
				"totalPages":  5,
				"foods": []map[string]any{
					{"fdcId": 534358, "description": "Whole milk", "brandOwner": "Acme Dairy", "gtinUpc": "0123456789012"},
					{"fdcId": 534359, "description": "Skim milk"},
				},
			})
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		page, err := client.Search(ctx, "milk", 25, 2)
		require.NoError(t, err)

		assert.Equal(t, 120, page.TotalHits)
		assert.Equal(t, 2, page.CurrentPage)
		assert.Equal(t, 5, page.TotalPages)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "534358", page.Items[0].ID)
		assert.Equal(t, domain.SourceFDC, page.Items[0].Source)
		assert.Equal(t, "Acme Dairy", page.Items[0].Brand)
		assert.Equal(t, "0123456789012", page.Items[0].Barcode)
		assert.Empty(t, page.Items[1].Brand)
	})

	t.Run("clamps page size to the API bounds", func(t *testing.T) {
		var gotPageSize string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPageSize = r.URL.Query().Get("pageSize")
			json.NewEncoder(w).Encode(map[string]any{"foods": []any{}})
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)

		_, err := client.Search(ctx, "milk", 9999, 1)
		require.NoError(t, err)
		assert.Equal(t, "200", gotPageSize)

		_, err = client.Search(ctx, "milk", 0, 1)
		require.NoError(t, err)
		assert.Equal(t, "1", gotPageSize)
	})

	t.Run("non-success status never leaks the credential", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient("super-secret-key", server.URL)
		_, err := client.Search(ctx, "milk", 10, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderFailure)
		assert.NotContains(t, err.Error(), "super-secret-key")
	})

	t.Run("unconfigured client fails before any I/O", func(t *testing.T) {
		client := NewClient("", "http://127.0.0.1:1")
		_, err := client.Search(ctx, "milk", 10, 1)
		assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	})
}

func TestFetchFood(t *testing.T) {
	ctx := context.Background()

	t.Run("maps the nested nutrient shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/food/534358", r.URL.Path)
			assert.Equal(t, "abridged", r.URL.Query().Get("format"))
			json.NewEncoder(w).Encode(map[string]any{
				"fdcId":       534358,
				"description": "Whole milk",
				"foodNutrients": []map[string]any{
					{"nutrient": map[string]any{"id": 1008, "name": "Energy", "unitName": "kcal"}, "amount": 61.0},
					{"nutrient": map[string]any{"id": 1003, "name": "Protein", "unitName": "g"}, "amount": 3.15},
				},
			})
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		details, err := client.FetchFood(ctx, "534358", "abridged", nil)
		require.NoError(t, err)

		assert.Equal(t, "534358", details.ID)
		assert.Equal(t, domain.SourceFDC, details.Source)
		require.Len(t, details.FoodNutrients, 2)
		assert.Equal(t, 1008, details.FoodNutrients[0].ID)
		assert.Equal(t, "Energy", details.FoodNutrients[0].Name)
		assert.Equal(t, 61.0, details.FoodNutrients[0].Amount)

		// Label derived from nutrient names when the API omits it
		require.NotNil(t, details.LabelNutrients)
		require.NotNil(t, details.LabelNutrients.Calories)
		assert.Equal(t, 61.0, details.LabelNutrients.Calories.Value)
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		_, err := client.FetchFood(ctx, "99", "", nil)
		assert.ErrorIs(t, err, domain.ErrFoodNotFound)
	})

	t.Run("non-numeric id rejected before dispatch", func(t *testing.T) {
		client := NewClient("test-api-key", "http://127.0.0.1:1")
		_, err := client.FetchFood(ctx, "abc", "", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestFetchFoods(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the id list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/foods", r.URL.Path)
			var body map[string][]int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []int{1, 2}, body["fdcIds"])
			json.NewEncoder(w).Encode([]map[string]any{
				{"fdcId": 1, "description": "One"},
				{"fdcId": 2, "description": "Two"},
			})
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		foods, err := client.FetchFoods(ctx, []string{"1", "2"})
		require.NoError(t, err)
		require.Len(t, foods, 2)
		assert.Equal(t, "Two", foods[1].Description)
	})

	t.Run("rejects oversized batches before dispatch", func(t *testing.T) {
		client := NewClient("test-api-key", "http://127.0.0.1:1")
		ids := make([]string, MaxBatchIDs+1)
		for i := range ids {
			ids[i] = "1"
		}
		_, err := client.FetchFoods(ctx, ids)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("rejects empty batches", func(t *testing.T) {
		client := NewClient("test-api-key", "http://127.0.0.1:1")
		_, err := client.FetchFoods(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct{ in, want string }{
		{"milk & honey", "milk and honey"},
		{"100% juice", "100 juice"},
		{"  plain   query ", "plain query"},
	}
	for _, tt := range tests {
		if got := sanitizeQuery(tt.in); got != tt.want {
			t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPickBrand(t *testing.T) {
	assert.Equal(t, "BrandName", pickBrand("BrandName", "Owner"))
	assert.Equal(t, "Owner", pickBrand("  ", "Owner"))
	assert.True(t, strings.TrimSpace(pickBrand("", "")) == "")
}
