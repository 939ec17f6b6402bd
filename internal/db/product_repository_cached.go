package db

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/ecomm-labs/ecommerce-backend/internal/cache"
	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// CachedProductRepository is a read-through cache over ProductRepository.
// Mutations write to the database first and then invalidate.
type CachedProductRepository struct {
	repo  *ProductRepository
	cache *cache.RedisCache
}

func NewCachedProductRepository(repo *ProductRepository, cache *cache.RedisCache) *CachedProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
	}
}

// Cache key helpers
func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func allProductsKey() string {
	return "products:all"
}

// GetAll returns all products (with caching)
func (r *CachedProductRepository) GetAll(ctx context.Context, limit int) ([]models.Product, error) {
	cacheKey := allProductsKey()

	var products []models.Product
	err := r.cache.Get(ctx, cacheKey, &products)
	if err == nil {
		log.Println("📦 Cache HIT: all products")
		return products, nil
	}

	log.Println("💾 Cache MISS: all products - fetching from DB")
	products, err = r.repo.GetAll(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, products); err != nil {
		log.Printf("⚠️ Failed to cache products: %v", err)
	}

	return products, nil
}

// GetByID returns a single product (with caching)
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	cacheKey := productKey(id)

	var product models.Product
	err := r.cache.Get(ctx, cacheKey, &product)
	if err == nil {
		log.Printf("📦 Cache HIT: product %s", id)
		return &product, nil
	}

	if err != redis.Nil {
		log.Printf("⚠️ Cache error: %v", err)
	}

	log.Printf("💾 Cache MISS: product %s - fetching from DB", id)
	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, nil
	}

	if err := r.cache.Set(ctx, cacheKey, p); err != nil {
		log.Printf("⚠️ Failed to cache product: %v", err)
	}

	return p, nil
}

// Create inserts a new product and invalidates the list cache.
func (r *CachedProductRepository) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product, err := r.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Delete(ctx, allProductsKey()); err != nil {
		log.Printf("⚠️ Failed to invalidate cache: %v", err)
	}
	log.Println("🗑️ Cache invalidated: all products")

	return product, nil
}

// Update overwrites a product and invalidates both caches.
func (r *CachedProductRepository) Update(ctx context.Context, id string, input models.ProductInput) (*models.Product, error) {
	product, err := r.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	r.cache.Delete(ctx, productKey(id))
	r.cache.Delete(ctx, allProductsKey())
	log.Printf("🗑️ Cache invalidated: product %s and all products", id)

	return product, nil
}

// Delete removes a product, invalidates caches and returns the removed record.
func (r *CachedProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	product, err := r.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Delete(ctx, productKey(id))
	r.cache.Delete(ctx, allProductsKey())
	log.Printf("🗑️ Cache invalidated: product %s and all products", id)

	return product, nil
}
