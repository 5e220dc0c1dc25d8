package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/cache"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/repository"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
)

// ProductService serves mirrored products and their derived per-product
// data, with a read-through cache in front of the aggregate queries.
type ProductService struct {
	productRepo *repository.ProductRepository
	cache       *cache.ProductCache
}

// NewProductService constructs a ProductService. cache may be nil.
func NewProductService(productRepo *repository.ProductRepository, productCache *cache.ProductCache) *ProductService {
	return &ProductService{productRepo: productRepo, cache: productCache}
}

// List returns one page of products plus the total count.
func (s *ProductService) List(page, limit int) ([]models.Product, int, error) {
	return s.productRepo.GetAllPaged(page, limit)
}

// GetAmounts returns the quantity on hand per characteristic for one
// product.
func (s *ProductService) GetAmounts(ctx context.Context, refKey string) ([]models.ProductAmount, error) {
	if s.cache != nil {
		if amounts, ok := s.cache.GetAmounts(ctx, refKey); ok {
			return amounts, nil
		}
	}

	if err := s.ensureExists(refKey); err != nil {
		return nil, err
	}

	amounts, err := s.productRepo.GetAmounts(refKey)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetAmounts(ctx, refKey, amounts); err != nil {
			log.Warn().Err(err).Str("product", refKey).Msg("failed to cache amounts")
		}
	}
	return amounts, nil
}

// GetPrices returns the latest price per characteristic for one product,
// paired with the quantity on hand.
func (s *ProductService) GetPrices(ctx context.Context, refKey string) ([]models.ProductPrice, error) {
	if s.cache != nil {
		if prices, ok := s.cache.GetPrices(ctx, refKey); ok {
			return prices, nil
		}
	}

	if err := s.ensureExists(refKey); err != nil {
		return nil, err
	}

	prices, err := s.productRepo.GetPrices(refKey)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPrices(ctx, refKey, prices); err != nil {
			log.Warn().Err(err).Str("product", refKey).Msg("failed to cache prices")
		}
	}
	return prices, nil
}

func (s *ProductService) ensureExists(refKey string) error {
	product, err := s.productRepo.GetByRefKey(refKey)
	if err != nil {
		return err
	}
	if product == nil {
		return utils.ErrProductNotFound
	}
	return nil
}
