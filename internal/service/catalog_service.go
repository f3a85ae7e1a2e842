// internal/service/catalog_service.go
package service

import (
	"context"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/repository"
)

// CatalogService serves product lookups and the category code tables.
type CatalogService struct {
	catalog repository.CatalogRepository
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.catalog.ListProducts(ctx, filter)
}

// GetProduct returns a product and its variants.
func (s *CatalogService) GetProduct(ctx context.Context, productCode string) (*domain.Product, []domain.Variant, error) {
	product, err := s.catalog.GetProduct(ctx, productCode)
	if err != nil {
		return nil, nil, err
	}
	variants, err := s.catalog.ListVariants(ctx, productCode)
	if err != nil {
		return nil, nil, err
	}
	return product, variants, nil
}

func (s *CatalogService) ListReferrers(ctx context.Context) ([]domain.Referrer, error) {
	return s.catalog.ListReferrers(ctx)
}

// CodeTables is the static category vocabulary clients build filter
// dropdowns from.
type CodeTables struct {
	Styles   []domain.StyleChoice            `json:"styles"`
	Types    map[string][]domain.StyleChoice `json:"types"`
	Subtypes map[string][]domain.StyleChoice `json:"subtypes"`
	Ages     []domain.StyleChoice            `json:"ages"`
	Genders  []domain.StyleChoice            `json:"genders"`
	Sizes    []string                        `json:"sizes"`
}

func (s *CatalogService) CodeTables() CodeTables {
	return CodeTables{
		Styles:   domain.StyleChoices,
		Types:    domain.TypeChoicesByStyle,
		Subtypes: domain.SubtypeChoicesByType,
		Ages:     domain.AgeChoices,
		Genders:  domain.GenderChoices,
		Sizes:    domain.SizeChoices,
	}
}
