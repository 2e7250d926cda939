package service

import (
	"context"

	"github.com/shopspring/decimal"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/logger"
)

type ProductService interface {
	CreateProduct(ctx context.Context, p *model.Principal, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Principal, productID int64, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, p *model.Principal, productID int64) error
	GetProduct(ctx context.Context, p *model.Principal, productID int64) (*model.Product, error)
	SearchProduct(ctx context.Context, p *model.Principal, name string) (*model.Product, error)
	ListProducts(ctx context.Context, p *model.Principal) ([]model.Product, error)
}

type CreateProductRequest struct {
	ProductName  string          `json:"product_name" validate:"required,max=255"`
	Category     *string         `json:"category" validate:"omitempty,max=100"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	IsAvailable  *bool           `json:"is_available"`
	ReorderLevel *int            `json:"reorder_level" validate:"omitempty,gte=0"`
}

type UpdateProductRequest struct {
	ProductName  *string          `json:"product_name" validate:"omitempty,min=1,max=255"`
	Category     *string          `json:"category" validate:"omitempty,max=100"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	IsAvailable  *bool            `json:"is_available"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,gte=0"`
}

type productService struct {
	acc  *store.Accessor
	hub  Broadcaster
	logg *logger.Logger
}

func NewProductService(acc *store.Accessor, hub Broadcaster, logg *logger.Logger) ProductService {
	return &productService{acc: acc, hub: broadcasterOrNop(hub), logg: loggerOrNop(logg)}
}

func (s *productService) CreateProduct(ctx context.Context, p *model.Principal, req CreateProductRequest) (*model.Product, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourceProduct)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.UnitPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}

	fields := map[string]any{
		"product_name": req.ProductName,
		"unit_price":   req.UnitPrice.Round(2),
	}
	setIfPresent(fields, "category", req.Category)
	setIfPresent(fields, "is_available", req.IsAvailable)
	setIfPresent(fields, "reorder_level", req.ReorderLevel)

	id, err := s.acc.Insert(ctx, store.TableProducts, fields)
	if err != nil {
		return nil, err
	}
	product, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", id), "product created")
	s.hub.Publish(policy.ResourceProduct, map[string]any{
		"type":    "catalog_update",
		"action":  "product_created",
		"product": product,
		"user":    actor(p),
	})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, p *model.Principal, productID int64, req UpdateProductRequest) (*model.Product, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionUpdate, policy.ResourceProduct)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if _, err := s.view(ctx, productID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	setIfPresent(fields, "product_name", req.ProductName)
	setIfPresent(fields, "category", req.Category)
	setIfPresent(fields, "is_available", req.IsAvailable)
	setIfPresent(fields, "reorder_level", req.ReorderLevel)
	if req.UnitPrice != nil {
		fields["unit_price"] = req.UnitPrice.Round(2)
	}
	if err := s.acc.Update(ctx, store.TableProducts, "product_id", productID, fields); err != nil {
		return nil, err
	}

	product, err := s.view(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", productID), "product updated")
	s.hub.Publish(policy.ResourceProduct, map[string]any{
		"type":    "catalog_update",
		"action":  "product_updated",
		"product": product,
		"user":    actor(p),
	})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, p *model.Principal, productID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourceProduct)
	if err != nil {
		return err
	}
	if err := s.acc.Delete(ctx, store.TableProducts, "product_id", productID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", productID), "product deleted")
	return nil
}

func (s *productService) GetProduct(ctx context.Context, p *model.Principal, productID int64) (*model.Product, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceProduct)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, productID)
}

func (s *productService) SearchProduct(ctx context.Context, p *model.Principal, name string) (*model.Product, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceProduct)
	if err != nil {
		return nil, err
	}
	product, found, err := store.ViewAs[model.Product](ctx, s.acc, store.TableProducts, "product_name", name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrProductNotFound.WithDetails(map[string]any{"product_name": name})
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, p *model.Principal) ([]model.Product, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceProduct)
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := s.acc.ListInto(ctx, store.TableProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *productService) view(ctx context.Context, productID int64) (*model.Product, error) {
	product, found, err := store.ViewAs[model.Product](ctx, s.acc, store.TableProducts, "product_id", productID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrProductNotFound.WithDetails(map[string]any{"product_id": productID})
	}
	return product, nil
}
