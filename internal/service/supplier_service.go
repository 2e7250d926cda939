package service

import (
	"context"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/logger"
)

type SupplierService interface {
	CreateSupplier(ctx context.Context, p *model.Principal, req CreateSupplierRequest) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, p *model.Principal, supplierID int64, req UpdateSupplierRequest) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, p *model.Principal, supplierID int64) error
	GetSupplier(ctx context.Context, p *model.Principal, supplierID int64) (*model.Supplier, error)
	SearchSupplier(ctx context.Context, p *model.Principal, name string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, p *model.Principal) ([]model.Supplier, error)
}

type CreateSupplierRequest struct {
	SupplierName  string  `json:"supplier_name" validate:"required,max=255"`
	SupplierPhone *string `json:"supplier_phone" validate:"omitempty,max=20"`
	SupplierEmail *string `json:"supplier_email" validate:"omitempty,email"`
	SupplierCity  *string `json:"supplier_city" validate:"omitempty,max=100"`
}

type UpdateSupplierRequest struct {
	SupplierName  *string `json:"supplier_name" validate:"omitempty,min=1,max=255"`
	SupplierPhone *string `json:"supplier_phone" validate:"omitempty,max=20"`
	SupplierEmail *string `json:"supplier_email" validate:"omitempty,email"`
	SupplierCity  *string `json:"supplier_city" validate:"omitempty,max=100"`
}

type supplierService struct {
	acc  *store.Accessor
	logg *logger.Logger
}

func NewSupplierService(acc *store.Accessor, logg *logger.Logger) SupplierService {
	return &supplierService{acc: acc, logg: loggerOrNop(logg)}
}

func (s *supplierService) CreateSupplier(ctx context.Context, p *model.Principal, req CreateSupplierRequest) (*model.Supplier, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourceSupplier)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	fields := map[string]any{"supplier_name": req.SupplierName}
	setIfPresent(fields, "supplier_phone", req.SupplierPhone)
	setIfPresent(fields, "supplier_email", req.SupplierEmail)
	setIfPresent(fields, "supplier_city", req.SupplierCity)

	id, err := s.acc.Insert(ctx, store.TableSuppliers, fields)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "supplier_id", id), "supplier created")
	return s.view(ctx, id)
}

func (s *supplierService) UpdateSupplier(ctx context.Context, p *model.Principal, supplierID int64, req UpdateSupplierRequest) (*model.Supplier, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionUpdate, policy.ResourceSupplier)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if _, err := s.view(ctx, supplierID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	setIfPresent(fields, "supplier_name", req.SupplierName)
	setIfPresent(fields, "supplier_phone", req.SupplierPhone)
	setIfPresent(fields, "supplier_email", req.SupplierEmail)
	setIfPresent(fields, "supplier_city", req.SupplierCity)
	if err := s.acc.Update(ctx, store.TableSuppliers, "supplier_id", supplierID, fields); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "supplier_id", supplierID), "supplier updated")
	return s.view(ctx, supplierID)
}

// DeleteSupplier removes the supplier; its orders keep existing with no supplier.
func (s *supplierService) DeleteSupplier(ctx context.Context, p *model.Principal, supplierID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourceSupplier)
	if err != nil {
		return err
	}
	if err := s.acc.Delete(ctx, store.TableSuppliers, "supplier_id", supplierID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "supplier_id", supplierID), "supplier deleted")
	return nil
}

func (s *supplierService) GetSupplier(ctx context.Context, p *model.Principal, supplierID int64) (*model.Supplier, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceSupplier)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, supplierID)
}

func (s *supplierService) SearchSupplier(ctx context.Context, p *model.Principal, name string) (*model.Supplier, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceSupplier)
	if err != nil {
		return nil, err
	}
	supplier, found, err := store.ViewAs[model.Supplier](ctx, s.acc, store.TableSuppliers, "supplier_name", name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSupplierNotFound.WithDetails(map[string]any{"supplier_name": name})
	}
	return supplier, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, p *model.Principal) ([]model.Supplier, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceSupplier)
	if err != nil {
		return nil, err
	}
	var suppliers []model.Supplier
	if err := s.acc.ListInto(ctx, store.TableSuppliers, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *supplierService) view(ctx context.Context, supplierID int64) (*model.Supplier, error) {
	supplier, found, err := store.ViewAs[model.Supplier](ctx, s.acc, store.TableSuppliers, "supplier_id", supplierID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSupplierNotFound.WithDetails(map[string]any{"supplier_id": supplierID})
	}
	return supplier, nil
}
