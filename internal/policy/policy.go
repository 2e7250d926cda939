// Package policy decides which roles may perform which action on which resource.
package policy

import (
	"go-warehouse-ms/internal/model"
	pkgerrors "go-warehouse-ms/pkg/errors"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceInventory     Resource = "inventory"
	ResourceProduct       Resource = "product"
	ResourceWarehouse     Resource = "warehouse"
	ResourceSupplier      Resource = "supplier"
	ResourceOrder         Resource = "order"
	ResourceOrderItem     Resource = "order_item"
	ResourcePayment       Resource = "payment"
	ResourceStockMovement Resource = "stock_movement"
	ResourceUser          Resource = "user"
)

var (
	ErrUnauthenticated = pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	ErrDenied          = pkgerrors.New(pkgerrors.CodeForbidden, "action not permitted for role")
)

type roleSet map[model.Role]struct{}

func roles(rs ...model.Role) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

var (
	everyone     = roles(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	managers     = roles(model.RoleAdmin, model.RoleManager)
	adminsOnly   = roles(model.RoleAdmin)
	catalogRules = map[Action]roleSet{
		ActionView:   everyone,
		ActionCreate: managers,
		ActionUpdate: managers,
		ActionDelete: adminsOnly,
	}
)

// permissions is the whole access table. Anything absent is denied.
var permissions = map[Resource]map[Action]roleSet{
	ResourceInventory: catalogRules,
	ResourceProduct:   catalogRules,
	ResourceWarehouse: catalogRules,
	ResourceSupplier:  catalogRules,
	ResourceOrder: {
		ActionView:   managers,
		ActionCreate: managers,
		ActionUpdate: managers,
		ActionDelete: adminsOnly,
	},
	ResourceOrderItem: {
		ActionView:   managers,
		ActionCreate: managers,
		ActionUpdate: managers,
		ActionDelete: managers,
	},
	ResourcePayment: {
		ActionView:   managers,
		ActionCreate: managers,
		ActionDelete: adminsOnly,
	},
	ResourceStockMovement: {
		ActionView: managers,
	},
	ResourceUser: {
		ActionView:   adminsOnly,
		ActionCreate: adminsOnly,
		ActionUpdate: adminsOnly,
		ActionDelete: adminsOnly,
	},
}

// Authorize returns nil when principal may perform action on resource.
func Authorize(principal *model.Principal, action Action, resource Resource) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	if Allowed(principal.Role, action, resource) {
		return nil
	}
	return ErrDenied.WithDetails(map[string]any{
		"role":     string(principal.Role),
		"action":   string(action),
		"resource": string(resource),
	})
}

// Allowed reports whether role may perform action on resource.
func Allowed(role model.Role, action Action, resource Resource) bool {
	_, ok := permissions[resource][action][role]
	return ok
}

// Permissions lists "resource:action" codes granted to role, for display in sessions.
func Permissions(role model.Role) []string {
	var codes []string
	for _, resource := range []Resource{
		ResourceInventory, ResourceProduct, ResourceWarehouse, ResourceSupplier,
		ResourceOrder, ResourceOrderItem, ResourcePayment, ResourceStockMovement, ResourceUser,
	} {
		for _, action := range []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
			if Allowed(role, action, resource) {
				codes = append(codes, string(resource)+":"+string(action))
			}
		}
	}
	return codes
}
