package handler

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Auth      *AuthHandler
	Inventory *InventoryHandler
	Product   *ProductHandler
	Warehouse *WarehouseHandler
	Supplier  *SupplierHandler
	Order     *OrderHandler
	Payment   *PaymentHandler
	User      *UserHandler
	Report    *ReportHandler
}

// Register mounts every route under api. Everything except login goes through requireAuth;
// per-operation permissions are enforced by the services.
func (h Handlers) Register(api fiber.Router, requireAuth fiber.Handler) {
	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Get("/me", requireAuth, h.Auth.Profile)
	auth.Post("/change-password", requireAuth, h.Auth.ChangePassword)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/inventory", h.Inventory.ListInventory)
	protected.Get("/inventory/search", h.Inventory.SearchInventory)
	protected.Get("/inventory/:id", h.Inventory.GetInventory)
	protected.Post("/inventory", h.Inventory.AddInventory)
	protected.Put("/inventory/:id", h.Inventory.UpdateInventory)
	protected.Delete("/inventory/:id", h.Inventory.DeleteInventory)

	protected.Get("/products", h.Product.ListProducts)
	protected.Get("/products/search", h.Product.SearchProduct)
	protected.Get("/products/:id", h.Product.GetProduct)
	protected.Post("/products", h.Product.CreateProduct)
	protected.Put("/products/:id", h.Product.UpdateProduct)
	protected.Delete("/products/:id", h.Product.DeleteProduct)

	protected.Get("/warehouses", h.Warehouse.ListWarehouses)
	protected.Get("/warehouses/search", h.Warehouse.SearchWarehouse)
	protected.Get("/warehouses/:id", h.Warehouse.GetWarehouse)
	protected.Post("/warehouses", h.Warehouse.CreateWarehouse)
	protected.Put("/warehouses/:id", h.Warehouse.UpdateWarehouse)
	protected.Delete("/warehouses/:id", h.Warehouse.DeleteWarehouse)

	protected.Get("/suppliers", h.Supplier.ListSuppliers)
	protected.Get("/suppliers/search", h.Supplier.SearchSupplier)
	protected.Get("/suppliers/:id", h.Supplier.GetSupplier)
	protected.Post("/suppliers", h.Supplier.CreateSupplier)
	protected.Put("/suppliers/:id", h.Supplier.UpdateSupplier)
	protected.Delete("/suppliers/:id", h.Supplier.DeleteSupplier)

	protected.Get("/orders", h.Order.GetOrders)
	protected.Get("/orders/:id", h.Order.GetOrder)
	protected.Post("/orders", h.Order.CreateOrder)
	protected.Put("/orders/:id/status", h.Order.UpdateOrderStatus)
	protected.Delete("/orders/:id", h.Order.DeleteOrder)
	protected.Get("/orders/:id/items", h.Order.GetOrderItems)
	protected.Post("/orders/:id/items", h.Order.AddOrderItem)
	protected.Delete("/order-items/:id", h.Order.DeleteOrderItem)
	protected.Get("/orders/:id/payments", h.Payment.GetOrderPayments)

	protected.Post("/payments", h.Payment.RecordPayment)
	protected.Get("/payments/:id", h.Payment.GetPayment)
	protected.Delete("/payments/:id", h.Payment.DeletePayment)

	protected.Get("/users", h.User.GetUsers)
	protected.Get("/users/:id", h.User.GetUser)
	protected.Post("/users", h.User.CreateUser)
	protected.Put("/users/:id", h.User.UpdateUser)
	protected.Put("/users/:id/password", h.User.ResetPassword)
	protected.Delete("/users/:id", h.User.DeleteUser)

	protected.Get("/dashboard/stats", h.Report.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", h.Report.GetStockMovement)
	protected.Get("/dashboard/low-stock", h.Report.GetLowStock)
	protected.Get("/reports/order-balances", h.Order.GetBalanceReport)
}
