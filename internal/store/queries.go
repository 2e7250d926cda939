package store

// Fixed statements used by the business rules and reports. Every identifier
// here is part of the schema whitelist; values are always bound.
const (
	StmtWarehouseStockTotal Statement = `SELECT COALESCE(SUM(stock_left), 0) AS total FROM inventory WHERE warehouse_id = @warehouse_id`

	StmtInventoryByProductWarehouse Statement = `SELECT * FROM inventory WHERE product_id = @product_id AND warehouse_id = @warehouse_id LIMIT 1`

	StmtOrderTotal Statement = `SELECT COALESCE(SUM(quantity_ordered * unit_price), 0) AS total FROM order_items WHERE order_id = @order_id`

	StmtOrderPaid Statement = `SELECT COALESCE(SUM(amount_paid), 0) AS total FROM payments WHERE order_id = @order_id`

	// Items and payments are aggregated separately so neither side multiplies the other.
	StmtOrderBalances Statement = `
SELECT o.order_id, s.supplier_name, o.order_date, o.order_status,
       COALESCE(i.total, 0) AS order_total,
       COALESCE(p.paid, 0) AS paid
FROM orders o
LEFT JOIN suppliers s ON s.supplier_id = o.supplier_id
LEFT JOIN (
    SELECT order_id, SUM(quantity_ordered * unit_price) AS total
    FROM order_items
    GROUP BY order_id
) i ON i.order_id = o.order_id
LEFT JOIN (
    SELECT order_id, SUM(amount_paid) AS paid
    FROM payments
    GROUP BY order_id
) p ON p.order_id = o.order_id
ORDER BY o.order_date DESC, o.order_id DESC`

	StmtOrderSummaries Statement = `
SELECT o.order_id, s.supplier_name, o.order_date, o.order_status, u.username AS created_by
FROM orders o
LEFT JOIN suppliers s ON s.supplier_id = o.supplier_id
LEFT JOIN users u ON u.user_id = o.created_by
ORDER BY o.order_date DESC, o.order_id DESC`

	StmtOrdersBySupplierName Statement = `
SELECT o.order_id, s.supplier_name, o.order_date, o.order_status, u.username AS created_by
FROM orders o
JOIN suppliers s ON s.supplier_id = o.supplier_id
LEFT JOIN users u ON u.user_id = o.created_by
WHERE s.supplier_name = @supplier_name
ORDER BY o.order_date DESC, o.order_id DESC`

	StmtOrderItemLines Statement = `
SELECT oi.order_item_id, p.product_name, oi.quantity_ordered, oi.unit_price,
       oi.quantity_ordered * oi.unit_price AS total
FROM order_items oi
JOIN products p ON p.product_id = oi.product_id
WHERE oi.order_id = @order_id
ORDER BY oi.order_item_id`

	StmtPaymentHistory Statement = `
SELECT * FROM payments
WHERE order_id = @order_id
ORDER BY payment_date DESC, payment_id DESC`

	StmtStockMovementReport Statement = `
SELECT sm.movement_id, p.product_name, w.warehouse_city, sm.movement_type, sm.quantity,
       sm.movement_date, u.username AS performed_by
FROM stock_movement sm
JOIN products p ON p.product_id = sm.product_id
JOIN warehouse w ON w.warehouse_id = sm.warehouse_id
LEFT JOIN users u ON u.user_id = sm.performed_by
ORDER BY sm.movement_date DESC, sm.movement_id DESC`

	StmtInventoryStats Statement = `
SELECT
    (SELECT COUNT(*) FROM products) AS total_products,
    (SELECT COUNT(*) FROM warehouse) AS total_warehouses,
    (SELECT COALESCE(SUM(stock_left), 0) FROM inventory) AS total_stock,
    (SELECT COALESCE(SUM(i.stock_left * p.unit_price), 0)
       FROM inventory i JOIN products p ON p.product_id = i.product_id) AS stock_value`

	StmtLowStockProducts Statement = `
SELECT p.product_id, p.product_name, p.reorder_level, COALESCE(SUM(i.stock_left), 0) AS stock_left
FROM products p
LEFT JOIN inventory i ON i.product_id = p.product_id
WHERE p.reorder_level IS NOT NULL
GROUP BY p.product_id, p.product_name, p.reorder_level
HAVING COALESCE(SUM(i.stock_left), 0) < p.reorder_level
ORDER BY p.product_name`

	StmtCountUsers Statement = `SELECT COUNT(*) AS total FROM users`
)
