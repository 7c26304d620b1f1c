package model

import "github.com/shopspring/decimal"

// DashboardStats aggregates the admin dashboard counters
type DashboardStats struct {
	ActiveRetailers     int64            `json:"activeRetailers"`
	ActiveCatalogs      int64            `json:"activeCatalogs"`
	Products            int64            `json:"products"`
	OrdersByStatus      map[string]int64 `json:"ordersByStatus"`
	PurchaseOrders      int64            `json:"purchaseOrders"`
	PurchaseOrderValue  decimal.Decimal  `json:"purchaseOrderValue"`
	PendingContactLeads int64            `json:"pendingContactLeads"`
}
