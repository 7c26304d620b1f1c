package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreateProduct = "CREATE_PRODUCT"
	ActionUpdateProduct = "UPDATE_PRODUCT"
	ActionDeleteProduct = "DELETE_PRODUCT"

	ActionCreatePriority = "CREATE_PRIORITY"
	ActionUpdatePriority = "UPDATE_PRIORITY"
	ActionDeletePriority = "DELETE_PRIORITY"

	ActionCreateCatalog      = "CREATE_CATALOG"
	ActionUpdateCatalog      = "UPDATE_CATALOG"
	ActionDeleteCatalog      = "DELETE_CATALOG"
	ActionSetCatalogProducts = "SET_CATALOG_PRODUCTS"
	ActionSyncCatalogAccess  = "SYNC_CATALOG_ACCESS"

	ActionCreateRetailer        = "CREATE_RETAILER"
	ActionUpdateRetailer        = "UPDATE_RETAILER"
	ActionDeleteRetailer        = "DELETE_RETAILER"
	ActionAssignPriorities      = "ASSIGN_PRIORITIES"
	ActionSetCatalogOverrides   = "SET_CATALOG_OVERRIDES"
	ActionUpdateOrderStatus     = "UPDATE_ORDER_STATUS"
	ActionGeneratePurchaseOrder = "GENERATE_PURCHASE_ORDER"
	ActionUpdatePOStatus        = "UPDATE_PO_STATUS"
)

// AuditLog tracks Who, What, and When for admin changes
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Actor      string         `gorm:"type:varchar(255);index" json:"actor"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entityId"`
	EntityName string         `gorm:"type:varchar(255)" json:"entityName,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
}
