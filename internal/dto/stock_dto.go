package dto

type CreditStockRequest struct {
	ProductID   string  `json:"product_id"   validate:"required,uuid"`
	SizeID      *string `json:"size_id"      validate:"omitempty,uuid"`
	WarehouseID *string `json:"warehouse_id" validate:"omitempty,uuid"`
	Quantity    int     `json:"quantity"     validate:"required,gt=0"`
	Reason      string  `json:"reason"`
}

type TransferStockRequest struct {
	FromStockEntryID string  `json:"from_stock_entry_id" validate:"required,uuid"`
	ToProductID      string  `json:"to_product_id"       validate:"required,uuid"`
	ToSizeID         *string `json:"to_size_id"          validate:"omitempty,uuid"`
	ToWarehouseID    *string `json:"to_warehouse_id"     validate:"omitempty,uuid"`
	Quantity         int     `json:"quantity"            validate:"required,gt=0"`
	Reason           string  `json:"reason"`
}

type StockMovementFilter struct {
	StockEntryID string `form:"stock_entry_id"`
	Kind         string `form:"kind"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

type StockEntryResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	SizeID      *string `json:"size_id,omitempty"`
	WarehouseID *string `json:"warehouse_id,omitempty"`
	Quantity    int     `json:"quantity"`
}

type StockMovementResponse struct {
	ID             string `json:"id"`
	StockEntryID   string `json:"stock_entry_id"`
	Kind           string `json:"kind"`
	Quantity       int    `json:"quantity"`
	QuantityBefore int    `json:"quantity_before"`
	QuantityAfter  int    `json:"quantity_after"`
	Reason         string `json:"reason,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
