package model

import "time"

// ActivityLogEntry is an immutable audit record of an administrative action.
type ActivityLogEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// Activity actions.
const (
	ActionAddProduct      = "ADD_PRODUCT"
	ActionRemoveProduct   = "REMOVE_PRODUCT"
	ActionUpdateProduct   = "UPDATE_PRODUCT"
	ActionPurchaseProduct = "PURCHASE_PRODUCT"
	ActionSellProduct     = "SELL_PRODUCT"
	ActionRestockProduct  = "RESTOCK_PRODUCT"
	ActionAdjustStock     = "ADJUST_STOCK"
)

// InRange reports whether t lies within [start, end], both ends inclusive.
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
