package dto

import "time"

// DistributeRequest body para POST /api/movements/distribute.
type DistributeRequest struct {
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

// ReturnRequest body para POST /api/movements/return.
type ReturnRequest struct {
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

// TransferRequest body para POST /api/movements/transfer.
type TransferRequest struct {
	FromVendorID string `json:"from_vendor_id"`
	ToVendorID   string `json:"to_vendor_id"`
	ProductID    string `json:"product_id"`
	Quantity     int64  `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
}

// MovementResultDTO resultado de una operación de movimiento confirmada.
type MovementResultDTO struct {
	OperationID string   `json:"operation_id"`
	Status      string   `json:"status"` // COMMITTED
	EventIDs    []string `json:"event_ids"`
}

// MovementLogItemDTO una entrada del historial de movimientos (solo display;
// el orden por fecha no participa en el cálculo de saldos).
type MovementLogItemDTO struct {
	ID          string    `json:"id"`
	OperationID string    `json:"operation_id"`
	VendorID    string    `json:"vendor_id"`
	VendorName  string    `json:"vendor_name"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Kind        string    `json:"kind"`
	Quantity    int64     `json:"quantity"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
