package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// ErrInsufficientStock y ErrExceedsBalance son resultados de negocio esperados
// de la validación, no fallas: los callers deben tratarlos como una rama
// normal. ErrIntegrity es fatal a nivel de operación y no debe reintentarse
// (reintentar arriesga doble aplicación). ErrStoreUnavailable es la categoría
// reintentable; la política de reintento pertenece al caller, no al coordinador.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidOperation  = errors.New("operación inválida")
	ErrInsufficientStock = errors.New("estoque central insuficiente")
	ErrExceedsBalance    = errors.New("cantidad excede el saldo del vendedor")
	ErrSameVendor        = errors.New("vendedor origen y destino deben ser diferentes")
	ErrIntegrity         = errors.New("transferencia aplicada parcialmente: requiere reconciliación manual")
	ErrStoreUnavailable  = errors.New("almacén de eventos no disponible")
	ErrUnauthorized      = errors.New("no autorizado")
)
