package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/luc4n/StockMaster/internal/application/dto"
	"github.com/luc4n/StockMaster/internal/application/movement"
	"github.com/luc4n/StockMaster/internal/domain"
)

// MovementHandler maneja las operaciones de movimiento de estoque (protegido).
type MovementHandler struct {
	uc *movement.UseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *movement.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Distribute godoc
// @Summary      Registrar envío del depósito central a un vendedor
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DistributeRequest  true  "vendor_id, product_id, quantity, notes (opcional)"
// @Success      201   {object}  dto.MovementResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/distribute [post]
func (h *MovementHandler) Distribute(c *fiber.Ctx) error {
	var in dto.DistributeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Distribute(c.Context(), in.VendorID, in.ProductID, in.Quantity, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResult(result))
}

// Return godoc
// @Summary      Registrar devolución de un vendedor al depósito central
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnRequest  true  "vendor_id, product_id, quantity, notes (opcional)"
// @Success      201   {object}  dto.MovementResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/return [post]
func (h *MovementHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Return(c.Context(), in.VendorID, in.ProductID, in.Quantity, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResult(result))
}

// Transfer godoc
// @Summary      Transferir estoque entre dos vendedores
// @Description  Registra el par de eventos entrada/salida con el mismo operation_id.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "from_vendor_id, to_vendor_id, product_id, quantity, notes (opcional)"
// @Success      201   {object}  dto.MovementResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/movements/transfer [post]
func (h *MovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Transfer(c.Context(), in.FromVendorID, in.ToVendorID, in.ProductID, in.Quantity, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResult(result))
}

func toMovementResult(r *movement.Result) dto.MovementResultDTO {
	return dto.MovementResultDTO{
		OperationID: r.OperationID,
		Status:      string(r.Status),
		EventIDs:    r.EventIDs,
	}
}

// respondDomainError mapea los errores sentinela del dominio a códigos HTTP.
// 409 = rechazo de negocio reintentable tras cambiar las condiciones;
// 500 INTEGRITY = falla no reintentable que requiere intervención;
// 503 = falla de infraestructura, reintentable tal cual.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOperation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_OPERATION", Message: "datos de la operación inválidos"})
	case errors.Is(err, domain.ErrSameVendor):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SAME_VENDOR", Message: "origen y destino no pueden ser el mismo vendedor"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "vendedor o producto no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "estoque central insuficiente"})
	case errors.Is(err, domain.ErrExceedsBalance):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EXCEEDS_BALANCE", Message: "cantidad supera la posesión del vendedor"})
	case errors.Is(err, domain.ErrIntegrity):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTEGRITY", Message: "ledger inconsistente; requiere intervención manual"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "almacenamiento no disponible, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
