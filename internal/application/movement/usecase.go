// Package movement implementa el coordinador de operaciones de estoque:
// envíos (depósito → vendedor), devoluciones (vendedor → depósito) y
// transferencias (vendedor → vendedor). Cada operación pasa por
// Validating → Applying → Committed, o termina en Rejected durante la
// validación sin tocar ningún recurso.
package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luc4n/StockMaster/internal/domain"
	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/ledger"
	"github.com/luc4n/StockMaster/internal/domain/repository"
	"github.com/luc4n/StockMaster/pkg/logger"
)

// Status estado final de una operación del coordinador.
type Status string

const (
	StatusCommitted Status = "COMMITTED"
	StatusRejected  Status = "REJECTED"
)

// Result resultado de una operación confirmada. Los eventos de una
// transferencia comparten OperationID para correlación de auditoría.
type Result struct {
	OperationID string
	Status      Status
	EventIDs    []string
}

// UseCase coordina movimientos de estoque sobre el ledger de eventos y el
// contador central. La atomicidad la da el TxRunner; las validaciones de
// negocio usan siempre la salida del motor de ledger, nunca contadores
// paralelos.
type UseCase struct {
	txRunner    TxRunner
	vendorRepo  repository.VendorRepository
	productRepo repository.ProductRepository
	cache       CacheInvalidator
	log         *logger.Logger
}

// NewUseCase construye el coordinador. cache puede ser nil.
func NewUseCase(
	txRunner TxRunner,
	vendorRepo repository.VendorRepository,
	productRepo repository.ProductRepository,
	cache CacheInvalidator,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		vendorRepo:  vendorRepo,
		productRepo: productRepo,
		cache:       cache,
		log:         log,
	}
}

// Distribute registra un envío del depósito central a un vendedor: reserva
// estoque central (check-then-act bajo bloqueo de fila) y persiste un evento
// OUTBOUND en la misma transacción. Si la reserva falla, rechaza con
// ErrInsufficientStock sin efectos secundarios.
func (uc *UseCase) Distribute(ctx context.Context, vendorID, productID string, quantity int64, notes string) (*Result, error) {
	if err := uc.validateParties(vendorID, productID, quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	opID := uuid.New().String()
	event := &entity.MovementEvent{
		OperationID: opID,
		VendorID:    vendorID,
		ProductID:   productID,
		Kind:        entity.KindOutbound,
		Quantity:    quantity,
		Notes:       notes,
		CreatedAt:   now,
	}

	err := uc.txRunner.Run(ctx, func(
		eventRepo repository.MovementEventRepository,
		stockRepo repository.CentralStockRepository,
	) error {
		// Reserva: bloquea la fila del producto y decrementa solo si el
		// resultado queda >= 0. Reservas concurrentes sobre el mismo producto
		// se serializan en este bloqueo.
		stock, err := stockRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if stock.Quantity < quantity {
			return domain.ErrInsufficientStock
		}
		stock.Quantity -= quantity
		stock.UpdatedAt = now
		if err := stockRepo.Set(stock); err != nil {
			return err
		}
		// Si el append falla, el rollback de la transacción deshace la
		// reserva: la compensación de la que habla el contrato de Distribute.
		return eventRepo.Create(event)
	})
	if err != nil {
		return nil, uc.classify(err)
	}

	uc.invalidate(ctx, vendorID)
	uc.log.Info().
		Str("operation_id", opID).
		Str("vendor_id", vendorID).
		Str("product_id", productID).
		Int64("quantity", quantity).
		Msg("envío confirmado")
	return &Result{OperationID: opID, Status: StatusCommitted, EventIDs: []string{event.ID}}, nil
}

// Return registra una devolución de un vendedor al depósito central. Valida
// contra el saldo derivado del ledger (nunca contra un contador aparte);
// persiste un evento RETURN y libera el estoque central en la misma
// transacción. La liberación no puede fallar por negocio: pasada la
// validación solo una falla de infraestructura rechaza la operación.
func (uc *UseCase) Return(ctx context.Context, vendorID, productID string, quantity int64, notes string) (*Result, error) {
	if err := uc.validateParties(vendorID, productID, quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	opID := uuid.New().String()
	event := &entity.MovementEvent{
		OperationID: opID,
		VendorID:    vendorID,
		ProductID:   productID,
		Kind:        entity.KindReturn,
		Quantity:    quantity,
		Notes:       notes,
		CreatedAt:   now,
	}

	err := uc.txRunner.Run(ctx, func(
		eventRepo repository.MovementEventRepository,
		stockRepo repository.CentralStockRepository,
	) error {
		// Serializa el check-then-act sobre el ledger del vendedor: sin el
		// lock, dos devoluciones concurrentes leerían el mismo saldo previo.
		if err := eventRepo.LockVendors(vendorID); err != nil {
			return err
		}
		events, err := eventRepo.ListByVendor(vendorID)
		if err != nil {
			return err
		}
		if ledger.ProductBalance(events, productID) < quantity {
			return domain.ErrExceedsBalance
		}
		if err := eventRepo.Create(event); err != nil {
			return err
		}
		stock, err := stockRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		stock.Quantity += quantity
		stock.UpdatedAt = now
		return stockRepo.Set(stock)
	})
	if err != nil {
		return nil, uc.classify(err)
	}

	uc.invalidate(ctx, vendorID)
	uc.log.Info().
		Str("operation_id", opID).
		Str("vendor_id", vendorID).
		Str("product_id", productID).
		Int64("quantity", quantity).
		Msg("devolución confirmada")
	return &Result{OperationID: opID, Status: StatusCommitted, EventIDs: []string{event.ID}}, nil
}

// Transfer registra una transferencia entre vendedores como dos eventos
// ligados (TRANSFER_OUT en el origen, TRANSFER_IN en el destino) bajo el
// mismo OperationID. Ambos appends confirman juntos o ninguno; un lote
// aplicado a medias es una falla de integridad fatal, nunca se reintenta.
func (uc *UseCase) Transfer(ctx context.Context, fromVendorID, toVendorID, productID string, quantity int64, notes string) (*Result, error) {
	if quantity <= 0 || fromVendorID == "" || toVendorID == "" || productID == "" {
		return nil, domain.ErrInvalidOperation
	}
	if fromVendorID == toVendorID {
		return nil, domain.ErrSameVendor
	}
	fromVendor, err := uc.vendorRepo.GetByID(fromVendorID)
	if err != nil {
		return nil, uc.classify(err)
	}
	toVendor, err := uc.vendorRepo.GetByID(toVendorID)
	if err != nil {
		return nil, uc.classify(err)
	}
	if fromVendor == nil || toVendor == nil {
		return nil, domain.ErrNotFound
	}
	if product, err := uc.productRepo.GetByID(productID); err != nil {
		return nil, uc.classify(err)
	} else if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	opID := uuid.New().String()
	// Las notas llevan el otro extremo de la transferencia, como el original.
	outEvent := &entity.MovementEvent{
		OperationID: opID,
		VendorID:    fromVendorID,
		ProductID:   productID,
		Kind:        entity.KindTransferOut,
		Quantity:    quantity,
		Notes:       joinNotes("Transferido para: "+toVendor.Name, notes),
		CreatedAt:   now,
	}
	inEvent := &entity.MovementEvent{
		OperationID: opID,
		VendorID:    toVendorID,
		ProductID:   productID,
		Kind:        entity.KindTransferIn,
		Quantity:    quantity,
		Notes:       joinNotes("Transferido de: "+fromVendor.Name, notes),
		CreatedAt:   now,
	}

	err = uc.txRunner.Run(ctx, func(
		eventRepo repository.MovementEventRepository,
		stockRepo repository.CentralStockRepository,
	) error {
		// Bloquea ambos ledgers (orden fijo en la implementación) antes de
		// validar: transferencias concurrentes desde el mismo origen se
		// ordenan aquí y la segunda ya ve lo confirmado por la primera.
		if err := eventRepo.LockVendors(fromVendorID, toVendorID); err != nil {
			return err
		}
		// El saldo del origen incluye transferencias previas: la acumulación
		// con signo del ledger ya las contempla.
		events, err := eventRepo.ListByVendor(fromVendorID)
		if err != nil {
			return err
		}
		if ledger.ProductBalance(events, productID) < quantity {
			return domain.ErrExceedsBalance
		}
		return eventRepo.CreateBatch([]*entity.MovementEvent{outEvent, inEvent})
	})
	if err != nil {
		var partial *repository.PartialAppendError
		if errors.As(err, &partial) {
			// Mitad de la transferencia persistió: estado inconsistente que
			// requiere reconciliación manual. Se registra todo el contexto y
			// se superficie como error no reintentable.
			uc.log.Error().
				Str("operation_id", opID).
				Str("product_id", productID).
				Str("from_vendor_id", fromVendorID).
				Str("to_vendor_id", toVendorID).
				Int64("quantity", quantity).
				Strs("appended_event_ids", partial.AppendedIDs).
				Str("failed_event_id", partial.FailedID).
				Err(partial.Cause).
				Msg("transferencia aplicada parcialmente")
			return nil, fmt.Errorf("%w (operación %s)", domain.ErrIntegrity, opID)
		}
		return nil, uc.classify(err)
	}

	uc.invalidate(ctx, fromVendorID, toVendorID)
	uc.log.Info().
		Str("operation_id", opID).
		Str("from_vendor_id", fromVendorID).
		Str("to_vendor_id", toVendorID).
		Str("product_id", productID).
		Int64("quantity", quantity).
		Msg("transferencia confirmada")
	return &Result{
		OperationID: opID,
		Status:      StatusCommitted,
		EventIDs:    []string{outEvent.ID, inEvent.ID},
	}, nil
}

// validateParties validación común de Distribute y Return: cantidad positiva
// y existencia de vendedor y producto. Se ejecuta antes de tocar recursos.
func (uc *UseCase) validateParties(vendorID, productID string, quantity int64) error {
	if quantity <= 0 || vendorID == "" || productID == "" {
		return domain.ErrInvalidOperation
	}
	vendor, err := uc.vendorRepo.GetByID(vendorID)
	if err != nil {
		return uc.classify(err)
	}
	if vendor == nil {
		return domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return uc.classify(err)
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return nil
}

// classify separa rechazos de negocio (pasan tal cual) de fallas de
// infraestructura, que se marcan como categoría reintentable. El coordinador
// mismo nunca reintenta.
func (uc *UseCase) classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrExceedsBalance),
		errors.Is(err, domain.ErrSameVendor),
		errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrIntegrity):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}

func (uc *UseCase) invalidate(ctx context.Context, vendorIDs ...string) {
	if uc.cache != nil {
		uc.cache.InvalidateBalances(ctx, vendorIDs...)
	}
}

func joinNotes(prefix, notes string) string {
	if notes == "" {
		return prefix + "."
	}
	return prefix + ". " + notes
}
