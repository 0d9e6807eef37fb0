// Package jobs agrupa tareas periódicas en background. La reconciliación es
// solo de auditoría: lee el ledger y reporta derivas, nunca escribe.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/repository"
	"github.com/luc4n/StockMaster/pkg/logger"
)

// Reconciler recorre los eventos de movimiento y verifica que el ledger sea
// consistente: ningún saldo neto negativo por (vendedor, producto) y cada
// transferencia con su par entrada/salida completo.
type Reconciler struct {
	events repository.MovementEventRepository
	log    *logger.Logger
}

func NewReconciler(events repository.MovementEventRepository, log *logger.Logger) *Reconciler {
	return &Reconciler{events: events, log: log}
}

type balanceKey struct {
	VendorID  string
	ProductID string
}

// Run ejecuta una pasada de auditoría. Devuelve error solo ante fallas de
// infraestructura; las derivas detectadas se registran como errores en el log.
func (r *Reconciler) Run(ctx context.Context) error {
	started := time.Now()

	events, err := r.events.ListAll()
	if err != nil {
		return fmt.Errorf("reconciliación: listar eventos: %w", err)
	}

	drifts := 0
	drifts += r.checkBalances(events)
	drifts += r.checkTransferPairs(events)

	if drifts > 0 {
		r.log.Error().
			Int("derivas", drifts).
			Int("eventos", len(events)).
			Dur("duracion", time.Since(started)).
			Msg("Reconciliación detectó derivas en el ledger")
		return nil
	}

	r.log.Info().
		Int("eventos", len(events)).
		Dur("duracion", time.Since(started)).
		Msg("Reconciliación sin derivas")
	return nil
}

// checkBalances suma las cantidades con signo por (vendedor, producto) y
// reporta los saldos netos negativos.
func (r *Reconciler) checkBalances(events []entity.MovementEvent) int {
	balances := make(map[balanceKey]int64)
	for _, ev := range events {
		balances[balanceKey{ev.VendorID, ev.ProductID}] += ev.SignedQuantity()
	}

	drifts := 0
	for key, qty := range balances {
		if qty < 0 {
			drifts++
			r.log.Error().
				Str("vendor_id", key.VendorID).
				Str("product_id", key.ProductID).
				Int64("saldo", qty).
				Msg("Saldo neto negativo en el ledger")
		}
	}
	return drifts
}

// checkTransferPairs verifica que cada operación de transferencia tenga
// exactamente un evento de entrada y uno de salida con la misma cantidad.
func (r *Reconciler) checkTransferPairs(events []entity.MovementEvent) int {
	type pair struct {
		in, out   int
		inQty     int64
		outQty    int64
		productID string
	}
	pairs := make(map[string]*pair)

	for _, ev := range events {
		if ev.Kind != entity.KindTransferIn && ev.Kind != entity.KindTransferOut {
			continue
		}
		p, ok := pairs[ev.OperationID]
		if !ok {
			p = &pair{productID: ev.ProductID}
			pairs[ev.OperationID] = p
		}
		if ev.Kind == entity.KindTransferIn {
			p.in++
			p.inQty = ev.Quantity
		} else {
			p.out++
			p.outQty = ev.Quantity
		}
	}

	drifts := 0
	for opID, p := range pairs {
		if p.in != 1 || p.out != 1 || p.inQty != p.outQty {
			drifts++
			r.log.Error().
				Str("operation_id", opID).
				Str("product_id", p.productID).
				Int("entradas", p.in).
				Int("salidas", p.out).
				Int64("qty_entrada", p.inQty).
				Int64("qty_salida", p.outQty).
				Msg("Transferencia sin par completo en el ledger")
		}
	}
	return drifts
}

// StartReconciliation programa la auditoría periódica y bloquea hasta que el
// contexto se cancele. Pensada para correr en su propia goroutine.
func StartReconciliation(ctx context.Context, reconciler *Reconciler, interval time.Duration, log *logger.Logger) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("reconciliación: crear scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := reconciler.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Falló la corrida de reconciliación")
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("reconciliación: programar job: %w", err)
	}

	scheduler.Start()
	log.Info().Dur("intervalo", interval).Msg("Job de reconciliación iniciado")

	<-ctx.Done()
	return scheduler.Shutdown()
}
