// Package reporting expone las consultas que consumen la salida del motor de
// ledger: saldos por vendedor, resumen de flota, historial de movimientos y
// el informe PDF. Solo lecturas; el estado vive en el ledger de eventos.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luc4n/StockMaster/internal/application/dto"
	"github.com/luc4n/StockMaster/internal/domain"
	"github.com/luc4n/StockMaster/internal/domain/entity"
	"github.com/luc4n/StockMaster/internal/domain/ledger"
	"github.com/luc4n/StockMaster/internal/domain/repository"
	"github.com/luc4n/StockMaster/pkg/logger"
)

const (
	cacheTTL       = time.Minute
	leaderboardTop = 5 // tamaño del widget del dashboard, como el original
)

// UseCase consultas de solo lectura sobre el ledger.
type UseCase struct {
	eventRepo   repository.MovementEventRepository
	vendorRepo  repository.VendorRepository
	productRepo repository.ProductRepository
	cache       Cache // nil = sin cache
	pdf         FleetReportGenerator
	log         *logger.Logger
}

// NewUseCase construye el caso de uso. cache y pdf pueden ser nil.
func NewUseCase(
	eventRepo repository.MovementEventRepository,
	vendorRepo repository.VendorRepository,
	productRepo repository.ProductRepository,
	cache Cache,
	pdf FleetReportGenerator,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		eventRepo:   eventRepo,
		vendorRepo:  vendorRepo,
		productRepo: productRepo,
		cache:       cache,
		pdf:         pdf,
		log:         log,
	}
}

// GetVendorBalances deriva la posesión actual de un vendedor por producto,
// valorizada al precio vigente del catálogo. Única fuente de "lo que el
// vendedor tiene": la misma función pura que usa el coordinador para validar.
func (uc *UseCase) GetVendorBalances(ctx context.Context, vendorID string) (*dto.VendorBalancesDTO, error) {
	vendor, err := uc.vendorRepo.GetByID(vendorID)
	if err != nil {
		return nil, fmt.Errorf("buscar vendedor: %w", err)
	}
	if vendor == nil {
		return nil, domain.ErrNotFound
	}

	if uc.cache != nil {
		var cached dto.VendorBalancesDTO
		if err := uc.cache.Get(ctx, VendorBalancesKey(vendorID), &cached); err == nil {
			return &cached, nil
		}
	}

	var (
		events   []entity.MovementEvent
		prices   ledger.PriceIndex
		products []*entity.Product
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = uc.eventRepo.ListByVendor(vendorID)
		return err
	})
	g.Go(func() (err error) {
		prices, err = uc.productRepo.PriceIndex()
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.productRepo.List()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("saldos del vendedor %s: %w", vendorID, err)
	}

	names := productNames(products)
	balances := ledger.ComputeBalances(events, prices)

	out := &dto.VendorBalancesDTO{
		VendorID:   vendor.ID,
		VendorName: vendor.Name,
		Items:      make([]dto.ProductBalanceDTO, 0, len(balances)),
	}
	for productID, b := range balances {
		out.Items = append(out.Items, dto.ProductBalanceDTO{
			ProductID:   productID,
			ProductName: nameOr(names, productID),
			Quantity:    b.Quantity,
			Value:       b.Value,
		})
		out.TotalQuantity += b.Quantity
		out.TotalValue = out.TotalValue.Add(b.Value)
	}
	sort.Slice(out.Items, func(i, j int) bool {
		return out.Items[i].ProductName < out.Items[j].ProductName
	})

	uc.cacheSet(ctx, VendorBalancesKey(vendorID), out)
	return out, nil
}

// GetFleetSummary agrega los eventos de toda la flota: valor en campo,
// unidades externas y ranking de vendedores por valor descendente.
func (uc *UseCase) GetFleetSummary(ctx context.Context) (*dto.FleetSummaryDTO, error) {
	if uc.cache != nil {
		var cached dto.FleetSummaryDTO
		if err := uc.cache.Get(ctx, FleetSummaryKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var (
		events  []entity.MovementEvent
		prices  ledger.PriceIndex
		vendors []*entity.Vendor
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = uc.eventRepo.ListAll()
		return err
	})
	g.Go(func() (err error) {
		prices, err = uc.productRepo.PriceIndex()
		return err
	})
	g.Go(func() (err error) {
		vendors, err = uc.vendorRepo.List()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resumen de flota: %w", err)
	}

	vendorNames := make(map[string]string, len(vendors))
	for _, v := range vendors {
		vendorNames[v.ID] = v.Name
	}

	summary := ledger.ComputeAggregate(events, prices)
	out := &dto.FleetSummaryDTO{
		TotalValue:     summary.TotalValue,
		TotalQuantity:  summary.TotalQuantity,
		PerVendorValue: make([]dto.VendorRankingDTO, 0, len(summary.PerVendor)),
	}
	for _, vt := range summary.PerVendor {
		out.PerVendorValue = append(out.PerVendorValue, dto.VendorRankingDTO{
			VendorID:   vt.VendorID,
			VendorName: nameOr(vendorNames, vt.VendorID),
			Quantity:   vt.Quantity,
			Value:      vt.Value,
		})
	}
	if len(out.PerVendorValue) > 0 {
		out.TopVendor = out.PerVendorValue[0].VendorName
	}
	top := leaderboardTop
	if top > len(out.PerVendorValue) {
		top = len(out.PerVendorValue)
	}
	out.Leaderboard = out.PerVendorValue[:top]

	uc.cacheSet(ctx, FleetSummaryKey, out)
	return out, nil
}

// ListMovements historial reciente de movimientos con nombres resueltos
// (orden por fecha de creación, solo para display).
func (uc *UseCase) ListMovements(ctx context.Context, page dto.PageRequest) ([]dto.MovementLogItemDTO, error) {
	page.DefaultPage()

	var (
		events   []entity.MovementEvent
		vendors  []*entity.Vendor
		products []*entity.Product
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = uc.eventRepo.ListRecent(page.Limit, page.Offset)
		return err
	})
	g.Go(func() (err error) {
		vendors, err = uc.vendorRepo.List()
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.productRepo.List()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("historial de movimientos: %w", err)
	}

	vendorNames := make(map[string]string, len(vendors))
	for _, v := range vendors {
		vendorNames[v.ID] = v.Name
	}
	names := productNames(products)

	out := make([]dto.MovementLogItemDTO, 0, len(events))
	for _, e := range events {
		out = append(out, dto.MovementLogItemDTO{
			ID:          e.ID,
			OperationID: e.OperationID,
			VendorID:    e.VendorID,
			VendorName:  nameOr(vendorNames, e.VendorID),
			ProductID:   e.ProductID,
			ProductName: nameOr(names, e.ProductID),
			Kind:        string(e.Kind),
			Quantity:    e.Quantity,
			Notes:       e.Notes,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}

// ListVendors directorio de vendedores para los selectores de los modales.
func (uc *UseCase) ListVendors(ctx context.Context) ([]dto.VendorDTO, error) {
	vendors, err := uc.vendorRepo.List()
	if err != nil {
		return nil, fmt.Errorf("listar vendedores: %w", err)
	}
	out := make([]dto.VendorDTO, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, dto.VendorDTO{ID: v.ID, Name: v.Name, Region: v.Region, Status: v.Status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListProducts catálogo con estoque central. onlyAvailable filtra a productos
// con cantidad disponible, como el selector de envíos del original.
func (uc *UseCase) ListProducts(ctx context.Context, onlyAvailable bool) ([]dto.ProductStockDTO, error) {
	products, err := uc.productRepo.ListWithCentralStock(onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	out := make([]dto.ProductStockDTO, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ProductStockDTO{
			ID:           p.ID,
			Name:         p.Name,
			SKU:          p.SKU,
			Price:        p.Price,
			CentralStock: p.CentralQuantity,
		})
	}
	return out, nil
}

// ExportFleetReport genera el informe PDF del resumen de flota.
func (uc *UseCase) ExportFleetReport(ctx context.Context) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("informe de flota: generador PDF no configurado")
	}
	summary, err := uc.GetFleetSummary(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateFleetReport(ctx, summary, time.Now())
}

func (uc *UseCase) cacheSet(ctx context.Context, key string, value any) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, key, value, cacheTTL); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo cachear la proyección")
	}
}

func productNames(products []*entity.Product) map[string]string {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}

// nameOr devuelve el nombre registrado o un marcador, como el "Produto
// Desconhecido" del original.
func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Produto Desconhecido"
}
