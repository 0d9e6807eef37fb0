package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/luc4n/StockMaster/internal/application/dto"
	"github.com/luc4n/StockMaster/internal/application/reporting"
)

// ReportingHandler maneja las proyecciones de lectura: saldos, dashboard,
// historial y exportación (protegido).
type ReportingHandler struct {
	uc *reporting.UseCase
}

// NewReportingHandler construye el handler.
func NewReportingHandler(uc *reporting.UseCase) *ReportingHandler {
	return &ReportingHandler{uc: uc}
}

// GetVendorBalances godoc
// @Summary      Saldos de posesión de un vendedor
// @Description  Derivado del ledger de eventos; solo productos con cantidad positiva.
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del vendedor"
// @Success      200  {object}  dto.VendorBalancesDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendors/{id}/balances [get]
func (h *ReportingHandler) GetVendorBalances(c *fiber.Ctx) error {
	vendorID := c.Params("id")
	balances, err := h.uc.GetVendorBalances(c.Context(), vendorID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(balances)
}

// GetFleetSummary godoc
// @Summary      Resumen de flota para el dashboard
// @Description  Valor en campo, unidades externas, vendedor líder y leaderboard.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.FleetSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *ReportingHandler) GetFleetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetFleetSummary(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(summary)
}

// ListMovements godoc
// @Summary      Historial de movimientos (solo display)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (máx 100, default 20)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/movements [get]
func (h *ReportingHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	items, err := h.uc.ListMovements(c.Context(), page)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(items),
		"movements": items,
	})
}

// ListVendors godoc
// @Summary      Directorio de vendedores (solo lectura)
// @Tags         vendors
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.VendorDTO
// @Router       /api/vendors [get]
func (h *ReportingHandler) ListVendors(c *fiber.Ctx) error {
	vendors, err := h.uc.ListVendors(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(vendors)
}

// ListProducts godoc
// @Summary      Catálogo de productos con estoque central
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        available  query  bool  false  "Solo productos con estoque central disponible"
// @Success      200  {array}  dto.ProductStockDTO
// @Router       /api/products [get]
func (h *ReportingHandler) ListProducts(c *fiber.Ctx) error {
	onlyAvailable := c.QueryBool("available", false)
	products, err := h.uc.ListProducts(c.Context(), onlyAvailable)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(products)
}

// ExportFleetReport godoc
// @Summary      Exportar el resumen de flota en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/reports/fleet.pdf [get]
func (h *ReportingHandler) ExportFleetReport(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.ExportFleetReport(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	filename := fmt.Sprintf("relatorio-frota-%s.pdf", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdfBytes)
}
