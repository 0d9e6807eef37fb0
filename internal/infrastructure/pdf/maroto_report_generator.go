// Package pdf genera el informe PDF del resumen de flota ("Exportar
// Inteligência" del dashboard).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: StockMaster — Relatório de Frota + fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KPIs: Valor em Campo | Unidades Externas | Performance Top  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Vendedor | Unidades | Valor em Campo             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/luc4n/StockMaster/internal/application/dto"
	"github.com/luc4n/StockMaster/internal/application/reporting"
)

var _ reporting.FleetReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// MarotoReportGenerator implementa reporting.FleetReportGenerator con Maroto v2.
type MarotoReportGenerator struct {
	printer *message.Printer
}

// NewMarotoReportGenerator construye el generador con formato pt-BR.
func NewMarotoReportGenerator() *MarotoReportGenerator {
	return &MarotoReportGenerator{printer: message.NewPrinter(language.BrazilianPortuguese)}
}

// GenerateFleetReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateFleetReport(
	_ context.Context,
	summary *dto.FleetSummaryDTO,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("StockMaster — Relatório de Frota", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(generatedAt))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.kpiRow(summary))
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.tableHeaderRow())
	for i, v := range summary.PerVendorValue {
		m.AddRows(g.vendorRow(i+1, v))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generar PDF de flota: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoReportGenerator) headerRow(generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("StockMaster", props.Text{
				Size: 16, Style: fontstyle.Bold, Color: colorPrimary,
			}),
			text.New("Relatório de Frota — estoque externo e performance de vendedores", props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Gerado em", props.Text{Size: 7, Align: align.Right, Color: colorGray}),
			text.New(generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Top: 4, Align: align.Right, Style: fontstyle.Bold,
			}),
		),
	)
}

func (g *MarotoReportGenerator) kpiRow(summary *dto.FleetSummaryDTO) core.Row {
	return row.New(16).Add(
		g.kpiCol("Valor em Campo", g.money(summary.TotalValue)),
		g.kpiCol("Unidades Externas", g.printer.Sprintf("%v", number.Decimal(summary.TotalQuantity))),
		g.kpiCol("Performance Top", orDash(summary.TopVendor)),
	)
}

func (g *MarotoReportGenerator) kpiCol(label, value string) core.Col {
	return col.New(4).Add(
		text.New(label, props.Text{Size: 7, Color: colorGray}),
		text.New(value, props.Text{Size: 12, Top: 5, Style: fontstyle.Bold}),
	)
}

func (g *MarotoReportGenerator) tableHeaderRow() core.Row {
	style := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorWhite}
	return row.New(7).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		col.New(1).Add(text.New("#", style)),
		col.New(6).Add(text.New("Vendedor", style)),
		col.New(2).Add(text.New("Unidades", textRight(style))),
		col.New(3).Add(text.New("Valor em Campo", textRight(style))),
	)
}

func (g *MarotoReportGenerator) vendorRow(position int, v dto.VendorRankingDTO) core.Row {
	cell := props.Text{Size: 8}
	return row.New(6).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", position), cell)),
		col.New(6).Add(text.New(v.VendorName, cell)),
		col.New(2).Add(text.New(g.printer.Sprintf("%v", number.Decimal(v.Quantity)), textRight(cell))),
		col.New(3).Add(text.New(g.money(v.Value), textRight(cell))),
	)
}

// money formatea un monto en reales con separadores pt-BR, ej: R$ 1.234,56.
func (g *MarotoReportGenerator) money(value decimal.Decimal) string {
	f, _ := value.Float64()
	return g.printer.Sprintf("R$ %v", number.Decimal(f,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func textRight(base props.Text) props.Text {
	base.Align = align.Right
	return base
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
