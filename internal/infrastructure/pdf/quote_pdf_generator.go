// Package pdf genera la cotización de alquiler en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: COTIZACIÓN DE ALQUILER  │  Fecha de cálculo         │
//	│  ÍTEM: Nombre + SKU              │  CLIENTE (opcional)        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Días | Cantidad | Tramo | Períodos | Total unit.   │
//	│  TABLA: tramos alternativos aplicables                       │
//	│  TOTALES: Total por unidad / TOTAL COTIZACIÓN                 │
//	│  FOOTER: QR de referencia + leyenda                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/application/pricing"
)

var _ pricing.QuotePDFGenerator = (*MarotoQuoteGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoQuoteGenerator implementa pricing.QuotePDFGenerator usando Maroto v2.
type MarotoQuoteGenerator struct {
	companyName string
}

// NewMarotoQuoteGenerator construye el generador; companyName aparece en el encabezado.
func NewMarotoQuoteGenerator(companyName string) *MarotoQuoteGenerator {
	return &MarotoQuoteGenerator{companyName: companyName}
}

// GenerateQuotePDF genera el PDF de la cotización y devuelve sus bytes.
func (g *MarotoQuoteGenerator) GenerateQuotePDF(_ context.Context, q *dto.QuoteResponse) ([]byte, error) {
	if q == nil {
		return nil, fmt.Errorf("pdf: cotización vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cotización de alquiler "+q.SKU, true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(q))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(q))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(summaryRows(q)...)

	if len(q.Alternatives) > 0 {
		m.AddRows(row.New(4))
		m.AddRows(sectionTitle("TRAMOS APLICABLES"))
		m.AddRows(tableHeaderRow())
		m.AddRows(alternativeRows(q.Alternatives)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(q))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(q))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoQuoteGenerator) headerRow(q *dto.QuoteResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.companyName, "Alquiler"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generada: "+q.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COTIZACIÓN DE ALQUILER", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha de cálculo: "+q.CalculationDate, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func partiesRow(q *dto.QuoteResponse) core.Row {
	return row.New(16).Add(
		col.New(6).Add(
			text.New("ÍTEM", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(q.ItemName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("SKU: "+q.SKU, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(6).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(q.CustomerName, "Sin cliente asignado"), props.Text{Size: 10, Top: 6}),
		),
	)
}

func summaryRows(q *dto.QuoteResponse) []core.Row {
	tier, periods := "Tarifa base diaria", fmt.Sprintf("%d", q.RentalDays)
	if q.Selected != nil {
		tier = fmt.Sprintf("%s (%s)", q.Selected.Tier.TierName, q.Selected.Tier.PeriodType)
		periods = fmt.Sprintf("%d", q.Selected.Periods)
	}
	pair := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Size: 9, Top: 5}),
		)
	}
	return []core.Row{
		row.New(12).Add(
			pair("Días de alquiler", fmt.Sprintf("%d", q.RentalDays)),
			pair("Cantidad", fmt.Sprintf("%d", q.Quantity)),
			pair("Períodos", periods),
			pair("Disponibles", q.Available.StringFixed(0)),
		),
		row.New(8).Add(col.New(12).Add(
			text.New("Tramo aplicado: "+tier, props.Text{Size: 9, Top: 1}),
		)),
	}
}

func sectionTitle(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Tramo", 4, align.Left),
		h("Período", 2, align.Center),
		h("Tarifa", 2, align.Right),
		h("Períodos", 1, align.Center),
		h("Total", 3, align.Right),
	)
}

func alternativeRows(list []dto.TierCostDTO) []core.Row {
	out := make([]core.Row, 0, len(list))
	for _, a := range list {
		out = append(out, row.New(7).Add(
			col.New(4).Add(text.New(a.Tier.TierName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(a.Tier.PeriodType, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(a.Tier.RatePerPeriod), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", a.Periods), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New("$"+formatMoney(a.TotalCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(q *dto.QuoteResponse) core.Row {
	label := func(s string, size float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: size, Align: align.Right, Right: 2, Color: colorPrimary})
	}
	value := func(s string, size float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: size, Align: align.Right, Right: 1})
	}
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			label("Total por unidad:", 9),
			text.New("TOTAL COTIZACIÓN:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Color: colorPrimary, Top: 7}),
		),
		col.New(3).Add(
			value("$"+formatMoney(q.UnitTotal), 9),
			text.New("$"+formatMoney(q.GrandTotal), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 7}),
		),
	)
}

func footerRow(q *dto.QuoteResponse) core.Row {
	ref := strings.Join([]string{q.SKU, fmt.Sprintf("%dd", q.RentalDays), q.CalculationDate, q.GrandTotal.StringFixed(2)}, "|")
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referencia: "+ref, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New("Precios sujetos a disponibilidad al momento de confirmar la reserva. "+
				"La cotización se calcula con la tarifa vigente en la fecha de cálculo.",
				props.Text{Size: 7, Top: 12, Left: 3, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con puntos de miles y coma decimal. Ej: 1234567.5 → "1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
