// Package pdf implementa la generación del recibo de venta del punto de venta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Farmacia + contacto  │  N° Venta + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Lote | P.Unit | Total             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Impuesto / TOTAL           │
//	│  PAGO: Método / Recibido / Cambio                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

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

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 96, Blue: 57}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// PharmacyInfo encabezado del recibo.
type PharmacyInfo struct {
	Name     string
	Address  string
	Phone    string
	Currency string
}

// ReceiptGenerator implementa pos.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct {
	pharmacy PharmacyInfo
}

// NewReceiptGenerator construye el generador con la identidad de la farmacia.
func NewReceiptGenerator(pharmacy PharmacyInfo) *ReceiptGenerator {
	return &ReceiptGenerator{pharmacy: pharmacy}
}

// GenerateReceipt genera el recibo PDF de la venta y devuelve sus bytes.
// productNames mapea product_id a nombre para las líneas.
func (g *ReceiptGenerator) GenerateReceipt(sale *entity.Sale, productNames map[int64]string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Recibo de venta "+sale.SaleNumber, true).
		WithAuthor(g.pharmacy.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, it := range sale.Items {
		m.AddRows(itemRow(it, productNames[it.ProductID]))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range g.totalsRows(sale) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(2))
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("Gracias por su compra", props.Text{
			Size: 8, Align: align.Center, Color: colorGray,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: farmacia (izq) y número de venta + fecha (der).
func (g *ReceiptGenerator) headerRow(sale *entity.Sale) core.Row {
	fecha := sale.CreatedAt.Format("02/01/2006 15:04")
	if sale.CompletedAt != nil {
		fecha = sale.CompletedAt.Format("02/01/2006 15:04")
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.pharmacy.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tel: %s",
				nonEmpty(g.pharmacy.Address, "—"),
				nonEmpty(g.pharmacy.Phone, "—"),
			), props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("RECIBO DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(sale.SaleNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	return row.New(7).Add(
		headerCell(1, "Cant"),
		headerCell(5, "Producto"),
		headerCell(2, "Lote"),
		headerCell(2, "P. Unit"),
		headerCell(2, "Total"),
	)
}

func headerCell(size int, label string) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
	}))
}

func itemRow(it entity.SaleItem, productName string) core.Row {
	return row.New(6).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Top: 1})),
		col.New(5).Add(text.New(nonEmpty(productName, fmt.Sprintf("Producto %d", it.ProductID)), props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(nonEmpty(it.BatchNumber, "—"), props.Text{Size: 8, Top: 1, Color: colorGray})),
		col.New(2).Add(text.New(it.UnitPrice.StringFixed(2), props.Text{Size: 8, Top: 1, Align: align.Right})),
		col.New(2).Add(text.New(it.LineTotal.StringFixed(2), props.Text{Size: 8, Top: 1, Align: align.Right})),
	)
}

func (g *ReceiptGenerator) totalsRows(sale *entity.Sale) []core.Row {
	rows := []core.Row{
		totalRow("Subtotal", sale.Subtotal, g.pharmacy.Currency, false),
	}
	if !sale.DiscountAmount.IsZero() {
		rows = append(rows, totalRow("Descuento", sale.DiscountAmount.Neg(), g.pharmacy.Currency, false))
	}
	rows = append(rows,
		totalRow("Impuesto", sale.TaxAmount, g.pharmacy.Currency, false),
		totalRow("TOTAL", sale.TotalAmount, g.pharmacy.Currency, true),
		totalRow("Pago ("+sale.PaymentMethod+")", sale.AmountPaid, g.pharmacy.Currency, false),
	)
	if !sale.ChangeGiven.IsZero() {
		rows = append(rows, totalRow("Cambio", sale.ChangeGiven, g.pharmacy.Currency, false))
	}
	return rows
}

func totalRow(label string, amount decimal.Decimal, currency string, bold bool) core.Row {
	style := fontstyle.Normal
	size := 9.0
	if bold {
		style = fontstyle.Bold
		size = 11
	}
	return row.New(6).Add(
		col.New(8),
		col.New(2).Add(text.New(label, props.Text{Style: style, Size: size, Top: 1, Align: align.Right})),
		col.New(2).Add(text.New(currency+" "+amount.StringFixed(2), props.Text{Style: style, Size: size, Top: 1, Align: align.Right})),
	)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
