package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	mutedColor  = &props.Color{Red: 80, Green: 80, Blue: 80}
	noteColor   = &props.Color{Red: 140, Green: 100, Blue: 20}
	stripeColor = &props.Color{Red: 245, Green: 245, Blue: 245}
)

// GeneratePDF creates a client-facing quote PDF using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addTableHeader(m)
	for i, r := range data.Rows {
		addTableRow(m, r, i%2 == 1)
	}
	addSummary(m, data.Totals)
	addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addHeader adds the title, client and validity lines.
func addHeader(m core.Maroto, data ExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)

	client := data.ClientName
	if client == "" {
		client = "Unassigned"
	}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New("Client: "+client, props.Text{
					Size:  9,
					Align: align.Left,
					Color: mutedColor,
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", data.CreatedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: mutedColor,
				}),
			),
		),
	)

	if data.ValidUntil != "" {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New("Valid until "+data.ValidUntil, props.Text{
						Size:  9,
						Align: align.Right,
						Color: mutedColor,
					}),
				),
			),
		)
	}

	m.AddRows(row.New(4))
}

// addTableHeader adds the column header row for the line item table.
func addTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(5).Add(text.New("Description", headerTextLeft)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qty", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Unit", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Unit Price", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Total", headerText)).WithStyle(&headerCell),
		),
	)
}

// addTableRow adds one line item, with its note underneath when present.
func addTableRow(m core.Maroto, r ExportRow, striped bool) {
	baseText := props.Text{
		Size:  8,
		Align: align.Center,
	}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	cols := []core.Col{
		col.New(1).Add(text.New(r.Index, baseText)),
		col.New(5).Add(text.New(r.Description, leftText)),
		col.New(1).Add(text.New(FormatQuantity(r.Qty), rightText)),
		col.New(1).Add(text.New(r.Unit, baseText)),
		col.New(2).Add(text.New(FormatCurrency(r.UnitPrice), rightText)),
		col.New(2).Add(text.New(FormatCurrency(r.Total), rightText)),
	}
	if striped {
		cell := &props.Cell{BackgroundColor: stripeColor}
		for i := range cols {
			cols[i] = cols[i].WithStyle(cell)
		}
	}
	m.AddRows(row.New(7).Add(cols...))

	if r.Note != "" {
		m.AddRows(
			row.New(5).Add(
				col.New(1),
				col.New(11).Add(
					text.New(r.Note, props.Text{
						Size:  7,
						Style: fontstyle.Italic,
						Align: align.Left,
						Color: noteColor,
					}),
				),
			),
		)
	}
}

// addSummary adds the cost breakdown and grand total.
func addSummary(m core.Maroto, totals QuoteTotals) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	labelStyle := props.Text{
		Size:  9,
		Align: align.Right,
	}
	valueStyle := props.Text{
		Size:  9,
		Align: align.Right,
	}

	lines := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Labor", totals.TotalLabor, false},
		{"Materials", totals.TotalMaterials, false},
		{"Subtotal", totals.Subtotal, false},
		{"Markup", totals.TotalMarkup, false},
		{"Total", totals.Total, true},
	}
	for _, l := range lines {
		ls, vs := labelStyle, valueStyle
		if l.bold {
			ls.Style = fontstyle.Bold
			vs.Style = fontstyle.Bold
		}
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(l.label, ls)).WithStyle(summaryCell),
				col.New(4).Add(text.New(FormatCurrency(l.value), vs)).WithStyle(summaryCell),
			),
		)
	}
}

// addFooter adds the notes and the quote reference at the bottom.
func addFooter(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))
	if data.Notes != "" {
		m.AddRows(
			row.New(10).Add(
				col.New(12).Add(
					text.New("Notes: "+data.Notes, props.Text{
						Size:  8,
						Align: align.Left,
					}),
				),
			),
		)
	}
	ref := data.QuoteNumber
	if ref == "" {
		ref = data.QuoteID
	}
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Quote %s generated on %s", ref, data.CreatedDate),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
