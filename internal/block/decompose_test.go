package block

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/document"
)

func sampleModel(t *testing.T, kind document.Kind) *document.Model {
	t.Helper()
	rec := document.Record{
		Number:   "DOC-1",
		Currency: "USD",
		Sections: []document.RawSection{
			{
				Title: "First",
				Items: []document.RawItem{
					{Description: "Alpha", Quantity: "1", UnitPrice: "10.00"},
					{Description: "Beta", Quantity: "2", UnitPrice: "5.00"},
				},
			},
			{
				Title: "Second",
				Items: []document.RawItem{
					{Description: "Gamma", Quantity: "3", UnitPrice: "4.00"},
				},
			},
		},
	}
	m, err := document.Build(rec, kind)
	require.NoError(t, err)
	return m
}

func TestDecomposeOrder(t *testing.T) {
	m := sampleModel(t, document.KindSectionedInvoice)
	blocks := Decompose(m, Options{HeaderBreak: BreakPreferred, Locale: "en"})

	types := make([]Type, len(blocks))
	for i, b := range blocks {
		types[i] = b.Type
		assert.Equal(t, i, b.Index, "index must follow decomposed order")
		assert.True(t, b.KeepTogether, "every block is atomic")
	}
	assert.Equal(t, []Type{
		TypeSectionHeader, TypeRow, TypeRow, TypeSectionTotal,
		TypeSectionHeader, TypeRow, TypeSectionTotal,
		TypeGrandTotal,
	}, types)
}

func TestDecomposeHeaderBreaks(t *testing.T) {
	m := sampleModel(t, document.KindBillOfQuantities)
	blocks := Decompose(m, Options{HeaderBreak: BreakAlways, Signature: true, Locale: "en"})

	var headers []Block
	for _, b := range blocks {
		if b.Type == TypeSectionHeader {
			headers = append(headers, b)
		}
	}
	require.Len(t, headers, 2)
	assert.Equal(t, BreakNever, headers[0].BreakBefore, "first header opens the document, no break")
	assert.Equal(t, BreakAlways, headers[1].BreakBefore)

	last := blocks[len(blocks)-1]
	assert.Equal(t, TypeSignature, last.Type)
	assert.Equal(t, -1, last.Section)
}

func TestDecomposeItemRowCells(t *testing.T) {
	m := sampleModel(t, document.KindFlatInvoice)
	blocks := Decompose(m, Options{Locale: "en"})

	var row *Block
	for i := range blocks {
		if blocks[i].Type == TypeRow {
			row = &blocks[i]
			break
		}
	}
	require.NotNil(t, row)
	require.Len(t, row.Cells, 6)
	assert.Equal(t, "Alpha", row.Cells[0])
	assert.Equal(t, "1", row.Cells[1])
	assert.Contains(t, row.Cells[5], "10.00")
}

func TestDecomposeTotalsWithBalance(t *testing.T) {
	rec := document.Record{
		Currency: "USD",
		Sections: []document.RawSection{{
			Title: "Work",
			Items: []document.RawItem{{Description: "X", Quantity: "1", UnitPrice: "100.00"}},
		}},
		Paid: "40.00",
	}
	m, err := document.Build(rec, document.KindFlatInvoice)
	require.NoError(t, err)

	blocks := Decompose(m, Options{Locale: "en"})
	gt := blocks[len(blocks)-1]
	require.Equal(t, TypeGrandTotal, gt.Type)
	// Subtotal/Tax/Grand plus Paid/Balance due, as label-amount pairs.
	require.Len(t, gt.Cells, 10)
	assert.Equal(t, "Paid", gt.Cells[6])
	assert.Equal(t, "Balance due", gt.Cells[8])
}

func TestDecomposeStatement(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2024, 6, n, 0, 0, 0, 0, time.UTC) }
	rec := document.Record{
		Currency: "EUR",
		Debits:   []document.RawEntry{{Date: day(3), Reference: "INV-9", Amount: "100.00"}},
		Credits:  []document.RawEntry{{Date: day(8), Reference: "PAY-4", Amount: "60.00"}},
	}
	m, err := document.Build(rec, document.KindStatement)
	require.NoError(t, err)

	blocks := Decompose(m, Options{Locale: "en"})
	require.Len(t, blocks, 4)

	assert.Equal(t, TypeSectionHeader, blocks[0].Type)
	assert.Equal(t, "Statement of Account", blocks[0].Cells[0])

	debit := blocks[1]
	require.Len(t, debit.Cells, 5)
	assert.Equal(t, "2024-06-03", debit.Cells[0])
	assert.NotEmpty(t, debit.Cells[2], "debit column filled")
	assert.Empty(t, debit.Cells[3], "credit column empty for a debit")

	credit := blocks[2]
	assert.Empty(t, credit.Cells[2])
	assert.NotEmpty(t, credit.Cells[3])

	closing := blocks[3]
	assert.Equal(t, TypeGrandTotal, closing.Type)
	assert.Equal(t, "Closing balance", closing.Cells[0])
}

func TestDecomposeNotes(t *testing.T) {
	m := sampleModel(t, document.KindFlatInvoice)
	m.Meta.Notes = "<p>First paragraph</p><p>Second <b>bold</b> paragraph</p>"
	blocks := Decompose(m, Options{Locale: "en"})

	var notes []string
	for _, b := range blocks {
		if b.Type == TypeFreeText {
			notes = append(notes, b.Cells[0])
			assert.Equal(t, -1, b.Section)
		}
	}
	assert.Equal(t, []string{"First paragraph", "Second bold paragraph"}, notes)
}

func TestDecomposeDeterminism(t *testing.T) {
	m := sampleModel(t, document.KindQuotation)
	opts := Options{HeaderBreak: BreakPreferred, Signature: true, Locale: "en"}
	assert.Equal(t, Decompose(m, opts), Decompose(m, opts))
}

func TestDecomposeLaborNote(t *testing.T) {
	rec := document.Record{
		Currency: "USD",
		Sections: []document.RawSection{{
			Title:     "Assembly",
			LaborCost: "100.00",
			Items:     []document.RawItem{{Description: "X", Quantity: "1", UnitPrice: "50.00"}},
		}},
	}
	m, err := document.Build(rec, document.KindSectionedInvoice)
	require.NoError(t, err)
	require.True(t, m.Sections[0].LaborCost.Equal(decimal.RequireFromString("100.00")))

	blocks := Decompose(m, Options{Locale: "en"})
	var total *Block
	for i := range blocks {
		if blocks[i].Type == TypeSectionTotal {
			total = &blocks[i]
		}
	}
	require.NotNil(t, total)
	assert.Contains(t, total.Cells[0], "labor")
}
