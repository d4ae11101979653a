package assemble

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/block"
	"github.com/docpress/docpress/internal/document"
	"github.com/docpress/docpress/internal/pagination"
	"github.com/docpress/docpress/internal/render/pdf"
	"github.com/docpress/docpress/internal/res"
)

func testSetup(t *testing.T) (*pdf.Renderer, *pdf.Chrome) {
	t.Helper()
	meta := document.Metadata{
		Number:   "INV-1",
		Currency: "USD",
		Issuer:   document.Party{Name: "Acme"},
	}
	chrome, err := pdf.NewChrome(context.Background(), meta, document.KindFlatInvoice,
		nil, false, res.NewLoader(""), "test-render", nil)
	require.NoError(t, err)

	geo := pdf.Geometry{
		PageWidth:    595.28,
		PageHeight:   841.89,
		Margin:       36,
		HeaderHeight: chrome.HeaderHeight(),
		FooterHeight: chrome.FooterHeight(),
	}
	return pdf.NewRenderer(geo, "test-render", nil), chrome
}

func testPages() []*pagination.Page {
	mk := func(index int, cells ...string) pagination.Measured {
		return pagination.Measured{
			Block:  block.Block{Type: block.TypeRow, Cells: cells, Index: index},
			Height: 20,
		}
	}
	return []*pagination.Page{
		{
			Blocks:         []pagination.Measured{mk(0, "Alpha", "1", "pcs", "$1.00", "0%", "$1.00")},
			RepeatedHeader: true,
		},
		{
			Blocks:         []pagination.Measured{mk(1, "Beta", "2", "pcs", "$2.00", "0%", "$4.00")},
			RepeatedHeader: true,
		},
	}
}

func TestAssemble(t *testing.T) {
	r, chrome := testSetup(t)
	a := New("test-render", nil)

	artifact, err := a.Assemble(context.Background(), r, chrome, testPages())
	require.NoError(t, err)
	assert.Equal(t, 2, artifact.PageCount())
	assert.True(t, bytes.HasPrefix(artifact.Bytes(), []byte("%PDF")), "artifact is a PDF document")
}

func TestAssembleCanceledDiscardsEverything(t *testing.T) {
	r, chrome := testSetup(t)
	a := New("test-render", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	artifact, err := a.Assemble(ctx, r, chrome, testPages())
	assert.Nil(t, artifact, "no partial artifact on failure")
	require.Error(t, err)

	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 0, rerr.PageIndex)
	assert.Equal(t, "test-render", rerr.RenderID)

	var terr *pdf.TimeoutError
	assert.ErrorAs(t, err, &terr)
}

func TestArtifactWrite(t *testing.T) {
	r, chrome := testSetup(t)
	artifact, err := New("test-render", nil).Assemble(context.Background(), r, chrome, testPages())
	require.NoError(t, err)

	t.Run("writer", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := artifact.WriteTo(&buf)
		require.NoError(t, err)
		assert.Equal(t, int64(buf.Len()), n)
		assert.Equal(t, artifact.Bytes(), buf.Bytes())
	})

	t.Run("file with missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "invoice.pdf")
		require.NoError(t, artifact.WriteFile(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, artifact.Bytes(), data)
	})
}
