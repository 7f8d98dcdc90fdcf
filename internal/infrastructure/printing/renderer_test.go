package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperSize(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		assert.True(t, PaperSizeA4.IsValid())
		assert.True(t, PaperSizeA5.IsValid())
		assert.True(t, PaperSizeReceipt80MM.IsValid())
		assert.False(t, PaperSize("LETTER").IsValid())
		assert.False(t, PaperSize("").IsValid())
	})

	t.Run("dimensions", func(t *testing.T) {
		w, h := PaperSizeA4.Dimensions()
		assert.Equal(t, 210, w)
		assert.Equal(t, 297, h)

		w, h = PaperSizeA5.Dimensions()
		assert.Equal(t, 148, w)
		assert.Equal(t, 210, h)

		w, _ = PaperSizeReceipt80MM.Dimensions()
		assert.Equal(t, 80, w)
	})

	t.Run("receipt detection", func(t *testing.T) {
		assert.True(t, PaperSizeReceipt80MM.IsReceipt())
		assert.False(t, PaperSizeA4.IsReceipt())
	})
}

func TestMargins(t *testing.T) {
	def := DefaultMargins()
	assert.Equal(t, Margins{Top: 15, Right: 10, Bottom: 15, Left: 10}, def)

	receipt := ReceiptMargins()
	assert.Equal(t, Margins{Top: 3, Right: 3, Bottom: 3, Left: 3}, receipt)
}

func TestRenderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError(ErrCodeRenderFailed, "rendering failed", cause)

	assert.Equal(t, "rendering failed: boom", err.Error())
	assert.True(t, errors.Is(err, cause))

	bare := NewRenderError(ErrCodeInvalidHTML, "no content", nil)
	assert.Equal(t, "no content", bare.Error())
}

// Validation runs before any browser interaction, so these tests do not
// need a Chrome instance.
func TestChromedpRenderer_RequestValidation(t *testing.T) {
	renderer, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer renderer.Close()

	ctx := context.Background()

	t.Run("nil request", func(t *testing.T) {
		_, err := renderer.Render(ctx, nil)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
	})

	t.Run("empty html", func(t *testing.T) {
		_, err := renderer.Render(ctx, &RenderRequest{PaperSize: PaperSizeA4})
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
	})

	t.Run("invalid paper size", func(t *testing.T) {
		_, err := renderer.Render(ctx, &RenderRequest{HTML: "<p>hi</p>", PaperSize: "TABLOID"})
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidPaperSize, renderErr.Code)
	})
}

func TestChromedpRenderer_Defaults(t *testing.T) {
	renderer, err := NewChromedpRenderer(&ChromedpConfig{})
	require.NoError(t, err)
	defer renderer.Close()

	assert.Equal(t, defaultChromeTimeout, renderer.config.DefaultTimeout)
	assert.Equal(t, defaultScale, renderer.config.Scale)
}

func TestChromedpRenderer_BuildCompleteHTML(t *testing.T) {
	renderer, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer renderer.Close()

	t.Run("wraps fragment", func(t *testing.T) {
		out := renderer.buildCompleteHTML(&RenderRequest{HTML: "<p>receipt</p>", Title: "Receipt"})
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "<p>receipt</p>")
		assert.Contains(t, out, "Receipt")
	})

	t.Run("keeps complete document", func(t *testing.T) {
		full := "<!DOCTYPE html><html><body>done</body></html>"
		out := renderer.buildCompleteHTML(&RenderRequest{HTML: full})
		assert.Equal(t, full, out)
	})
}

func TestChromedpRenderer_BuildPrintParams(t *testing.T) {
	renderer, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer renderer.Close()

	t.Run("a4 portrait", func(t *testing.T) {
		params := renderer.buildPrintParams(&RenderRequest{
			HTML:      "<p>x</p>",
			PaperSize: PaperSizeA4,
			Margins:   DefaultMargins(),
		})
		assert.InDelta(t, 8.27, params.paperWidth, 0.01)
		assert.InDelta(t, 11.69, params.paperHeight, 0.01)
		assert.False(t, params.landscape)
		assert.False(t, params.displayHeaderFooter)
	})

	t.Run("receipt paper stretches page height", func(t *testing.T) {
		params := renderer.buildPrintParams(&RenderRequest{
			HTML:      "<p>x</p>",
			PaperSize: PaperSizeReceipt80MM,
			Margins:   ReceiptMargins(),
		})
		assert.InDelta(t, mmToInches(80), params.paperWidth, 0.0001)
		assert.InDelta(t, mmToInches(3000), params.paperHeight, 0.0001)
	})

	t.Run("footer forces minimum bottom margin", func(t *testing.T) {
		params := renderer.buildPrintParams(&RenderRequest{
			HTML:       "<p>x</p>",
			PaperSize:  PaperSizeA4,
			Margins:    Margins{Top: 5, Right: 5, Bottom: 5, Left: 5},
			FooterHTML: "<span>page</span>",
		})
		assert.True(t, params.displayHeaderFooter)
		assert.Equal(t, "<span>page</span>", params.footerTemplate)
		assert.InDelta(t, mmToInches(10), params.marginBottom, 0.0001)
	})
}

func TestMMToInches(t *testing.T) {
	assert.InDelta(t, 1.0, mmToInches(25.4), 0.0001)
	assert.InDelta(t, 8.27, mmToInches(210), 0.01)
}
