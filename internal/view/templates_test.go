package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlux/carlux-inventory/internal/card"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderPartialCard(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	view := card.View{ID: 7, Title: "Ford F-150", Price: "$55,000", ImageAlt: "Ford F-150", StockLabel: "3 in stock", HasStock: true}
	require.NoError(t, engine.RenderPartial(rr, "partials/product_card", view))

	body := rr.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, body, "Ford F-150")
	assert.Contains(t, body, "$55,000")
	assert.Contains(t, body, "3 in stock")
	assert.Contains(t, body, "No image")
}

func TestRenderSkeleton(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, engine.RenderPartial(rr, "partials/card_skeleton", card.Skeleton{Index: 0}))
	assert.Contains(t, rr.Body.String(), "card-skeleton")
}

func TestRenderNilEngine(t *testing.T) {
	var engine *Engine
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/inventory.html", TemplateData{}))
}
