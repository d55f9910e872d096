package blocks

import (
	"log/slog"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

// Render строит представление документа через записи реестра.
// Узлы без записи отрисовываются как их дети.
func (r *Registry) Render(nodes []*edtypes.Node) []*render.ViewNode {
	res := make([]*render.ViewNode, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, r.renderNode(n)...)
	}
	return res
}

func (r *Registry) renderNode(n *edtypes.Node) []*render.ViewNode {
	if n.IsText() {
		return []*render.ViewNode{renderLeaf(n)}
	}
	children := r.Render(n.Children)
	b, ok := r.ForNode(n)
	if !ok || b.Render == nil {
		slog.Warn("No block to render node", "type", n.Type)
		return children
	}
	return []*render.ViewNode{b.Render(n, children)}
}

// HTML очищенный HTML документа.
func (r *Registry) HTML(doc *edtypes.Document) (string, error) {
	if doc == nil {
		doc = edtypes.DefaultDocument()
	}
	return render.HTML(r.Render(doc.Children))
}
