package deployer

import (
	"context"

	"github.com/amishk599/resumegen/internal/model"
)

// Renderer turns a render request into text by trying candidates in order.
// *render.Orchestrator satisfies it.
type Renderer interface {
	Render(ctx context.Context, req model.RenderRequest, candidates []string) (model.Rendering, error)
}
