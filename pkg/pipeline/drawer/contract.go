package drawer

import (
	"io"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// Drawer is an interface that defines the methods for drawing a pipeline graph.
type Drawer interface {
	// Draw writes a representation of the pipeline graph to wrt.
	Draw(wrt io.Writer, pg *model.PipelineGraph) error
}
