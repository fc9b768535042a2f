package drawer

import (
	"io"
	"sort"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// DOTDrawer draws pipeline graphs in the Graphviz DOT language.
// Actions are boxes coloured by kind, artifact flows are solid labelled edges and the run
// sequence is dashed.
type DOTDrawer struct {
	attributes map[string]string
}

// NewDOTDrawer creates a DOT drawer. Options set graph level attributes.
func NewDOTDrawer(options ...func(*description)) *DOTDrawer {
	desc := description{Attributes: map[string]string{"rankdir": "LR"}}
	for _, option := range options {
		option(&desc)
	}

	return &DOTDrawer{attributes: desc.Attributes}
}

// Draw writes pg as a DOT digraph.
func (d *DOTDrawer) Draw(wrt io.Writer, pg *model.PipelineGraph) error {
	topo, err := pipeline.Topology(pg)
	if err != nil {
		return errors.Wrapf(err, "unable to build topology of %s", pg.Name)
	}

	desc, err := generateDOT(pg.Name, topo, func(desc *description) {
		for k, v := range d.attributes {
			desc.Attributes[k] = v
		}
	})
	if err != nil {
		return errors.Wrapf(err, "unable to describe %s", pg.Name)
	}

	return renderDOT(wrt, desc)
}

const maxRGB = 240

var kindColours = map[model.StageKind][3]uint8{
	model.SourceKind:       {102, 153, 255},
	model.BuildKind:        {255, 204, 102},
	model.VersionStampKind: {255, 230, 153},
	model.TestKind:         {153, 204, 102},
	model.ApprovalKind:     {255, 102, 102},
}

// kindColour returns the fill colour of an action. Deploys go from blue to red along the
// promotion order.
func kindColour(kind model.StageKind, deployIdx, deployTotal int) (string, error) {
	rgb, ok := kindColours[kind]
	if kind == model.DeployKind {
		fraction := 1.0
		if deployTotal > 1 {
			fraction = float64(deployIdx) / float64(deployTotal-1)
		}
		red := maxRGB * fraction
		rgb, ok = [3]uint8{uint8(red), 96, uint8(maxRGB - red)}, true
	}
	if !ok {
		rgb = [3]uint8{200, 200, 200}
	}

	colour, err := colors.RGB(rgb[0], rgb[1], rgb[2]) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict digraph {{printf "%q" .Name}} {
{{- range $k, $v := .Attributes}}
	{{$k}}={{printf "%q" $v}};
{{- end}}
{{- range .Statements}}
	{{printf "%q" .Source}}{{if .Target}} -> {{printf "%q" .Target}}{{end}} [{{range $k, $v := .Attributes}} {{$k}}={{printf "%q" $v}}{{end}} ];
{{- end}}
}
`

type description struct {
	Name       string
	Attributes map[string]string
	Statements []statement
}

type statement struct {
	Source     string
	Target     string
	Attributes map[string]string
}

// GraphAttribute is a functional option for NewDOTDrawer.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT(name string, topo graph.Graph[string, model.StageSpec], options ...func(*description)) (description, error) {
	desc := description{
		Name:       name,
		Attributes: make(map[string]string),
		Statements: make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	vertices, err := orderedVertices(topo)
	if err != nil {
		return desc, err
	}

	deployTotal := 0
	for _, stage := range vertices {
		if stage.Kind == model.DeployKind {
			deployTotal++
		}
	}

	deployIdx := 0
	for _, stage := range vertices {
		colour, err := kindColour(stage.Kind, deployIdx, deployTotal)
		if err != nil {
			return desc, err
		}
		if stage.Kind == model.DeployKind {
			deployIdx++
		}

		desc.Statements = append(desc.Statements, statement{
			Source: stage.Key(),
			Attributes: map[string]string{
				"label":     stage.Stage + "\n" + stage.Action,
				"shape":     "box",
				"style":     "filled",
				"fillcolor": colour,
			},
		})
	}

	edges, err := topo.Edges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}

	for _, edge := range edges {
		attributes := map[string]string{}
		if edge.Properties.Attributes[pipeline.EdgeKindAttribute] == pipeline.SequenceEdge {
			attributes["style"] = "dashed"
		}
		if artifact := edge.Properties.Attributes[pipeline.EdgeArtifactAttribute]; artifact != "" {
			attributes["label"] = artifact
		}

		desc.Statements = append(desc.Statements, statement{
			Source:     edge.Source,
			Target:     edge.Target,
			Attributes: attributes,
		})
	}

	return desc, nil
}

// orderedVertices returns the actions of topo sorted by their position in the pipeline.
func orderedVertices(topo graph.Graph[string, model.StageSpec]) ([]model.StageSpec, error) {
	adjacencyMap, err := topo.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get adjacency map")
	}

	type positioned struct {
		stage  model.StageSpec
		weight int
	}

	list := make([]positioned, 0, len(adjacencyMap))
	for key := range adjacencyMap {
		stage, properties, err := topo.VertexWithProperties(key)
		if err != nil {
			return nil, errors.Wrap(err, "unable to get vertex properties")
		}
		list = append(list, positioned{stage: stage, weight: properties.Weight})
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].weight < list[j].weight
	})

	out := make([]model.StageSpec, 0, len(list))
	for _, p := range list {
		out = append(out, p.stage)
	}

	return out, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
