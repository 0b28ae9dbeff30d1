package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-resample-pipeline/internal/store"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// kindRGB is the fill colour of each kind of step.
var kindRGB = map[model.StepKind][3]uint8{
	model.TransformerKind: {70, 130, 180},
	model.ResamplerKind:   {220, 20, 60},
	model.EstimatorKind:   {46, 139, 87},
	model.PassthroughKind: {169, 169, 169},
}

// DOTDrawer is a drawer that writes the pipeline graph in the Graphviz DOT format.
// Steps are listed in the order they were added.
type DOTDrawer struct {
	graph    graph.Graph[string, string]
	store    *store.OrderedStore[string, string]
	fileName string
}

// NewDOTDrawer creates a new DOT drawer writing to fileName.
func NewDOTDrawer(fileName string) *DOTDrawer {
	d := &DOTDrawer{fileName: fileName}
	_ = d.Reset()

	return d
}

func (d *DOTDrawer) Reset() error {
	d.store = store.NewOrderedStore[string, string]()
	d.graph = graph.NewWithStore(graph.StringHash, d.store, graph.Directed())

	return nil
}

// AddStep adds a step to the pipeline graph, coloured by kind.
func (d *DOTDrawer) AddStep(step *model.StepInfo) error {
	opts := []func(*graph.VertexProperties){}
	if rgb, ok := kindRGB[step.Kind]; ok {
		colour, err := colors.RGB(rgb[0], rgb[1], rgb[2])
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}
		opts = append(opts,
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", colour.ToHEX().String()),
			graph.VertexAttribute("tooltip", step.Type),
		)
	} else {
		opts = append(opts, graph.VertexAttribute("shape", "point"))
	}

	err := d.graph.AddVertex(step.Name, opts...)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw writes the pipeline graph to the file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close() //nolint:errcheck

	err = d.Render(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.fileName)
	}

	return nil
}

// Render writes the pipeline graph to wrt.
func (d *DOTDrawer) Render(wrt io.Writer) error {
	desc, err := generateDOT(d.store)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

// SetTotalTime sets the total time for the step.
func (d *DOTDrawer) SetTotalTime(stepName string, startTime time.Time) error {
	if _, err := d.graph.Vertex(stepName); err != nil {
		return errors.Wrapf(err, "unable to get %s vertex", stepName)
	}

	total := time.Since(startTime)
	d.store.UpdateVertex(stepName, func(properties *graph.VertexProperties) {
		properties.Attributes["xlabel"] = "total: " + total.String()
	})

	return nil
}

const maxRGB = 240

// AddMeasure labels each step with its average fit time and row counts, and colours the link into each step
// from blue (fastest) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := make(map[string]measure.Metric)
	for name, mt := range msr.AllMetrics() {
		_, err := d.graph.Vertex(name)
		if errors.Is(err, graph.ErrVertexNotFound) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "unable to get vertex")
		}
		metrics[name] = mt
	}
	if len(metrics) == 0 {
		return nil
	}

	minValue, maxValue := time.Duration(-1), time.Duration(0)
	for _, mt := range metrics {
		avg := mt.AVGDuration()
		if minValue < 0 || avg < minValue {
			minValue = avg
		}
		if avg > maxValue {
			maxValue = avg
		}
	}

	for name, mt := range metrics {
		in, out := mt.LastRows()
		label := fmt.Sprintf("avg: %s, rows: %d → %d", mt.AVGDuration(), in, out)
		d.store.UpdateVertex(name, func(properties *graph.VertexProperties) {
			properties.Attributes["xlabel"] = label
		})

		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(mt.AVGDuration()-minValue) / float64(maxValue-minValue)
		}
		colour, err := colors.RGB(uint8(maxRGB*fraction), 0, uint8(maxRGB-maxRGB*fraction))
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		err = d.updateIncomingEdges(name, mt.AVGDuration(), colour.ToHEX().String())
		if err != nil {
			return err
		}
	}

	return nil
}

func (d *DOTDrawer) updateIncomingEdges(name string, avg time.Duration, colour string) error {
	predecessors, err := d.graph.PredecessorMap()
	if err != nil {
		return errors.Wrap(err, "unable to get predecessors")
	}

	for parent := range predecessors[name] {
		err := d.graph.UpdateEdge(parent, name,
			graph.EdgeAttribute("label", avg.String()),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", colour),
		)
		if err != nil {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict digraph {
	rankdir="LR";
{{- range .Nodes}}
	"{{.Name}}" [ {{if .XLabel}}label=<{{.Name}} <BR /> <FONT POINT-SIZE="12">{{.XLabel}}</FONT>>, {{end}}{{range .Attributes}}{{.Key}}="{{.Value}}", {{end}}];
{{- end}}
{{- range .Edges}}
	"{{.Source}}" -> "{{.Target}}" [ {{range .Attributes}}{{.Key}}="{{.Value}}", {{end}}];
{{- end}}
}
`

type attribute struct {
	Key   string
	Value string
}

type node struct {
	Name       string
	XLabel     string
	Attributes []attribute
}

type edge struct {
	Source     string
	Target     string
	Attributes []attribute
}

type description struct {
	Nodes []node
	Edges []edge
}

func sortedAttributes(attrs map[string]string, skip string) []attribute {
	out := make([]attribute, 0, len(attrs))
	for key, value := range attrs {
		if key == skip {
			continue
		}
		out = append(out, attribute{Key: key, Value: strings.ReplaceAll(value, `"`, `\"`)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

// generateDOT lists the vertices and edges in the order they were added, so that the output is stable.
func generateDOT(st *store.OrderedStore[string, string]) (description, error) {
	desc := description{}

	vertices, err := st.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}
	for _, vertex := range vertices {
		_, properties, err := st.Vertex(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}
		desc.Nodes = append(desc.Nodes, node{
			Name:       vertex,
			XLabel:     properties.Attributes["xlabel"],
			Attributes: sortedAttributes(properties.Attributes, "xlabel"),
		})
	}

	edges, err := st.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}
	for _, e := range edges {
		desc.Edges = append(desc.Edges, edge{
			Source:     e.Source,
			Target:     e.Target,
			Attributes: sortedAttributes(e.Properties.Attributes, ""),
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
