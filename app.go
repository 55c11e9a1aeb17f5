// Package quarry wires the editor backend together: configuration,
// logging, the brush document, grid snapping, handle tools and the
// scene script engine, behind JSON-serializable result types a
// frontend binding layer can consume directly.
package quarry

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/quarry3d/quarry/pkg/brush"
	"github.com/quarry3d/quarry/pkg/config"
	"github.com/quarry3d/quarry/pkg/document"
	"github.com/quarry3d/quarry/pkg/grid"
	"github.com/quarry3d/quarry/pkg/picker"
	"github.com/quarry3d/quarry/pkg/script"
	"github.com/quarry3d/quarry/pkg/tessellate"
	"github.com/quarry3d/quarry/pkg/tool"
)

// colorPalette assigns distinct colors to brushes by index.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the editor backend. It owns the document, the grid and the
// script engine, and exposes methods shaped for frontend bindings.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	doc    *document.Document
	grid   *grid.Grid
	engine *script.Engine
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of a script evaluation.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp builds an App from the given configuration. A nil cfg uses
// the defaults.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := cfg.Logging.NewLogger(false)

	e := cfg.World.Extent
	world := sdf.Box3{
		Min: v3.Vec{X: -e, Y: -e, Z: -e},
		Max: v3.Vec{X: e, Y: e, Z: e},
	}

	engine := script.NewEngine(world)
	engine.SetTimeout(cfg.Script.Timeout)

	return &App{
		cfg:    cfg,
		logger: logger,
		doc:    document.New(world, document.WithLogger(logger)),
		grid:   grid.New(cfg.Grid.Size),
		engine: engine,
	}
}

// Document returns the brush document.
func (a *App) Document() *document.Document { return a.doc }

// Grid returns the snapping grid.
func (a *App) Grid() *grid.Grid { return a.grid }

// Picker returns a handle picker over the document's selection.
func (a *App) Picker() *picker.Picker {
	return picker.New(a.doc, a.cfg.Editor.HandleRadius)
}

// VertexTool returns a vertex-editing tool bound to the document.
func (a *App) VertexTool(sink tool.VisualSink) *tool.Tool {
	return tool.NewVertexTool(a.doc, a.grid, sink)
}

// EdgeTool returns an edge-editing tool bound to the document.
func (a *App) EdgeTool(sink tool.VisualSink) *tool.Tool {
	return tool.NewEdgeTool(a.doc, a.grid, sink)
}

// FaceTool returns a face-editing tool bound to the document.
func (a *App) FaceTool(sink tool.VisualSink) *tool.Tool {
	return tool.NewFaceTool(a.doc, a.grid, sink)
}

// Evaluate runs Lisp source through the script engine and returns the
// resulting meshes without touching the document. This is the preview
// path for a live script editor.
func (a *App) Evaluate(source string) EvalResult {
	result, _ := a.evaluate(source)
	return result
}

func (a *App) evaluate(source string) (EvalResult, []*brush.Brush) {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	brushes, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("script evaluation failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result, nil
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result, nil
	}

	for i, m := range tessellate.Brushes(brushes) {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result, brushes
}

// LoadScene evaluates Lisp source and, on success, replaces the
// document contents with the emitted brushes as a single undoable
// step. A failed evaluation leaves the document untouched.
func (a *App) LoadScene(source string) EvalResult {
	result, brushes := a.evaluate(source)
	if len(result.Errors) > 0 {
		return result
	}

	fail := func(err error) EvalResult {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if err := a.doc.Begin("load scene"); err != nil {
		return fail(err)
	}
	existing := append([]*brush.Brush(nil), a.doc.Brushes()...)
	for _, b := range existing {
		if err := a.doc.RemoveBrush(b); err != nil {
			a.doc.Cancel()
			return fail(err)
		}
	}
	for _, b := range brushes {
		if err := a.doc.AddBrush(b); err != nil {
			a.doc.Cancel()
			return fail(err)
		}
	}
	if err := a.doc.End(); err != nil {
		return fail(err)
	}

	a.logger.Info("scene loaded", zap.Int("brushes", len(brushes)))
	return result
}

// Meshes tessellates the current document contents for rendering.
func (a *App) Meshes() []MeshData {
	meshes := tessellate.Brushes(a.doc.Brushes())
	out := make([]MeshData, len(meshes))
	for i, m := range meshes {
		out[i] = MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		}
	}
	return out
}
