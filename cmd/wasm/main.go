//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/inamate/artboard/internal/document"
	"github.com/inamate/artboard/internal/engine"
	"github.com/inamate/artboard/internal/geom"
	"github.com/inamate/artboard/internal/gesture"
	"github.com/inamate/artboard/internal/nodegraph"
	"github.com/inamate/artboard/internal/transform"
)

// historyLimit caps undo steps in the browser session.
const historyLimit = 100

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(historyLimit)

	// Create the engine API object
	artboard := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	artboard.Set("loadProject", js.FuncOf(loadProject))
	artboard.Set("loadSampleProject", js.FuncOf(loadSampleProject))
	artboard.Set("setSelection", js.FuncOf(setSelection))
	artboard.Set("setTool", js.FuncOf(setTool))
	artboard.Set("setZoom", js.FuncOf(setZoom))
	artboard.Set("addShape", js.FuncOf(addShape))
	artboard.Set("addText", js.FuncOf(addText))
	artboard.Set("deleteLayers", js.FuncOf(deleteLayers))
	artboard.Set("convertToPath", js.FuncOf(convertToPath))
	artboard.Set("toggleCropMode", js.FuncOf(toggleCropMode))
	artboard.Set("toggleNode", js.FuncOf(toggleNode))
	artboard.Set("deleteNode", js.FuncOf(deleteNode))
	artboard.Set("insertNode", js.FuncOf(insertNode))
	artboard.Set("beginGesture", js.FuncOf(beginGesture))
	artboard.Set("moveGesture", js.FuncOf(moveGesture))
	artboard.Set("endGesture", js.FuncOf(endGesture))
	artboard.Set("cancelGesture", js.FuncOf(cancelGesture))
	artboard.Set("undo", js.FuncOf(undo))
	artboard.Set("redo", js.FuncOf(redo))
	artboard.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	artboard.Set("render", js.FuncOf(render))
	artboard.Set("hitTest", js.FuncOf(hitTest))
	artboard.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	artboard.Set("getDocument", js.FuncOf(getDocument))
	artboard.Set("getSelection", js.FuncOf(getSelection))
	artboard.Set("getSnapLines", js.FuncOf(getSnapLines))
	artboard.Set("getHistoryState", js.FuncOf(getHistoryState))

	// Register on global scope
	js.Global().Set("artboardEngine", artboard)

	// Signal that WASM is ready
	js.Global().Set("artboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func created(id string, err error) interface{} {
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": id})
}

var errMissingArgs = errors.New("missing arguments")

func stringArgs(args []js.Value) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a.Type() == js.TypeString {
			out = append(out, a.String())
		}
	}
	return out
}

func stringArray(v js.Value) []string {
	if v.Type() != js.TypeObject {
		return nil
	}
	ids := make([]string, v.Length())
	for i := range ids {
		ids[i] = v.Index(i).String()
	}
	return ids
}

// --- Command Handlers ---

func loadProject(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return result(errors.New("missing project JSON"))
	}
	return result(eng.LoadProject([]byte(args[0].String())))
}

func loadSampleProject(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}
	eng.LoadSampleProject(projectID)
	return result(nil)
}

func setSelection(this js.Value, args []js.Value) interface{} {
	var ids []string
	if len(args) > 0 {
		ids = stringArray(args[0])
	}
	return result(eng.Editor().SetSelection(ids))
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return result(errMissingArgs)
	}
	return result(eng.Editor().SetTool(document.Tool(args[0].String())))
}

func setZoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return result(errMissingArgs)
	}
	eng.Editor().SetZoom(args[0].Float())
	return result(nil)
}

func addShape(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return result(errMissingArgs)
	}
	at := geom.Vec{X: args[1].Float(), Y: args[2].Float()}
	return created(eng.Editor().AddShape(document.Primitive(args[0].String()), at))
}

func addText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return result(errMissingArgs)
	}
	return created(eng.Editor().AddText(geom.Vec{X: args[0].Float(), Y: args[1].Float()}))
}

func deleteLayers(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return result(errMissingArgs)
	}
	return result(eng.Editor().DeleteLayers(stringArray(args[0])))
}

func convertToPath(this js.Value, args []js.Value) interface{} {
	ids := stringArgs(args)
	if len(ids) < 1 {
		return result(errMissingArgs)
	}
	return result(eng.Editor().ConvertToPath(ids[0]))
}

func toggleCropMode(this js.Value, args []js.Value) interface{} {
	ids := stringArgs(args)
	if len(ids) < 1 {
		return result(errMissingArgs)
	}
	return result(eng.Editor().ToggleCropMode(ids[0]))
}

func toggleNode(this js.Value, args []js.Value) interface{} {
	ids := stringArgs(args)
	if len(ids) < 2 {
		return result(errMissingArgs)
	}
	return result(eng.Editor().ToggleNode(ids[0], ids[1]))
}

func deleteNode(this js.Value, args []js.Value) interface{} {
	ids := stringArgs(args)
	if len(ids) < 2 {
		return result(errMissingArgs)
	}
	return result(eng.Editor().DeleteNode(ids[0], ids[1]))
}

// insertNode(layerId, x, y) takes the click in the layer's percentage space.
func insertNode(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return result(errMissingArgs)
	}
	click := geom.Vec{X: args[1].Float(), Y: args[2].Float()}
	return created(eng.Editor().InsertNode(args[0].String(), click))
}

// gestureRequest is the JSON argument of beginGesture. The pointer is in screen pixels
// relative to the artboard origin.
type gestureRequest struct {
	Kind    transform.Kind   `json:"kind"`
	LayerID string           `json:"layerId"`
	PointID string           `json:"pointId"`
	GuideID string           `json:"guideId"`
	Handle  transform.Handle `json:"handle"`
	Which   nodegraph.Handle `json:"which"`
	X       float64          `json:"x"`
	Y       float64          `json:"y"`
	Shift   bool             `json:"shift"`
}

func beginGesture(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return result(errMissingArgs)
	}
	var req gestureRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return result(fmt.Errorf("decode gesture: %w", err))
	}

	g := eng.Gestures()
	at := geom.Vec{X: req.X, Y: req.Y}
	var err error
	switch req.Kind {
	case transform.KindMove:
		err = g.BeginMove(req.LayerID, at, req.Shift)
	case transform.KindResize:
		err = g.BeginResize(req.Handle, at, req.Shift)
	case transform.KindRotate:
		err = g.BeginRotate(at, req.Shift)
	case transform.KindMoveNode, transform.KindMoveHandle:
		err = g.BeginNode(req.Kind, req.LayerID, req.PointID, req.Which, at, req.Shift)
	case transform.KindPanImage:
		err = g.BeginPan(req.LayerID, at)
	case transform.KindMoveGuide:
		err = g.BeginGuide(req.GuideID, at)
	default:
		err = fmt.Errorf("unknown gesture kind %q", req.Kind)
	}
	return result(err)
}

func moveGesture(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return result(errMissingArgs)
	}
	return result(eng.Gestures().Move(geom.Vec{X: args[0].Float(), Y: args[1].Float()}))
}

func endGesture(this js.Value, args []js.Value) interface{} {
	committed, err := eng.Gestures().Release()
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "committed": committed})
}

func cancelGesture(this js.Value, args []js.Value) interface{} {
	return result(eng.Gestures().Cancel())
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Tick())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getSnapLines(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSnapLines())
}

func getHistoryState(this js.Value, args []js.Value) interface{} {
	undoSteps, redoSteps := eng.History().Depth()
	return js.ValueOf(map[string]interface{}{
		"undo":     undoSteps,
		"redo":     redoSteps,
		"dragging": eng.Gestures().State() == gesture.Dragging,
	})
}
