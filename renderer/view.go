package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/camera"
	"github.com/pthm-cable/miasma/game"
	"github.com/pthm-cable/miasma/systems"
	"github.com/pthm-cable/miasma/ui"
)

const controlsLegend = "Space: Pause | PgUp/PgDn: Floor | +/-: Speed | Wheel: Zoom | RMB: Pan | LMB: Light | Tab: Overlays | Home: Reset"

// View is the interactive viewer: camera, input, field and wisp layers,
// and the UI panels.
type View struct {
	title            string
	screenW, screenH int32

	cam   *camera.Camera
	field *FieldRenderer
	light *LightRenderer
	wisps *WispRenderer
	flow  *FlowRenderer
	rooms *RoomRenderer

	overlays *ui.OverlayRegistry
	controls *ui.ControlsPanel
	hud      *ui.HUD
	perf     *ui.PerfPanel
	probe    *ui.ProbePanel

	grid          *systems.FieldGrid // grid the camera was fitted to
	floor         int
	speed         int
	time          float32
	pressureScale float32
	transforms    []game.RenderTransform
}

// NewView creates a viewer for a window of the given size. Call after the
// raylib window exists.
func NewView(title string, screenW, screenH int32, maxPressure float32) *View {
	return &View{
		title:         title,
		screenW:       screenW,
		screenH:       screenH,
		cam:           camera.New(float32(screenW), float32(screenH), 1, 1),
		field:         NewFieldRenderer(),
		light:         NewLightRenderer(),
		wisps:         NewWispRenderer(),
		flow:          NewFlowRenderer(),
		rooms:         NewRoomRenderer(),
		overlays:      ui.NewOverlayRegistry(),
		controls:      ui.NewControlsPanel(10, 100, 200),
		hud:           ui.NewHUD(),
		perf:          ui.NewPerfPanel(screenW-300, 110),
		probe:         ui.NewProbePanel(screenW-230, 10, 220, maxPressure),
		speed:         1,
		pressureScale: 1,
	}
}

// Speed returns the number of engine steps to run per frame.
func (v *View) Speed() int {
	return v.speed
}

// Floor returns the floor being shown.
func (v *View) Floor() int {
	return v.floor
}

// Overlays exposes the overlay toggles.
func (v *View) Overlays() *ui.OverlayRegistry {
	return v.overlays
}

// syncLevel refits the camera when the engine's grid changes.
func (v *View) syncLevel(g *game.Game) {
	grid := g.Grid()
	if grid == v.grid {
		return
	}
	v.grid = grid
	v.floor = 0
	if grid == nil {
		return
	}
	size := grid.WorldSize()
	v.cam.SetWorld(size.X, size.Y)
	v.cam.Reset()
}

// HandleInput applies keyboard and mouse input for this frame.
func (v *View) HandleInput(g *game.Game) {
	v.syncLevel(g)

	if rl.IsWindowResized() {
		v.screenW = int32(rl.GetScreenWidth())
		v.screenH = int32(rl.GetScreenHeight())
		v.cam.Resize(float32(v.screenW), float32(v.screenH))
		v.perf.SetPosition(v.screenW-300, 110)
		v.probe.SetPosition(v.screenW-230, 10)
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		switch key {
		case rl.KeySpace:
			g.SetPaused(!g.Paused())
		case rl.KeyTab:
			v.controls.Toggle()
		case rl.KeyHome:
			v.cam.Reset()
		case rl.KeyPageUp:
			v.setFloor(g, v.floor+1)
		case rl.KeyPageDown:
			v.setFloor(g, v.floor-1)
		case rl.KeyEqual, rl.KeyKpAdd:
			v.speed = min(v.speed*2, 16)
		case rl.KeyMinus, rl.KeyKpSubtract:
			v.speed = max(v.speed/2, 1)
		default:
			if id, on, ok := v.overlays.HandleKeyPress(key); ok && id == ui.OverlayLightMap {
				g.UseLightMap(on)
			}
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X/v.cam.Zoom, -d.Y/v.cam.Zoom)
	}

	panSpeed := 400 / v.cam.Zoom * rl.GetFrameTime()
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !v.controls.IsVisible() {
		g.RevealAt(v.mouseWorld(), 2.5, 1)
	}
}

func (v *View) setFloor(g *game.Game, f int) {
	if grid := g.Grid(); grid != nil {
		v.floor = max(0, min(f, grid.Ext.D-1))
	}
}

// mouseWorld returns the mouse position at mid-height of the shown floor.
func (v *View) mouseWorld() systems.Vec3 {
	m := rl.GetMousePosition()
	wx, wy := v.cam.ScreenToWorld(m.X, m.Y)
	var band float32 = 1
	if v.grid != nil {
		band = v.grid.BandHeight
	}
	return systems.Vec3{X: wx, Y: wy, Z: (float32(v.floor) + 0.5) * band}
}

// Draw renders one frame. Call between rl.BeginDrawing and rl.EndDrawing.
func (v *View) Draw(g *game.Game) {
	dt := rl.GetFrameTime()
	v.time += dt

	rl.ClearBackground(rl.Color{R: 12, G: 12, B: 14, A: 255})

	grid := g.Grid()
	if grid == nil {
		rl.DrawText("No level loaded", v.screenW/2-80, v.screenH/2, 20, rl.Gray)
		v.hud.DrawControls(v.screenH, controlsLegend)
		return
	}
	v.drawWorld(g, grid, dt)
	v.drawUI(g, grid)
}

// drawWorld draws the enabled world layers of the shown floor.
func (v *View) drawWorld(g *game.Game, grid *systems.FieldGrid, dt float32) {
	size := grid.WorldSize()
	cfg := g.Config()

	v.rooms.DrawFloorPlan(v.cam, size.X, size.Y)

	if v.overlays.IsEnabled(ui.OverlayPressure) {
		v.updatePressureScale(grid)
		v.field.Update(grid, v.floor, v.pressureScale)
		v.field.Draw(v.cam, size.X, size.Y, v.time)
	}
	if v.overlays.IsEnabled(ui.OverlayFlow) {
		v.flow.Draw(v.cam, grid, v.floor, float32(cfg.Solver.MaxVelocity))
	}
	if v.overlays.IsEnabled(ui.OverlayWisps) {
		v.transforms = g.RenderTransforms(v.transforms)
		v.wisps.Draw(v.cam, v.transforms, v.floor, grid.BandHeight, grid.Ext.D)
	}
	if v.overlays.IsEnabled(ui.OverlayLightMap) {
		v.light.Update(g.Lights(), grid.Ext, v.floor)
		v.light.Draw(v.cam, size.X, size.Y, dt)
	}
	if v.overlays.IsEnabled(ui.OverlayRooms) {
		v.rooms.Draw(v.cam, g.Rooms(), v.floor, grid.CellSize, g.Modifiers())
	}
}

// Snapshot renders the world layers of floor into an offscreen target the
// size of the view and writes it to path as PNG. UI panels are left out.
func (v *View) Snapshot(g *game.Game, floor int, path string) error {
	v.syncLevel(g)
	grid := g.Grid()
	if grid == nil {
		return fmt.Errorf("snapshot: no level loaded")
	}
	v.setFloor(g, floor)
	v.pressureScale = max(floorPeak(grid, v.floor), 0.25)

	target := rl.LoadRenderTexture(v.screenW, v.screenH)
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Color{R: 12, G: 12, B: 14, A: 255})
	v.drawWorld(g, grid, 0)
	rl.EndTextureMode()

	// Render textures are stored bottom-up
	img := rl.LoadImageFromTexture(target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("snapshot: failed to export %s", path)
	}
	return nil
}

// updatePressureScale eases the heatmap scale toward the floor's peak so
// the fog stays readable as total pressure grows and shrinks.
func (v *View) updatePressureScale(grid *systems.FieldGrid) {
	target := max(floorPeak(grid, v.floor), 0.25)
	v.pressureScale += (target - v.pressureScale) * 0.05
}

func (v *View) drawUI(g *game.Game, grid *systems.FieldGrid) {
	cfg := g.Config()
	name := ""
	if n, ok := g.Level().(interface{ Name() string }); ok {
		name = n.Name()
	}

	v.hud.Draw(ui.HUDData{
		Title:         v.title,
		Layout:        name,
		Tick:          g.Tick(),
		SimTime:       float64(g.Tick()) * cfg.Sim.DT,
		Wisps:         g.WispCount(),
		MaxWisps:      cfg.Spawner.MaxParticles,
		TotalPressure: grid.TotalPressure(),
		Floor:         v.floor,
		Floors:        grid.Ext.D,
		Speed:         v.speed,
		FPS:           rl.GetFPS(),
		Paused:        g.Paused(),
	})
	v.controls.Draw(v.overlays)

	if v.overlays.IsEnabled(ui.OverlayProbe) {
		if probe, ok := g.Probe(v.mouseWorld()); ok {
			v.probe.Draw(probe)
		}
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.Draw(g.Perf().Stats(), g.Registry())
	}

	v.hud.DrawControls(v.screenH, controlsLegend)
}

// floorPeak returns the highest pressure on floor z.
func floorPeak(grid *systems.FieldGrid, z int) float32 {
	n := grid.Ext.W * grid.Ext.H
	base := z * n
	var peak float32
	for _, p := range grid.Pressure[base : base+n] {
		peak = max(peak, p)
	}
	return peak
}

// Unload frees GPU resources.
func (v *View) Unload() {
	v.field.Unload()
	v.light.Unload()
}
