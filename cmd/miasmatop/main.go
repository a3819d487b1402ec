// Terminal field monitor - runs the engine and draws one floor of the
// pressure field as a live heatmap in the terminal.
//
// Usage: go run ./cmd/miasmatop -layout systems/layouts/demo_house.yaml
//
// Keys: q/Esc quit, Space pause, [ ] floor, +/- speed, r reset level.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/game"
	"github.com/pthm-cable/miasma/systems"
)

type monitor struct {
	screen tcell.Screen
	g      *game.Game
	house  *systems.HouseLayout

	floor int
	speed int
	scale float32 // eased heatmap scale
	err   string
}

func main() {
	configPath := flag.String("config", "", "Config YAML (empty = defaults)")
	layoutPath := flag.String("layout", "", "House layout (empty = demo house)")
	seed := flag.Int64("seed", 1, "Random seed")
	logPath := flag.String("log", "", "Write JSON logs to this file (empty = discard)")
	flag.Parse()

	// The terminal is ours, logs go to a file or nowhere
	logOut, closeLog := openLog(*logPath)
	defer closeLog()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	house := systems.DemoHouseLayout()
	if *layoutPath != "" {
		if house, err = systems.LoadHouseLayout(*layoutPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load layout: %v\n", err)
			os.Exit(1)
		}
	}

	g, err := game.NewGameWithOptions(game.Options{Seed: *seed, Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}
	defer g.Unload()
	if err := g.LoadHouse(house); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load level: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	m := &monitor{screen: screen, g: g, house: house, speed: 1, scale: 1}
	m.run(time.Duration(cfg.Sim.DT * float64(time.Second)))
}

func (m *monitor) run(tick time.Duration) {
	if tick <= 0 {
		tick = 16 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := m.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !m.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			for i := 0; i < m.speed; i++ {
				m.g.Update()
			}
			m.draw()
		}
	}
}

func (m *monitor) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				m.g.SetPaused(!m.g.Paused())
			case '[':
				m.floor = max(m.floor-1, 0)
			case ']':
				m.floor = min(m.floor+1, m.house.Extents().D-1)
			case '+', '=':
				m.speed = min(m.speed*2, 16)
			case '-':
				m.speed = max(m.speed/2, 1)
			case 'r':
				if err := m.g.LoadHouse(m.house); err != nil {
					m.err = err.Error()
				}
			}
		}
	case *tcell.EventResize:
		m.screen.Sync()
	}
	return true
}

func (m *monitor) draw() {
	m.screen.Clear()
	w, h := m.screen.Size()
	grid := m.g.Grid()
	if grid == nil || w < 10 || h < 4 {
		m.screen.Show()
		return
	}

	m.scale += (max(floorPeak(grid, m.floor), 0.25) - m.scale) * 0.05

	// Heatmap fills everything above the two status lines
	mapH := h - 2
	for sy := 0; sy < mapH; sy++ {
		gy := sy * grid.Ext.H / mapH
		for sx := 0; sx < w; sx++ {
			gx := sx * grid.Ext.W / w
			r, style := shade(grid.PressureAt(gx, gy, m.floor), m.scale)
			m.screen.SetContent(sx, sy, r, nil, style)
		}
	}

	size := grid.WorldSize()
	wispStyle := tcell.StyleDefault.Foreground(tcell.NewRGBColor(250, 250, 210)).Bold(true)
	for _, s := range m.g.Wisps() {
		if _, _, z := grid.CellAt(s.Pos); z != m.floor || s.Visibility < 0.05 {
			continue
		}
		sx := int(s.Pos.X / size.X * float32(w))
		sy := int(s.Pos.Y / size.Y * float32(mapH))
		if sx >= 0 && sx < w && sy >= 0 && sy < mapH {
			gx, gy := sx*grid.Ext.W/w, sy*grid.Ext.H/mapH
			m.screen.SetContent(sx, sy, '*', nil, wispStyle.Background(fogBackground(grid.PressureAt(gx, gy, m.floor), m.scale)))
		}
	}

	cfg := m.g.Config()
	status := fmt.Sprintf(" %s | tick %d | floor %d/%d | wisps %d/%d | pressure %.2f | x%d",
		m.house.Name(), m.g.Tick(), m.floor+1, grid.Ext.D,
		m.g.WispCount(), cfg.Spawner.MaxParticles, grid.TotalPressure(), m.speed)
	if m.g.Paused() {
		status += " | PAUSED"
	}
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(40, 40, 60))
	drawText(m.screen, 0, h-2, w, status, statusStyle)

	help := " q quit  space pause  [ ] floor  +/- speed  r reset"
	if m.err != "" {
		help = " " + m.err
	}
	drawText(m.screen, 0, h-1, w, help, tcell.StyleDefault.Foreground(tcell.ColorGray))

	m.screen.Show()
}

func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		if col >= width {
			return
		}
		s.SetContent(x+col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
}

func openLog(path string) (*os.File, func()) {
	if path == "" {
		f, err := os.Open(os.DevNull)
		if err != nil {
			return os.Stderr, func() {}
		}
		return f, func() { f.Close() }
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	return f, func() { f.Close() }
}
