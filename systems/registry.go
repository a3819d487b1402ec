package systems

// SystemInfo describes an engine system for perf display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "field", "particles")
}

// SystemRegistry holds metadata about all systems in tick order.
// This centralizes system naming so the viewer and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// System IDs, in the order the engine runs them each tick.
const (
	SystemFieldSolver = "field_solver"
	SystemSpawner     = "spawner"
	SystemAnimator    = "animator"
	SystemSweep       = "sweep"
	SystemRenderSync  = "render_sync"
	SystemTelemetry   = "telemetry"
)

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: SystemFieldSolver, Name: "Field Solver", Description: "Diffuses and decays miasma pressure", Category: "field"})
	r.Register(SystemInfo{ID: SystemSpawner, Name: "Spawner", Description: "Creates wisps at high pressure cells", Category: "particles"})
	r.Register(SystemInfo{ID: SystemAnimator, Name: "Animator", Description: "Moves and fades wisps", Category: "particles"})
	r.Register(SystemInfo{ID: SystemSweep, Name: "Sweep", Description: "Removes expired wisps", Category: "particles"})
	r.Register(SystemInfo{ID: SystemRenderSync, Name: "Render Sync", Description: "Mirrors wisps into the render registry", Category: "render"})
	r.Register(SystemInfo{ID: SystemTelemetry, Name: "Telemetry", Description: "Collects field statistics", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
