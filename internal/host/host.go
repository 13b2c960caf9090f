// Package host defines the hooks embr's core consumes as opaque external
// services (spec §1: "Out of scope (external collaborators)"). The core
// never reads a file, calls a clock, or spawns a process directly — it
// calls through these interfaces, which cmd/embr supplies concrete
// implementations for.
package host

// SourceLoader hands back the source text for an import name (spec §4.3's
// `import name;`). The core has no opinion on what "name" resolves to —
// a file path, a virtual-module key, an embedded asset — that's the
// host's decision.
type SourceLoader interface {
	Load(name string) (string, error)
}

// Clock is a monotonic-ish time source for the `clock()` native (spec
// §4.5): seconds since some fixed, process-relative epoch.
type Clock interface {
	Monotonic() float64
}

// WallClock is a wall-clock time source for the `time()` native (spec
// §4.5): seconds since the Unix epoch.
type WallClock interface {
	Now() float64
}

// CommandRunner executes a host command for the `term()` native (spec
// §4.5), returning its exit status.
type CommandRunner interface {
	Run(cmd string) (int, error)
}

// Host bundles every hook the VM may need. Any field may be nil; the
// corresponding native then raises a runtime error instead of panicking,
// so an embedding that never calls import/clock/time/term can supply a
// zero-value Host.
type Host struct {
	Loader  SourceLoader
	Clock   Clock
	Wall    WallClock
	Runner  CommandRunner
}
