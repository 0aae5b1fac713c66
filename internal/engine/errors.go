package engine

import "fmt"

// CorruptAssetError reports a decompression or MEMLIST-layout failure
// (§7) — fatal, returned up through Run to cmd/anotherworld.
type CorruptAssetError struct {
	ResourceID uint16
	Err        error
}

func (e *CorruptAssetError) Error() string {
	return fmt.Sprintf("engine: resource %d corrupt: %v", e.ResourceID, e.Err)
}
func (e *CorruptAssetError) Unwrap() error { return e.Err }

// InvalidInstructionError reports a VM fault: an unknown opcode, a
// jump target outside the bytecode, or a call-stack over/underflow
// (§7) — fatal.
type InvalidInstructionError struct {
	Thread int
	Err    error
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("engine: thread %d: %v", e.Thread, e.Err)
}
func (e *InvalidInstructionError) Unwrap() error { return e.Err }

// MissingResourceError reports a part id with no entry in the part
// table, as named by a LOAD opcode or the boot part (§7) —
// recoverable inside afterStep, which logs it and keeps the current
// part. SOUND/MUSIC lookups of missing resources are logged directly
// and do not produce this type.
type MissingResourceError struct {
	ResourceID uint16
	Err        error
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("engine: resource %d unavailable: %v", e.ResourceID, e.Err)
}
func (e *MissingResourceError) Unwrap() error { return e.Err }

// RasterizerClampError reports a polygon whose vertex count exceeded
// the 50-point limit and was clamped (§7) — a warning, never returned
// from any exported function; raster logs it directly (see
// raster.parseFlat) and this type exists only so the engine's error
// taxonomy names the condition for documentation/errors.As callers.
type RasterizerClampError struct {
	Got, Want int
}

func (e *RasterizerClampError) Error() string {
	return fmt.Sprintf("engine: polygon vertex count %d clamped to %d", e.Got, e.Want)
}

// BackendError wraps a failure from the Backend interface (window,
// audio device, input) — fatal.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("engine: backend %s: %v", e.Op, e.Err) }
func (e *BackendError) Unwrap() error { return e.Err }
