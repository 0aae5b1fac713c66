// Package resource parses MEMLIST.BIN and loads/unpacks the BANK**
// resources it describes, binding the per-part bundle the VM,
// rasterizer, and framebuffer need.
package resource

import "fmt"

// Kind is the MEMLIST resource type tag (§6.1).
type Kind uint8

const (
	KindSound       Kind = 0
	KindMusic       Kind = 1
	KindPolyBank    Kind = 2 // cinematic polygons
	KindPolyBankAlt Kind = 3 // sub-cinematic polygons
	KindPalette     Kind = 4
	KindBytecode    Kind = 5
	KindCinematic   Kind = 6 // other cinematic data
	KindUnused      Kind = 0xFF
)

func (k Kind) String() string {
	switch k {
	case KindSound:
		return "sound"
	case KindMusic:
		return "music"
	case KindPolyBank:
		return "poly-bank"
	case KindPolyBankAlt:
		return "poly-bank-alt"
	case KindPalette:
		return "palette"
	case KindBytecode:
		return "bytecode"
	case KindCinematic:
		return "cinematic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// State is a resource's load state (§3.1).
type State uint8

const (
	StateNotNeeded State = iota
	StateLoaded
	StateRequestedLoad
	StateRequestedPurge
)

// StateEndOfList is the MEMLIST terminator record's state byte (§6.1);
// it is not adjacent to the other states in the original encoding, so
// it is not part of the iota run above.
const StateEndOfList State = 0xFF

// Entry is one addressable resource (§3.1). All fields except data are
// read-only after Load; data is valid only while State == StateLoaded.
type Entry struct {
	ID           uint16
	Kind         Kind
	BankID       uint8
	BankOffset   uint32
	PackedSize   uint16
	UnpackedSize uint16
	State        State

	data []byte
}

// Data returns the loaded payload, or nil if the entry is not Loaded.
func (e *Entry) Data() []byte {
	if e.State != StateLoaded {
		return nil
	}
	return e.data
}

// Part names the four resources a scene-level grouping binds (§3.2).
type Part struct {
	ID                  int
	Palettes            uint16
	Bytecode            uint16
	CinematicPolys      uint16
	SubCinematicPolys   uint16 // 0 means none
}

// PartResources is the bundle LoadPart hands to the engine.
type PartResources struct {
	Palettes            []byte
	Bytecode            []byte
	CinematicSegment    []byte
	SubCinematicSegment []byte
}

// LoadError reports a failure binding a specific resource id (§4.2 failure modes).
type LoadError struct {
	ResourceID uint16
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("resource %d: %v", e.ResourceID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
