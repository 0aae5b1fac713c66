package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/anotherworld-go/engine/internal/arena"
	"github.com/anotherworld-go/engine/internal/decomp"
)

// BitmapSink receives a decoded bitmap resource so it can be copied
// directly into page 0, per §4.2: "If the loaded resource is a
// bitmap, it is copied directly to page 0 instead of being retained."
type BitmapSink func(pixels []byte)

// Manager owns the resource table, the arena backing loaded payloads,
// and the open bank files for the current data directory.
type Manager struct {
	dataDir string
	entries []Entry
	arena   *arena.Arena
	banks   map[uint8]*os.File
	onBitmap BitmapSink
}

// Load parses MEMLIST.BIN under dataDir and returns a ready Manager.
// The table is read-only afterward; only States mutate.
func Load(dataDir string) (*Manager, error) {
	f, err := os.Open(filepath.Join(dataDir, "MEMLIST.BIN"))
	if err != nil {
		return nil, fmt.Errorf("resource: opening MEMLIST.BIN: %w", err)
	}
	defer f.Close()

	entries, err := parseMemlist(f)
	if err != nil {
		return nil, err
	}
	return &Manager{
		dataDir: dataDir,
		entries: entries,
		arena:   arena.New(arena.DefaultSize),
		banks:   make(map[uint8]*os.File),
	}, nil
}

// SetBitmapSink installs the callback used for directly-blitted
// bitmap resources (§4.2). Resource Kind KindCinematic (type 6) is
// treated as the bitmap-style payload: once a sink is installed,
// loadOne hands every loaded type-6 entry to it instead of keeping it
// in the arena.
func (m *Manager) SetBitmapSink(sink BitmapSink) { m.onBitmap = sink }

// Entries exposes the read-only resource table for introspection/tests.
func (m *Manager) Entries() []Entry { return append([]Entry(nil), m.entries...) }

// Data returns the loaded payload for id, or an error if id is
// unknown or not currently Loaded (used by VM-driven play/load
// opcodes that expect their resource already bound by a prior
// load_part/request_load, §4.2).
func (m *Manager) Data(id uint16) ([]byte, error) {
	idx, err := m.indexOf(id)
	if err != nil {
		return nil, err
	}
	d := m.entries[idx].Data()
	if d == nil {
		return nil, fmt.Errorf("resource %d: not loaded", id)
	}
	return d, nil
}

// RequestLoad marks a resource id for loading on the next Update.
func (m *Manager) RequestLoad(id uint16) error {
	idx, err := m.indexOf(id)
	if err != nil {
		return err
	}
	m.entries[idx].State = StateRequestedLoad
	return nil
}

// InvalidateAll marks every Loaded entry RequestedPurge and resets the
// arena's high-water mark to zero (§4.2).
func (m *Manager) InvalidateAll() {
	for i := range m.entries {
		if m.entries[i].State == StateLoaded {
			m.entries[i].State = StateRequestedPurge
			m.entries[i].data = nil
		}
	}
	m.arena.Reset()
}

// Update loads every RequestedLoad entry, in ascending id order, and
// clears every RequestedPurge entry to NotNeeded (§4.2).
func (m *Manager) Update() error {
	order := make([]int, 0, len(m.entries))
	for i := range m.entries {
		if m.entries[i].State == StateRequestedLoad {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool { return m.entries[order[a]].ID < m.entries[order[b]].ID })

	for _, idx := range order {
		if err := m.loadOne(idx); err != nil {
			return err
		}
	}
	for i := range m.entries {
		if m.entries[i].State == StateRequestedPurge {
			m.entries[i].State = StateNotNeeded
		}
	}
	return nil
}

func (m *Manager) loadOne(idx int) error {
	e := &m.entries[idx]
	raw, err := m.readBank(e.BankID, e.BankOffset, int(e.PackedSize))
	if err != nil {
		return &LoadError{ResourceID: e.ID, Err: err}
	}

	var payload []byte
	if e.PackedSize == e.UnpackedSize {
		payload = raw
	} else {
		payload, err = decomp.Decompress(raw)
		if err != nil {
			return &LoadError{ResourceID: e.ID, Err: fmt.Errorf("decompress: %w", err)}
		}
	}

	if e.Kind == KindCinematic && m.onBitmap != nil {
		m.onBitmap(payload)
		e.State = StateNotNeeded
		e.data = nil
		return nil
	}

	dst, err := m.arena.Alloc(len(payload))
	if err != nil {
		return &LoadError{ResourceID: e.ID, Err: err}
	}
	copy(dst, payload)
	e.data = dst
	e.State = StateLoaded
	return nil
}

func (m *Manager) readBank(bankID uint8, offset uint32, size int) ([]byte, error) {
	f, err := m.bankFile(bankID)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := f.ReadAt(buf, int64(offset))
	if err != nil && n != size {
		return nil, fmt.Errorf("bank %d: short read at offset %d: %w", bankID, offset, err)
	}
	return buf, nil
}

func (m *Manager) bankFile(bankID uint8) (*os.File, error) {
	if f, ok := m.banks[bankID]; ok {
		return f, nil
	}
	name := fmt.Sprintf("BANK%02d", bankID)
	f, err := os.Open(filepath.Join(m.dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	m.banks[bankID] = f
	return f, nil
}

func (m *Manager) indexOf(id uint16) (int, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("resource: unknown id %d: %w", id, errMissingResource)
}

// Close releases open bank file handles.
func (m *Manager) Close() error {
	var firstErr error
	for _, f := range m.banks {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoadPart purges all loaded resources, loads exactly the four
// resources the part names, and returns the bundle bound to the VM,
// rasterizer, and framebuffer (§4.2 load_part).
func (m *Manager) LoadPart(part Part) (*PartResources, error) {
	m.InvalidateAll()

	ids := []uint16{part.Palettes, part.Bytecode, part.CinematicPolys}
	if part.SubCinematicPolys != 0 {
		ids = append(ids, part.SubCinematicPolys)
	}
	for _, id := range ids {
		if err := m.RequestLoad(id); err != nil {
			return nil, err
		}
	}
	if err := m.Update(); err != nil {
		return nil, err
	}

	get := func(id uint16) ([]byte, error) {
		idx, err := m.indexOf(id)
		if err != nil {
			return nil, err
		}
		d := m.entries[idx].Data()
		if d == nil {
			return nil, fmt.Errorf("resource %d: not loaded after part load", id)
		}
		return d, nil
	}

	pal, err := get(part.Palettes)
	if err != nil {
		return nil, err
	}
	byc, err := get(part.Bytecode)
	if err != nil {
		return nil, err
	}
	poly, err := get(part.CinematicPolys)
	if err != nil {
		return nil, err
	}
	var subPoly []byte
	if part.SubCinematicPolys != 0 {
		subPoly, err = get(part.SubCinematicPolys)
		if err != nil {
			return nil, err
		}
	}

	return &PartResources{
		Palettes:            pal,
		Bytecode:            byc,
		CinematicSegment:    poly,
		SubCinematicSegment: subPoly,
	}, nil
}
