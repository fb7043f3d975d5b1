package rebuild

import (
	"sort"
	"sync"

	"github.com/roach88/txtpgen/internal/graph"
)

type mediaKey struct {
	bank string
	id   uint32
}

type mediaRef struct {
	bank  string
	index int
}

// MediaIndex maps in-bank media ids to their subsong position inside the
// bank that holds them.
type MediaIndex struct {
	mu      sync.Mutex
	byBank  map[mediaKey]int
	first   map[uint32]mediaRef
	missing map[uint32]bool
}

// NewMediaIndex returns an empty index.
func NewMediaIndex() *MediaIndex {
	return &MediaIndex{
		byBank:  make(map[mediaKey]int),
		first:   make(map[uint32]mediaRef),
		missing: make(map[uint32]bool),
	}
}

// Load registers the media of one bank media chunk. Each id node sits
// inside an entry whose index is the subsong position.
func (m *MediaIndex) Load(chunk graph.Node) {
	bank := ""
	if root := chunk.Root(); root != nil {
		bank = root.Filename()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, nsid := range chunk.Finds(graph.ByType("sid")) {
		parent := nsid.Parent()
		if parent == nil {
			continue
		}
		idx, ok := parent.Attr("index").(int64)
		if !ok {
			continue
		}
		id := graph.Uint(nsid)
		m.byBank[mediaKey{bank: bank, id: id}] = int(idx)
		if _, ok := m.first[id]; !ok {
			m.first[id] = mediaRef{bank: bank, index: int(idx)}
		}
	}
}

// Get returns the bank and position of media id, preferring bank. Misses
// are recorded for the report.
func (m *MediaIndex) Get(bank string, id uint32) (string, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.byBank[mediaKey{bank: bank, id: id}]; ok {
		return bank, idx, true
	}
	if ref, ok := m.first[id]; ok {
		return ref.bank, ref.index, true
	}
	m.missing[id] = true
	return "", 0, false
}

// Missing lists the media ids that were requested but not found.
func (m *MediaIndex) Missing() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint32, 0, len(m.missing))
	for id := range m.missing {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
