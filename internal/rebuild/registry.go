package rebuild

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/txtpgen/internal/graph"
)

// Ref identifies an object inside one bank. Short ids are not unique
// across banks.
type Ref struct {
	Bank uint32
	ID   uint32
}

// entry memoizes one object build. The once makes construction happen
// exactly once per graph node even with concurrent walks.
type entry struct {
	once sync.Once
	obj  *Object
	err  error
}

// Registry indexes the objects of every loaded bank and caches their
// behavior objects for one generation run.
type Registry struct {
	mu sync.Mutex

	refs    map[Ref]graph.Node
	idRefs  map[uint32][]Ref
	byKind  map[Kind][]graph.Node
	banks   map[uint32]string
	entries map[graph.Node]*entry
	used    map[graph.Node]bool

	media *MediaIndex
	diag  *Diagnostics
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		refs:    make(map[Ref]graph.Node),
		idRefs:  make(map[uint32][]Ref),
		byKind:  make(map[Kind][]graph.Node),
		banks:   make(map[uint32]string),
		entries: make(map[graph.Node]*entry),
		used:    make(map[graph.Node]bool),
		media:   NewMediaIndex(),
		diag:    newDiagnostics(),
	}
}

// AddBank registers every object and in-bank media of b. Banks must all be
// added before walking, since objects may point to other banks.
func (r *Registry) AddBank(b graph.Bank) int {
	r.mu.Lock()
	r.banks[b.ID()] = b.Filename()
	r.mu.Unlock()

	if nmedia := b.Find1(graph.ByName("MediaIndex")); nmedia != nil {
		r.media.Load(nmedia)
	}

	items := b.Find1(graph.ByName("listLoadedItem"))
	if items == nil {
		// media-only banks have no objects
		return 0
	}
	count := 0
	for _, node := range items.Children() {
		nsid := node.Find1(graph.ByType("sid"))
		if nsid == nil {
			slog.Debug("rebuild: object without id", "object", node.Name(), "bank", b.Filename())
			continue
		}
		if r.AddRef(b.ID(), graph.Uint(nsid), node) {
			count++
		}
	}
	return count
}

// AddRef registers node as (bank, sid). Repeated refs keep the first node.
func (r *Registry) AddRef(bank, sid uint32, node graph.Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := Ref{Bank: bank, ID: sid}
	if _, ok := r.refs[ref]; ok {
		slog.Debug("rebuild: ignored repeated object", "bank", bank, "id", sid)
		return false
	}
	r.refs[ref] = node
	r.idRefs[sid] = append(r.idRefs[sid], ref)
	kind := KindOf(node.Name())
	r.byKind[kind] = append(r.byKind[kind], node)
	return true
}

// Lookup finds the object (bank, id), falling back to any bank holding id.
// The fallback picks the first registered bank and records the id as
// ambiguous when several banks hold it.
func (r *Registry) Lookup(bank, id uint32) graph.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(bank, id)
}

func (r *Registry) lookup(bank, id uint32) graph.Node {
	if node, ok := r.refs[Ref{Bank: bank, ID: id}]; ok {
		return node
	}
	refs := r.idRefs[id]
	if len(refs) == 0 {
		return nil
	}
	if len(refs) > 1 {
		slog.Debug("rebuild: id found in multiple banks", "id", id, "bank", bank)
		r.diag.ambiguous[id] = true
	}
	return r.refs[refs[0]]
}

// Object returns the behavior object of node, building it on first use,
// and marks it used.
func (r *Registry) Object(node graph.Node) (*Object, error) {
	return r.object(node, true)
}

func (r *Registry) object(node graph.Node, markUsed bool) (*Object, error) {
	if node == nil {
		return nil, nil
	}
	r.mu.Lock()
	e, ok := r.entries[node]
	if !ok {
		e = &entry{}
		r.entries[node] = e
	}
	if markUsed {
		r.used[node] = true
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.obj, e.err = r.build(node)
	})
	return e.obj, e.err
}

// useTransition builds a transition segment now so it counts as used. A
// broken segment fails again when it is generated on its own.
func (r *Registry) useTransition(node graph.Node, caller uint32) {
	if _, err := r.Object(node); err != nil {
		slog.Debug("rebuild: transition object failed", "caller", caller, "error", err)
	}
}

// Resolve returns the object (bank, id) referenced by caller. A missing
// object is recorded and returns nil without error. bankRef is the node
// naming the target bank (play actions), nil when the reference is
// expected in the caller's bank.
func (r *Registry) Resolve(bank, id, caller uint32, bankRef graph.Node) (*Object, error) {
	if bank == 0 || id == 0 {
		return nil, nil
	}
	node := r.Lookup(bank, id)
	if node != nil {
		return r.Object(node)
	}
	r.recordMissing(bank, id, caller, bankRef)
	return nil, nil
}

func (r *Registry) recordMissing(bank, id, caller uint32, bankRef graph.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := Ref{Bank: bank, ID: id}
	if bankRef == nil {
		if !r.diag.missingUnknown[ref] {
			slog.Debug("rebuild: missing object in unknown bank", "id", id, "caller", caller)
		}
		r.diag.missingUnknown[ref] = true
		return
	}

	if name, ok := r.banks[bank]; ok {
		if !r.diag.missingLoaded[ref] {
			slog.Debug("rebuild: missing object in loaded bank", "id", id, "bank", name, "caller", caller)
		}
		r.diag.missingLoaded[ref] = true
		return
	}

	name := graph.Str(bankRef, "hashname")
	if name == "" {
		name = graph.Str(bankRef, "value")
	}
	if !r.diag.missingOthers[ref] {
		slog.Debug("rebuild: missing object in other bank", "id", id, "bank", name, "caller", caller)
	}
	r.diag.missingOthers[ref] = true
	r.diag.missingBanks[name] = true
}

// Objects lists the registered objects of a kind in registration order.
func (r *Registry) Objects(kind Kind) []graph.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]graph.Node(nil), r.byKind[kind]...)
}

// Unused lists the objects of a kind never reached so far.
func (r *Registry) Unused(kind Kind) []graph.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []graph.Node
	for _, node := range r.byKind[kind] {
		if !r.used[node] {
			out = append(out, node)
		}
	}
	return out
}

// Used reports whether node was reached by a walk.
func (r *Registry) Used(node graph.Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used[node]
}

// HasUnused reports unreached music segments with content, the usual sign
// that some banks are missing.
func (r *Registry) HasUnused() bool {
	for _, node := range r.Unused(KindMusicSegment) {
		obj, err := r.object(node, false)
		if err == nil && obj != nil && len(obj.ntids) > 0 {
			return true
		}
	}
	return false
}

// BankName returns the filename of a loaded bank.
func (r *Registry) BankName(id uint32) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.banks[id]
	return name, ok
}

// Media returns the in-bank media index.
func (r *Registry) Media() *MediaIndex {
	return r.media
}

// Diagnostics returns a snapshot of what was recorded so far.
func (r *Registry) Diagnostics() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.diag.report(r.media.Missing())
}

func (r *Registry) unknownProp(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diag.unknownProps[name] = true
}

func (r *Registry) transitionObject() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diag.transitionObjects++
}

// Diagnostics holds the non-fatal problems found while walking.
type Diagnostics struct {
	missingLoaded     map[Ref]bool
	missingOthers     map[Ref]bool
	missingUnknown    map[Ref]bool
	missingBanks      map[string]bool
	ambiguous         map[uint32]bool
	unknownProps      map[string]bool
	transitionObjects int
}

func newDiagnostics() *Diagnostics {
	return &Diagnostics{
		missingLoaded:  make(map[Ref]bool),
		missingOthers:  make(map[Ref]bool),
		missingUnknown: make(map[Ref]bool),
		missingBanks:   make(map[string]bool),
		ambiguous:      make(map[uint32]bool),
		unknownProps:   make(map[string]bool),
	}
}

// Report is a sorted copy of Diagnostics.
type Report struct {
	MissingLoaded  []Ref
	MissingOthers  []Ref
	MissingUnknown []Ref
	// MissingBanks names the banks that would resolve MissingOthers.
	MissingBanks []string
	Ambiguous    []uint32
	UnknownProps []string
	// TransitionObjects counts transition segments found in playlists,
	// which are not generated.
	TransitionObjects int
	MissingMedia      []uint32
}

// Errors returns the references of the report as RefErrors.
func (r Report) Errors() []*RefError {
	var out []*RefError
	for _, ref := range r.MissingLoaded {
		out = append(out, &RefError{Code: ErrCodeMissingReference, Bank: ref.Bank, ID: ref.ID})
	}
	for _, ref := range r.MissingOthers {
		out = append(out, &RefError{Code: ErrCodeMissingReference, Bank: ref.Bank, ID: ref.ID, BankName: "other"})
	}
	for _, ref := range r.MissingUnknown {
		out = append(out, &RefError{Code: ErrCodeMissingReference, Bank: ref.Bank, ID: ref.ID, BankName: "unknown"})
	}
	for _, id := range r.Ambiguous {
		out = append(out, &RefError{Code: ErrCodeAmbiguousReference, ID: id})
	}
	return out
}

func (d *Diagnostics) report(missingMedia []uint32) Report {
	return Report{
		MissingLoaded:     sortedRefs(d.missingLoaded),
		MissingOthers:     sortedRefs(d.missingOthers),
		MissingUnknown:    sortedRefs(d.missingUnknown),
		MissingBanks:      sortedKeys(d.missingBanks),
		Ambiguous:         sortedIDs(d.ambiguous),
		UnknownProps:      sortedKeys(d.unknownProps),
		TransitionObjects: d.transitionObjects,
		MissingMedia:      missingMedia,
	}
}

func sortedRefs(m map[Ref]bool) []Ref {
	out := make([]Ref, 0, len(m))
	for ref := range m {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bank != out[j].Bank {
			return out[i].Bank < out[j].Bank
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedIDs(m map[uint32]bool) []uint32 {
	out := make([]uint32, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
