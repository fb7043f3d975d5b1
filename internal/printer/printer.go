package printer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
	"github.com/roach88/txtpgen/internal/simplify"
)

const (
	// envelopesLimit keeps lines under the players' line length limit.
	envelopesLimit = 1800
	// SoundsLimit is the sound count above which outputs are marked as
	// problematic.
	SoundsLimit = 150
	// DefaultWemDir is where sources are expected, relative to the output.
	DefaultWemDir = "wem/"
)

var groupTypes = map[playlist.Kind]string{
	playlist.KindSingle:             "S",
	playlist.KindSequenceContinuous: "S",
	playlist.KindSequenceStep:       "S",
	playlist.KindRandomContinuous:   "R",
	playlist.KindRandomStep:         "R",
	playlist.KindLayer:              "L",
}

// Options configure paths and global modifiers.
type Options struct {
	// WemDir prefixes every source path.
	WemDir string
	// Lang adds the language subdir of localized sources.
	Lang bool
	// AltExts prints alternate extensions (logg, lwav).
	AltExts bool
	// BankSkip prints in-bank sources as loose files.
	BankSkip bool
	// SilenceAll writes every volume as muted.
	SilenceAll bool
	// NoEngineLoops drops the #e flag of looping sfx.
	NoEngineLoops bool

	// Selected is the child played by selectable groups; 0 means the first.
	Selected int
	// ExternalPath replaces the unknown name of external sources.
	ExternalPath string
}

// Flags describe what the written text contains.
type Flags struct {
	// Lang is the short language name of localized sources.
	Lang             string
	RandomContinuous bool
	RandomSteps      bool
	Silences         bool
	Streams          bool
	Internals        bool
	Externals        bool
	Unsupported      bool
	// Banks lists the banks that hold internal sources, sorted.
	Banks []string
}

// Printer writes one simplified tree.
type Printer struct {
	tree *playlist.Tree
	res  *simplify.Result
	opts Options

	sb      strings.Builder
	depth   int
	simpler bool

	flags Flags
	banks map[string]bool
}

// New returns a printer for a tree already run through simplify.Run.
func New(tree *playlist.Tree, res *simplify.Result, opts Options) *Printer {
	if opts.WemDir == "" {
		opts.WemDir = DefaultWemDir
	}
	return &Printer{tree: tree, res: res, opts: opts, banks: make(map[string]bool)}
}

// Generate returns the playlist text. Simpler output is meant for
// comparisons only.
func (p *Printer) Generate(simpler bool) string {
	p.sb.Reset()
	p.depth = 0
	p.simpler = simpler

	p.writeNode(p.tree.Root())
	p.sb.WriteString("\n")
	p.writeCommands()
	return p.sb.String()
}

// Flags returns what was found while generating.
func (p *Printer) Flags() Flags {
	f := p.flags
	f.Banks = make([]string, 0, len(p.banks))
	for b := range p.banks {
		f.Banks = append(f.Banks, b)
	}
	sort.Strings(f.Banks)
	return f
}

// HasManySounds reports outputs over SoundsLimit.
func (p *Printer) HasManySounds() bool {
	return p.res.Sounds > SoundsLimit
}

// CrossfadingMultiple reports several sounds that may be muted or faded at
// runtime.
func (p *Printer) CrossfadingMultiple() bool {
	return p.flags.Silences && p.res.Sounds > 1
}

// ignoreSilenced keeps a lone muted sound audible.
func (p *Printer) ignoreSilenced(n *playlist.Node) bool {
	return p.res.Sounds == 1 && n.Silenced
}

func (p *Printer) writeCommands() {
	// raising the volume goes last to lower the chance of clipping
	if vol := p.res.MasterVolume; vol > 0 && !p.simpler {
		fmt.Fprintf(&p.sb, "commands = #v %sdB\n", Repr(vol))
	}
}

func (p *Printer) writeNode(n *playlist.Node) {
	ignorable := n.Ignorable(false, p.simpler)
	if !ignorable {
		p.depth++
	}

	if n.IsSound() {
		p.writeSound(n)
	}
	for _, c := range p.tree.Children(n) {
		p.writeNode(c)
	}
	// groups go after their children
	if n.IsGroup() && !ignorable {
		p.writeGroup(n)
	}

	if !ignorable {
		p.depth--
	}

	if n.Kind == playlist.KindRandomContinuous && len(n.Children) > 1 {
		p.flags.RandomContinuous = true
	}
	if n.IsSteps() && len(n.Children) > 1 {
		p.flags.RandomSteps = true
	}
	if n.Crossfaded || n.Silenced {
		p.flags.Silences = true
	}
}

func (p *Printer) writeGroup(n *playlist.Node) {
	var line, mods, info strings.Builder

	fmt.Fprintf(&line, "group = -%s%d", groupTypes[n.Kind], len(n.Children))
	switch {
	case n.IsSteps() || n.ForceSelectable:
		selected := p.opts.Selected
		if selected == 0 {
			selected = 1
		}
		fmt.Fprintf(&line, ">%d", selected)
	case n.Kind == playlist.KindRandomContinuous:
		line.WriteString(">-")
	}

	volume := ir.FloatVal(n.Volume)
	if p.simpler && !n.Crossfaded {
		volume = 0
	}
	switch {
	case p.opts.SilenceAll:
		mods.WriteString("  #v 0")
	case volume != 0:
		fmt.Fprintf(&mods, "  #v %sdB", Repr(volume))
	}

	// layers are mixed untouched, then volumes tweak the result
	if n.IsLayer() {
		mods.WriteString(" #@layer-v")
	}

	if !p.simpler {
		mods.WriteString(ms(" #p", n.PadBegin))
	}
	mods.WriteString(ms(" #B", n.BodyTime))
	mods.WriteString(ms(" #r", n.TrimBegin))

	envMods, envInfo := p.envelopes(n)
	mods.WriteString(envMods)
	info.WriteString(envInfo)

	if n.Loop != nil {
		switch {
		case *n.Loop == ir.LoopInfinite:
			mods.WriteString(" #@loop")
			if n.LoopEnd {
				mods.WriteString(" #@loop-end")
			}
		case *n.Loop > 1:
			fmt.Fprintf(&mods, " #E #l %d.0", *n.Loop)
		}
	}

	p.writeInfo(&info, n)
	p.writeLine(line.String() + mods.String() + info.String())
}

func (p *Printer) writeInfo(info *strings.Builder, n *playlist.Node) {
	if n.LoopKilled {
		info.WriteString("  ##loop")
		if n.LoopEnd {
			info.WriteString(" #loop-end")
		}
	}
	if n.Crossfaded || n.Silenced {
		info.WriteString("  ##fade")
	}
	if n.FakeEntry {
		info.WriteString("  ##fake-entry")
	}
}

func (p *Printer) writeLine(s string) {
	if p.depth > 1 {
		p.sb.WriteString(strings.Repeat(" ", p.depth-1))
	}
	p.sb.WriteString(s)
	p.sb.WriteString("\n")
}

func (p *Printer) writeSound(n *playlist.Node) {
	var mods, info strings.Builder
	snd := n.Sound
	src := snd.Source

	name := ""
	// midis are sometimes music, sometimes silent sync tracks
	if src != nil && src.MIDI {
		name = "?"
		if !n.Silenced {
			p.flags.Unsupported = true
		}
	}

	lang := ""
	if src != nil && p.opts.Lang && src.Lang != "" && src.Lang != "SFX" {
		lang = src.Lang
		p.flags.Lang = src.LangShort
	}

	switch {
	case snd.Silent:
		name = "?.silent"

	case src == nil:
		name = "?.missing"

	case src.Plugin:
		name = "?.plugin-" + src.PluginName
		switch {
		case src.IsSilencePlugin() && src.PluginDuration != nil:
			mods.WriteString(ms(" #B", *src.PluginDuration*1000))
		case src.IsSilencePlugin() || n.Silenced:
		default:
			p.flags.Unsupported = true
		}

	case src.External:
		if p.opts.ExternalPath != "" {
			name = p.opts.ExternalPath
		} else {
			name = "?" + name + "(?).wem"
		}
		p.flags.Externals = true
		// external ids are shared between objects
		fmt.Fprintf(&info, "  ##external %d [obj %d]", src.TID, src.SourceID)

	case src.Internal && !p.opts.BankSkip:
		ext := src.Ext(p.opts.AltExts)
		switch {
		case src.BankName != "" && p.simpler:
			// the same media may be loaded from several banks
			name += fmt.Sprintf("banks/%d.%s", src.TID, ext)
		case src.BankName != "":
			name += p.dir(lang) + fmt.Sprintf("%s #s%d", src.BankName, src.MediaIndex+1)
			fmt.Fprintf(&info, "  ##%d.%s", src.TID, ext)
		default:
			name = "?" + name + fmt.Sprintf("%d.%s", src.TID, ext)
			info.WriteString("  ##other bnk?")
			p.flags.Unsupported = true
		}
		if src.MIDI {
			info.WriteString(" ##unsupported wmid")
		}
		p.flags.Internals = true
		if src.BankName != "" {
			p.banks[src.BankName] = true
		}

	default:
		name += p.dir(lang) + fmt.Sprintf("%d.%s", src.TID, src.Ext(p.opts.AltExts))
		p.flags.Streams = true
	}

	ignoreSilenced := p.ignoreSilenced(n)

	if snd.Clip {
		mods.WriteString(p.clipMods(n))
	} else {
		mods.WriteString(p.sfxMods(n))
	}

	volume := ir.FloatVal(n.Volume)
	if p.simpler && !n.Crossfaded {
		volume = 0
	}
	silenceLine := p.opts.SilenceAll || (n.Silenced && !ignoreSilenced)
	if volume != 0 {
		if ignoreSilenced {
			fmt.Fprintf(&info, "  ##v %sdB", Repr(volume))
		} else {
			fmt.Fprintf(&mods, "  #v %sdB", Repr(volume))
		}
	}

	if n.LoopAnchor {
		mods.WriteString(" #@loop")
		if n.LoopEnd {
			mods.WriteString(" #@loop-end")
		}
	}

	envMods, envInfo := p.envelopes(n)
	mods.WriteString(envMods)
	info.WriteString(envInfo)

	p.writeInfo(&info, n)

	if silenceLine {
		name = "?" + name
	}
	p.writeLine(name + mods.String() + info.String())
}

func (p *Printer) dir(lang string) string {
	if lang == "" {
		return p.opts.WemDir
	}
	return p.opts.WemDir + lang + "/"
}

func (p *Printer) envelopes(n *playlist.Node) (string, string) {
	if len(n.Envelopes) == 0 || p.simpler {
		return "", ""
	}

	var envs strings.Builder
	info := ""
	for _, e := range n.Envelopes {
		fmt.Fprintf(&envs, " #m0^%s~%s=%c@-1~%s+%s~-1",
			sec(e.Vol1), sec(e.Vol2), e.Shape, sec(e.Time1), sec(e.Time2))
		if envs.Len() >= envelopesLimit {
			info = " ##more envelopes..."
			break
		}
	}
	return envs.String(), info
}

// sfxMods always writes loop flags: sources may carry loop points that
// must be ignored when the object doesn't loop.
func (p *Printer) sfxMods(n *playlist.Node) string {
	var mods strings.Builder
	if n.Loop == nil || *n.Loop == ir.LoopNone {
		mods.WriteString(" #i")
	} else {
		if !p.opts.NoEngineLoops {
			mods.WriteString(" #e")
		}
		if *n.Loop > 1 {
			fmt.Fprintf(&mods, " #l %d.0", *n.Loop)
		}
	}
	if !p.simpler {
		mods.WriteString(ms(" #p", n.PadBegin))
	}
	return mods.String()
}

// clipMods writes clip timing. A body longer than the source (minus the
// end trim) means the clip repeats, which only full loops can do.
func (p *Printer) clipMods(n *playlist.Node) string {
	var mods strings.Builder
	snd := n.Sound
	loops := !snd.Silent && n.BodyTime-n.TrimEnd > snd.FSD

	switch {
	case snd.Silent:
	case loops:
		mods.WriteString(" #E")
	default:
		mods.WriteString(" #i")
	}

	mods.WriteString(ms(" #p", n.PadBegin))
	if loops {
		mods.WriteString(ms(" #B", n.BodyTime))
	} else {
		mods.WriteString(ms(" #b", n.BodyTime))
	}
	mods.WriteString(ms(" #r", n.TrimBegin))
	mods.WriteString(ms(" #R", n.TrimEnd))
	mods.WriteString(ms(" #P", n.PadEnd))
	return mods.String()
}
