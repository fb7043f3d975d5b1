package ir

// Plugin ids with special handling.
const (
	PluginSilence = 0x00650002
	PluginMIDI    = 0x00100001
)

// PluginNames names the generator plugins printed as "?.plugin-<name>".
var PluginNames = map[uint32]string{
	0x00640002:    "sine",
	PluginSilence: "silence",
	0x00660002:    "tone",
}

// IgnorablePlugins generate no sound (motion data and similar).
var IgnorablePlugins = map[uint32]bool{
	0x01950002: true,
	0x01990002: true,
}

// Source describes the audio data a sound leaf plays.
type Source struct {
	// TID is the media id (file id for streams, media index key for
	// in-bank data).
	TID uint32
	// SourceID is the owner object id, used for the info trace.
	SourceID uint32

	PluginID   uint32
	PluginName string
	Codec      int

	Plugin    bool
	MIDI      bool
	External  bool
	Internal  bool
	Ignorable bool

	// PluginDuration is the configured length (seconds) of a silence
	// generator plugin; nil for every other source.
	PluginDuration *float64

	Extension    string
	ExtensionAlt string
	Lang         string
	LangShort    string

	// BankName names the bank holding internal media; MediaIndex is the
	// zero-based subsong position inside it.
	BankName   string
	MediaIndex int

	Version int
}

// IsSilencePlugin reports a silence generator.
func (s *Source) IsSilencePlugin() bool {
	return s.Plugin && s.PluginID == PluginSilence
}

// Ext returns the extension to print, honouring alt extensions.
func (s *Source) Ext(alt bool) string {
	if alt && s.ExtensionAlt != "" {
		return s.ExtensionAlt
	}
	return s.Extension
}

// Sound is the payload of a playlist leaf.
type Sound struct {
	Source *Source
	// NodeID is the sid of the object that produced the leaf.
	NodeID uint32

	Silent bool
	Clip   bool

	// Clip offsets in milliseconds: play-at, begin trim, end trim, and
	// source duration.
	FPA float64
	FBT float64
	FET float64
	FSD float64

	Automations []Automation
}

// Clone returns a deep copy of s.
func (s *Sound) Clone() *Sound {
	if s == nil {
		return nil
	}
	out := *s
	if s.Source != nil {
		src := *s.Source
		out.Source = &src
	}
	out.Automations = make([]Automation, len(s.Automations))
	for i, a := range s.Automations {
		out.Automations[i] = Automation{Type: a.Type, Points: append([]AutomationPoint(nil), a.Points...)}
	}
	return &out
}
