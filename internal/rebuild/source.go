package rebuild

import (
	"fmt"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
)

// Banks from this version on store every codec as .wem.
const newExtensionVersion = 62

// Banks up to this version store language ids; later ones hash the name.
const languageIDVersion = 120

// Default length of a silence plugin without parameters, in seconds.
const defaultSilenceDuration = 1.0

var oldExtensions = map[int]string{
	0x01: "wav",
	0x02: "wav",
	0x03: "xma",
	0x04: "ogg",
	0x05: "wav",
	0x07: "wav",
}

var languageIDs = map[uint32]string{
	0x00: "SFX",
	0x01: "Arabic",
	0x02: "Bulgarian",
	0x03: "Chinese(HK)",
	0x04: "Chinese(PRC)",
	0x05: "Chinese(Taiwan)",
	0x06: "Czech",
	0x07: "Danish",
	0x08: "Dutch",
	0x09: "English(Australia)",
	0x0A: "English(India)",
	0x0B: "English(UK)",
	0x0C: "English(US)",
	0x0D: "Finnish",
	0x0E: "French(Canada)",
	0x0F: "French(France)",
	0x10: "German",
	0x11: "Greek",
	0x12: "Hebrew",
	0x13: "Hungarian",
	0x14: "Indonesian",
	0x15: "Italian",
	0x16: "Japanese",
	0x17: "Korean",
	0x18: "Latin",
	0x19: "Norwegian",
	0x1A: "Polish",
	0x1B: "Portuguese(Brazil)",
	0x1C: "Portuguese(Portugal)",
	0x1D: "Romanian",
	0x1E: "Russian",
	0x1F: "Slovenian",
	0x20: "Spanish(Mexico)",
	0x21: "Spanish(Spain)",
	0x22: "Spanish(US)",
	0x23: "Swedish",
	0x24: "Turkish",
	0x25: "Ukrainian",
	0x26: "Vietnamese",
}

var languageShortNames = map[string]string{
	"SFX":                  "",
	"Arabic":               "ar",
	"Bulgarian":            "bg",
	"Chinese(HK)":          "zh-hk",
	"Chinese(PRC)":         "zh-cn",
	"Chinese(Taiwan)":      "zh-tw",
	"Czech":                "cs",
	"Danish":               "da",
	"Dutch":                "nl",
	"English(Australia)":   "en-au",
	"English(India)":       "en-in",
	"English(UK)":          "en",
	"English(US)":          "us",
	"Finnish":              "fi",
	"French(Canada)":       "fr-ca",
	"French(France)":       "fr",
	"German":               "de",
	"Greek":                "el",
	"Hebrew":               "he",
	"Hungarian":            "hu",
	"Indonesian":           "id",
	"Italian":              "it",
	"Japanese":             "ja",
	"Korean":               "ko",
	"Latin":                "la",
	"Norwegian":            "no",
	"Polish":               "pl",
	"Portuguese(Brazil)":   "pt-br",
	"Portuguese(Portugal)": "pt",
	"Romanian":             "ro",
	"Russian":              "ru",
	"Slovenian":            "sl",
	"Spanish(Mexico)":      "es-mx",
	"Spanish(Spain)":       "es",
	"Spanish(US)":          "es-us",
	"Swedish":              "sv",
	"Turkish":              "tr",
	"Ukrainian":            "uk",
	"Vietnamese":           "vi",
}

// languageHashes maps hashed language names of newer banks back to names.
var languageHashes = func() map[uint32]string {
	out := make(map[uint32]string, len(languageIDs))
	for _, name := range languageIDs {
		out[gamesync.Hash(name)] = name
	}
	return out
}()

// sourceNodes keeps the graph nodes of a parsed source for the info trace.
type sourceNodes struct {
	nsource     graph.Node
	nfile       graph.Node
	nstreamType graph.Node
	nplugin     graph.Node
}

// parseSource reads one AkBankSourceData.
func (b *builder) parseSource(nbnksrc graph.Node) (*ir.Source, sourceNodes, error) {
	nodes := sourceNodes{
		nsource:     find1(nbnksrc, "sourceID"),
		nfile:       find1(nbnksrc, "uFileID"),
		nstreamType: find1(nbnksrc, "StreamType"),
		nplugin:     find1(nbnksrc, "ulPluginID"),
	}
	if nodes.nsource == nil || nodes.nplugin == nil {
		return nil, nodes, b.unsupported("source without ids", nil)
	}

	src := &ir.Source{
		SourceID: b.obj.SID,
		Internal: graph.Int(nodes.nstreamType) == 0,
		Version:  nbnksrc.Root().Version(),
	}

	// older banks may point to a different file id; in-bank media always
	// goes by source id
	if nodes.nfile == nil || src.Internal {
		nodes.nfile = nodes.nsource
	}
	src.TID = graph.Uint(nodes.nfile)

	plugin := graph.Uint(nodes.nplugin)
	ptype := plugin & 0x000F
	src.Codec = int((plugin >> 16) & 0xFFFF)
	if src.Codec == 0x08 {
		src.External = true
		src.Internal = false
	}
	if ptype != 0x01 {
		src.Plugin = true
		src.PluginID = plugin
		src.PluginName = ir.PluginNames[plugin]
		if src.PluginName == "" {
			src.PluginName = fmt.Sprintf("%08x", plugin)
		}
	}
	src.MIDI = plugin == ir.PluginMIDI
	src.Ignorable = ir.IgnorablePlugins[plugin]

	if err := b.sourceExtension(src); err != nil {
		return nil, nodes, err
	}
	b.sourceLanguage(src, nbnksrc)

	if src.Internal && !src.Plugin {
		bank, idx, ok := b.reg.Media().Get(nbnksrc.Root().Filename(), src.TID)
		if ok {
			src.BankName = bank
			src.MediaIndex = idx
		}
	}

	if src.IsSilencePlugin() {
		if err := b.silenceDuration(src, nbnksrc); err != nil {
			return nil, nodes, err
		}
	}
	return src, nodes, nil
}

func (b *builder) sourceExtension(src *ir.Source) error {
	if src.Plugin {
		return nil
	}
	if src.Version >= newExtensionVersion {
		src.Extension = "wem"
	} else {
		src.Extension = oldExtensions[src.Codec]
		if src.Extension == "" {
			return b.unsupported(fmt.Sprintf("extension not found for old codec %d", src.Codec), nil)
		}
	}
	switch src.Extension {
	case "ogg":
		src.ExtensionAlt = "logg"
	case "wav":
		src.ExtensionAlt = "lwav"
	default:
		src.ExtensionAlt = src.Extension
	}
	return nil
}

// sourceLanguage sets the language of localized sources. In-bank media
// takes the bank language, streams only when flagged.
func (b *builder) sourceLanguage(src *ir.Source, nbnksrc graph.Node) {
	nflag := find1(nbnksrc, "bIsLanguageSpecific")
	if !src.Internal && graph.Int(nflag) == 0 {
		return
	}

	root := nbnksrc.Root()
	nlang := find1(find1(root, "BankHeader"), "dwLanguageID")
	if nlang == nil {
		return
	}
	id := graph.Uint(nlang)

	var name string
	if root.Version() <= languageIDVersion {
		name = languageIDs[id]
	} else {
		name = languageHashes[id]
		if name == "" {
			name = graph.Str(nlang, "hashname")
		}
	}
	if name == "" {
		name = fmt.Sprintf("language-%d", id)
	}

	short, ok := languageShortNames[name]
	if !ok {
		short = name
	}
	src.Lang = name
	src.LangShort = short
}

// silenceDuration reads the length of a silence plugin, inline in older
// banks and in a separate custom fx object otherwise.
func (b *builder) silenceDuration(src *ir.Source, nbnksrc graph.Node) error {
	if nsize := find1(nbnksrc, "uSize"); graph.Int(nsize) != 0 {
		src.PluginDuration = ir.Float(fxDuration(nbnksrc))
		return nil
	}

	fx, err := b.reg.Resolve(bankOf(nbnksrc), src.TID, b.obj.SID, nil)
	if err != nil {
		return err
	}
	duration := defaultSilenceDuration
	if fx != nil && fx.fxDuration != nil {
		duration = *fx.fxDuration
	}
	src.PluginDuration = ir.Float(duration)
	return nil
}

// fxDuration reads silence plugin parameters, in seconds.
func fxDuration(n graph.Node) float64 {
	ndur := find1(find1(n, "AkFXSrcSilenceParams"), "fDuration")
	if ndur == nil {
		return defaultSilenceDuration
	}
	return graph.Float(ndur)
}
