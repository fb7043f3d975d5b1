package rebuild

import (
	"fmt"
	"strings"

	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/printer"
	"github.com/roach88/txtpgen/internal/txtp"
)

// rtpcConfig adds the volume RTPCs found under n. Volumes driven by game
// parameters make the object crossfaded.
func (b *builder) rtpcConfig(n graph.Node) {
	for _, nrtpc := range finds(n, "RTPC") {
		r, nid, ok := parseRtpc(nrtpc)
		if !ok || r.Param != "Volume" {
			continue
		}
		b.obj.Config.Rtpcs = append(b.obj.Config.Rtpcs, r)
		b.obj.Config.Crossfaded = true

		lo, hi := r.MinMax()
		name := graph.Str(nid, "hashname")
		if name == "" {
			name = fmt.Sprint(r.ID)
		}
		b.obj.Fields = append(b.obj.Fields, txtp.Field{
			Label: nid.Name() + " " + name,
			Text:  fmt.Sprintf("(%s, %s)", printer.Repr(lo), printer.Repr(hi)),
		})
	}
}

func parseRtpc(nrtpc graph.Node) (ir.Rtpc, graph.Node, bool) {
	nid := find1(nrtpc, "RTPCID")
	nparam := find1(nrtpc, "ParamID")
	if nid == nil || nparam == nil {
		return ir.Rtpc{}, nil, false
	}

	// modulators and midi values can't be set from params
	if ntype := find1(nrtpc, "rtpcType"); ntype != nil && graph.Int(ntype) != 0 {
		return ir.Rtpc{}, nil, false
	}

	r := ir.Rtpc{
		ID:      graph.Uint(nid),
		Param:   paramName(nparam),
		Scaling: int(graph.Int(find1(nrtpc, "eScaling"))),
		Version: nrtpc.Root().Version(),
	}

	if naccum := find1(nrtpc, "rtpcAccum"); naccum != nil {
		r.Accum = accumName(graph.Str(naccum, "valuefmt"))
	} else {
		r.Accum = defaultAccum(r.Param)
	}

	for _, npoint := range finds(nrtpc, "AkRTPCGraphPoint") {
		r.Points = append(r.Points, ir.CurvePoint{
			X:      graph.Float(find1(npoint, "From")),
			Y:      graph.Float(find1(npoint, "To")),
			Interp: int(graph.Int(find1(npoint, "Interp"))),
		})
	}
	return r, nid, true
}

// paramName extracts the bracketed property name of a formatted id, as in
// "0x00 [Volume]".
func paramName(nparam graph.Node) string {
	valuefmt := graph.Str(nparam, "valuefmt")
	if start := strings.Index(valuefmt, "["); start >= 0 {
		if end := strings.Index(valuefmt[start:], "]"); end > 0 {
			return valuefmt[start+1 : start+end]
		}
	}
	if graph.Int(nparam) == 0 {
		return "Volume"
	}
	return valuefmt
}

func accumName(valuefmt string) string {
	switch {
	case strings.Contains(valuefmt, "[Exclusive]"):
		return ir.AccumExclusive
	case strings.Contains(valuefmt, "[Multiply]"):
		return ir.AccumMultiply
	case strings.Contains(valuefmt, "[Boolean]"):
		return ir.AccumBoolean
	}
	return ir.AccumAdditive
}

// defaultAccum is the fixed accumulation of banks without an explicit one.
func defaultAccum(param string) string {
	switch param {
	case "PlaybackSpeed":
		return ir.AccumMultiply
	case "InitialDelay":
		return ir.AccumExclusive
	}
	return ir.AccumAdditive
}
