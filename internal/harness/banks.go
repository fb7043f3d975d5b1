package harness

import (
	"bytes"
	"fmt"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/testutil"
)

// BuildBank turns an inline bank description into a bank.
func BuildBank(spec BankSpec) (*graph.BankElement, error) {
	b := testutil.NewBank(spec.ID, spec.File)
	if spec.Version != 0 {
		b.WithVersion(spec.Version)
	}
	if spec.Name != "" {
		b.WithName(spec.Name)
	}
	if len(spec.Media) > 0 {
		b.AddChunk(testutil.MediaIndex(spec.Media...))
	}
	for i, o := range spec.Objects {
		obj, err := buildObject(o)
		if err != nil {
			return nil, fmt.Errorf("bank %s object %d: %w", spec.File, i, err)
		}
		b.Add(obj)
	}
	return b.Build(), nil
}

func buildObject(o ObjectSpec) (*graph.Element, error) {
	switch o.Type {
	case ObjectEvent:
		return testutil.Event(o.ID, o.Name, o.Actions...), nil
	case ObjectPlay:
		if o.Bank != 0 {
			return testutil.ActionPlayFrom(o.ID, o.Target, o.Bank), nil
		}
		return testutil.ActionPlay(o.ID, o.Target), nil
	case ObjectSound:
		plugin := o.Plugin
		if plugin == 0 {
			plugin = testutil.PluginVorbis
		}
		obj := testutil.SoundWith(o.ID, o.Source, o.Stream, plugin)
		if o.Volume != nil {
			obj = testutil.WithVolume(obj, *o.Volume)
		}
		return obj, nil
	case ObjectLayer:
		return testutil.Layer(o.ID, o.Children...), nil
	case ObjectSequence:
		return testutil.Sequence(o.ID, o.Children...), nil
	case ObjectSequenceContinuous:
		return testutil.SequenceContinuous(o.ID, o.Children...), nil
	case ObjectRandom:
		return testutil.Random(o.ID, o.Children...), nil
	case ObjectSwitch:
		kind, err := switchKind(o.Kind)
		if err != nil {
			return nil, err
		}
		cases := make([]testutil.Case, len(o.Cases))
		for i, c := range o.Cases {
			cases[i] = testutil.Case{Value: c.Value, Name: c.Name, Targets: c.Targets}
		}
		return testutil.Switch(o.ID, kind, o.Group, o.GroupName, cases...), nil
	}
	return nil, fmt.Errorf("unknown object type %q", o.Type)
}

func switchKind(s string) (gamesync.Kind, error) {
	switch s {
	case "", "switch":
		return gamesync.Switch, nil
	case "state":
		return gamesync.State, nil
	}
	return 0, fmt.Errorf("unknown switch kind %q", s)
}

// roundTrip passes a bank through a CBOR snapshot.
func roundTrip(b graph.Bank) (*graph.BankElement, error) {
	var buf bytes.Buffer
	if err := graph.WriteSnapshot(&buf, b); err != nil {
		return nil, err
	}
	return graph.ReadSnapshot(&buf)
}
