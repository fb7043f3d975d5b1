package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputIDDeterminism(t *testing.T) {
	text := "wem/1234.wem #i\n"

	id1 := OutputID(text)
	id2 := OutputID(text)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
	assert.NotEqual(t, id1, OutputID("wem/1235.wem #i\n"))
}

func TestOutputIDNormalizesText(t *testing.T) {
	assert.Equal(t, OutputID("cafe\u0301"), OutputID("caf\u00e9"))
}

func TestOutputIDDomainSeparation(t *testing.T) {
	opts := map[string]any{"text": "x"}
	optsID, err := OptionsHash(opts)
	require.NoError(t, err)
	assert.NotEqual(t, OutputID("x"), optsID)
	assert.NotEqual(t, hashWithDomain(DomainOutput, []byte("x")), hashWithDomain(DomainOptions, []byte("x")))
}

func TestOptionsHashKeyOrder(t *testing.T) {
	a, err := OptionsHash(map[string]any{"volume": -3.0, "unused": true})
	require.NoError(t, err)
	b, err := OptionsHash(map[string]any{"unused": true, "volume": -3.0})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = OptionsHash(map[string]any{"bad": nil})
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	c := &Config{Loop: Int(0), Volume: Float(-3), SilenceStates: []StateRef{{Group: 1, Value: 2}}}
	d := c.Clone()
	*d.Loop = 2
	*d.Volume = 1
	d.SilenceStates[0].Value = 9

	assert.Equal(t, 0, *c.Loop)
	assert.Equal(t, -3.0, *c.Volume)
	assert.Equal(t, uint32(2), c.SilenceStates[0].Value)

	var nilCfg *Config
	assert.NotNil(t, nilCfg.Clone())
	assert.False(t, nilCfg.IsSegment())
}

func TestSoundClone(t *testing.T) {
	s := &Sound{
		Source:      &Source{TID: 10},
		Automations: []Automation{{Type: 0, Points: []AutomationPoint{{Time: 0, Value: 0}}}},
	}
	c := s.Clone()
	c.Source.TID = 11
	c.Automations[0].Points[0].Value = 1

	assert.Equal(t, uint32(10), s.Source.TID)
	assert.Equal(t, 0.0, s.Automations[0].Points[0].Value)
}
