package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/txtpgen/internal/printer"
)

// flagsJSON is the stored shape of printer.Flags.
type flagsJSON struct {
	Lang             string   `json:"lang,omitempty"`
	RandomContinuous bool     `json:"random_continuous,omitempty"`
	RandomSteps      bool     `json:"random_steps,omitempty"`
	Silences         bool     `json:"silences,omitempty"`
	Streams          bool     `json:"streams,omitempty"`
	Internals        bool     `json:"internals,omitempty"`
	Externals        bool     `json:"externals,omitempty"`
	Unsupported      bool     `json:"unsupported,omitempty"`
	Banks            []string `json:"banks,omitempty"`
}

// marshalFlags converts flags to JSON TEXT. Struct fields keep a fixed
// order, so equal flags always store equal text.
func marshalFlags(f printer.Flags) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(flagsJSON(f)); err != nil {
		return "", fmt.Errorf("marshal flags: %w", err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalFlags(data string) (printer.Flags, error) {
	var f flagsJSON
	if data == "" || data == "{}" {
		return printer.Flags{}, nil
	}
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return printer.Flags{}, fmt.Errorf("unmarshal flags: %w", err)
	}
	return printer.Flags(f), nil
}

func marshalBanks(banks []string) (string, error) {
	if banks == nil {
		banks = []string{}
	}
	data, err := json.Marshal(banks)
	if err != nil {
		return "", fmt.Errorf("marshal banks: %w", err)
	}
	return string(data), nil
}

func unmarshalBanks(data string) ([]string, error) {
	var banks []string
	if err := json.Unmarshal([]byte(data), &banks); err != nil {
		return nil, fmt.Errorf("unmarshal banks: %w", err)
	}
	return banks, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
