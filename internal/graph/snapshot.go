package graph

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// snapshotEncMode uses canonical CBOR so identical banks produce identical
// snapshot bytes.
var snapshotEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("graph: cbor enc mode: %v", err))
	}
	snapshotEncMode = em
}

// EncodeSnapshot serialises a bank as canonical CBOR.
func EncodeSnapshot(b Bank) ([]byte, error) {
	return snapshotEncMode.Marshal(ToDump(b))
}

// DecodeSnapshot decodes a CBOR snapshot.
func DecodeSnapshot(data []byte) (Dump, error) {
	var d Dump
	if err := cbor.Unmarshal(data, &d); err != nil {
		return Dump{}, err
	}
	return d, nil
}

// WriteSnapshot writes a bank snapshot to w.
func WriteSnapshot(w io.Writer, b Bank) error {
	data, err := EncodeSnapshot(b)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot reads a bank snapshot from r.
func ReadSnapshot(r io.Reader) (*BankElement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	d, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return FromDump(d), nil
}
