package graph

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DecodeCUE evaluates a CUE dump and decodes its top-level fields
// (filename, id, version, nodes). Definitions and defaults are resolved
// before decoding, so dumps may share node templates.
func DecodeCUE(filename string, data []byte) (Dump, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Dump{}, fmt.Errorf("building CUE value: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Dump{}, fmt.Errorf("validating CUE value: %w", err)
	}

	var d Dump
	if err := value.Decode(&d); err != nil {
		return Dump{}, fmt.Errorf("decoding CUE value: %w", err)
	}
	return d, nil
}
