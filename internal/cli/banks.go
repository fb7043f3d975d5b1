package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/roach88/txtpgen/internal/graph"
)

// loadBanks loads the dumps named by paths, mapping load failures to
// formatter codes.
func loadBanks(f *OutputFormatter, paths []string) ([]graph.Bank, error) {
	loaded, err := graph.LoadPaths(paths)
	if err != nil {
		return nil, f.fail(ExitCommandError, loadErrorCode(err), "failed to load banks", err)
	}

	banks := make([]graph.Bank, 0, len(loaded))
	for _, b := range loaded {
		f.Progress("Loaded %s (id %d, version %d)", b.Filename(), b.ID(), b.Version())
		banks = append(banks, b)
	}
	return banks, nil
}

func loadErrorCode(err error) string {
	var le *graph.LoadError
	if !errors.As(err, &le) {
		return ErrCodeGeneric
	}
	switch le.Code {
	case graph.ErrCodeNotFound:
		return ErrCodeNotFound
	case graph.ErrCodeNoFiles:
		return ErrCodeNoFiles
	case graph.ErrCodeDecode:
		return ErrCodeDecode
	case graph.ErrCodeUnsupported:
		return ErrCodeUnsupported
	}
	return ErrCodeGeneric
}

// baseDir is the directory of the first input path.
func baseDir(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	p := paths[0]
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return filepath.Dir(p)
}

func bankFiles(banks []graph.Bank) []string {
	out := make([]string, len(banks))
	for i, b := range banks {
		out[i] = b.Filename()
	}
	return out
}
