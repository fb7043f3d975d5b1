package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load error codes.
const (
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeNoFiles     = "E003" // No bank dumps found
	ErrCodeDecode      = "E004" // Dump could not be decoded
	ErrCodeUnsupported = "E008" // Unknown dump extension
)

// LoadError reports a bank dump that could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DumpExtensions lists the recognised dump file extensions.
var DumpExtensions = []string{".yaml", ".yml", ".cue", ".cbor"}

// IsDumpFile reports whether path has a recognised dump extension.
func IsDumpFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range DumpExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile loads one bank dump, picking the decoder from the extension.
func LoadFile(path string) (*BankElement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "reading dump", Err: err}
	}

	var d Dump
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		d, err = DecodeYAML(data)
	case ".cue":
		d, err = DecodeCUE(path, data)
	case ".cbor":
		d, err = DecodeSnapshot(data)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Path: path, Message: "unknown dump extension"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Path: path, Message: "decoding dump", Err: err}
	}

	if d.Filename == "" {
		d.Filename = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".bnk"
	}
	b := FromDump(d)
	b.SetDir(filepath.Dir(path))
	return b, nil
}

// LoadPaths loads every dump named by paths. Directories are scanned
// (non-recursively) for dump files. Banks are returned in path order.
func LoadPaths(paths []string) ([]*BankElement, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: p, Message: "path not found", Err: err}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := findDumps(p)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: p, Message: "scanning directory", Err: err}
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Path: strings.Join(paths, ","), Message: "no bank dumps found"}
	}

	banks := make([]*BankElement, 0, len(files))
	for _, f := range files {
		b, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, nil
}

func findDumps(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsDumpFile(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// DecodeYAML decodes a YAML dump.
func DecodeYAML(data []byte) (Dump, error) {
	var d Dump
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dump{}, err
	}
	return d, nil
}
