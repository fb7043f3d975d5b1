package generator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ExternalsFile is looked up next to the first loaded bank.
const ExternalsFile = "externals.txt"

// ReadExternals parses an externals list: an id line followed by the paths
// that id may take. Blank lines and lines starting with # are skipped.
func ReadExternals(r io.Reader) (map[uint32][]string, error) {
	out := make(map[uint32][]string)
	var current uint32
	var found bool

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if id, err := strconv.ParseUint(text, 10, 32); err == nil {
			current = uint32(id)
			found = true
			if _, ok := out[current]; !ok {
				out[current] = nil
			}
			continue
		}
		if !found {
			return nil, fmt.Errorf("externals line %d: list must start with an id", line)
		}
		out[current] = append(out[current], text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read externals: %w", err)
	}
	return out, nil
}

// LoadExternals reads path, returning nil when it does not exist.
func LoadExternals(path string) (map[uint32][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	slog.Info("generator: found list of externals", "path", path)
	return ReadExternals(f)
}
