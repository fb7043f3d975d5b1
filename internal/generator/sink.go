package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Sink receives finished outputs.
type Sink interface {
	Write(name, contents string) error
}

// DirSink writes outputs as files under Dir, creating it on first use.
type DirSink struct {
	Dir string

	once sync.Once
	err  error
}

// NewDirSink returns a sink writing into dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

func (s *DirSink) Write(name, contents string) error {
	s.once.Do(func() {
		s.err = os.MkdirAll(s.Dir, 0o755)
	})
	if s.err != nil {
		return fmt.Errorf("create output dir: %w", s.err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// MemorySink keeps outputs in memory.
type MemorySink struct {
	mu    sync.Mutex
	files map[string]string
	order []string
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string]string)}
}

func (s *MemorySink) Write(name, contents string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		s.order = append(s.order, name)
	}
	s.files[name] = contents
	return nil
}

// Get returns the contents of name.
func (s *MemorySink) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.files[name]
	return c, ok
}

// Names returns the written names in write order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Sorted returns the written names sorted.
func (s *MemorySink) Sorted() []string {
	names := s.Names()
	sort.Strings(names)
	return names
}
