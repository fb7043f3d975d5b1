package gamesync

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Hash returns the 32-bit FNV-1 id of a name, computed over its
// lower-cased bytes like the engine does for every named object.
func Hash(name string) uint32 {
	h := fnv.New32()
	h.Write([]byte(strings.ToLower(name)))
	return h.Sum32()
}

// ParseID accepts a numeric id or a name to hash.
func ParseID(s string) uint32 {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n)
	}
	return Hash(s)
}
