package models

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ID identifies posts and comments. It decodes from either a JSON number or a
// numeric string because json-server stores whatever the client sent.
type ID int

// ParseID parses a path segment into an ID.
func ParseID(s string) (ID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(n), nil
}

func (id ID) String() string {
	return strconv.Itoa(int(id))
}

// UnmarshalJSON accepts 12, "12" and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid id %s: %v", data, err)
	}
	*id = ID(n)
	return nil
}

var lastID atomic.Int64

// NextID returns a new identifier derived from the current Unix time in
// milliseconds. IDs handed out by one process are strictly increasing.
func NextID() ID {
	for {
		prev := lastID.Load()
		next := time.Now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if lastID.CompareAndSwap(prev, next) {
			return ID(next)
		}
	}
}
