// Package platform describes the display and input capabilities of the
// watch platforms struct layouts are exchanged with.
package platform

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Unknown is the fallback key consulted by Select.
const Unknown = "unknown"

const statusBarHeight = 16

type Resolution struct {
	Width, Height int
}

type Capabilities struct {
	Name       string
	Color      bool
	Round      bool
	Microphone bool
	Resolution Resolution
}

func (c Capabilities) BlackAndWhite() bool { return !c.Color }
func (c Capabilities) Rectangle() bool     { return !c.Round }

// ActionBarWidth is wider on round screens to clear the bezel.
func (c Capabilities) ActionBarWidth() int {
	if c.Round {
		return 40
	}
	return 30
}

func (c Capabilities) StatusBarHeight() int { return statusBarHeight }

var (
	rect  = Resolution{144, 168}
	round = Resolution{180, 180}
)

var table = map[string]Capabilities{
	"aplite":  {Name: "aplite", Resolution: rect},
	"basalt":  {Name: "basalt", Color: true, Microphone: true, Resolution: rect},
	"chalk":   {Name: "chalk", Color: true, Round: true, Microphone: true, Resolution: round},
	"diorite": {Name: "diorite", Microphone: true, Resolution: rect},
}

func Lookup(name string) (Capabilities, error) {
	c, ok := table[name]
	if !ok {
		return Capabilities{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}
	return c, nil
}

// Names returns the known platforms sorted by name.
func Names() []string {
	out := make([]string, 0, len(table))
	for n := range table {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Select returns the entry for name, or the Unknown entry when name is
// absent. ok is false when neither exists.
func Select[T any](values map[string]T, name string) (v T, ok bool) {
	if v, ok = values[name]; ok {
		return v, true
	}
	v, ok = values[Unknown]
	return v, ok
}
