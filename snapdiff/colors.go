package snapdiff

import (
	"strings"

	"github.com/fatih/color"
)

// Attr is a rendering role.
type Attr int

const (
	LabelColor Attr = iota
	SameColor
	RemovedColor
	AddedColor
	MissingColor
	AppliedColor
	SkippedColor
)

// Colors maps rendering roles to formatting functions.
type Colors struct {
	Default func(string, ...any) string
	Map     map[Attr]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map: map[Attr]func(string, ...any) string{
			LabelColor:   color.RGB(128, 168, 196).SprintfFunc(),
			SameColor:    color.RGB(96, 96, 96).SprintfFunc(),
			RemovedColor: color.RedString,
			AddedColor:   color.RGB(8, 196, 16).SprintfFunc(),
			MissingColor: color.RGB(168, 0, 196).SprintfFunc(),
			AppliedColor: color.CyanString,
			SkippedColor: color.RGB(196, 96, 16).SprintfFunc(),
		},
	}
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.ReplaceAll(v, "%", "%%"))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

// Color formats s for role a. A nil *Colors leaves s unchanged.
func (c *Colors) Color(a Attr, s string) string {
	if c == nil {
		return s
	}
	return c.Get(a)(s)
}

func (c *Colors) Get(a Attr) func(string, ...any) string {
	f := c.Map[a]
	if f == nil {
		return c.Default
	}
	return f
}
