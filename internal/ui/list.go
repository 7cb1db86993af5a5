package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = actionItem{}

// Action enumerates the entries of the main menu.
type Action int

const (
	ActionRun Action = iota
	ActionCompare
	ActionDemo
	ActionList
	ActionClear
	ActionQuit
)

// actionItem wraps an [Action] to implement [list.Item].
type actionItem struct {
	action Action
	title  string
	desc   string
}

func (i actionItem) FilterValue() string { return i.title }
func (i actionItem) Title() string       { return i.title }
func (i actionItem) Description() string { return i.desc }

func menuItems() []list.Item {
	return []list.Item{
		actionItem{ActionRun, "Run scenario", "Build playlists with the configured interning modes and cache"},
		actionItem{ActionCompare, "Compare", "Run the same scenario with interning ON and OFF"},
		actionItem{ActionDemo, "Demo playlists", "Three small playlists that share songs"},
		actionItem{ActionList, "List stored", "Playlists persisted by cache evictions"},
		actionItem{ActionClear, "Clear stored", "Delete every stored playlist"},
		actionItem{ActionQuit, "Quit", ""},
	}
}
