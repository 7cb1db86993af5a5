package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/setlist/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgActionComplete
)

// actionResult carries the rendered output of a finished action.
type actionResult struct {
	action Action
	output string
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// actionCompleteMsg is the constructor for [MsgActionComplete]
func actionCompleteMsg(action Action, output string, err error) Msg {
	return Msg{kind: MsgActionComplete, data: actionResult{action, output, err}}
}
