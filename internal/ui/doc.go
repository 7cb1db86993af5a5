// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a small action menu over the scenario engine and the snapshot store:
//  1. [MenuView] : Pick an action (run, compare, demo, list stored, clear stored, quit)
//  2. [ConfirmView] : Confirm destructive actions such as clearing the store
//  3. [RunningView] : Monitor real-time progress updates with a spinner
//  4. [ResultView] : Display the rendered output of the last action
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.Engine], providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
