package tmux

// Pane describes one pane of a session layout: where it runs and what it
// launches. The command is an opaque, shell-invocable string built by the
// agent package; this package only injects it.
type Pane struct {
	// Dir is the pane's working directory.
	Dir string
	// Title labels the pane (shown in the pane border). Dual mode uses the
	// agent role here.
	Title string
	// Command is sent to the pane's shell after creation. Empty means the
	// pane is left at a bare shell.
	Command string
}

// Layout is an ordered sequence of pane specifications. The first pane is
// created with the session; the rest are horizontal splits in order, so
// repeated launches of the same task produce the same arrangement.
type Layout struct {
	Panes []Pane
}

// SinglePane returns a one-pane layout.
func SinglePane(dir, title, command string) Layout {
	return Layout{Panes: []Pane{{Dir: dir, Title: title, Command: command}}}
}
