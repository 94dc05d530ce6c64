package core

// UICallback is the seam between the admin CLI's command logic and its
// presentation layer, keeping command
// code free of terminal-rendering decisions. The bridge only ever asks for confirmation before a
// destructive, hard-to-undo admin action (force-lock, break-lock); nothing else
// is ever interactive.
type UICallback interface {
	ShowError(title, message string)
	ShowSuccess(message string)
	ShowWarning(title, message string)
	// AskConfirmation prompts before stealing or breaking a lock. Returns
	// false (and the caller aborts) in non-interactive mode without --yes.
	AskConfirmation(title, message string) bool
	StyleTitle(title string) string
	GetOutputMode() OutputMode
	IsAutoApprove() bool
	FormatJSON(output JSONOutput) error
}
