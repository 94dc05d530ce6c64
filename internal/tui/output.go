// Package tui provides terminal presentation for the gitassvn admin CLI:
// styled output, confirmation prompts, and progress rendering.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/git-as-svn/bridge/internal/version"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// PrintError displays an error message with styling to the terminal.
func PrintError(title, msg string) { fmt.Println(styleErr.Render("✖ " + title)); fmt.Println(msg) }

// PrintSuccess displays a success message with styling to the terminal.
func PrintSuccess(msg string) { fmt.Println(styleSuccess.Render("✔ " + msg)) }

// PrintInfo displays an informational message to the terminal.
func PrintInfo(msg string) { fmt.Println(styleDim.Render(msg)) }

// PrintWarning displays a warning message with styling to the terminal.
func PrintWarning(title, msg string) { fmt.Println(styleWarn.Render("! " + title)); fmt.Println(msg) }

// StyleTitle applies title styling to the given text string.
func StyleTitle(text string) string { return styleTitle.Render(text) }

// PrintHelp displays usage information for gitassvn commands.
func PrintHelp() {
	fmt.Println(styleTitle.Render(fmt.Sprintf("%s %s", version.BinaryName, version.GetVersion())))
	fmt.Println("Presents a Git repository as a Subversion repository: revisions, locks, and commits.")
	fmt.Println("\nCommands:")
	fmt.Println("  serve               Run the bridge: watch the branch and extend the revision cache")
	fmt.Println("    --config <file>   Path to gitassvn.yml (default: ./gitassvn.yml)")
	fmt.Println("  update              Run one cache-extension pass and exit")
	fmt.Println("  log [-n N]          List the most recent revisions (default: 10)")
	fmt.Println("  show <rev> <path>   Print a node's kind, size, and effective properties")
	fmt.Println("  lock <path>         Acquire a lock")
	fmt.Println("    --rev <N>         Revision the client believes is current (required)")
	fmt.Println("    --force           Steal an existing lock")
	fmt.Println("    --comment <text>  Lock comment")
	fmt.Println("  unlock <path>       Release a lock")
	fmt.Println("    --token <token>   Lock token (required unless --break)")
	fmt.Println("    --break           Remove the lock without presenting its token")
	fmt.Println("  locks [prefix]      List locks at or beneath prefix (default: repository root)")
	fmt.Println("  config init         Write a starter gitassvn.yml in the current directory")
	fmt.Println("  admin               Launch the interactive revision/lock browser")
	fmt.Println("  completion <shell>  Generate shell completion script (bash/zsh/fish/powershell)")
	fmt.Println("\nGlobal flags:")
	fmt.Println("  --config <file>     Path to gitassvn.yml (default: ./gitassvn.yml)")
	fmt.Println("  --yes, -y           Auto-approve confirmations (force-lock, break-lock)")
	fmt.Println("  --quiet, -q         Suppress non-error output")
	fmt.Println("  --json              Structured JSON output, for scripting")
	fmt.Println("\nExamples:")
	fmt.Println("  gitassvn config init --repository /srv/git/example.git --branch main")
	fmt.Println("  gitassvn serve")
	fmt.Println("  gitassvn log -n 20")
	fmt.Println("  gitassvn show 42 trunk/README.md")
	fmt.Println("  gitassvn lock trunk/README.md --rev 42")
	fmt.Println("  gitassvn unlock trunk/README.md --token 3f9e... ")
	fmt.Println("  gitassvn admin")
}
