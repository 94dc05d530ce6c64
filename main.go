// Package main implements the gitassvn CLI: the revision bridge's server
// loop and the administrative commands for inspecting revisions and path
// locks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/git-as-svn/bridge/cmd"
	"github.com/git-as-svn/bridge/internal/core"
	"github.com/git-as-svn/bridge/internal/tui"
	"github.com/git-as-svn/bridge/internal/types"
	"github.com/git-as-svn/bridge/internal/version"
)

// parseCommonFlags extracts the global non-interactive flags from args,
// returning the flags and the remaining, command-specific arguments.
func parseCommonFlags(args []string) (core.NonInteractiveFlags, []string) {
	flags := core.NonInteractiveFlags{}
	var remaining []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--yes", "-y":
			flags.Yes = true
		case "--quiet", "-q":
			flags.Mode = core.OutputQuiet
		case "--json":
			flags.Mode = core.OutputJSON
		default:
			remaining = append(remaining, args[i])
		}
	}
	return flags, remaining
}

// stringFlag pulls "--name value" out of args, returning the value (or def)
// and the remaining arguments with both tokens removed.
func stringFlag(args []string, name, def string) (string, []string) {
	var remaining []string
	value := def
	for i := 0; i < len(args); i++ {
		if args[i] == name && i+1 < len(args) {
			value = args[i+1]
			i++
			continue
		}
		remaining = append(remaining, args[i])
	}
	return value, remaining
}

func boolFlag(args []string, name string) (bool, []string) {
	var remaining []string
	found := false
	for _, a := range args {
		if a == name {
			found = true
			continue
		}
		remaining = append(remaining, a)
	}
	return found, remaining
}

func newCallback(flags core.NonInteractiveFlags) core.UICallback {
	if flags.Mode == core.OutputNormal && isatty.IsTerminal(os.Stdout.Fd()) {
		return tui.NewTUICallback()
	}
	return tui.NewNonInteractiveTUICallback(flags)
}

func loadConfig(configPath string) (types.ServerConfig, error) {
	dir, file := ".", core.ConfigName
	if configPath != "" {
		dir, file = splitConfigPath(configPath)
	}
	store := core.NewYAMLStore[types.ServerConfig](dir, file, false)
	return store.Load()
}

func splitConfigPath(path string) (dir, file string) {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ".", path
	}
	return path[:idx], path[idx+1:]
}

func fail(cb core.UICallback, title, message string, exitCode int) {
	cb.ShowError(title, message)
	os.Exit(exitCode)
}

func main() {
	if len(os.Args) < 2 {
		tui.PrintHelp()
		os.Exit(0)
	}

	command := os.Args[1]
	switch command {
	case "--help", "-h", "help":
		tui.PrintHelp()
		os.Exit(0)
	case "--version", "version":
		fmt.Printf("%s %s\n", version.BinaryName, version.GetFullVersion())
		os.Exit(0)
	}

	args := os.Args[2:]

	switch command {
	case "serve":
		runServe(args)
	case "update":
		runUpdate(args)
	case "log":
		runLog(args)
	case "show":
		runShow(args)
	case "lock":
		runLock(args)
	case "unlock":
		runUnlock(args)
	case "locks":
		runLocks(args)
	case "config":
		runConfig(args)
	case "admin":
		runAdmin(args)
	case "completion":
		runCompletion(args)
	default:
		tui.PrintError("Unknown Command", fmt.Sprintf("'%s' is not a gitassvn command. Run 'gitassvn help' for usage.", command))
		os.Exit(1)
	}
}

func runServe(args []string) {
	flags, rest := parseCommonFlags(args)
	configPath, _ := stringFlag(rest, "--config", "")
	cb := newCallback(flags)

	cfg, err := loadConfig(configPath)
	if err != nil {
		fail(cb, "Config Load Failed", err.Error(), core.ExitGeneralError)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	progress := progressTrackerFor(flags.Mode)
	bridge, err := core.NewBridge(ctx, cfg, progress)
	if err != nil {
		fail(cb, "Bridge Startup Failed", err.Error(), core.ExitGeneralError)
	}

	cb.ShowSuccess(fmt.Sprintf("gitassvn serving %s (branch %s), latest revision r%d", cfg.Repository, cfg.Branch, bridge.Latest().ID))

	watcher := core.NewRefWatcher(cfg.Repository, cfg.Branch, bridge.Update)
	log := core.NewLogger(os.Stderr, "serve")
	if err := watcher.Run(ctx, log); err != nil && ctx.Err() == nil {
		fail(cb, "Watcher Failed", err.Error(), core.ExitGeneralError)
	}
}

func runUpdate(args []string) {
	flags, rest := parseCommonFlags(args)
	configPath, _ := stringFlag(rest, "--config", "")
	cb := newCallback(flags)

	cfg, err := loadConfig(configPath)
	if err != nil {
		fail(cb, "Config Load Failed", err.Error(), core.ExitGeneralError)
	}

	ctx := context.Background()
	bridge, err := core.NewBridge(ctx, cfg, progressTrackerFor(flags.Mode))
	if err != nil {
		fail(cb, "Bridge Startup Failed", err.Error(), core.ExitGeneralError)
	}
	if err := bridge.Update(ctx); err != nil {
		fail(cb, "Update Failed", err.Error(), core.CLIExitCodeForError(err))
	}

	latest := bridge.Latest()
	if flags.Mode == core.OutputJSON {
		core.EmitCLISuccess(map[string]interface{}{"revision": latest.ID, "gitCommit": latest.GitCommit})
		return
	}
	cb.ShowSuccess(fmt.Sprintf("up to date at r%d", latest.ID))
}

func runLog(args []string) {
	flags, rest := parseCommonFlags(args)
	limitStr, rest := stringFlag(rest, "-n", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}
	configPath, _ := stringFlag(rest, "--config", "")
	cb := newCallback(flags)

	cfg, err := loadConfig(configPath)
	if err != nil {
		fail(cb, "Config Load Failed", err.Error(), core.ExitGeneralError)
	}

	ctx := context.Background()
	bridge, err := core.NewBridge(ctx, cfg, tui.NewNoOpProgressTracker())
	if err != nil {
		fail(cb, "Bridge Startup Failed", err.Error(), core.ExitGeneralError)
	}

	latest := bridge.Latest()
	start := latest.ID - int64(limit) + 1
	if start < 0 {
		start = 0
	}

	var revisions []types.Revision
	for id := latest.ID; id >= start; id-- {
		rev, err := bridge.ByID(id)
		if err != nil {
			continue
		}
		revisions = append(revisions, rev)
	}

	if flags.Mode == core.OutputJSON {
		data := make([]map[string]interface{}, 0, len(revisions))
		for _, rev := range revisions {
			data = append(data, map[string]interface{}{
				"revision":  rev.ID,
				"gitCommit": rev.GitCommit,
				"author":    rev.Author,
				"message":   rev.Message,
				"date":      rev.Date(),
			})
		}
		core.EmitCLISuccess(data)
		return
	}
	for _, rev := range revisions {
		fmt.Printf("%s r%d | %s | %s\n", cb.StyleTitle(fmt.Sprintf("r%d", rev.ID)), rev.ID, rev.Author, rev.Date().Format("2006-01-02 15:04:05"))
		fmt.Printf("  %s\n", rev.Message)
	}
}

func runShow(args []string) {
	flags, rest := parseCommonFlags(args)
	configPath, rest := stringFlag(rest, "--config", "")
	if len(rest) < 2 {
		cb := newCallback(flags)
		fail(cb, "Usage Error", "usage: gitassvn show <rev> <path>", core.ExitInvalidArguments)
	}
	revArg, path := rest[0], rest[1]
	cb := newCallback(flags)

	revisionID, err := strconv.ParseInt(revArg, 10, 64)
	if err != nil {
		fail(cb, "Usage Error", fmt.Sprintf("'%s' is not a valid revision number", revArg), core.ExitInvalidArguments)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fail(cb, "Config Load Failed", err.Error(), core.ExitGeneralError)
	}

	ctx := context.Background()
	bridge, err := core.NewBridge(ctx, cfg, tui.NewNoOpProgressTracker())
	if err != nil {
		fail(cb, "Bridge Startup Failed", err.Error(), core.ExitGeneralError)
	}

	root, err := bridge.Root(ctx, revisionID)
	if err != nil {
		fail(cb, "Revision Not Found", err.Error(), core.CLIExitCodeForError(err))
	}
	node := root
	for _, seg := range core.Segments(path) {
		child, ok, err := node.Child(ctx, seg)
		if err != nil {
			fail(cb, "Lookup Failed", err.Error(), core.ExitGeneralError)
		}
		if !ok {
			fail(cb, "Not Found", fmt.Sprintf("'%s' does not exist at r%d", path, revisionID), core.ExitNotFound)
		}
		node = child
	}

	props, err := node.Properties(ctx, true)
	if err != nil {
		fail(cb, "Property Lookup Failed", err.Error(), core.ExitGeneralError)
	}

	if flags.Mode == core.OutputJSON {
		size := int64(0)
		if !node.IsDir() {
			size, _ = node.Size(ctx)
		}
		core.EmitCLISuccess(map[string]interface{}{
			"path":       path,
			"kind":       node.Kind(),
			"size":       size,
			"properties": props,
		})
		return
	}

	fmt.Printf("%s\n", cb.StyleTitle(path))
	fmt.Printf("  kind: %v\n", node.Kind())
	if !node.IsDir() {
		size, _ := node.Size(ctx)
		fmt.Printf("  size: %d\n", size)
	}
	fmt.Println("  properties:")
	for k, v := range props {
		fmt.Printf("    %s = %s\n", k, v)
	}
}

func runLock(args []string) {
	flags, rest := parseCommonFlags(args)
	revStr, rest := stringFlag(rest, "--rev", "")
	comment, rest := stringFlag(rest, "--comment", "")
	force, rest := boolFlag(rest, "--force")
	configPath, rest := stringFlag(rest, "--config", "")
	cb := newCallback(flags)

	if len(rest) < 1 || revStr == "" {
		fail(cb, "Usage Error", "usage: gitassvn lock <path> --rev <N> [--force] [--comment <text>]", core.ExitInvalidArguments)
	}
	path := rest[0]
	rev, err := strconv.ParseInt(revStr, 10, 64)
	if err != nil {
		fail(cb, "Usage Error", "--rev must be a revision number", core.ExitInvalidArguments)
	}

	if force && !cb.AskConfirmation("Steal Lock", fmt.Sprintf("'%s' may already be locked by someone else. Steal it?", path)) {
		fail(cb, "Lock Cancelled", "confirmation declined", core.ExitGeneralError)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fail(cb, "Config Load Failed", err.Error(), core.ExitGeneralError)
	}
	ctx := context.Background()
	bridge, err := core.NewBridge(ctx, cfg, tui.NewNoOpProgressTracker())
	if err != nil {
		fail(cb, "Bridge Startup Failed", err.Error(), core.ExitGeneralError)
	}

	user := currentUser()
	results := bridge.Lock(map[string]int64{path: rev}, comment, force, user)
	result := results[core.NormalizePath(path)]
	if result.Err != nil {
		fail(cb, "Lock Failed", result.Err.Error(), core.CLIExitCodeForError(result.Err))
	}

	if flags.Mode == core.OutputJSON {
		core.EmitCLISuccess(map[string]interface{}{"path": path, "token": result.Lock.Token})
		return
	}
	cb.ShowSuccess(fmt.Sprintf("locked '%s' (token %s)", path, result.Lock.Token))
}

func runUnlock(args []string) {
	flags, rest := parseCommonFlags(args)
	token, rest := stringFlag(rest, "--token", "")
	breakLock, rest := boolFlag(rest, "--break")
	configPath, rest := stringFlag(rest, "--config", "")
	cb := newCallback(flags)

	if len(rest) < 1 {
		fail(cb, "Usage Error", "usage: gitassvn unlock <path> (--token <token> | --break)", core.ExitInvalidArguments)
	}
	path := rest[0]

	if breakLock && !cb.AskConfirmation("Break Lock", fmt.Sprintf("Remove the lock on '%s' without its token?", path)) {
		fail(cb, "Unlock Cancelled", "confirmation declined", core.ExitGeneralError)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fail(cb, "Config Load Failed", err.Error(), core.ExitGeneralError)
	}
	ctx := context.Background()
	bridge, err := core.NewBridge(ctx, cfg, tui.NewNoOpProgressTracker())
	if err != nil {
		fail(cb, "Bridge Startup Failed", err.Error(), core.ExitGeneralError)
	}

	user := currentUser()
	results := bridge.Unlock(map[string]string{path: token}, breakLock, user)
	if err := results[core.NormalizePath(path)]; err != nil {
		fail(cb, "Unlock Failed", err.Error(), core.CLIExitCodeForError(err))
	}

	if flags.Mode == core.OutputJSON {
		core.EmitCLISuccess(map[string]interface{}{"path": path})
		return
	}
	cb.ShowSuccess(fmt.Sprintf("unlocked '%s'", path))
}

func runLocks(args []string) {
	flags, rest := parseCommonFlags(args)
	configPath, rest := stringFlag(rest, "--config", "")
	prefix := ""
	if len(rest) > 0 {
		prefix = rest[0]
	}
	cb := newCallback(flags)

	cfg, err := loadConfig(configPath)
	if err != nil {
		fail(cb, "Config Load Failed", err.Error(), core.ExitGeneralError)
	}
	ctx := context.Background()
	bridge, err := core.NewBridge(ctx, cfg, tui.NewNoOpProgressTracker())
	if err != nil {
		fail(cb, "Bridge Startup Failed", err.Error(), core.ExitGeneralError)
	}

	locks := bridge.GetLocks(prefix)
	if flags.Mode == core.OutputJSON {
		data := make([]map[string]interface{}, 0, len(locks))
		for _, lock := range locks {
			data = append(data, map[string]interface{}{
				"path":    lock.Path,
				"owner":   lock.Owner,
				"comment": lock.Comment,
				"created": lock.Created,
			})
		}
		core.EmitCLISuccess(data)
		return
	}
	if len(locks) == 0 {
		fmt.Println("no locks")
		return
	}
	for _, lock := range locks {
		fmt.Printf("%s  %s  %s\n", cb.StyleTitle(lock.Path), lock.Owner, lock.Comment)
	}
}

func runConfig(args []string) {
	flags, rest := parseCommonFlags(args)
	cb := newCallback(flags)
	if len(rest) < 1 || rest[0] != "init" {
		fail(cb, "Usage Error", "usage: gitassvn config init --repository <path> --branch <name>", core.ExitInvalidArguments)
	}
	repository, rest := stringFlag(rest[1:], "--repository", "")
	branch, _ := stringFlag(rest, "--branch", "main")
	if repository == "" {
		fail(cb, "Usage Error", "--repository is required", core.ExitInvalidArguments)
	}

	cfg := types.ServerConfig{
		Repository: repository,
		Branch:     branch,
		PushMode:   types.PushModeSimple,
	}
	store := core.NewFileConfigStore(".")
	if err := store.Save(cfg); err != nil {
		fail(cb, "Config Write Failed", err.Error(), core.ExitGeneralError)
	}
	cb.ShowSuccess(fmt.Sprintf("wrote %s", store.Path()))
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: gitassvn completion <bash|zsh|fish|powershell>")
		os.Exit(1)
	}
	switch args[0] {
	case "bash":
		fmt.Print(cmd.GenerateBashCompletion())
	case "zsh":
		fmt.Print(cmd.GenerateZshCompletion())
	case "fish":
		fmt.Print(cmd.GenerateFishCompletion())
	case "powershell":
		fmt.Print(cmd.GeneratePowerShellCompletion())
	default:
		fmt.Fprintf(os.Stderr, "unsupported shell: %s\n", args[0])
		os.Exit(1)
	}
}

func runAdmin(args []string) {
	_, rest := parseCommonFlags(args)
	configPath, _ := stringFlag(rest, "--config", "")

	cfg, err := loadConfig(configPath)
	if err != nil {
		tui.PrintError("Config Load Failed", err.Error())
		os.Exit(1)
	}
	ctx := context.Background()
	bridge, err := core.NewBridge(ctx, cfg, tui.NewNoOpProgressTracker())
	if err != nil {
		tui.PrintError("Bridge Startup Failed", err.Error())
		os.Exit(1)
	}
	if err := tui.RunAdmin(ctx, bridge); err != nil {
		tui.PrintError("Admin Session Failed", err.Error())
		os.Exit(1)
	}
}

func progressTrackerFor(mode core.OutputMode) types.ProgressTracker {
	switch mode {
	case core.OutputJSON, core.OutputQuiet:
		return tui.NewNoOpProgressTracker()
	default:
		if isatty.IsTerminal(os.Stdout.Fd()) {
			return tui.NewBubbletaeProgressTracker(0, "replaying history")
		}
		return tui.NewTextProgressTracker(0, "replaying history")
	}
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
