package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/git-as-svn/bridge/internal/core"
)

// RunAdmin launches the interactive revision/lock browser: a wizard-style
// menu scoped to the bridge's read-mostly operations (browsing recent
// revisions, breaking stuck locks). It loops until the operator picks
// Quit.
func RunAdmin(ctx context.Context, bridge *core.Bridge) error {
	for {
		var action string
		err := huh.NewSelect[string]().
			Title(StyleTitle(fmt.Sprintf("gitassvn admin (r%d)", bridge.Latest().ID))).
			Options(
				huh.NewOption("Browse recent revisions", "revisions"),
				huh.NewOption("Browse locks", "locks"),
				huh.NewOption("Break a lock", "break"),
				huh.NewOption("Quit", "quit"),
			).
			Value(&action).
			Run()
		if err != nil {
			return err
		}

		switch action {
		case "revisions":
			adminShowRevisions(bridge)
		case "locks":
			adminShowLocks(bridge)
		case "break":
			if err := adminBreakLock(bridge); err != nil {
				PrintError("Break Lock Failed", err.Error())
			}
		case "quit":
			return nil
		}
	}
}

func adminShowRevisions(bridge *core.Bridge) {
	latest := bridge.Latest()
	start := latest.ID - 19
	if start < 0 {
		start = 0
	}
	for id := latest.ID; id >= start; id-- {
		rev, err := bridge.ByID(id)
		if err != nil {
			continue
		}
		fmt.Printf("%s  %s  %s\n", StyleTitle(fmt.Sprintf("r%d", rev.ID)), rev.Author, rev.Message)
	}
}

func adminShowLocks(bridge *core.Bridge) {
	locks := bridge.GetLocks("")
	if len(locks) == 0 {
		fmt.Println("no locks")
		return
	}
	for _, lock := range locks {
		fmt.Printf("%s  owner=%s  %s\n", StyleTitle(lock.Path), lock.Owner, lock.Comment)
	}
}

func adminBreakLock(bridge *core.Bridge) error {
	locks := bridge.GetLocks("")
	if len(locks) == 0 {
		PrintInfo("no locks to break")
		return nil
	}
	options := make([]huh.Option[string], 0, len(locks))
	for _, lock := range locks {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (owner=%s)", lock.Path, lock.Owner), lock.Path))
	}

	var path string
	if err := huh.NewSelect[string]().
		Title("Select a lock to break").
		Options(options...).
		Value(&path).
		Run(); err != nil {
		return err
	}

	var confirm bool
	if err := huh.NewConfirm().
		Title("Break Lock").
		Description(fmt.Sprintf("Remove the lock on '%s' without its token?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run(); err != nil {
		return err
	}
	if !confirm {
		return nil
	}

	results := bridge.Unlock(map[string]string{path: ""}, true, "admin")
	if err := results[core.NormalizePath(path)]; err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("broke lock on '%s'", path))
	return nil
}
