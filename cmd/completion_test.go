package cmd

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenerateBashCompletion(t *testing.T) {
	script := GenerateBashCompletion()

	if !strings.Contains(script, "# bash completion for gitassvn") {
		t.Error("Expected bash completion header")
	}

	if !strings.Contains(script, "_gitassvn_completions()") {
		t.Error("Expected bash completion function")
	}

	if !strings.Contains(script, "complete -F _gitassvn_completions gitassvn") {
		t.Error("Expected bash complete registration")
	}

	for _, cmd := range commands {
		if !strings.Contains(script, cmd) {
			t.Errorf("Expected command '%s' in bash completion", cmd)
		}
	}

	if !strings.Contains(script, "--rev") {
		t.Error("Expected --rev flag for lock command")
	}
	if !strings.Contains(script, "--force") {
		t.Error("Expected --force flag for lock command")
	}
	if !strings.Contains(script, "--token") {
		t.Error("Expected --token flag for unlock command")
	}

	if !strings.Contains(script, "lock)") {
		t.Error("Expected lock command case")
	}

	if !strings.Contains(script, "bash zsh fish powershell") {
		t.Error("Expected completion shell options")
	}
}

func TestGenerateZshCompletion(t *testing.T) {
	script := GenerateZshCompletion()

	if !strings.Contains(script, "#compdef gitassvn") {
		t.Error("Expected zsh compdef header")
	}

	if !strings.Contains(script, "_gitassvn()") {
		t.Error("Expected zsh completion function")
	}

	if !strings.Contains(script, "_describe 'command' commands") {
		t.Error("Expected zsh _describe command")
	}

	for _, cmd := range commands {
		desc := getCommandDescription(cmd)
		if desc == "" {
			continue
		}
		expected := cmd + ":" + desc
		if !strings.Contains(script, expected) {
			t.Errorf("Expected command '%s' with description '%s' in zsh completion", cmd, desc)
		}
	}

	if !strings.Contains(script, "--force[Steal an existing lock]") {
		t.Error("Expected --force flag with description")
	}
	if !strings.Contains(script, "--token[Lock token]") {
		t.Error("Expected --token flag with description")
	}

	if !strings.Contains(script, "lock)") {
		t.Error("Expected lock command case")
	}

	if !strings.Contains(script, "1:shell:(bash zsh fish powershell)") {
		t.Error("Expected completion shell options")
	}
}

func TestGenerateFishCompletion(t *testing.T) {
	script := GenerateFishCompletion()

	if !strings.Contains(script, "complete -c gitassvn") {
		t.Error("Expected fish completion syntax")
	}

	if !strings.Contains(script, "__fish_use_subcommand") {
		t.Error("Expected fish subcommand check")
	}

	for _, cmd := range commands {
		desc := getCommandDescription(cmd)
		if desc == "" {
			continue
		}
		if !strings.Contains(script, fmt.Sprintf("-a '%s'", cmd)) {
			t.Errorf("Expected command '%s' in fish completion", cmd)
		}
		if !strings.Contains(script, desc) {
			t.Errorf("Expected description '%s' in fish completion", desc)
		}
	}

	if !strings.Contains(script, "__fish_seen_subcommand_from lock") {
		t.Error("Expected lock subcommand check")
	}
	if !strings.Contains(script, "-l force -d 'Steal an existing lock'") {
		t.Error("Expected --force flag with description")
	}
	if !strings.Contains(script, "-l token -d 'Lock token'") {
		t.Error("Expected --token flag with description")
	}

	if !strings.Contains(script, "__fish_seen_subcommand_from unlock") {
		t.Error("Expected unlock subcommand check")
	}

	if !strings.Contains(script, "__fish_seen_subcommand_from completion") {
		t.Error("Expected completion subcommand check")
	}
	if !strings.Contains(script, "-a 'bash zsh fish powershell'") {
		t.Error("Expected completion shell options")
	}
}

func TestGeneratePowerShellCompletion(t *testing.T) {
	script := GeneratePowerShellCompletion()

	if !strings.Contains(script, "# PowerShell completion for gitassvn") {
		t.Error("Expected PowerShell completion header")
	}

	if !strings.Contains(script, "Register-ArgumentCompleter -Native -CommandName gitassvn") {
		t.Error("Expected PowerShell argument completer registration")
	}

	if !strings.Contains(script, "ScriptBlock") {
		t.Error("Expected PowerShell script block")
	}

	for _, cmd := range commands {
		expected := fmt.Sprintf("'%s'", cmd)
		if !strings.Contains(script, expected) {
			t.Errorf("Expected command '%s' in PowerShell completion", cmd)
		}
	}

	if !strings.Contains(script, "'lock'") {
		t.Error("Expected lock command switch case")
	}
	if !strings.Contains(script, "'--force'") {
		t.Error("Expected --force flag")
	}
	if !strings.Contains(script, "'--token'") {
		t.Error("Expected --token flag")
	}

	if !strings.Contains(script, "'unlock'") {
		t.Error("Expected unlock command switch case")
	}

	if !strings.Contains(script, "'completion'") {
		t.Error("Expected completion command switch case")
	}
	if !strings.Contains(script, "'bash', 'zsh', 'fish', 'powershell'") {
		t.Error("Expected completion shell options")
	}

	if !strings.Contains(script, "CompletionResult") {
		t.Error("Expected PowerShell CompletionResult")
	}
}

func TestGetCommandDescription(t *testing.T) {
	tests := []struct {
		command     string
		expectDesc  bool
		description string
	}{
		{"serve", true, "Watch the branch and extend the revision cache"},
		{"update", true, "Run one cache-extension pass and exit"},
		{"log", true, "List the most recent revisions"},
		{"show", true, "Print a node's kind, size, and effective properties"},
		{"lock", true, "Acquire a path lock"},
		{"unlock", true, "Release a path lock"},
		{"locks", true, "List locks at or beneath a prefix"},
		{"config", true, "Manage the gitassvn.yml configuration file"},
		{"admin", true, "Launch the interactive revision/lock browser"},
		{"completion", true, "Generate shell completion script"},
		{"help", true, "Show help information"},
		{"version", true, "Show version information"},
		{"nonexistent", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			result := getCommandDescription(tt.command)
			if tt.expectDesc {
				if result != tt.description {
					t.Errorf("Expected description '%s', got '%s'", tt.description, result)
				}
			} else {
				if result != "" {
					t.Errorf("Expected empty description for unknown command, got '%s'", result)
				}
			}
		})
	}
}

func TestAllCommandsHaveDescriptions(t *testing.T) {
	for _, cmd := range commands {
		desc := getCommandDescription(cmd)
		if desc == "" {
			t.Errorf("Command '%s' is missing a description", cmd)
		}
	}
}

func TestBashCompletion_ContainsAllLockFlags(t *testing.T) {
	script := GenerateBashCompletion()
	lockFlags := []string{"--rev", "--force", "--comment", "--yes", "-y"}

	for _, flag := range lockFlags {
		if !strings.Contains(script, flag) {
			t.Errorf("Expected lock flag '%s' in bash completion", flag)
		}
	}
}

func TestZshCompletion_ContainsAllLockFlags(t *testing.T) {
	script := GenerateZshCompletion()
	lockFlags := []string{
		"--rev[Revision the client believes is current]",
		"--force[Steal an existing lock]",
		"--comment[Lock comment]",
		"--yes[Skip confirmation]",
		"-y[Skip confirmation]",
	}

	for _, flag := range lockFlags {
		if !strings.Contains(script, flag) {
			t.Errorf("Expected lock flag '%s' in zsh completion", flag)
		}
	}
}

func TestFishCompletion_ContainsAllLockFlags(t *testing.T) {
	script := GenerateFishCompletion()
	lockFlags := []string{
		"-l rev",
		"-l force",
		"-l comment",
		"-l yes -s y",
	}

	for _, flag := range lockFlags {
		if !strings.Contains(script, flag) {
			t.Errorf("Expected lock flag '%s' in fish completion", flag)
		}
	}
}

func TestUnlockCommandInCompletions(t *testing.T) {
	bash := GenerateBashCompletion()
	if !strings.Contains(bash, "unlock") {
		t.Error("Expected 'unlock' in bash completion commands")
	}
	if !strings.Contains(bash, "--break") {
		t.Error("Expected --break flag in bash completion")
	}

	zsh := GenerateZshCompletion()
	if !strings.Contains(zsh, "unlock") {
		t.Error("Expected 'unlock' in zsh completion commands")
	}
	if !strings.Contains(zsh, "--break[Remove lock without its token]") {
		t.Error("Expected --break flag with description in zsh completion")
	}

	fish := GenerateFishCompletion()
	if !strings.Contains(fish, "__fish_seen_subcommand_from unlock") {
		t.Error("Expected unlock subcommand check in fish completion")
	}
	if !strings.Contains(fish, "-l break -d 'Remove lock without its token'") {
		t.Error("Expected --break flag in fish completion")
	}

	ps := GeneratePowerShellCompletion()
	if !strings.Contains(ps, "'unlock'") {
		t.Error("Expected 'unlock' in PowerShell completion")
	}
	if !strings.Contains(ps, "'--break'") {
		t.Error("Expected --break flag in PowerShell completion")
	}
}

func TestPowerShellCompletion_ContainsAllLockFlags(t *testing.T) {
	script := GeneratePowerShellCompletion()
	lockFlags := []string{"'--rev'", "'--force'", "'--comment'", "'--yes'", "'-y'"}

	for _, flag := range lockFlags {
		if !strings.Contains(script, flag) {
			t.Errorf("Expected lock flag '%s' in PowerShell completion", flag)
		}
	}
}
