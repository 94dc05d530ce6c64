// Package cmd provides CLI utilities for gitassvn.
package cmd

import (
	"fmt"
	"strings"
)

// Commands available in gitassvn.
var commands = []string{
	"serve",
	"update",
	"log",
	"show",
	"lock",
	"unlock",
	"locks",
	"config",
	"admin",
	"completion",
	"help",
	"version",
}

// GenerateBashCompletion generates a bash completion script.
func GenerateBashCompletion() string {
	return fmt.Sprintf(`# bash completion for gitassvn
_gitassvn_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Commands
    opts="%s"

    # Command-specific options
    case "${prev}" in
        serve)
            opts="--config --quiet -q --json"
            ;;
        update)
            opts="--config --quiet -q --json"
            ;;
        log)
            opts="-n --json"
            ;;
        show)
            opts="--json"
            ;;
        lock)
            opts="--rev --force --comment --yes -y --json"
            ;;
        unlock)
            opts="--token --break --yes -y --json"
            ;;
        locks)
            opts="--json"
            ;;
        config)
            opts="init"
            ;;
        completion)
            opts="bash zsh fish powershell"
            ;;
        admin)
            opts=""
            ;;
    esac

    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
}

complete -F _gitassvn_completions gitassvn
`, strings.Join(commands, " "))
}

// GenerateZshCompletion generates a zsh completion script.
func GenerateZshCompletion() string {
	cmdList := make([]string, len(commands))
	for i, cmd := range commands {
		desc := getCommandDescription(cmd)
		cmdList[i] = fmt.Sprintf("    '%s:%s'", cmd, desc)
	}

	return fmt.Sprintf(`#compdef gitassvn

_gitassvn() {
    local -a commands
    commands=(
%s
    )

    _arguments -C \
        '1: :->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                serve|update)
                    _arguments \
                        '--config[Path to gitassvn.yml]:file:_files' \
                        '--quiet[Minimal output]' \
                        '-q[Minimal output]' \
                        '--json[JSON output]'
                    ;;
                log)
                    _arguments \
                        '-n[Number of revisions to show]:count:' \
                        '--json[JSON output]'
                    ;;
                show)
                    _arguments '--json[JSON output]'
                    ;;
                lock)
                    _arguments \
                        '--rev[Revision the client believes is current]:rev:' \
                        '--force[Steal an existing lock]' \
                        '--comment[Lock comment]:comment:' \
                        '--yes[Skip confirmation]' \
                        '-y[Skip confirmation]' \
                        '--json[JSON output]'
                    ;;
                unlock)
                    _arguments \
                        '--token[Lock token]:token:' \
                        '--break[Remove lock without its token]' \
                        '--yes[Skip confirmation]' \
                        '-y[Skip confirmation]' \
                        '--json[JSON output]'
                    ;;
                locks)
                    _arguments '--json[JSON output]'
                    ;;
                config)
                    _arguments '1:subcommand:(init)'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish powershell)'
                    ;;
            esac
            ;;
    esac
}

_gitassvn "$@"
`, strings.Join(cmdList, "\n"))
}

// GenerateFishCompletion generates a fish completion script.
func GenerateFishCompletion() string {
	var completions []string

	for _, cmd := range commands {
		desc := getCommandDescription(cmd)
		completions = append(completions, fmt.Sprintf("complete -c gitassvn -f -n '__fish_use_subcommand' -a '%s' -d '%s'", cmd, desc))
	}

	completions = append(completions, "# serve/update flags")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from serve update' -l config -d 'Path to gitassvn.yml' -r")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from serve update' -l quiet -s q -d 'Minimal output'")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from serve update' -l json -d 'JSON output'")

	completions = append(completions, "# log flags")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from log' -s n -d 'Number of revisions to show' -r")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from log' -l json -d 'JSON output'")

	completions = append(completions, "# lock flags")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from lock' -l rev -d 'Revision the client believes is current' -r")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from lock' -l force -d 'Steal an existing lock'")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from lock' -l comment -d 'Lock comment' -r")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from lock' -l yes -s y -d 'Skip confirmation'")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from lock' -l json -d 'JSON output'")

	completions = append(completions, "# unlock flags")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from unlock' -l token -d 'Lock token' -r")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from unlock' -l break -d 'Remove lock without its token'")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from unlock' -l yes -s y -d 'Skip confirmation'")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from unlock' -l json -d 'JSON output'")

	completions = append(completions, "# locks/show flags")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from locks show' -l json -d 'JSON output'")

	completions = append(completions, "# config subcommand")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from config' -f -a 'init'")

	completions = append(completions, "# completion shells")
	completions = append(completions, "complete -c gitassvn -n '__fish_seen_subcommand_from completion' -f -a 'bash zsh fish powershell'")

	return strings.Join(completions, "\n")
}

// GeneratePowerShellCompletion generates a PowerShell completion script.
func GeneratePowerShellCompletion() string {
	cmdArray := make([]string, len(commands))
	for i, cmd := range commands {
		cmdArray[i] = fmt.Sprintf("'%s'", cmd)
	}

	return fmt.Sprintf(`# PowerShell completion for gitassvn
Register-ArgumentCompleter -Native -CommandName gitassvn -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $commands = @(%s)

    $line = $commandAst.ToString()
    $tokens = $line.Split(' ')

    if ($tokens.Count -eq 2) {
        $commands | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
    }
    elseif ($tokens.Count -gt 2) {
        $subcommand = $tokens[1]

        switch ($subcommand) {
            { $_ -in 'serve','update' } {
                @('--config', '--quiet', '-q', '--json') |
                    Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
                    }
            }
            'log' {
                @('-n', '--json') |
                    Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
                    }
            }
            'lock' {
                @('--rev', '--force', '--comment', '--yes', '-y', '--json') |
                    Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
                    }
            }
            'unlock' {
                @('--token', '--break', '--yes', '-y', '--json') |
                    Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
                    }
            }
            { $_ -in 'locks','show' } {
                @('--json') |
                    Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
                    }
            }
            'config' {
                @('init') |
                    Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
                    }
            }
            'completion' {
                @('bash', 'zsh', 'fish', 'powershell') |
                    Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
                    }
            }
        }
    }
}
`, strings.Join(cmdArray, ", "))
}

// getCommandDescription returns a short description for a command.
func getCommandDescription(cmd string) string {
	descriptions := map[string]string{
		"serve":      "Watch the branch and extend the revision cache",
		"update":     "Run one cache-extension pass and exit",
		"log":        "List the most recent revisions",
		"show":       "Print a node's kind, size, and effective properties",
		"lock":       "Acquire a path lock",
		"unlock":     "Release a path lock",
		"locks":      "List locks at or beneath a prefix",
		"config":     "Manage the gitassvn.yml configuration file",
		"admin":      "Launch the interactive revision/lock browser",
		"completion": "Generate shell completion script",
		"help":       "Show help information",
		"version":    "Show version information",
	}

	if desc, ok := descriptions[cmd]; ok {
		return desc
	}
	return ""
}
