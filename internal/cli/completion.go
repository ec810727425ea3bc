package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/zfactor/internal/ui"
)

// programName is the command the completion scripts register for.
const programName = "zfactor"

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "-" (e.g., "tolerance")
	Short     string   // single-letter alias without "-" (e.g., "q")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "number", "duration")
	IsFile    bool     // true if the flag takes a file path
	IsCorr    bool     // true if values come from the correlation registry
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "tpr", Help: "Pseudo-reduced temperature", ValueName: "number"},
	{Long: "ppr", Help: "Pseudo-reduced pressure", ValueName: "number"},
	{Long: "correlation", Help: "Correlation to use", IsCorr: true, ValueName: "correlation"},
	{Long: "tolerance", Help: "Newton-Raphson residual tolerance", Values: []string{"1e-4", "1e-6", "1e-8", "1e-10"}, ValueName: "number"},
	{Long: "grid", Help: "Evaluate over a Tpr x Ppr grid"},
	{Long: "tui", Help: "Chart the grid in a dashboard"},
	{Long: "tpr-min", Help: "Grid minimum Tpr", ValueName: "number"},
	{Long: "tpr-max", Help: "Grid maximum Tpr", ValueName: "number"},
	{Long: "tpr-step", Help: "Grid Tpr increment", ValueName: "number"},
	{Long: "ppr-min", Help: "Grid minimum Ppr", ValueName: "number"},
	{Long: "ppr-max", Help: "Grid maximum Ppr", ValueName: "number"},
	{Long: "ppr-step", Help: "Grid Ppr increment", ValueName: "number"},
	{Long: "batch", Help: "TOML or YAML batch file", IsFile: true, ValueName: "file"},
	{Long: "format", Help: "Output format", Values: []string{"text", "csv", "json", "yaml"}, ValueName: "format"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file"},
	{Long: "metrics-out", Help: "Prometheus metrics file", IsFile: true, ValueName: "file"},
	{Long: "workers", Help: "Concurrent solves", ValueName: "number"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"10s", "30s", "1m", "5m"}, ValueName: "duration"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts"},
	{Long: "verbose", Short: "v", Help: "Full-precision values"},
	{Long: "details", Short: "d", Help: "Show iteration diagnostics"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "theme", Help: "Color theme", Values: ui.ThemeNames(), ValueName: "theme"},
	{Long: "interactive", Short: "i", Help: "Start an interactive session"},
	{Long: "serve", Help: "Serve over HTTP", Values: []string{":8080"}, ValueName: "address"},
	{Long: "strict", Help: "Fail on non-converged solves"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish").
//   - correlations: List of available correlation keys.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, correlations []string) error {
	corrs := strings.Join(append(append([]string{}, correlations...), "all"), " ")
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(corrs)
	case "zsh":
		script = zshCompletion(corrs)
	case "fish":
		script = fishCompletion(corrs)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

func bashCompletion(corrs string) string {
	var opts, cases []string
	for _, f := range flagRegistry {
		opts = append(opts, "-"+f.Long)
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
		patterns := "-" + f.Long
		if f.Short != "" && f.ValueName != "" {
			patterns += "|-" + f.Short
		}
		switch {
		case f.IsCorr:
			cases = append(cases, fmt.Sprintf("        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;", patterns, corrs))
		case f.IsFile:
			cases = append(cases, fmt.Sprintf("        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;", patterns))
		case len(f.Values) > 0:
			cases = append(cases, fmt.Sprintf("        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;", patterns, strings.Join(f.Values, " ")))
		}
	}
	return fmt.Sprintf(`# Bash completion script for %[1]s
# Source this file or place it in /etc/bash_completion.d/

_%[1]s() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
%[2]s
    esac

    COMPREPLY=( $(compgen -W "%[3]s" -- "${cur}") )
}

complete -F _%[1]s %[1]s
`, programName, strings.Join(cases, "\n"), strings.Join(opts, " "))
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsCorr:
		valueSuffix = fmt.Sprintf(":%s:($correlations)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}
	if f.Short != "" {
		return fmt.Sprintf("        '(-%s -%s)'{-%s,-%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '-%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

func zshCompletion(corrs string) string {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	return fmt.Sprintf(`#compdef %[1]s

# Zsh completion script for %[1]s
# Place this file in $fpath as _%[1]s

_%[1]s() {
    local -a correlations
    correlations=(%[2]s)

    _arguments -s \
%[3]s
}

_%[1]s "$@"
`, programName, corrs, strings.Join(args, " \\\n"))
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
// Go flags take a single dash, which fish calls an old-style option (-o).
func fishCompleteLine(f FlagCompletion, corrs string) string {
	parts := []string{"complete -c " + programName, "-o " + f.Long}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))
	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsCorr:
		parts = append(parts, fmt.Sprintf("-xa '%s'", corrs))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

func fishCompletion(corrs string) string {
	lines := []string{
		"# Fish completion script for " + programName,
		"# Add this to ~/.config/fish/completions/" + programName + ".fish",
		"",
		"complete -c " + programName + " -f",
	}
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f, corrs))
	}
	return strings.Join(lines, "\n") + "\n"
}
