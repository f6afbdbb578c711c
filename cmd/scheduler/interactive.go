package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/catalogue"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/session"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	helpText = `Commands:
  h            Show this help
  b            Build a schedule from the current selection
  s TERMS      Search the catalogue by name
  l            List the current selection and blocked windows
  x START-END  Block a time window
  d ID         Remove an entry from the selection
  q            Quit
  ID [WEIGHT]  Select an entry (weight defaults to 1)`
	searchResults = 10
	scrollback    = 200 // Lines kept in the output pane
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// shell executes interactive commands against a session
type shell struct {
	session   *session.Session
	catalogue *catalogue.Catalogue
	mode      string
	frontier  uint
}

// Execute runs one command line and returns its output, whether it failed and whether the shell should exit
func (sh *shell) Execute(line string) (output string, failed bool, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false, false
	}

	command, arguments := fields[0], fields[1:]
	switch command {
	case "h":
		return helpText, false, false
	case "q":
		return "Bye", false, true
	case "b":
		report, err := sh.session.Build(sh.mode, sh.frontier)
		if err != nil {
			return err.Error(), true, false
		}
		return strings.TrimRight(report.String(), "\n"), false, false
	case "s":
		if len(arguments) == 0 {
			return "usage: s TERMS", true, false
		}
		var builder strings.Builder
		writeMatches(&builder, sh.catalogue.Search(strings.Join(arguments, " "), searchResults))
		return strings.TrimRight(builder.String(), "\n"), false, false
	case "l":
		return sh.list(), false, false
	case "x":
		if len(arguments) != 1 {
			return "usage: x START-END", true, false
		}
		window, err := parseWindow(arguments[0])
		if err == nil {
			err = sh.session.Exclude(window)
		}
		if err != nil {
			return err.Error(), true, false
		}
		return fmt.Sprintf("Blocked [%v, %v]", window.Start, window.End), false, false
	case "d":
		if len(arguments) != 1 {
			return "usage: d ID", true, false
		}
		id, err := strconv.ParseUint(arguments[0], 10, 64)
		if err != nil || !sh.session.Deselect(id) {
			return fmt.Sprintf("%v is not selected", arguments[0]), true, false
		}
		return fmt.Sprintf("Removed %v", id), false, false
	}

	// Anything else must be an entry id, optionally followed by a weight
	if len(fields) > 2 {
		return "unknown command, type h for help", true, false
	}
	id, weight, err := parseSelection(strings.Join(fields, ":"))
	if err != nil {
		return "unknown command, type h for help", true, false
	}
	if err := sh.session.Select(id, weight); err != nil {
		return err.Error(), true, false
	}
	entry, _ := sh.catalogue.Get(id)
	return fmt.Sprintf("Selected %v %v (weight %v)", entry.Id, entry.Name, weight), false, false
}

func (sh *shell) list() string {
	selections := sh.session.Selections()
	exclusions := sh.session.Exclusions()
	if len(selections) == 0 && len(exclusions) == 0 {
		return "Nothing selected"
	}

	lines := lo.Map(selections, func(selection session.Selection, _ int) string {
		entry, _ := sh.catalogue.Get(selection.Id)
		return fmt.Sprintf("%v\t%v\tweight %v", entry.Id, entry.Name, selection.Weight)
	})
	for _, window := range exclusions {
		lines = append(lines, fmt.Sprintf("blocked [%v, %v]", window.Start, window.End))
	}
	return strings.Join(lines, "\n")
}

// shellModel is the bubbletea model wrapping the shell
type shellModel struct {
	shell    *shell
	input    textinput.Model
	output   []string
	quitting bool
}

func newShellModel(sh *shell) shellModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "h for help"
	input.CharLimit = 256
	input.Width = 60
	input.Focus()

	return shellModel{
		shell:  sh,
		input:  input,
		output: []string{titleStyle.Render(fmt.Sprintf("%v entries available for selection", sh.catalogue.Len()))},
	}
}

func (m shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}

			output, failed, quit := m.shell.Execute(line)
			m.output = append(m.output, footerStyle.Render("> "+line))
			if failed {
				output = errorStyle.Render(output)
			}
			m.output = append(m.output, output)
			if len(m.output) > scrollback {
				m.output = m.output[len(m.output)-scrollback:]
			}

			if quit {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) View() string {
	if m.quitting {
		return strings.Join(m.output, "\n") + "\n"
	}
	return strings.Join(m.output, "\n") + "\n\n" + m.input.View() + "\n" + footerStyle.Render("enter: run  esc: quit")
}

// runScript executes one command per input line, for piped input
func runScript(sh *shell, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		output, _, quit := sh.Execute(scanner.Text())
		if output != "" {
			fmt.Fprintln(w, output)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd()))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	current, cat, registry, err := newSession()
	if err != nil {
		return err
	}
	sh := &shell{session: current, catalogue: cat, mode: settings.Mode, frontier: settings.MaxFrontier}

	// Fall back to line-by-line execution for non-TTY input
	if !isTerminal(cmd.InOrStdin()) {
		if err := runScript(sh, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("cannot read commands: %v", err)
		}
		return writeMetrics(registry)
	}

	program := tea.NewProgram(newShellModel(sh), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("interactive shell failed: %v", err)
	}
	return writeMetrics(registry)
}
