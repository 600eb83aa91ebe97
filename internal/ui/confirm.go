// internal/ui/confirm.go
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/spl-transfer/internal/config"
	"github.com/rovshanmuradov/spl-transfer/internal/ui/style"
)

// SummaryRow is one labelled line of the transfer summary.
type SummaryRow struct {
	Label string
	Value string
}

// TransferSummary lists what is about to be sent.
func TransferSummary(cfg *config.Config, dryRun bool) []SummaryRow {
	rows := []SummaryRow{
		{Label: "RPC", Value: cfg.MaskRPCForLogging()},
		{Label: "Sender", Value: cfg.Sender.PublicKey.String()},
		{Label: "Receiver", Value: cfg.Receiver.String()},
		{Label: "Mint", Value: cfg.Mint.String()},
		{Label: "Amount", Value: cfg.TransferAmount.String()},
		{Label: "Compute units", Value: fmt.Sprintf("%d", cfg.ComputeUnits)},
		{Label: "Priority fee", Value: cfg.TxFee.String() + " SOL"},
		{Label: "Memo", Value: cfg.Memo},
	}
	if dryRun {
		rows = append(rows, SummaryRow{Label: "Mode", Value: "dry run, nothing is sent"})
	}
	return rows
}

// ConfirmModel asks the user to approve the transfer before any RPC call is made.
type ConfirmModel struct {
	rows      []SummaryRow
	keys      KeyMap
	confirmed bool
	done      bool
}

// NewConfirmModel creates the prompt for rows.
func NewConfirmModel(rows []SummaryRow) ConfirmModel {
	return ConfirmModel{rows: rows, keys: DefaultKeyMap()}
}

// Confirmed reports whether the user approved.
func (m ConfirmModel) Confirmed() bool { return m.confirmed }

// Done reports whether the user answered.
func (m ConfirmModel) Done() bool { return m.done }

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Abort):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.done {
		if m.confirmed {
			return ""
		}
		return style.WarningStyle.Render("transfer aborted") + "\n"
	}

	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Confirm SPL token transfer"))
	b.WriteString("\n")

	lines := make([]string, 0, len(m.rows))
	for _, row := range m.rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			style.LabelStyle.Render(row.Label),
			style.ValueStyle.Render(row.Value)))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, lines...))

	return style.PanelStyle.Render(b.String()) + "\n" + m.helpView() + "\n"
}

func (m ConfirmModel) helpView() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, binding := range m.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, style.HelpKeyStyle.Render(help.Key)+" "+style.HelpDescStyle.Render(help.Desc))
	}
	return strings.Join(parts, style.HelpDescStyle.Render(" • "))
}

// ErrAborted is returned by Confirm when the user declines.
var ErrAborted = errors.New("transfer aborted by user")

// Confirm runs the prompt on in/out and returns ErrAborted unless the user approves.
func Confirm(ctx context.Context, rows []SummaryRow, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(
		NewConfirmModel(rows),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return ErrAborted
		}
		return fmt.Errorf("confirmation prompt failed: %w", err)
	}

	if m, ok := final.(ConfirmModel); ok && m.Confirmed() {
		return nil
	}
	return ErrAborted
}
