// Package tui is an interactive browser over one evaluation's result
// set: switchable tables of person, tax-unit and household rows.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikrosim/taxben/internal/domain"
)

// view identifies which entity level the table currently shows.
type view int

const (
	viewPersons view = iota
	viewTaxUnits
	viewHouseholds
)

func (v view) title() string {
	switch v {
	case viewTaxUnits:
		return "Tax units"
	case viewHouseholds:
		return "Households"
	default:
		return "Persons"
	}
}

type keyMap struct {
	NextView key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	NextView: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch level"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the application state: the immutable result set and one table
// widget per entity level.
type Model struct {
	results *domain.ResultSet

	current view
	tables  [3]table.Model

	width  int
	height int
}

// NewModel builds the browser over a finished result set.
func NewModel(results *domain.ResultSet) Model {
	m := Model{results: results}
	m.tables[viewPersons] = personTable(results)
	m.tables[viewTaxUnits] = taxUnitTable(results)
	m.tables[viewHouseholds] = householdTable(results)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.tables {
			m.tables[i].SetHeight(max(msg.Height-6, 3))
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.NextView):
			m.current = (m.current + 1) % 3
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.tables[m.current], cmd = m.tables[m.current].Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		TitleStyle.Render(fmt.Sprintf("mikrosim %d", m.results.Year)),
		SubtitleStyle.Render(m.current.title()),
	)
	status := StatusBarStyle.Render(
		HelpKeyStyle.Render("tab") + " switch level  " +
			HelpKeyStyle.Render("↑/↓") + " scroll  " +
			HelpKeyStyle.Render("q") + " quit",
	)
	return header + "\n" +
		TableBorderStyle.Render(m.tables[m.current].View()) + "\n" +
		status
}

func personTable(rs *domain.ResultSet) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Reg. age", Width: 9},
		{Title: "Full age", Width: 9},
		{Title: "Access", Width: 8},
		{Title: "Points", Width: 9},
		{Title: "Claim", Width: 10},
		{Title: "w/ Suppl.", Width: 10},
		{Title: "Prev. Rw", Width: 9},
		{Title: "Health cap", Width: 11},
		{Title: "Income", Width: 10},
	}
	rows := make([]table.Row, len(rs.Persons))
	for i, p := range rs.Persons {
		rows[i] = table.Row{
			fmt.Sprintf("%d", p.PersonID),
			fmt.Sprintf("%.2f", p.RegularRetirementAge),
			fmt.Sprintf("%.2f", p.FullRetirementAge),
			p.AccessFactor.StringFixed(4),
			p.EarningPoints.StringFixed(2),
			p.PensionClaim.StringFixed(2),
			p.PensionWithSupplement.StringFixed(2),
			p.PriorYearPointValue.StringFixed(2),
			p.HealthContributionCeiling.StringFixed(2),
			p.CountableIncome.StringFixed(2),
		}
	}
	return newTable(columns, rows)
}

func taxUnitTable(rs *domain.ResultSet) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Adults", Width: 7},
		{Title: "Deduction", Width: 12},
	}
	rows := make([]table.Row, len(rs.TaxUnits))
	for i, u := range rs.TaxUnits {
		rows[i] = table.Row{
			fmt.Sprintf("%d", u.TaxUnitID),
			fmt.Sprintf("%d", u.AdultCount),
			u.Deduction.StringFixed(2),
		}
	}
	return newTable(columns, rows)
}

func householdTable(rs *domain.ResultSet) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Income", Width: 10},
		{Title: "Wealth cap", Width: 11},
		{Title: "Need", Width: 10},
		{Title: "Benefit", Width: 10},
	}
	rows := make([]table.Row, len(rs.Households))
	for i, h := range rs.Households {
		rows[i] = table.Row{
			fmt.Sprintf("%d", h.HouseholdID),
			h.CountableIncome.StringFixed(2),
			h.WealthThreshold.StringFixed(2),
			h.NeedAfterWealthTest.StringFixed(2),
			h.SubsistenceBenefit.StringFixed(2),
		}
	}
	return newTable(columns, rows)
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(ColorForeground)
	s.Selected = s.Selected.Foreground(ColorForeground).Background(ColorPrimary)
	t.SetStyles(s)
	return t
}

