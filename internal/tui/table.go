package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/amishk599/resumegen/internal/model"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
}

// LocksTable renders stale locks for terminal output.
func LocksTable(locks []model.StaleLock) string {
	t := newTable("LOCK ID", "CREATED", "AGE (MIN)", "WHO")
	for _, l := range locks {
		t.Row(l.LockID, l.Created, strconv.Itoa(l.AgeMinutes), l.Who)
	}
	return t.String()
}

// DeploymentsTable renders deployment history for terminal output.
func DeploymentsTable(deployments []model.Deployment) string {
	t := newTable("DEPLOYED", "ENV", "DOCUMENT", "MODEL", "URL")
	for _, d := range deployments {
		target := d.Target
		if d.Profile != "" {
			target += " (via " + d.Profile + ")"
		}
		t.Row(d.DeployedAt.Local().Format(time.DateTime), d.Env, d.Document, target, d.URL)
	}
	return t.String()
}

// ProfilesTable renders routing profiles with their underlying models.
func ProfilesTable(profiles []model.RoutingProfile) string {
	t := newTable("PROFILE", "MODELS")
	for _, p := range profiles {
		models := ""
		for i, m := range p.Models {
			if i > 0 {
				models += "\n"
			}
			models += m
		}
		t.Row(p.ID, models)
	}
	return t.String()
}
