package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

// Format формат вывода команд.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat разбирает значение флага --output.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("cli: неизвестный формат вывода %q (table, json, yaml)", s)
	}
}

// Printer печатает состояние представления в выбранном формате.
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Print для table вызывает render, для json и yaml сериализует state целиком.
func (p *Printer) Print(state any, render func() string) error {
	switch p.format {
	case FormatJSON:
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("cli: json: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return err
	case FormatYAML:
		data, err := toYAML(state)
		if err != nil {
			return err
		}
		_, err = p.w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(p.w, render())
		return err
	}
}

// Message строка для человека; в json и yaml не печатается.
func (p *Printer) Message(format string, args ...any) {
	if p.format != FormatTable {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

// toYAML сохраняет имена полей из json тегов: состояние проходит через json.
func toYAML(state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("cli: yaml: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("cli: yaml: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("cli: yaml: %w", err)
	}
	return out, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	badgeColors = map[string]lipgloss.Color{
		models.ProjectStatusOpen:       lipgloss.Color("#3B82F6"),
		models.ProjectStatusInProgress: lipgloss.Color("#F59E0B"),
		models.ProjectStatusCompleted:  lipgloss.Color("#10B981"),
		models.ProjectStatusCancelled:  lipgloss.Color("#6B7280"),
		models.ProposalStatusPending:   lipgloss.Color("#F59E0B"),
		models.ProposalStatusAccepted:  lipgloss.Color("#10B981"),
		models.ProposalStatusRejected:  lipgloss.Color("#EF4444"),
		models.ProposalStatusWithdrawn: lipgloss.Color("#6B7280"),
		models.PaymentStatusFailed:     lipgloss.Color("#EF4444"),
		models.PaymentStatusRefunded:   lipgloss.Color("#8B5CF6"),
	}
)

// badge цветная метка статуса.
func badge(status string) string {
	bg, ok := badgeColors[status]
	if !ok {
		bg = lipgloss.Color("#6B7280")
	}
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Bold(true).
		Render(status)
}

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return mutedStyle.Render("пусто")
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

// failure строка ошибки загрузки или пустая строка.
func failure(status view.Status, msg string) string {
	if status != view.Failed {
		return ""
	}
	return errorStyle.Render("Ошибка: " + msg)
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func money(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func projectRows(projects []models.Project) [][]string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			itoa(p.ID), p.Title, p.Category,
			money(p.MinBudget) + " – " + money(p.MaxBudget),
			strconv.Itoa(p.Duration) + " дн.",
			badge(p.Status),
		})
	}
	return rows
}

var projectHeaders = []string{"ID", "Название", "Категория", "Бюджет", "Срок", "Статус"}

func proposalRows(proposals []models.Proposal) [][]string {
	rows := make([][]string, 0, len(proposals))
	for _, p := range proposals {
		who := p.FreelancerName
		if who == "" {
			who = "#" + itoa(p.FreelancerID)
		}
		title := p.ProjectTitle
		if title == "" {
			title = "#" + itoa(p.ProjectID)
		}
		rows = append(rows, []string{
			itoa(p.ID), title, who, money(p.BidAmount),
			strconv.Itoa(p.Duration) + " дн.", badge(p.Status),
		})
	}
	return rows
}

var proposalHeaders = []string{"ID", "Проект", "Фрилансер", "Ставка", "Срок", "Статус"}

func counts(c map[string]int, order ...string) string {
	parts := make([]string, 0, len(order)+1)
	parts = append(parts, "всего "+strconv.Itoa(c[models.FilterAll]))
	for _, status := range order {
		if n := c[status]; n > 0 {
			parts = append(parts, strings.ToLower(status)+" "+strconv.Itoa(n))
		}
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}
