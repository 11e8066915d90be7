package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/optkit/flowplan/pkg/graph"
	"github.com/optkit/flowplan/pkg/model"
	"github.com/optkit/flowplan/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		kindStr string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "edit [model.json]",
		Short: "Edit and solve a model interactively",
		Long: `Edit and solve a model interactively in the terminal.

Build the supply/demand network node by node, connect supplies to demands
with cost edges, and solve without leaving the editor. When a file path is
given it is loaded on start and written back with 'w'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(kindStr)
			if err != nil {
				return err
			}

			store := graph.NewStore()
			path := ""
			if len(args) == 1 {
				path = args[0]
				if _, err := os.Stat(path); err == nil {
					store, err = loadModel(path)
					if err != nil {
						return fmt.Errorf("load model %s: %w", path, err)
					}
				}
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			m := NewEditorModel(store, runner, kind, path)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&kindStr, "kind", "k", "transportation", "problem kind: transportation (default), assignment")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// editorMode selects between browsing and the input prompt.
type editorMode int

const (
	modeBrowse editorMode = iota
	modePrompt
)

// promptKind identifies which operation the input prompt is collecting.
type promptKind int

const (
	promptAddSupply promptKind = iota
	promptAddDemand
	promptAddEdge
	promptRename
	promptCost
)

// EditorModel is the bubbletea model for the interactive editor.
type EditorModel struct {
	store  *graph.Store
	runner *pipeline.Runner
	kind   model.Kind
	path   string

	cursor int
	height int
	offset int

	mode   editorMode
	prompt promptKind
	label  string
	input  string

	status string
	report string
}

// NewEditorModel creates an editor over the given store.
func NewEditorModel(store *graph.Store, runner *pipeline.Runner, kind model.Kind, path string) EditorModel {
	return EditorModel{
		store:  store,
		runner: runner,
		kind:   kind,
		path:   path,
		height: 12,
	}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modePrompt {
			return m.updatePrompt(msg)
		}
		return m.updateBrowse(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 14
		if m.height < 4 {
			m.height = 4
		}
	}
	return m, nil
}

func (m EditorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < m.store.NodeCount()-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "s":
		return m.openPrompt(promptAddSupply, "supply amount"), nil
	case "d":
		return m.openPrompt(promptAddDemand, "demand amount"), nil
	case "e":
		return m.openPrompt(promptAddEdge, "edge (from to cost)"), nil
	case "r":
		if node, ok := m.selectedNode(); ok {
			return m.openPrompt(promptRename, fmt.Sprintf("rename %s to", node.ID)), nil
		}
	case "c":
		if node, ok := m.selectedNode(); ok {
			return m.openPrompt(promptCost, fmt.Sprintf("edge from %s (to cost)", node.ID)), nil
		}
	case "x":
		if node, ok := m.selectedNode(); ok {
			if err := m.store.DeleteNode(node.ID); err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("deleted %s", node.ID)
				if m.cursor >= m.store.NodeCount() && m.cursor > 0 {
					m.cursor--
				}
			}
		}
	case "t":
		if m.kind == model.Transportation {
			m.kind = model.Assignment
		} else {
			m.kind = model.Transportation
		}
		m.status = fmt.Sprintf("kind: %s", m.kind)
	case "enter", "S":
		m.solve()
	case "w":
		m.save()
	case "C":
		m.store.Clear()
		m.cursor, m.offset = 0, 0
		m.report = ""
		m.status = "model cleared"
	}
	return m, nil
}

func (m EditorModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeBrowse
		m.input = ""
	case "enter":
		m.commitPrompt()
		m.mode = modeBrowse
		m.input = ""
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.input += msg.String()
		}
	}
	return m, nil
}

func (m EditorModel) openPrompt(kind promptKind, label string) EditorModel {
	m.mode = modePrompt
	m.prompt = kind
	m.label = label
	m.input = ""
	return m
}

// commitPrompt applies the typed input for the active prompt.
func (m *EditorModel) commitPrompt() {
	fields := strings.Fields(m.input)

	switch m.prompt {
	case promptAddSupply, promptAddDemand:
		if len(fields) != 1 {
			m.status = "expected a single amount"
			return
		}
		amount, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			m.status = fmt.Sprintf("bad amount %q", fields[0])
			return
		}
		id, err := m.store.AddNode(m.prompt == promptAddSupply, amount)
		if err != nil {
			m.status = err.Error()
			return
		}
		m.status = fmt.Sprintf("added %s", id)

	case promptAddEdge:
		if len(fields) != 3 {
			m.status = "expected: from to cost"
			return
		}
		cost, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			m.status = fmt.Sprintf("bad cost %q", fields[2])
			return
		}
		if err := m.store.AddEdge(fields[0], fields[1], cost); err != nil {
			m.status = err.Error()
			return
		}
		m.status = fmt.Sprintf("added %s %s %s", fields[0], iconArrow, fields[1])

	case promptRename:
		node, ok := m.selectedNode()
		if !ok || len(fields) != 1 {
			m.status = "expected a single new id"
			return
		}
		if err := m.store.RenameNode(node.ID, fields[0]); err != nil {
			m.status = err.Error()
			return
		}
		m.status = fmt.Sprintf("renamed to %s", fields[0])

	case promptCost:
		node, ok := m.selectedNode()
		if !ok || len(fields) != 2 {
			m.status = "expected: to cost"
			return
		}
		cost, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			m.status = fmt.Sprintf("bad cost %q", fields[1])
			return
		}
		if err := m.store.UpdateEdgeCost(node.ID, fields[0], cost); err != nil {
			m.status = err.Error()
			return
		}
		m.status = fmt.Sprintf("cost %s %s %s = %v", node.ID, iconArrow, fields[0], cost)
	}
}

// solve runs the pipeline on the current model and stores the rendering.
func (m *EditorModel) solve() {
	result, err := m.runner.Solve(context.Background(), m.store, pipeline.Options{Kind: m.kind})
	if err != nil {
		m.status = err.Error()
		m.report = ""
		return
	}
	m.report = result.Report.Render()
	m.status = fmt.Sprintf("solved: total cost %v", result.Report.TotalCost)
	if m.cursor >= m.store.NodeCount() {
		m.cursor = 0
		m.offset = 0
	}
}

// save writes the model back to the file given on the command line.
func (m *EditorModel) save() {
	if m.path == "" {
		m.status = "no file path; start with: flowplan edit model.json"
		return
	}
	data, err := graph.MarshalModel(m.store.Snapshot())
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %s", m.path)
}

func (m EditorModel) selectedNode() (graph.Node, bool) {
	nodes := m.store.Nodes()
	if m.cursor < 0 || m.cursor >= len(nodes) {
		return graph.Node{}, false
	}
	return nodes[m.cursor], true
}

func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Flowplan Editor"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%s]", m.kind)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("s/d add node  e edge  r rename  c cost  x delete  ⏎ solve  w save  t kind  C clear  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.nodeTable())
	b.WriteString("\n")

	if edges := m.store.Edges(); len(edges) > 0 {
		parts := make([]string, len(edges))
		for i, e := range edges {
			parts[i] = fmt.Sprintf("%s%s%s:%v", e.From, iconArrow, e.To, e.Cost)
		}
		b.WriteString(listDimStyle.Render("edges: " + strings.Join(parts, "  ")))
		b.WriteString("\n")
	}

	if m.mode == modePrompt {
		b.WriteString("\n")
		b.WriteString(StyleHighlight.Render(m.label+": ") + m.input + StyleHighlight.Render("▌"))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.report != "" {
		b.WriteString("\n")
		b.WriteString(m.report)
	}

	return b.String()
}

// nodeTable renders the visible window of the node list.
func (m EditorModel) nodeTable() string {
	nodes := m.store.Nodes()

	end := m.offset + m.height
	if end > len(nodes) {
		end = len(nodes)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := nodes[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		kind := "demand"
		if n.IsSupply() {
			kind = "supply"
		}
		flag := ""
		if n.Fictitious {
			flag = "fictitious"
		}

		rows = append(rows, []string{cursor, n.ID, kind, fmt.Sprintf("%v", n.Amount()), flag})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Amount", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.offset + row
			if actualIdx == m.cursor {
				return listSelectedStyle
			}
			if actualIdx < len(nodes) && nodes[actualIdx].Fictitious {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}
