package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/pipeline"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		aspectRatio float64
		engine      engineFlags
	)

	cmd := &cobra.Command{
		Use:   "explore [graph.json]",
		Short: "Interactively collapse groups and re-run the layout",
		Long: `Interactively collapse groups and re-run the layout.

The explorer lists every group in the graph. Space toggles a group's
collapsed flag, enter lays the graph out again and shows node, edge and
overlap counts. Press w to write the current graph back to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], aspectRatio, engine)
		},
	}

	cmd.Flags().Float64Var(&aspectRatio, "aspect-ratio", 0, "container width/height ratio (default from config)")
	engine.register(cmd)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, aspectRatio float64, engine engineFlags) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, closeRunner, err := c.newRunner(ctx, engine)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()

	m := newExploreModel(ctx, runner, g, input, c.aspectRatio(aspectRatio))
	if _, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explore: %w", err)
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive group explorer
// =============================================================================

// groupRow is one line of the explorer.
type groupRow struct {
	node  *graph.Node
	depth int
}

// layoutDoneMsg carries the outcome of a background layout.
type layoutDoneMsg struct {
	summary layoutSummary
	elapsed time.Duration
	err     error
}

// savedMsg reports the outcome of writing the graph back to disk.
type savedMsg struct{ err error }

type exploreModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	root   *graph.Node
	path   string
	aspect float64

	rows   []groupRow
	cursor int
	offset int
	height int

	running bool
	dirty   bool // collapse flags changed since the last layout
	summary *layoutSummary
	elapsed time.Duration
	status  string
	err     error
}

func newExploreModel(ctx context.Context, runner *pipeline.Runner, root *graph.Node, path string, aspect float64) exploreModel {
	m := exploreModel{
		ctx:     ctx,
		runner:  runner,
		root:    root,
		path:    path,
		aspect:  aspect,
		height:  15,
		running: true,
		dirty:   true,
	}
	var walk func(n *graph.Node, depth int)
	walk = func(n *graph.Node, depth int) {
		for _, child := range n.Nodes {
			if child.IsGroup() {
				m.rows = append(m.rows, groupRow{node: child, depth: depth})
			}
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return m
}

// Init lays the graph out once on start.
func (m exploreModel) Init() tea.Cmd {
	return m.layoutCmd()
}

// layoutCmd lays out a snapshot of the tree in the background.
func (m exploreModel) layoutCmd() tea.Cmd {
	data, err := graph.MarshalGraph(m.root)
	if err != nil {
		return func() tea.Msg { return layoutDoneMsg{err: err} }
	}
	ctx, runner, aspect := m.ctx, m.runner, m.aspect
	return func() tea.Msg {
		snapshot, err := graph.UnmarshalGraph(data)
		if err != nil {
			return layoutDoneMsg{err: err}
		}
		start := time.Now()
		res, hit, err := runner.LayoutWithCacheInfo(ctx, snapshot, pipeline.Options{AspectRatio: aspect})
		if err != nil {
			return layoutDoneMsg{err: err, elapsed: time.Since(start)}
		}
		return layoutDoneMsg{
			summary: summarize(res, hit, runner.Engine.HasSolver()),
			elapsed: time.Since(start),
		}
	}
}

func (m exploreModel) saveCmd() tea.Cmd {
	data, err := graph.MarshalGraph(m.root)
	path := m.path
	return func() tea.Msg {
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{err: os.WriteFile(path, data, 0644)}
	}
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ":
			if len(m.rows) == 0 {
				return m, nil
			}
			n := m.rows[m.cursor].node
			n.Collapsed = !n.Collapsed
			m.dirty = true
			m.status = ""
		case "enter":
			if m.running {
				return m, nil
			}
			m.running = true
			m.err = nil
			m.status = ""
			return m, m.layoutCmd()
		case "w":
			return m, m.saveCmd()
		}
	case layoutDoneMsg:
		m.running = false
		m.elapsed = msg.elapsed
		m.err = msg.err
		if msg.err == nil {
			s := msg.summary
			m.summary = &s
			m.dirty = false
		}
	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "saved " + m.path
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore " + m.path))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  space collapse  ⏎ layout  w save  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(StyleDim.Render("  graph has no groups"))
		b.WriteString("\n")
	}

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		marker := "[-]"
		if row.node.Collapsed {
			marker = "[+]"
		}
		line := fmt.Sprintf("%s%s %s %s",
			strings.Repeat("  ", row.depth), marker, row.node.ID,
			StyleDim.Render(fmt.Sprintf("(%d)", len(row.node.Nodes))))
		if i == m.cursor {
			b.WriteString(StyleSelected.Render("▸ ") + StyleSelected.Render(line))
		} else {
			b.WriteString("  " + StyleValue.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.running:
		b.WriteString(StyleDim.Render("  laying out..."))
	case m.err != nil:
		b.WriteString(styleError.Render(iconError) + " " + m.err.Error())
	case m.summary != nil:
		b.WriteString(statsLine(*m.summary))
		b.WriteString(StyleDim.Render(fmt.Sprintf(" · %s", m.elapsed.Round(time.Millisecond))))
		if m.dirty {
			b.WriteString(StyleWarning.Render("  (stale, press ⏎)"))
		}
	}
	if m.status != "" {
		b.WriteString("\n" + StyleSuccess.Render("  "+m.status))
	}
	b.WriteString("\n")

	return b.String()
}
