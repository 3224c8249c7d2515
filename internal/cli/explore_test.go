package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
	"github.com/matzehuels/resourcemap/pkg/pipeline"
)

func exploreFixture(t *testing.T) exploreModel {
	t.Helper()
	root := &graph.Node{
		ID: "cluster",
		Nodes: []*graph.Node{
			{ID: "default", Nodes: []*graph.Node{
				{ID: "web"},
				{ID: "jobs", Nodes: []*graph.Node{{ID: "cron"}}},
			}},
			{ID: "kube-system", Collapsed: true, Nodes: []*graph.Node{{ID: "coredns"}}},
			{ID: "lonely"},
		},
	}
	runner := pipeline.NewRunner(nil, nil, layout.New(nil), nil)
	return newExploreModel(context.Background(), runner, root, filepath.Join(t.TempDir(), "g.json"), 16.0/9.0)
}

func press(m exploreModel, msg tea.KeyMsg) (exploreModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(exploreModel), cmd
}

func TestExploreRows(t *testing.T) {
	m := exploreFixture(t)

	var got []string
	for _, r := range m.rows {
		got = append(got, strings.Repeat(">", r.depth)+r.node.ID)
	}
	want := "default,>jobs,kube-system"
	if strings.Join(got, ",") != want {
		t.Errorf("rows = %v, want %s", got, want)
	}
}

func TestExploreNavigateAndToggle(t *testing.T) {
	m := exploreFixture(t)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2 (clamped)", m.cursor)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.rows[2].node.Collapsed {
		t.Error("space should expand kube-system")
	}
	if !m.dirty {
		t.Error("toggle should mark the layout stale")
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.rows[1].node.Collapsed {
		t.Error("space should collapse jobs")
	}
}

func TestExploreLayoutRoundTrip(t *testing.T) {
	m := exploreFixture(t)

	// the initial layout is in flight; enter is ignored until it lands
	if _, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter while running should not start another layout")
	}

	msg := m.Init()()
	done, ok := msg.(layoutDoneMsg)
	if !ok {
		t.Fatalf("Init() produced %T, want layoutDoneMsg", msg)
	}
	if done.err != nil {
		t.Fatalf("layout error: %v", done.err)
	}
	if !done.summary.Degraded {
		t.Error("layout without solver should be degraded")
	}

	next, _ := m.Update(done)
	m = next.(exploreModel)
	if m.running || m.dirty || m.summary == nil {
		t.Errorf("after layout: running=%v dirty=%v summary=%v", m.running, m.dirty, m.summary)
	}
	if !strings.Contains(m.View(), "no solver") {
		t.Errorf("View() should report the degraded layout:\n%s", m.View())
	}

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.running {
		t.Error("enter should start a layout")
	}
}

func TestExploreSave(t *testing.T) {
	m := exploreFixture(t)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	if cmd == nil {
		t.Fatal("w should return a save command")
	}
	if saved := cmd().(savedMsg); saved.err != nil {
		t.Fatalf("save error: %v", saved.err)
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		t.Fatal(err)
	}
	root, err := graph.UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("saved graph invalid: %v", err)
	}
	if !graph.Find(root, "default").IsCollapsed() {
		t.Error("saved graph should keep the toggled collapse flag")
	}
}

func TestExploreQuit(t *testing.T) {
	m := exploreFixture(t)
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestExploreNoGroups(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, nil, nil)
	m := newExploreModel(context.Background(), runner, &graph.Node{ID: "solo"}, "solo.json", 1)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !strings.Contains(m.View(), "no groups") {
		t.Error("View() should say the graph has no groups")
	}
}
