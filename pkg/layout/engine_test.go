package layout

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/resourcemap/pkg/errors"
	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/observability"
)

type recordingHooks struct {
	mu          sync.Mutex
	starts      int
	completes   int
	unavailable int
	lastStats   observability.LayoutStats
	lastErr     error
}

func (h *recordingHooks) OnLayoutStart(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ string, s observability.LayoutStats, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completes++
	h.lastStats = s
	h.lastErr = err
}

func (h *recordingHooks) OnSolverUnavailable(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unavailable++
}

func TestEngineWithoutSolver(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	hooks := &recordingHooks{}

	e := New(nil, WithLogger(logger), WithHooks(hooks))
	if e.HasSolver() {
		t.Fatal("HasSolver() = true for nil solver")
	}

	root := group("root", leaf("a", 1), leaf("b", 2))
	res, err := e.Apply(context.Background(), root, 1.5)
	if err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	if res.Nodes == nil || res.Edges == nil || len(res.Nodes) != 0 || len(res.Edges) != 0 {
		t.Errorf("Apply() = %+v, want empty result", res)
	}
	if hooks.unavailable != 1 || hooks.starts != 0 {
		t.Errorf("hooks: unavailable=%d starts=%d", hooks.unavailable, hooks.starts)
	}
	if !strings.Contains(buf.String(), "no layout solver") {
		t.Errorf("expected debug log, got %q", buf.String())
	}
}

func TestEngineRoundTrip(t *testing.T) {
	root := group("root", leaf("A", 10), leaf("B", 2))
	root.Edges = []graph.Edge{edge("ab", "A", "B")}

	var input *SolverNode
	var gotOpts SolveOptions
	solver := SolverFunc(func(ctx context.Context, n *SolverNode, opts SolveOptions) (*SolverNode, error) {
		input, gotOpts = n, opts
		return gridSolver.Solve(ctx, n, opts)
	})

	res, err := New(solver).Apply(context.Background(), root, 2)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if ProfileOf(input.Directives) != ProfileLayered {
		t.Errorf("root profile = %q, want layered", ProfileOf(input.Directives))
	}
	if _, ok := input.Directives[DirPartition]; ok {
		t.Error("group should not carry a partition")
	}
	if len(input.Edges) != 1 || input.Edges[0].Source != "A" || input.Edges[0].Target != "B" {
		t.Errorf("solver edges = %+v", input.Edges)
	}
	if got := input.Children[0].Directives[DirPartition]; got != "-10" {
		t.Errorf("A partition = %q, want -10", got)
	}
	if gotOpts.AspectRatio != 2 {
		t.Errorf("AspectRatio = %v, want 2", gotOpts.AspectRatio)
	}

	if len(res.Nodes) != 2 || len(res.Edges) != 1 {
		t.Fatalf("result has %d nodes, %d edges; want 2, 1", len(res.Nodes), len(res.Edges))
	}
	for _, n := range res.Nodes {
		if n.ParentID != "" {
			t.Errorf("%s.ParentID = %q, want empty", n.ID, n.ParentID)
		}
	}
	if len(res.Edges[0].Data.Sections) != 1 {
		t.Errorf("edge sections = %d, want 1", len(res.Edges[0].Data.Sections))
	}
}

func TestEngineNodeCountWithoutEdges(t *testing.T) {
	collapsed := group("kube-system", leaf("dns", 0), leaf("proxy", 0))
	collapsed.Collapsed = true

	trees := []*graph.Node{
		group("root"),
		group("root", leaf("a", 0)),
		group("root", leaf("a", 0), group("ns", leaf("b", 0), leaf("c", 0)), collapsed),
		group("root", group("x", group("y", group("z", leaf("deep", 0))))),
	}

	e := New(gridSolver)
	for i, root := range trees {
		res, err := e.Apply(context.Background(), root, 1)
		if err != nil {
			t.Fatalf("tree %d: Apply() error: %v", i, err)
		}
		if want := visibleNodes(root); len(res.Nodes) != want {
			t.Errorf("tree %d: %d render nodes, want %d", i, len(res.Nodes), want)
		}
		if len(res.Edges) != 0 {
			t.Errorf("tree %d: %d render edges, want 0", i, len(res.Edges))
		}
	}
}

func TestEngineSolverFailure(t *testing.T) {
	hooks := &recordingHooks{}
	failing := SolverFunc(func(context.Context, *SolverNode, SolveOptions) (*SolverNode, error) {
		return nil, fmt.Errorf("worker crashed")
	})

	_, err := New(failing, WithHooks(hooks)).Apply(context.Background(), group("root", leaf("a", 0)), 1)
	if !errors.Is(err, errors.ErrCodeSolverFailed) {
		t.Fatalf("Apply() error = %v, want %v", err, errors.ErrCodeSolverFailed)
	}
	if !strings.Contains(err.Error(), "worker crashed") {
		t.Errorf("cause lost: %v", err)
	}
	if hooks.completes != 1 || hooks.lastErr == nil {
		t.Errorf("OnLayoutComplete not called with the error")
	}
}

func TestEngineSolverReturnsNil(t *testing.T) {
	empty := SolverFunc(func(context.Context, *SolverNode, SolveOptions) (*SolverNode, error) {
		return nil, nil
	})
	_, err := New(empty).Apply(context.Background(), group("root"), 1)
	if !errors.Is(err, errors.ErrCodeSolverFailed) {
		t.Errorf("Apply() error = %v, want %v", err, errors.ErrCodeSolverFailed)
	}
}

func TestEngineCancelled(t *testing.T) {
	blocking := SolverFunc(func(ctx context.Context, _ *SolverNode, _ SolveOptions) (*SolverNode, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(blocking).Apply(ctx, group("root"), 1)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("Apply() error = %v, want %v", err, errors.ErrCodeTimeout)
	}
}

func TestEngineNilGraph(t *testing.T) {
	_, err := New(gridSolver).Apply(context.Background(), nil, 1)
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("Apply(nil) error = %v, want %v", err, errors.ErrCodeInvalidGraph)
	}
}

func TestEngineHooksAndOffsetMode(t *testing.T) {
	hooks := &recordingHooks{}
	e := New(gridSolver, WithHooks(hooks), WithOffsetMode(OffsetFullChain))
	if e.OffsetMode() != OffsetFullChain {
		t.Errorf("OffsetMode() = %v", e.OffsetMode())
	}

	root := group("root", group("ns", leaf("a", 0), leaf("b", 0)))
	root.Nodes[0].Edges = []graph.Edge{edge("e", "a", "b")}
	if _, err := e.Apply(context.Background(), root, 1); err != nil {
		t.Fatal(err)
	}
	if hooks.starts != 1 || hooks.completes != 1 {
		t.Errorf("starts=%d completes=%d, want 1, 1", hooks.starts, hooks.completes)
	}
	if hooks.lastStats != (observability.LayoutStats{Nodes: 3, Edges: 1}) {
		t.Errorf("stats = %+v", hooks.lastStats)
	}
}

func TestEngineConcurrentApply(t *testing.T) {
	e := New(gridSolver)
	root := group("root", group("ns", leaf("a", 0), leaf("b", 0)), leaf("c", 0))
	root.Edges = []graph.Edge{edge("e", "a", "c")}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Apply(context.Background(), root, 1)
			if err == nil && len(res.Nodes) != 4 {
				err = fmt.Errorf("got %d nodes", len(res.Nodes))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}
