// Package graphviz implements [layout.Solver] on top of Graphviz, compiled to
// WebAssembly and run in-process by github.com/goccy/go-graphviz.
//
// Compound graphs are solved bottom-up. Each expanded group becomes one flat
// Graphviz graph whose nodes are the group's direct children, drawn as
// fixed-size boxes; a child group is sized by its own solve before its
// parent is laid out. One layout unit is one point.
//
// The group's directive profile picks the engine:
//
//   - layered: dot, with spacing mapped to nodesep and ranksep, direction
//     mapped to rankdir and children emitted in partition order
//   - rectpacking: osage in array pack mode, with the column count chosen to
//     match the container aspect ratio
//
// Edges between deeper descendants are attached to the direct children that
// contain their endpoints. Results are read back from Graphviz's xdot output
// and converted to a top-left origin with y growing downward, shifted by the
// group's padding.
package graphviz
