// Package resolve turns a schema into a resolved, dependency-ordered model.
//
// Resolution runs in fixed phases:
//
//  1. Expand: nested collections are lifted to top-level entities named
//     "<owner>_<local>", breadth-first (see Expand).
//  2. Relate: has-many declarations are classified as direct or mutual;
//     each mutual pair gets one junction entity (see ManyResolver).
//  3. Sort: inheritance, ownership and junction edges are merged into a
//     Graph and stratified with Kahn's algorithm. Cycles are fatal.
//  4. Compose: every entity gets a namespaced view of its ancestors'
//     fields, computed in dependency order (see Compositor).
//  5. Assemble: the Model carries everything renderers need.
//
// The package performs no I/O and keeps no state between runs. For a fixed
// input every synthesized name, junction, index and ordering is the same.
package resolve
