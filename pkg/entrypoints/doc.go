// Package entrypoints turns the entry points a package author declares into
// the exports map that gets published.
//
// The pipeline has four stages, each usable on its own:
//
//   - ResolveInputs expands glob patterns under a source directory into a
//     subpath -> file mapping, mapping the first match to ".".
//   - Resolve normalizes a declaration (Single, List or Tree) into a
//     canonical subpath mapping and infers the common source directory.
//   - Filter drops keys and leaf values matched by skip rules.
//   - Synthesize rewrites the canonical mapping into an exports tree whose
//     leaves point at build outputs, injecting conditional branches.
//
// Every mapping is a *types.Object so that key order, which Node uses when
// resolving conditions, survives the whole pipeline. Nothing in this
// package touches the filesystem except ResolveInputs, which goes through
// types.FS.
package entrypoints
