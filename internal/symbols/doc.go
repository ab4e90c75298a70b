// Package symbols resolves C symbols from diff text using line-oriented
// heuristics.
//
// The resolver never parses C with a real grammar. It answers one question:
// given a line inside a hunk, which function, type, or macro encloses it?
// The answer comes from walking backward through a reconstructed source view
// (context plus added lines) looking for a line that is shaped like a
// definition.
//
// # Walk-Back
//
// Enclosing scans up to 50 lines backward from a changed line, skipping
// blanks and comments, rejecting labels (case, default, goto targets, access
// specifiers), and stopping at the first function definition, type
// definition, or #define:
//
//	decl, ok := symbols.Enclosing(view, changedIdx)
//	if ok {
//	    key, _ := symbols.KeyFromDecl(decl) // "tcp_rcv()", "struct sock", "#MAX_ORDER"
//	}
//
// # Symbol Keys
//
// Keys encode the symbol kind: functions render as "name()", tagged types as
// "struct name" / "union name" / "enum name", macros as "#NAME", and
// single-line typedefs as "typedef name". A declaration with both a
// parenthesis and a brace is a function when the parenthesis comes first
// ("struct foo *alloc_foo(void) {"), a type otherwise ("struct foo { int
// (*op)(void); }").
//
// All functions in this package are pure and never fail; unresolvable input
// yields the ok=false form or the "unknown" placeholder.
package symbols
