// Package errors provides structured, coded error messages for Orbit.
//
// Every diagnostic the runtime produces carries a code (e.g. "E002") that
// maps to a registered template with a short message, a longer explanation
// and a documentation URL. Diagnostics that concern a single element also
// carry the directive attribute that produced them.
//
// # Error Categories
//
//   - binding: a directive could not be installed or applied
//   - scope: scope lifecycle and behavior authoring errors
//   - hydration: props payload problems
//   - compute: expression evaluation errors
//   - config: orbit.json / orbit.yaml problems
//   - cli: command line errors
//
// # Usage
//
//	err := errors.New("E002").
//	    WithAttribute("o-if", "open").
//	    WithSuggestion("Move o-if onto a <template> element")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E002: Structural directive requires a template element
//	//
//	//   o-if="open"
//	//
//	//   Hint: Move o-if onto a <template> element
//	//
//	//   Learn more: https://orbit.vango.dev/docs/errors/E002
package errors
