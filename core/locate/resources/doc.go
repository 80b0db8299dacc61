/*
Package resources locates the external inputs of a font build: the base
font whose glyphs are copied, and the Unicode emoji test data file.

As resource loading may be a time-consuming task (the emoji data may have
to be downloaded), some functions in this package work in an async/await
fashion by returning a promise. Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'emojitext.resources'.
func tracer() tracing.Trace {
	return tracing.Select("emojitext.resources")
}
