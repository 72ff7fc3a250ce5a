// Package adapters wires compiled templates into the transports the
// examples corpus serves them over: plain net/http and a Fiber-views-
// compatible engine. Every generated template struct already
// implements Renderer, so both adapters here are thin: they exist to
// carry response headers and the name-based lookup an HTTP framework
// expects, not to re-implement rendering.
package adapters

import "io"

// Renderer is the method every tmplforge-generated template struct
// implements.
type Renderer interface {
	RenderInto(w io.Writer) error
}
