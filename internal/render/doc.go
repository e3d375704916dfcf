// Package render turns a parsed entry into its three publishable artifacts:
// a content fragment, a standalone preview page, and a shortcode block.
//
// All three are produced from one ordered section list so they always carry
// the same fields in the same order. Every interpolated value, labels
// included, goes through Escape.
package render
