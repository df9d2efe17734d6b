// Package presentation turns a catalog product and its sibling variants into
// a ViewModel. Every function here is pure: no I/O, no shared state, no
// errors. Missing or malformed input degrades to a fixed default (zero price,
// unknown stock, placeholder image, no variant widget).
package presentation
