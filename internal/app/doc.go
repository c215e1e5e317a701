// Package app wires the pipeline stages behind the hallcamp CLI. Each stage
// is a pure transformation over files; App only adds logging, configuration
// and the optional status endpoint around them.
package app
