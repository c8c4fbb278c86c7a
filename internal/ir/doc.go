// Package ir models the input program representation the analysis consumes:
// a module of global variables and functions whose bodies are basic blocks of
// instructions in static single assignment form.
//
// The analysis core only reads this representation (the fact generator walks
// it through accessor methods); construction happens up front, either
// programmatically or through the YAML module loader. Parsing a real compiler
// IR is out of scope: anything that can populate these types can be analysed.
package ir
