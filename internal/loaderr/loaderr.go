// Package loaderr defines the failure taxonomy shared by the OBJ and MTL loaders.
//
// Every loader failure is a *Error carrying its Kind, the source file and the
// 1-based line number. Kind values are themselves errors, so callers can test
// with errors.Is(err, loaderr.MalformedLine).
package loaderr

import "fmt"

// Kind classifies a loader failure.
type Kind int

const (
	// MalformedLine is a known directive with the wrong field count or an
	// unparsable number.
	MalformedLine Kind = iota + 1
	// UnknownDirective is a line whose first token is not recognized.
	UnknownDirective
	// UnresolvedMaterialReference is a usemtl naming a material that is not in
	// the loaded library, or a usemtl before any library was loaded.
	UnresolvedMaterialReference
	// UnflushedMaterialContext is a material property before any newmtl.
	UnflushedMaterialContext
	// EmptyFile is a file without a single record.
	EmptyFile
	// NoFacesProduced is a geometry file that holds records but no faces.
	NoFacesProduced
	// IndexOutOfRange is a face corner referencing a vertex, texture
	// coordinate or normal that was never declared.
	IndexOutOfRange
)

var kindNames = map[Kind]string{
	MalformedLine:               "malformed line",
	UnknownDirective:            "unknown directive",
	UnresolvedMaterialReference: "unresolved material reference",
	UnflushedMaterialContext:    "no active material",
	EmptyFile:                   "empty file",
	NoFacesProduced:             "no faces",
	IndexOutOfRange:             "index out of range",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error makes a Kind usable as an errors.Is target.
func (k Kind) Error() string { return k.String() }

// Error is a structured loader failure.
type Error struct {
	Pkg  string // reporting package, "obj" or "mtl"
	Kind Kind
	File string
	Line int // 1-based, 0 when the failure is not tied to a line
	Msg  string
	Err  error // underlying cause, may be nil
}

// New returns an Error with a formatted message.
func New(pkg string, kind Kind, file string, line int, format string, args ...any) *Error {
	return &Error{
		Pkg:  pkg,
		Kind: kind,
		File: file,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error that records err as its cause.
func Wrap(pkg string, kind Kind, file string, line int, err error, format string, args ...any) *Error {
	e := New(pkg, kind, file, line, format, args...)
	e.Err = err
	return e
}

func (e *Error) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	s := fmt.Sprintf("%s: parse %s: %s", e.Pkg, loc, e.Kind)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}
