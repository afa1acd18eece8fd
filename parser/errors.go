package parser

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEnumDecl = errors.New("malformed enum declaration")
	ErrMalformedTypeDecl = errors.New("malformed type declaration")
	ErrMalformedFuncDecl = errors.New("malformed function declaration")
	ErrMalformedArgDecl  = errors.New("argument should have the form 'name type'")
	ErrMalformedTypeSpec = errors.New("malformed machine type")
	ErrUndefinedType     = errors.New("undefined type")
	ErrInvalidAlignment  = errors.New("alignment must be a positive power of 2")
)

// DeclError reports a failure on a declaration line.
type DeclError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *DeclError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%s:%d: %v: %s", e.File, e.Line, e.Err, e.Text)
}

func (e *DeclError) Unwrap() error {
	return e.Err
}
