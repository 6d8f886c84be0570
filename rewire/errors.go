package rewire

import (
	"errors"
	"fmt"

	"github.com/pgavlin/wext/wasm"
)

// ErrInvalidTarget is matched by every error that reports a target name that cannot be converted into an import.
var ErrInvalidTarget = errors.New("invalid rewrite target")

// UnresolvedExportError is returned when no export has the requested name.
type UnresolvedExportError struct {
	Name string
}

func (e *UnresolvedExportError) Error() string {
	return fmt.Sprintf("no export named %q", e.Name)
}

func (e *UnresolvedExportError) Is(target error) bool {
	return target == ErrInvalidTarget
}

// NotFunctionExportError is returned when the requested export does not refer to a function.
type NotFunctionExportError struct {
	Name string
	Kind wasm.External
}

func (e *NotFunctionExportError) Error() string {
	return fmt.Sprintf("export %q is a %v, not a function", e.Name, e.Kind)
}

func (e *NotFunctionExportError) Is(target error) bool {
	return target == ErrInvalidTarget
}

// ImportedTargetError is returned when the requested export refers to a function that is already imported.
type ImportedTargetError struct {
	Name      string
	FuncIndex uint32
}

func (e *ImportedTargetError) Error() string {
	return fmt.Sprintf("export %q refers to imported function %d", e.Name, e.FuncIndex)
}

func (e *ImportedTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}

// DuplicateTargetError is returned when a target name is requested more than once.
type DuplicateTargetError string

func (e DuplicateTargetError) Error() string {
	return fmt.Sprintf("duplicate target %q", string(e))
}

func (e DuplicateTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}

// AliasedTargetError is returned when two target names are exports of the same function.
type AliasedTargetError struct {
	Name      string
	Alias     string
	FuncIndex uint32
}

func (e *AliasedTargetError) Error() string {
	return fmt.Sprintf("target %q refers to function %d, which is already targeted as %q", e.Name, e.FuncIndex, e.Alias)
}

func (e *AliasedTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}

// InvalidFunctionIndexError is returned when the input module refers to a function outside of its function index
// space.
type InvalidFunctionIndexError struct {
	FuncIndex uint32
	Functions int
	Where     string
}

func (e *InvalidFunctionIndexError) Error() string {
	return fmt.Sprintf("%s: function index %d out of range (module has %d functions)", e.Where, e.FuncIndex, e.Functions)
}
