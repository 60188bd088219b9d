// Package errs defines the stable status-code surface the storage core
// exposes across its FFI boundary, together with Go sentinel errors that
// wrap those codes so callers can use errors.Is/errors.As in the usual way.
//
// The numeric codes are fixed by the on-disk/wire contract described in the
// specification and must never be renumbered: external collaborators
// (ingest servers, query processors) are expected to multiplex on them.
package errs

import "fmt"

// Code is a stable status code, fixed across the FFI boundary.
type Code uint32

const (
	CodeSuccess            Code = 0
	CodeNoData             Code = 1
	CodeNoMem              Code = 2
	CodeBusy               Code = 3
	CodeNotFound           Code = 4
	CodeBadArg             Code = 5
	CodeOverflow           Code = 6
	CodeBadData            Code = 7
	CodeGeneral            Code = 8
	CodeLateWrite          Code = 9
	CodeNotImplemented     Code = 10
	CodeQueryParsingError  Code = 11
	CodeAnomalyNegativeVal Code = 12
	CodeMergeRequired      Code = 13
)

var codeNames = map[Code]string{
	CodeSuccess:            "SUCCESS",
	CodeNoData:             "ENO_DATA",
	CodeNoMem:              "ENO_MEM",
	CodeBusy:               "EBUSY",
	CodeNotFound:           "ENOT_FOUND",
	CodeBadArg:             "EBAD_ARG",
	CodeOverflow:           "EOVERFLOW",
	CodeBadData:            "EBAD_DATA",
	CodeGeneral:            "EGENERAL",
	CodeLateWrite:          "ELATE_WRITE",
	CodeNotImplemented:     "ENOT_IMPLEMENTED",
	CodeQueryParsingError:  "EQUERY_PARSING_ERROR",
	CodeAnomalyNegativeVal: "EANOMALY_NEG_VAL",
	CodeMergeRequired:      "EMERGE_REQUIRED",
}

// String returns the stable FFI name of the code, e.g. "EBUSY".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("EUNKNOWN(%d)", uint32(c))
}

// StatusError associates a Code with an optional underlying cause.
type StatusError struct {
	Code  Code
	Cause error
}

func (e *StatusError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}

	return e.Code.String()
}

func (e *StatusError) Unwrap() error { return e.Cause }

// New wraps code with an optional cause into a *StatusError.
func New(code Code, cause error) *StatusError {
	return &StatusError{Code: code, Cause: cause}
}

// Sentinel errors for the conditions the storage core itself can raise.
// Use errors.Is against these; they carry no cause.
var (
	ErrNoData         = &StatusError{Code: CodeNoData}
	ErrBusy           = &StatusError{Code: CodeBusy}
	ErrNotFound       = &StatusError{Code: CodeNotFound}
	ErrBadArg         = &StatusError{Code: CodeBadArg}
	ErrOverflow       = &StatusError{Code: CodeOverflow}
	ErrBadData        = &StatusError{Code: CodeBadData}
	ErrLateWrite      = &StatusError{Code: CodeLateWrite}
	ErrNotImplemented = &StatusError{Code: CodeNotImplemented}
	ErrMergeRequired  = &StatusError{Code: CodeMergeRequired}
)

// Is makes sentinel *StatusError values comparable by Code, so that wrapping
// a sentinel with a cause (errs.New(CodeBadData, cause)) still satisfies
// errors.Is(err, errs.ErrBadData).
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	if !ok {
		return false
	}

	return e.Code == t.Code
}

// CodeOf extracts the Code from err if it is (or wraps) a *StatusError,
// otherwise returns CodeGeneral.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}

	var se *StatusError
	if ok := asStatusError(err, &se); ok {
		return se.Code
	}

	return CodeGeneral
}

// asStatusError is a small local errors.As to avoid importing errors just
// for this one helper chain; it walks Unwrap() like the standard library.
func asStatusError(err error, target **StatusError) bool {
	for err != nil {
		if se, ok := err.(*StatusError); ok {
			*target = se
			return true
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}

		err = u.Unwrap()
	}

	return false
}
