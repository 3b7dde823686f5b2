package services

import (
	"fmt"

	"github.com/mrlokans/library/internal/entities"
)

// ResultKind tags the outcome of a store call.
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultInvalid
	ResultNotFound
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultInvalid:
		return "invalid"
	case ResultNotFound:
		return "not_found"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// FieldError is a single validation message attached to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BookResult is what single-book store operations return.
//
//	ResultOK       Book is set
//	ResultInvalid  Errors holds one entry per rejected field
//	ResultNotFound nothing else is set
//	ResultFailed   Err holds the cause
type BookResult struct {
	Kind   ResultKind
	Book   *entities.Book
	Errors []FieldError
	Err    error
}

func Found(book *entities.Book) BookResult {
	return BookResult{Kind: ResultOK, Book: book}
}

func Invalid(errs []FieldError) BookResult {
	return BookResult{Kind: ResultInvalid, Errors: errs}
}

func NotFound() BookResult {
	return BookResult{Kind: ResultNotFound}
}

func Failed(err error) BookResult {
	return BookResult{Kind: ResultFailed, Err: err}
}

// Cause returns the failure cause. Kinds reached where the caller did not
// expect them are reported as unexpected results.
func (r BookResult) Cause() error {
	if r.Err != nil {
		return r.Err
	}
	return fmt.Errorf("unexpected store result: %s", r.Kind)
}
