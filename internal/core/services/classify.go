package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// lastCause returns the last cause of the first multi-cause aggregate
// (anything with Unwrap() []error, such as errors.Join) in err's chain, or
// err itself when there is none.
func lastCause(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if multi, ok := e.(interface{ Unwrap() []error }); ok {
			if causes := multi.Unwrap(); len(causes) > 0 {
				return causes[len(causes)-1]
			}
			break
		}
	}
	return err
}

// RootCause picks the error a failure is reported under: the last cause of
// an aggregate, then that error's own cause when it has one.
func RootCause(err error) error {
	if err == nil {
		return nil
	}
	chosen := lastCause(err)
	if inner := errors.Unwrap(chosen); inner != nil {
		return inner
	}
	return chosen
}

// ClassifyFailure returns the failure kind recorded for err and the cause it
// was derived from. Known error types name themselves; anything else is
// reported under its Go type name.
func ClassifyFailure(err error) (kind string, cause error) {
	if err == nil {
		return "", nil
	}
	cause = RootCause(err)

	var kinded domain.KindedError
	if errors.As(cause, &kinded) || errors.As(lastCause(err), &kinded) {
		return kinded.FailureKind(), cause
	}
	return typeName(cause), cause
}

// typeName is the bare type name of err, without package or pointer.
func typeName(err error) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
