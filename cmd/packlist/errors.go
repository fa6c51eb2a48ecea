package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/packlist"
)

var (
	errNotSignedIn  = errors.New("not signed in (run 'packlist signin' first)")
	errListNotFound = errors.New("list not found")
	errNodeNotFound = errors.New("entry not found")
	errAmbiguous    = errors.New("ambiguous name, use the id")
)

// userError carries the message the session shows for a failure while
// keeping the cause reachable through errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// sessionError prefers the message the session recorded for err.
func sessionError(app *packlist.App, err error) error {
	if err == nil {
		return nil
	}
	st := app.Session.Snapshot()
	switch {
	case st.AuthError != "":
		return &userError{msg: st.AuthError, err: err}
	case st.Error != "":
		return &userError{msg: fmt.Sprintf("%s (%v)", st.Error, err), err: err}
	}
	return err
}
