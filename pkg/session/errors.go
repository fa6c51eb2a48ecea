package session

import "errors"

var (
	ErrNotSignedIn    = errors.New("not signed in")
	ErrNoListSelected = errors.New("no list selected")
	ErrSourceNotFound = errors.New("import source not found")
	ErrNotRunning     = errors.New("session not running")
)
