package session

import (
	"slices"

	"github.com/aretw0/packlist/pkg/auth"
	"github.com/aretw0/packlist/pkg/packlist"
)

// Messages shown to the user when an operation fails.
const (
	MsgLoadFailed          = "Failed to load lists."
	MsgCreateFailed        = "Failed to create the new list."
	MsgDeleteFailed        = "Failed to delete the list."
	MsgUpdateFailed        = "Failed to update the list details."
	MsgLoginToCreate       = "You must be logged in to create a list."
	MsgLoginToUpdate       = "You must be logged in to update a list."
	MsgLoginToImport       = "You must be logged in to import a list."
	MsgImportSourceMissing = "Selected list to import was not found."
	MsgSignOutFailed       = "Failed to sign out."
)

// State is an immutable snapshot of a session. Lists always come from the
// last snapshot confirmed by the store, never from a pending write.
type State struct {
	Identity      *auth.Identity
	AuthReady     bool // the identity stream has reported at least once
	Lists         []packlist.List
	LoadingLists  bool
	CurrentListID string
	AuthError     string
	Error         string
}

// SignedIn reports whether an identity is present.
func (s State) SignedIn() bool {
	return s.Identity != nil
}

// CurrentList returns the selected list if it is part of the last snapshot.
func (s State) CurrentList() (packlist.List, bool) {
	return s.FindList(s.CurrentListID)
}

// FindList returns the list with the given id.
func (s State) FindList(id string) (packlist.List, bool) {
	if id == "" {
		return packlist.List{}, false
	}
	i := slices.IndexFunc(s.Lists, func(l packlist.List) bool { return l.ID == id })
	if i < 0 {
		return packlist.List{}, false
	}
	return s.Lists[i], true
}

// ImportCandidates returns every list except the selected one.
func (s State) ImportCandidates() []packlist.List {
	out := make([]packlist.List, 0, len(s.Lists))
	for _, l := range s.Lists {
		if l.ID != s.CurrentListID {
			out = append(out, l)
		}
	}
	return out
}

func (s State) clone() State {
	s.Lists = slices.Clone(s.Lists)
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}
