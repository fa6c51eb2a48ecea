package session

import (
	"context"
	"strings"

	"github.com/aretw0/packlist/pkg/auth"
	"github.com/aretw0/packlist/pkg/packlist"
)

// SignUp creates an account. The new identity reaches the state through the
// identity stream.
func (s *Session) SignUp(ctx context.Context, email, password string) error {
	s.setAuthError("")
	if _, err := s.auth.SignUp(ctx, email, password); err != nil {
		s.logger.Debug("sign up failed", "error", err)
		s.setAuthError(auth.Reason(err))
		return err
	}
	return nil
}

// SignIn signs in with email and password.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	s.setAuthError("")
	if _, err := s.auth.SignIn(ctx, email, password); err != nil {
		s.logger.Debug("sign in failed", "error", err)
		s.setAuthError(auth.Reason(err))
		return err
	}
	return nil
}

// SignInWithProvider runs the federated sign-in flow.
func (s *Session) SignInWithProvider(ctx context.Context) error {
	s.setAuthError("")
	if _, err := s.auth.SignInWithProvider(ctx); err != nil {
		s.logger.Debug("federated sign in failed", "error", err)
		s.setAuthError(auth.Reason(err))
		return err
	}
	return nil
}

// SignOut clears the lists and the selection at once, then releases the list
// subscription in the background and signs out of the provider. When the
// provider refuses, the state is rebuilt from the identity it still holds.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	old := s.detachLocked()
	s.state.Identity = nil
	s.state.AuthError = ""
	s.publishLocked()
	s.mu.Unlock()

	s.closeAsync(old)

	if err := s.auth.SignOut(ctx); err != nil {
		s.logger.Error(MsgSignOutFailed, "error", err)
		s.resync()
		s.setAuthError(auth.Reason(err))
		return err
	}
	return nil
}

// CreateList stores a new list and selects it. Blank names are ignored.
func (s *Session) CreateList(ctx context.Context, name string) (packlist.List, error) {
	if blank(name) {
		return packlist.List{}, nil
	}
	owner, ok := s.owner()
	if !ok {
		s.setError(MsgLoginToCreate, nil)
		return packlist.List{}, ErrNotSignedIn
	}

	l, err := s.lists.Create(ctx, owner, name)
	if err != nil {
		s.setError(MsgCreateFailed, err)
		return packlist.List{}, err
	}

	s.mu.Lock()
	if s.state.Identity != nil && s.state.Identity.Key == owner {
		s.state.CurrentListID = l.ID
		s.publishLocked()
	}
	s.mu.Unlock()
	return l, nil
}

// DeleteList removes a list, clearing the selection if it pointed at it.
func (s *Session) DeleteList(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	owner, ok := s.owner()
	if !ok {
		return ErrNotSignedIn
	}

	if err := s.lists.Delete(ctx, owner, id); err != nil {
		s.setError(MsgDeleteFailed, err)
		return err
	}

	s.mu.Lock()
	if s.state.CurrentListID == id {
		s.state.CurrentListID = ""
		s.publishLocked()
	}
	s.mu.Unlock()
	return nil
}

// SelectList makes id the current list and clears the general error.
func (s *Session) SelectList(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentListID = id
	s.state.Error = ""
	s.publishLocked()
}

// GoBack clears the selection and the general error.
func (s *Session) GoBack() {
	s.SelectList("")
}

// DismissError clears the general error.
func (s *Session) DismissError() {
	s.setError("", nil)
}

// DismissAuthError clears the authentication error.
func (s *Session) DismissAuthError() {
	s.setAuthError("")
}

// UpdateCurrentList applies edit to the items of the selected list and
// writes the result. The state changes only when the store reports it.
func (s *Session) UpdateCurrentList(ctx context.Context, edit func([]packlist.Node) []packlist.Node) error {
	owner, current, err := s.target()
	if err != nil {
		return err
	}

	current.Items = edit(current.Items)
	if err := s.lists.Update(ctx, owner, current); err != nil {
		s.setError(MsgUpdateFailed, err)
		return err
	}
	return nil
}

// AddItem appends an item to the selected list.
func (s *Session) AddItem(ctx context.Context, name string) error {
	if blank(name) {
		return nil
	}
	return s.UpdateCurrentList(ctx, func(items []packlist.Node) []packlist.Node {
		return packlist.AddItem(items, name)
	})
}

// AddCategory appends a category to the selected list.
func (s *Session) AddCategory(ctx context.Context, name string) error {
	if blank(name) {
		return nil
	}
	return s.UpdateCurrentList(ctx, func(items []packlist.Node) []packlist.Node {
		return packlist.AddCategory(items, name)
	})
}

// AddItemToCategory appends an item to a category of the selected list.
func (s *Session) AddItemToCategory(ctx context.Context, categoryID, name string) error {
	if blank(name) || categoryID == "" {
		return nil
	}
	return s.UpdateCurrentList(ctx, func(items []packlist.Node) []packlist.Node {
		return packlist.AddItemToCategory(items, categoryID, name)
	})
}

// ToggleCheck flips the checked flag of a node of the selected list.
func (s *Session) ToggleCheck(ctx context.Context, nodeID, categoryID string) error {
	return s.UpdateCurrentList(ctx, func(items []packlist.Node) []packlist.Node {
		return packlist.ToggleCheck(items, nodeID, categoryID)
	})
}

// DeleteNode removes a node of the selected list.
func (s *Session) DeleteNode(ctx context.Context, nodeID, categoryID string) error {
	return s.UpdateCurrentList(ctx, func(items []packlist.Node) []packlist.Node {
		return packlist.Delete(items, nodeID, categoryID)
	})
}

// ToggleCollapse flips the collapsed flag of a category of the selected list.
func (s *Session) ToggleCollapse(ctx context.Context, categoryID string) error {
	return s.UpdateCurrentList(ctx, func(items []packlist.Node) []packlist.Node {
		return packlist.ToggleCollapse(items, categoryID)
	})
}

// ImportList appends the list sourceID to the selected list as a new category.
func (s *Session) ImportList(ctx context.Context, sourceID string) error {
	owner, ok := s.owner()
	if !ok {
		s.setError(MsgLoginToImport, nil)
		return ErrNotSignedIn
	}

	st := s.Snapshot()
	current, ok := st.CurrentList()
	if !ok {
		s.setError(MsgLoginToImport, nil)
		return ErrNoListSelected
	}
	sourceID = strings.TrimSpace(sourceID)
	source, ok := st.FindList(sourceID)
	if !ok || source.ID == current.ID {
		s.setError(MsgImportSourceMissing, nil)
		return ErrSourceNotFound
	}

	_, current.Items = packlist.ImportAsCategory(source, current)
	if err := s.lists.Update(ctx, owner, current); err != nil {
		s.setError(MsgUpdateFailed, err)
		return err
	}
	s.logger.Info("list imported", "source", source.ID, "target", current.ID)
	return nil
}

// target resolves the owner and the selected list for an edit.
func (s *Session) target() (string, packlist.List, error) {
	st := s.Snapshot()
	if st.Identity == nil {
		s.setError(MsgLoginToUpdate, nil)
		return "", packlist.List{}, ErrNotSignedIn
	}
	current, ok := st.CurrentList()
	if !ok {
		s.setError(MsgLoginToUpdate, nil)
		return "", packlist.List{}, ErrNoListSelected
	}
	return st.Identity.Key, current, nil
}
