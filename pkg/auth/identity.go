// Package auth provides identities and the providers that establish them.
//
// A Provider signs users up and in with email and password, or through a
// Federated authenticator, and reports every sign-in and sign-out through a
// stream that starts with the current identity.
package auth

import (
	"context"
	"fmt"

	"github.com/aretw0/packlist/pkg/stream"
)

// Identity is a signed-in user. Key is stable for the lifetime of the account
// and namespaces everything the user owns.
type Identity struct {
	Key         string `json:"key" yaml:"key"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty" yaml:"display_name,omitempty"`
	Provider    string `json:"provider" yaml:"provider"`
}

// Label returns a short human-readable name for the identity.
func (i *Identity) Label() string {
	switch {
	case i == nil:
		return "signed out"
	case i.Email != "":
		return i.Email
	case i.DisplayName != "":
		return fmt.Sprintf("%s (%s)", i.DisplayName, i.Provider)
	default:
		return "anonymous"
	}
}

// Provider is the identity collaborator consumed by sessions.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignInWithProvider(ctx context.Context) (*Identity, error)
	SignOut(ctx context.Context) error

	// Current returns the signed-in identity or nil.
	Current() *Identity

	// Watch delivers the current identity (nil when signed out) and then
	// every transition until the subscription is closed.
	Watch(ctx context.Context) *stream.Subscription[*Identity]
}

// Profile is what a federated authenticator learns about a user.
type Profile struct {
	Subject     string // stable id at the provider
	Email       string
	DisplayName string
}

// Federated authenticates a user with an external provider. Implementations
// return ErrCancelled when the user abandons the flow.
type Federated interface {
	Name() string
	Authenticate(ctx context.Context) (Profile, error)
}

type federatedFunc struct {
	name string
	fn   func(ctx context.Context) (Profile, error)
}

// NewFederated adapts a function to the Federated interface.
func NewFederated(name string, fn func(ctx context.Context) (Profile, error)) Federated {
	return federatedFunc{name: name, fn: fn}
}

func (f federatedFunc) Name() string { return f.name }

func (f federatedFunc) Authenticate(ctx context.Context) (Profile, error) {
	return f.fn(ctx)
}
