package packlist

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aretw0/packlist/pkg/core"
	"github.com/aretw0/packlist/pkg/stream"
	"github.com/aretw0/packlist/pkg/typed"
)

// ErrEmptyName is returned when a list is created without a name.
var ErrEmptyName = errors.New("list name is empty")

// ErrNoOwner is returned when a store call is made without an identity key.
var ErrNoOwner = errors.New("no identity key")

// CollectionPath returns where the lists of one identity are stored.
func CollectionPath(appID, identityKey string) string {
	return path.Join("artifacts", appID, "users", identityKey, "packingLists_v2")
}

// document is the stored form of a List. The id and creation time belong to
// the document store.
type document struct {
	Name  string `json:"name"`
	Items Nodes  `json:"items"`
}

// Store persists lists in per-identity collections of a core.Service.
type Store struct {
	svc   *core.Service
	appID string
}

// NewStore creates a list store. appID namespaces every collection path.
func NewStore(svc *core.Service, appID string) *Store {
	return &Store{svc: svc, appID: appID}
}

func (s *Store) collection(owner string) (*typed.Collection[document], error) {
	if owner == "" {
		return nil, ErrNoOwner
	}
	p := CollectionPath(s.appID, owner)
	if err := core.ValidateCollection(p); err != nil {
		return nil, err
	}
	return typed.NewCollection[document](s.svc, p), nil
}

// Create stores a new empty list and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, owner, name string) (List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return List{}, ErrEmptyName
	}
	coll, err := s.collection(owner)
	if err != nil {
		return List{}, err
	}

	doc, err := coll.Add(ctx, document{Name: name, Items: Nodes{}})
	if err != nil {
		return List{}, fmt.Errorf("create list: %w", err)
	}
	return fromModel(doc), nil
}

// Get returns one list of owner.
func (s *Store) Get(ctx context.Context, owner, id string) (List, error) {
	coll, err := s.collection(owner)
	if err != nil {
		return List{}, err
	}
	doc, err := coll.Get(ctx, id)
	if err != nil {
		return List{}, err
	}
	return fromModel(doc), nil
}

// List returns every list of owner, oldest first.
func (s *Store) List(ctx context.Context, owner string) ([]List, error) {
	coll, err := s.collection(owner)
	if err != nil {
		return nil, err
	}
	docs, err := coll.List(ctx)
	if err != nil {
		return nil, err
	}
	return fromModels(docs), nil
}

// Update merges the name and items of l into the stored document. Its id and
// creation time are never sent to the document store, and fields this package
// does not know about are left alone.
func (s *Store) Update(ctx context.Context, owner string, l List) error {
	coll, err := s.collection(owner)
	if err != nil {
		return err
	}
	items := l.Items
	if items == nil {
		items = Nodes{}
	}
	fields, err := typed.ToFields(document{Name: l.Name, Items: items})
	if err != nil {
		return err
	}
	return coll.Patch(ctx, l.ID, fields)
}

// Delete removes a list of owner.
func (s *Store) Delete(ctx context.Context, owner, id string) error {
	coll, err := s.collection(owner)
	if err != nil {
		return err
	}
	return coll.Delete(ctx, id)
}

// Watch delivers the full, ordered collection of owner's lists now and after
// every change until the subscription is closed.
func (s *Store) Watch(ctx context.Context, owner string) (*stream.Subscription[[]List], error) {
	coll, err := s.collection(owner)
	if err != nil {
		return nil, err
	}
	docs, err := coll.Watch(ctx)
	if err != nil {
		return nil, err
	}
	return stream.Map(ctx, docs, fromModels), nil
}

func fromModel(doc *typed.DocumentModel[document]) List {
	items := doc.Data.Items
	if items == nil {
		items = Nodes{}
	}
	return List{ID: doc.ID, Name: doc.Data.Name, Items: items, CreatedAt: doc.CreatedAt}
}

func fromModels(docs []*typed.DocumentModel[document]) []List {
	lists := make([]List, 0, len(docs))
	for _, d := range docs {
		lists = append(lists, fromModel(d))
	}
	return lists
}
