package catalog

import (
	"context"
	"strconv"
)

// Catalog is the data-access contract for users and their shareable items.
// Implementations: HTTPClient (remote API), MemStore (offline stand-in),
// KuzuStore (embedded graph, cgo builds only).
// UI-facing code talks to the marketplace only through this interface.
type Catalog interface {
	// Users.
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, user NewUser) (*User, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error)
	DeleteUser(ctx context.Context, id int64) error

	// Items.
	ListItems(ctx context.Context, owner OwnerFilter) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	CreateItem(ctx context.Context, ownerID int64, item NewItem) (*Item, error)
	UpdateItem(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error

	// SearchItems returns items whose name or description contains text,
	// ignoring case. Behaviour for blank text is undefined; see ValidateQuery.
	SearchItems(ctx context.Context, text string) ([]Item, error)
}

// AllOwnersHeader is the X-Sharer-User-Id value that requests every item.
const AllOwnersHeader = "All"

// OwnerFilter restricts ListItems to one owner, or to nobody in particular.
type OwnerFilter struct {
	id  int64
	set bool
}

// AllOwners matches items of every owner.
func AllOwners() OwnerFilter { return OwnerFilter{} }

// OwnedBy matches only items whose owner is id.
func OwnedBy(id int64) OwnerFilter { return OwnerFilter{id: id, set: true} }

// OwnerID reports the filtered owner and whether a filter is set.
func (f OwnerFilter) OwnerID() (int64, bool) { return f.id, f.set }

// Includes reports whether item passes the filter.
func (f OwnerFilter) Includes(item Item) bool {
	return !f.set || item.OwnerID == f.id
}

// HeaderValue is the X-Sharer-User-Id value sent for this filter.
func (f OwnerFilter) HeaderValue() string {
	if !f.set {
		return AllOwnersHeader
	}
	return strconv.FormatInt(f.id, 10)
}

func (f OwnerFilter) String() string {
	if !f.set {
		return "all"
	}
	return "owner " + strconv.FormatInt(f.id, 10)
}
