package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dusk-indust/lendit/internal/catalog"
)

var (
	// ErrInvalidForm is returned when a form fails validation; nothing is sent.
	ErrInvalidForm = errors.New("browse: invalid form")

	// ErrCancelled is returned when the user declines a confirmation prompt.
	ErrCancelled = errors.New("browse: cancelled")
)

// ItemForm is the add/edit item form.
type ItemForm struct {
	Name        string
	Description string
	Available   bool
}

// Validate trims the text fields and requires both to be non-empty.
func (f ItemForm) Validate() (ItemForm, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	switch {
	case f.Name == "":
		return f, fmt.Errorf("%w: name is required", ErrInvalidForm)
	case f.Description == "":
		return f, fmt.Errorf("%w: description is required", ErrInvalidForm)
	}
	return f, nil
}

// UserForm is the registration form.
type UserForm struct {
	Name  string
	Email string
}

// Validate trims the fields and requires a name and an email with an "@".
func (f UserForm) Validate() (UserForm, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	switch {
	case f.Name == "":
		return f, fmt.Errorf("%w: name is required", ErrInvalidForm)
	case !strings.Contains(f.Email, "@"):
		return f, fmt.Errorf("%w: email %q is not valid", ErrInvalidForm, f.Email)
	}
	return f, nil
}

// Session carries the acting user through the consumer flows. Every failure
// is reported through the Notifier and also returned.
type Session struct {
	cat     catalog.Catalog
	user    int64
	notify  Notifier
	confirm Confirmer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionNotifier sets the toast surface.
func WithSessionNotifier(n Notifier) SessionOption {
	return func(s *Session) { s.notify = n }
}

// WithConfirmer sets the confirmation prompt surface.
func WithConfirmer(c Confirmer) SessionOption {
	return func(s *Session) { s.confirm = c }
}

// NewSession returns a session acting as userID. Without options
// notifications are discarded and every prompt is approved.
func NewSession(cat catalog.Catalog, userID int64, opts ...SessionOption) *Session {
	s := &Session{
		cat:     cat,
		user:    userID,
		notify:  Discard,
		confirm: AlwaysConfirm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserID returns the acting user's id.
func (s *Session) UserID() int64 { return s.user }

// Catalog loads every listing.
func (s *Session) Catalog(ctx context.Context) ([]Listing, error) {
	listings, err := LoadCatalog(ctx, s.cat)
	if err != nil {
		notifyError(s.notify, "Failed to load items: %v", err)
		return nil, err
	}
	return listings, nil
}

// Profile loads the acting user's profile.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	return s.ProfileOf(ctx, s.user)
}

// ProfileOf loads any user's profile.
func (s *Session) ProfileOf(ctx context.Context, userID int64) (*Profile, error) {
	p, err := LoadProfile(ctx, s.cat, userID)
	if err != nil {
		notifyError(s.notify, "Failed to load profile: %v", err)
		return nil, err
	}
	return p, nil
}

// Item loads one item with its owner.
func (s *Session) Item(ctx context.Context, itemID int64) (*Listing, error) {
	it, err := s.cat.GetItem(ctx, itemID)
	if err != nil {
		notifyError(s.notify, "Failed to load item %d: %v", itemID, err)
		return nil, err
	}
	owner, err := s.cat.GetUser(ctx, it.OwnerID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		notifyError(s.notify, "Failed to load owner of item %d: %v", itemID, err)
		return nil, err
	}
	return &Listing{Item: *it, Owner: owner}, nil
}

// Search runs a one-shot store search. Blank text is rejected before the
// store is called.
func (s *Session) Search(ctx context.Context, text string) ([]catalog.Item, error) {
	if err := catalog.ValidateQuery(text); err != nil {
		return nil, err
	}
	items, err := s.cat.SearchItems(ctx, strings.TrimSpace(text))
	if err != nil {
		notifyError(s.notify, "Search failed: %v", err)
		return nil, err
	}
	return items, nil
}

// AddItem creates an item owned by the acting user.
func (s *Session) AddItem(ctx context.Context, form ItemForm) (*catalog.Item, error) {
	form, err := form.Validate()
	if err != nil {
		notifyError(s.notify, "%v", err)
		return nil, err
	}
	it, err := s.cat.CreateItem(ctx, s.user, catalog.NewItem{
		Name:        form.Name,
		Description: form.Description,
		Available:   form.Available,
	})
	if err != nil {
		notifyError(s.notify, "Failed to add item: %v", err)
		return nil, err
	}
	notifySuccess(s.notify, "Item %q added", it.Name)
	return it, nil
}

// EditItem replaces the name, description and availability of one of the
// acting user's items.
func (s *Session) EditItem(ctx context.Context, itemID int64, form ItemForm) (*catalog.Item, error) {
	form, err := form.Validate()
	if err != nil {
		notifyError(s.notify, "%v", err)
		return nil, err
	}
	return s.updateItem(ctx, itemID, catalog.ItemPatch{
		Name:        catalog.String(form.Name),
		Description: catalog.String(form.Description),
		Available:   catalog.Bool(form.Available),
	})
}

// SetAvailable toggles only the availability of one of the acting user's items.
func (s *Session) SetAvailable(ctx context.Context, itemID int64, available bool) (*catalog.Item, error) {
	return s.updateItem(ctx, itemID, catalog.ItemPatch{Available: catalog.Bool(available)})
}

func (s *Session) updateItem(ctx context.Context, itemID int64, patch catalog.ItemPatch) (*catalog.Item, error) {
	it, err := s.cat.UpdateItem(ctx, s.user, itemID, patch)
	if err != nil {
		notifyError(s.notify, "Failed to update item %d: %v", itemID, err)
		return nil, err
	}
	notifySuccess(s.notify, "Item %q updated", it.Name)
	return it, nil
}

// DeleteItem asks for confirmation, then deletes the item.
func (s *Session) DeleteItem(ctx context.Context, itemID int64) error {
	if !s.confirm.Confirm(fmt.Sprintf("Delete item %d?", itemID)) {
		return ErrCancelled
	}
	if err := s.cat.DeleteItem(ctx, itemID); err != nil {
		notifyError(s.notify, "Failed to delete item %d: %v", itemID, err)
		return err
	}
	notifySuccess(s.notify, "Item %d deleted", itemID)
	return nil
}

// Register creates a new user.
func (s *Session) Register(ctx context.Context, form UserForm) (*catalog.User, error) {
	form, err := form.Validate()
	if err != nil {
		notifyError(s.notify, "%v", err)
		return nil, err
	}
	u, err := s.cat.CreateUser(ctx, catalog.NewUser{Name: form.Name, Email: form.Email})
	if err != nil {
		notifyError(s.notify, "Failed to register user: %v", err)
		return nil, err
	}
	notifySuccess(s.notify, "User %q registered with id %d", u.Name, u.ID)
	return u, nil
}

// DeleteUser asks for confirmation, then deletes the user and their items.
func (s *Session) DeleteUser(ctx context.Context, userID int64) error {
	if !s.confirm.Confirm(fmt.Sprintf("Delete user %d and all their items?", userID)) {
		return ErrCancelled
	}
	if err := s.cat.DeleteUser(ctx, userID); err != nil {
		notifyError(s.notify, "Failed to delete user %d: %v", userID, err)
		return err
	}
	notifySuccess(s.notify, "User %d deleted", userID)
	return nil
}
