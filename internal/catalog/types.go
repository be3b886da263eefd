package catalog

// User is a marketplace member who can own items.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Item is a shareable thing listed by its owner.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"idUser"`
}

// NewUser carries the fields of a user that does not exist yet.
type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewItem carries the fields of an item that does not exist yet.
// The owner travels separately (X-Sharer-User-Id).
type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// UserPatch is a partial user update. A nil field is left unchanged;
// a non-nil field is applied even when it holds the zero value.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ItemPatch is a partial item update with the same presence rules as UserPatch.
type ItemPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Available   *bool   `json:"available,omitempty"`
	OwnerID     *int64  `json:"idUser,omitempty"`
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }

// ID returns a pointer to id, for building patches.
func ID(id int64) *int64 { return &id }

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}

// Apply returns u with every present field of p written over it.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	return u
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Available == nil && p.OwnerID == nil
}

// Apply returns it with every present field of p written over it.
func (p ItemPatch) Apply(it Item) Item {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Available != nil {
		it.Available = *p.Available
	}
	if p.OwnerID != nil {
		it.OwnerID = *p.OwnerID
	}
	return it
}
