package mcptools

import "github.com/dusk-indust/lendit/internal/catalog"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ListUsersInput is the input for the list_users MCP tool.
type ListUsersInput struct{}

// UsersOutput is the result of the list_users MCP tool.
type UsersOutput struct {
	Users []catalog.User `json:"users"`
	Total int            `json:"total"`
}

// GetUserInput is the input for the get_user MCP tool.
type GetUserInput struct {
	ID int64 `json:"id" jsonschema:"id of the user"`
}

// UserOutput is the result of the single-user MCP tools.
type UserOutput struct {
	User catalog.User `json:"user"`
}

// CreateUserInput is the input for the create_user MCP tool.
type CreateUserInput struct {
	Name  string `json:"name" jsonschema:"display name of the new user"`
	Email string `json:"email" jsonschema:"email address of the new user"`
}

// UpdateUserInput is the input for the update_user MCP tool. Omitted fields
// are left unchanged.
type UpdateUserInput struct {
	ID    int64   `json:"id" jsonschema:"id of the user to update"`
	Name  *string `json:"name,omitempty" jsonschema:"new display name"`
	Email *string `json:"email,omitempty" jsonschema:"new email address"`
}

// DeleteUserInput is the input for the delete_user MCP tool.
type DeleteUserInput struct {
	ID int64 `json:"id" jsonschema:"id of the user to delete together with all their items"`
}

// DeleteOutput is the result of the delete MCP tools.
type DeleteOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// ListItemsInput is the input for the list_items MCP tool.
type ListItemsInput struct {
	OwnerID int64 `json:"ownerId,omitempty" jsonschema:"only list items owned by this user id (default: all owners)"`
}

// ItemsOutput is the result of the list_items and search_items MCP tools.
type ItemsOutput struct {
	Items []catalog.Item `json:"items"`
	Total int            `json:"total"`
}

// GetItemInput is the input for the get_item MCP tool.
type GetItemInput struct {
	ID int64 `json:"id" jsonschema:"id of the item"`
}

// ItemOutput is the result of the single-item MCP tools.
type ItemOutput struct {
	Item catalog.Item `json:"item"`
}

// CreateItemInput is the input for the create_item MCP tool.
type CreateItemInput struct {
	OwnerID     int64  `json:"ownerId" jsonschema:"id of the user who will own the item"`
	Name        string `json:"name" jsonschema:"item name"`
	Description string `json:"description" jsonschema:"item description"`
	Available   bool   `json:"available,omitempty" jsonschema:"whether the item can be borrowed now"`
}

// UpdateItemInput is the input for the update_item MCP tool. Omitted fields
// are left unchanged.
type UpdateItemInput struct {
	OwnerID     int64   `json:"ownerId" jsonschema:"id of the acting user; must own the item"`
	ID          int64   `json:"id" jsonschema:"id of the item to update"`
	Name        *string `json:"name,omitempty" jsonschema:"new item name"`
	Description *string `json:"description,omitempty" jsonschema:"new item description"`
	Available   *bool   `json:"available,omitempty" jsonschema:"new availability"`
	NewOwnerID  *int64  `json:"newOwnerId,omitempty" jsonschema:"transfer the item to this user id"`
}

// DeleteItemInput is the input for the delete_item MCP tool.
type DeleteItemInput struct {
	ID int64 `json:"id" jsonschema:"id of the item to delete"`
}

// SearchItemsInput is the input for the search_items MCP tool.
type SearchItemsInput struct {
	Text string `json:"text" jsonschema:"case-insensitive substring matched against item name and description; must not be blank"`
}
