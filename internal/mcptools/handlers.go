package mcptools

import (
	"context"
	"fmt"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CatalogService exposes a catalog.Catalog as MCP tool handlers.
type CatalogService struct {
	cat catalog.Catalog
}

// NewCatalogService creates a CatalogService over cat.
func NewCatalogService(cat catalog.Catalog) *CatalogService {
	return &CatalogService{cat: cat}
}

// ListUsers returns every user.
func (s *CatalogService) ListUsers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListUsersInput,
) (*mcp.CallToolResult, UsersOutput, error) {
	users, err := s.cat.ListUsers(ctx)
	if err != nil {
		return nil, UsersOutput{}, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []catalog.User{}
	}
	return nil, UsersOutput{Users: users, Total: len(users)}, nil
}

// GetUser returns one user by id.
func (s *CatalogService) GetUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	u, err := s.cat.GetUser(ctx, input.ID)
	if err != nil {
		return nil, UserOutput{}, fmt.Errorf("get user: %w", err)
	}
	return nil, UserOutput{User: *u}, nil
}

// CreateUser registers a new user.
func (s *CatalogService) CreateUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	if input.Name == "" || input.Email == "" {
		return nil, UserOutput{}, fmt.Errorf("name and email are required")
	}
	u, err := s.cat.CreateUser(ctx, catalog.NewUser{Name: input.Name, Email: input.Email})
	if err != nil {
		return nil, UserOutput{}, fmt.Errorf("create user: %w", err)
	}
	return nil, UserOutput{User: *u}, nil
}

// UpdateUser applies the given fields to a user.
func (s *CatalogService) UpdateUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	u, err := s.cat.UpdateUser(ctx, input.ID, catalog.UserPatch{Name: input.Name, Email: input.Email})
	if err != nil {
		return nil, UserOutput{}, fmt.Errorf("update user: %w", err)
	}
	return nil, UserOutput{User: *u}, nil
}

// DeleteUser removes a user and everything they own.
func (s *CatalogService) DeleteUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteUserInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.cat.DeleteUser(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("delete user: %w", err)
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

// ListItems returns all items, or one owner's items when ownerId is set.
func (s *CatalogService) ListItems(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListItemsInput,
) (*mcp.CallToolResult, ItemsOutput, error) {
	filter := catalog.AllOwners()
	if input.OwnerID != 0 {
		filter = catalog.OwnedBy(input.OwnerID)
	}
	items, err := s.cat.ListItems(ctx, filter)
	if err != nil {
		return nil, ItemsOutput{}, fmt.Errorf("list items: %w", err)
	}
	return nil, itemsOutput(items), nil
}

// GetItem returns one item by id.
func (s *CatalogService) GetItem(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetItemInput,
) (*mcp.CallToolResult, ItemOutput, error) {
	it, err := s.cat.GetItem(ctx, input.ID)
	if err != nil {
		return nil, ItemOutput{}, fmt.Errorf("get item: %w", err)
	}
	return nil, ItemOutput{Item: *it}, nil
}

// CreateItem adds an item owned by ownerId.
func (s *CatalogService) CreateItem(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateItemInput,
) (*mcp.CallToolResult, ItemOutput, error) {
	if input.Name == "" || input.Description == "" {
		return nil, ItemOutput{}, fmt.Errorf("name and description are required")
	}
	it, err := s.cat.CreateItem(ctx, input.OwnerID, catalog.NewItem{
		Name:        input.Name,
		Description: input.Description,
		Available:   input.Available,
	})
	if err != nil {
		return nil, ItemOutput{}, fmt.Errorf("create item: %w", err)
	}
	return nil, ItemOutput{Item: *it}, nil
}

// UpdateItem applies the given fields to an item owned by ownerId.
func (s *CatalogService) UpdateItem(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateItemInput,
) (*mcp.CallToolResult, ItemOutput, error) {
	patch := catalog.ItemPatch{
		Name:        input.Name,
		Description: input.Description,
		Available:   input.Available,
		OwnerID:     input.NewOwnerID,
	}
	it, err := s.cat.UpdateItem(ctx, input.OwnerID, input.ID, patch)
	if err != nil {
		return nil, ItemOutput{}, fmt.Errorf("update item: %w", err)
	}
	return nil, ItemOutput{Item: *it}, nil
}

// DeleteItem removes an item.
func (s *CatalogService) DeleteItem(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteItemInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.cat.DeleteItem(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("delete item: %w", err)
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

// SearchItems runs the store search. Blank text is rejected.
func (s *CatalogService) SearchItems(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchItemsInput,
) (*mcp.CallToolResult, ItemsOutput, error) {
	if err := catalog.ValidateQuery(input.Text); err != nil {
		return nil, ItemsOutput{}, err
	}
	items, err := s.cat.SearchItems(ctx, input.Text)
	if err != nil {
		return nil, ItemsOutput{}, fmt.Errorf("search items: %w", err)
	}
	return nil, itemsOutput(items), nil
}

func itemsOutput(items []catalog.Item) ItemsOutput {
	if items == nil {
		items = []catalog.Item{}
	}
	return ItemsOutput{Items: items, Total: len(items)}
}
