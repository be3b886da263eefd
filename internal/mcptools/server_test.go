package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/catalog/catalogtest"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports over a seeded MemStore. It returns the connected client session
// and the store so that tests can inspect state when needed.
func setupServerClient(t *testing.T) (*mcp.ClientSession, *catalog.MemStore) {
	t.Helper()

	store := catalog.NewSeededMemStore(catalog.WithoutLatency())
	server := NewCatalogMCPServer(NewCatalogService(store))

	st, ct := mcp.NewInMemoryTransports()

	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})

	return session, store
}

// callTool invokes a tool and decodes its structured output into out.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any, out any) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s returned an error: %s", name, toolText(result))
	require.NotNil(t, result.StructuredContent, "expected structured content from %s", name)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// callToolError invokes a tool that is expected to fail and returns its text.
func callToolError(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.True(t, result.IsError, "%s should report an error", name)
	return toolText(result)
}

func toolText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// TestMCPListTools verifies that the MCP server exposes exactly 11 tools with
// the expected names.
func TestMCPListTools(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, result.Tools, 11, "expected 11 registered tools")

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)

	expected := []string{
		"create_item",
		"create_user",
		"delete_item",
		"delete_user",
		"get_item",
		"get_user",
		"list_items",
		"list_users",
		"search_items",
		"update_item",
		"update_user",
	}
	assert.Equal(t, expected, names)
}

func TestMCPListUsers(t *testing.T) {
	session, _ := setupServerClient(t)

	var out UsersOutput
	callTool(t, session, "list_users", ListUsersInput{}, &out)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, catalog.SeedUsers, out.Users)
}

func TestMCPGetUser_NotFound(t *testing.T) {
	session, _ := setupServerClient(t)
	msg := callToolError(t, session, "get_user", GetUserInput{ID: 42})
	assert.Contains(t, msg, "not found")
}

func TestMCPListItems_ByOwner(t *testing.T) {
	session, _ := setupServerClient(t)

	var all ItemsOutput
	callTool(t, session, "list_items", ListItemsInput{}, &all)
	assert.Equal(t, 6, all.Total)

	var mine ItemsOutput
	callTool(t, session, "list_items", ListItemsInput{OwnerID: 1}, &mine)
	assert.Equal(t, []int64{1, 4}, catalogtest.ItemIDs(mine.Items))

	var none ItemsOutput
	callTool(t, session, "list_items", ListItemsInput{OwnerID: 77}, &none)
	assert.Equal(t, 0, none.Total)
	assert.NotNil(t, none.Items)
}

func TestMCPCreateAndUpdateItem(t *testing.T) {
	session, store := setupServerClient(t)

	var created ItemOutput
	callTool(t, session, "create_item", CreateItemInput{
		OwnerID:     2,
		Name:        "Гитара",
		Description: "акустическая",
		Available:   true,
	}, &created)
	assert.Equal(t, int64(7), created.Item.ID)
	assert.Equal(t, int64(2), created.Item.OwnerID)

	off := false
	var updated ItemOutput
	callTool(t, session, "update_item", UpdateItemInput{OwnerID: 2, ID: 7, Available: &off}, &updated)
	assert.False(t, updated.Item.Available)
	assert.Equal(t, "Гитара", updated.Item.Name)

	got, err := store.GetItem(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, got.Available)
}

func TestMCPUpdateItem_NotOwner(t *testing.T) {
	session, store := setupServerClient(t)

	name := "stolen"
	msg := callToolError(t, session, "update_item", UpdateItemInput{OwnerID: 2, ID: 1, Name: &name})
	assert.Contains(t, msg, "not your item")

	got, err := store.GetItem(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Велосипед горный", got.Name)
}

func TestMCPUpdateUser(t *testing.T) {
	session, _ := setupServerClient(t)

	email := "ivan.p@example.com"
	var out UserOutput
	callTool(t, session, "update_user", UpdateUserInput{ID: 1, Email: &email}, &out)
	assert.Equal(t, catalog.User{ID: 1, Name: "Иван Петров", Email: email}, out.User)
}

func TestMCPDeleteUser_Cascades(t *testing.T) {
	session, store := setupServerClient(t)

	var out DeleteOutput
	callTool(t, session, "delete_user", DeleteUserInput{ID: 2}, &out)
	assert.True(t, out.Deleted)

	items, err := store.ListItems(context.Background(), catalog.OwnedBy(2))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMCPDeleteItem(t *testing.T) {
	session, store := setupServerClient(t)

	var out DeleteOutput
	callTool(t, session, "delete_item", DeleteItemInput{ID: 3}, &out)
	assert.Equal(t, DeleteOutput{ID: 3, Deleted: true}, out)

	_, err := store.GetItem(context.Background(), 3)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMCPSearchItems(t *testing.T) {
	session, _ := setupServerClient(t)

	var out ItemsOutput
	callTool(t, session, "search_items", SearchItemsInput{Text: "КАМЕРА"}, &out)
	assert.Equal(t, []int64{3}, catalogtest.ItemIDs(out.Items))

	msg := callToolError(t, session, "search_items", SearchItemsInput{Text: "   "})
	assert.Contains(t, msg, "blank")
}

func TestMCPCreateUser_RequiresFields(t *testing.T) {
	session, _ := setupServerClient(t)
	msg := callToolError(t, session, "create_user", CreateUserInput{Name: "x"})
	assert.Contains(t, msg, "required")
}

// TestMCPCallUnknownTool verifies that calling a non-existent tool returns an
// error.
func TestMCPCallUnknownTool(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})

	// The MCP SDK may return an error at the protocol level or set IsError on
	// the result. Accept either behavior.
	if err != nil {
		return
	}

	require.NotNil(t, result)
	assert.True(t, result.IsError, "calling an unknown tool should set IsError")
}
