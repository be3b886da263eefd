package mcptools

import (
	"context"
	"log"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewCatalogMCPServer creates an MCP server with all 11 catalog tools registered.
func NewCatalogMCPServer(svc *CatalogService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lendit-catalog",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_users",
		Description: "List every registered user of the lending marketplace.",
	}, svc.ListUsers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user",
		Description: "Get one user by id.",
	}, svc.GetUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_user",
		Description: "Register a new user with a name and email. Returns the user with its assigned id.",
	}, svc.CreateUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_user",
		Description: "Change a user's name and/or email. Omitted fields are left unchanged.",
	}, svc.UpdateUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_user",
		Description: "Delete a user and every item they own.",
	}, svc.DeleteUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_items",
		Description: "List shareable items, optionally only those owned by one user.",
	}, svc.ListItems)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_item",
		Description: "Get one item by id.",
	}, svc.GetItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_item",
		Description: "Add a shareable item owned by the given user. Returns the item with its assigned id.",
	}, svc.CreateItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_item",
		Description: "Change an item's name, description, availability or owner. Only the item's owner may update it; omitted fields are left unchanged.",
	}, svc.UpdateItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_item",
		Description: "Delete an item by id.",
	}, svc.DeleteItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_items",
		Description: "Case-insensitive substring search over item names and descriptions.",
	}, svc.SearchItems)

	return server
}

// RunMCPServer starts an HTTP server exposing the catalog MCP tools.
func RunMCPServer(ctx context.Context, svc *CatalogService, addr string) error {
	server := NewCatalogMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	log.Printf("mcptools: serving MCP over HTTP on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
