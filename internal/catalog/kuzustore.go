//go:build cgo

package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements Catalog on an embedded KuzuDB graph: users and items
// are nodes, ownership is an OWNS relationship. It requires CGO because the
// go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	mu         sync.Mutex
	db         *kuzu.Database
	conn       *kuzu.Connection
	nextUserID int64
	nextItemID int64
}

// Compile-time check that KuzuStore satisfies Catalog.
var _ Catalog = (*KuzuStore)(nil)

// InMemoryKuzu is the database path for a throwaway in-memory graph.
const InMemoryKuzu = ":memory:"

// NewKuzuStore opens (or creates) a KuzuDB at dbPath and ensures the schema
// exists. Pass InMemoryKuzu for a database that lives only in this process.
func NewKuzuStore(dbPath string) (*KuzuStore, error) {
	if dbPath == "" {
		dbPath = InMemoryKuzu
	}
	if dbPath != InMemoryKuzu {
		// KuzuDB creates the leaf directory itself.
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
		}
	}
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	s := &KuzuStore{db: db, conn: conn}
	if err := s.initSchema(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.loadCounters(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements must create node tables before the relationship table.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS User(
		id INT64,
		name STRING,
		email STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Item(
		id INT64,
		name STRING,
		description STRING,
		available BOOLEAN,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS OWNS(FROM User TO Item)`,
}

func (s *KuzuStore) initSchema() error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// loadCounters continues id assignment after whatever the database holds.
func (s *KuzuStore) loadCounters() error {
	maxUser, err := s.scalar("MATCH (u:User) RETURN max(u.id)")
	if err != nil {
		return err
	}
	maxItem, err := s.scalar("MATCH (i:Item) RETURN max(i.id)")
	if err != nil {
		return err
	}
	s.nextUserID = int64(toInt(maxUser)) + 1
	s.nextItemID = int64(toInt(maxItem)) + 1
	return nil
}

// Load inserts users and items with their existing ids, e.g. SeedUsers and
// SeedItems. Items must reference loaded users.
func (s *KuzuStore) Load(ctx context.Context, users []User, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if err := s.insertUser(u); err != nil {
			return err
		}
	}
	for _, it := range items {
		if err := s.insertItem(it); err != nil {
			return err
		}
	}
	return s.loadCounters()
}

// ---------- Users ----------

// ListUsers returns all users ordered by id.
func (s *KuzuStore) ListUsers(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.query("MATCH (u:User) RETURN u.id, u.name, u.email ORDER BY u.id", nil)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToUser(r))
	}
	return out, nil
}

// GetUser returns the user with id, or ErrNotFound.
func (s *KuzuStore) GetUser(ctx context.Context, id int64) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getUser(id)
}

// CreateUser inserts a user with the next id.
func (s *KuzuStore) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := User{ID: s.nextUserID, Name: user.Name, Email: user.Email}
	if err := s.insertUser(u); err != nil {
		return nil, err
	}
	s.nextUserID++
	return &u, nil
}

// UpdateUser applies patch to the user with id.
func (s *KuzuStore) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.getUser(id)
	if err != nil {
		return nil, err
	}
	u := patch.Apply(*cur)
	err = s.exec(
		"MATCH (u:User {id: $id}) SET u.name = $name, u.email = $email",
		map[string]any{"id": u.ID, "name": u.Name, "email": u.Email},
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the user and the items it owns. Unknown ids are ignored.
func (s *KuzuStore) DeleteUser(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	params := map[string]any{"id": id}
	if err := s.exec("MATCH (u:User {id: $id})-[:OWNS]->(i:Item) DETACH DELETE i", params); err != nil {
		return err
	}
	return s.exec("MATCH (u:User {id: $id}) DETACH DELETE u", params)
}

// ---------- Items ----------

const itemColumns = "i.id, i.name, i.description, i.available, u.id"

// ListItems returns the items passing owner, ordered by id.
func (s *KuzuStore) ListItems(ctx context.Context, owner OwnerFilter) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		rows [][]any
		err  error
	)
	if id, ok := owner.OwnerID(); ok {
		rows, err = s.query(
			"MATCH (u:User {id: $owner})-[:OWNS]->(i:Item) RETURN "+itemColumns+" ORDER BY i.id",
			map[string]any{"owner": id},
		)
	} else {
		rows, err = s.query("MATCH (u:User)-[:OWNS]->(i:Item) RETURN "+itemColumns+" ORDER BY i.id", nil)
	}
	if err != nil {
		return nil, err
	}
	return rowsToItems(rows), nil
}

// GetItem returns the item with id, or ErrNotFound.
func (s *KuzuStore) GetItem(ctx context.Context, id int64) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getItem(id)
}

// CreateItem inserts an item owned by ownerID, which must exist.
func (s *KuzuStore) CreateItem(ctx context.Context, ownerID int64, item NewItem) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getUser(ownerID); err != nil {
		return nil, err
	}
	it := Item{
		ID:          s.nextItemID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     ownerID,
	}
	if err := s.insertItem(it); err != nil {
		return nil, err
	}
	s.nextItemID++
	return &it, nil
}

// UpdateItem applies patch when ownerID owns the item, else ErrForbidden.
func (s *KuzuStore) UpdateItem(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.getItem(itemID)
	if err != nil {
		return nil, err
	}
	if cur.OwnerID != ownerID {
		return nil, notOwner(itemID, ownerID)
	}
	if patch.OwnerID != nil && *patch.OwnerID != cur.OwnerID {
		if _, err := s.getUser(*patch.OwnerID); err != nil {
			return nil, err
		}
	}
	it := patch.Apply(*cur)
	err = s.exec(
		"MATCH (i:Item {id: $id}) SET i.name = $name, i.description = $desc, i.available = $avail",
		map[string]any{"id": it.ID, "name": it.Name, "desc": it.Description, "avail": it.Available},
	)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != cur.OwnerID {
		if err := s.exec("MATCH (:User)-[r:OWNS]->(i:Item {id: $id}) DELETE r", map[string]any{"id": it.ID}); err != nil {
			return nil, err
		}
		if err := s.link(it.OwnerID, it.ID); err != nil {
			return nil, err
		}
	}
	return &it, nil
}

// DeleteItem removes the item with id. Unknown ids are ignored.
func (s *KuzuStore) DeleteItem(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec("MATCH (i:Item {id: $id}) DETACH DELETE i", map[string]any{"id": id})
}

// SearchItems filters all items with Matches. Folding case in Go keeps the
// rule identical to MemStore for non-ASCII text.
func (s *KuzuStore) SearchItems(ctx context.Context, text string) ([]Item, error) {
	all, err := s.ListItems(ctx, AllOwners())
	if err != nil {
		return nil, err
	}
	return filterItems(all, func(it Item) bool { return Matches(it, text) }), nil
}

// ---------- Internal helpers ----------

func (s *KuzuStore) getUser(id int64) (*User, error) {
	rows, err := s.query(
		"MATCH (u:User {id: $id}) RETURN u.id, u.name, u.email",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, userNotFound(id)
	}
	u := rowToUser(rows[0])
	return &u, nil
}

func (s *KuzuStore) getItem(id int64) (*Item, error) {
	rows, err := s.query(
		"MATCH (u:User)-[:OWNS]->(i:Item {id: $id}) RETURN "+itemColumns,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, itemNotFound(id)
	}
	it := rowToItem(rows[0])
	return &it, nil
}

func (s *KuzuStore) insertUser(u User) error {
	return s.exec(
		"CREATE (u:User {id: $id, name: $name, email: $email})",
		map[string]any{"id": u.ID, "name": u.Name, "email": u.Email},
	)
}

func (s *KuzuStore) insertItem(it Item) error {
	err := s.exec(
		"CREATE (i:Item {id: $id, name: $name, description: $desc, available: $avail})",
		map[string]any{"id": it.ID, "name": it.Name, "desc": it.Description, "avail": it.Available},
	)
	if err != nil {
		return err
	}
	return s.link(it.OwnerID, it.ID)
}

func (s *KuzuStore) link(ownerID, itemID int64) error {
	return s.exec(
		`MATCH (u:User {id: $owner}), (i:Item {id: $item})
		 CREATE (u)-[:OWNS]->(i)`,
		map[string]any{"owner": ownerID, "item": itemID},
	)
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// scalar returns the first column of the first row, or nil.
func (s *KuzuStore) scalar(cypher string) (any, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil
	}
	return rows[0][0], nil
}

// rowToUser converts an (id, name, email) row.
func rowToUser(r []any) User {
	return User{
		ID:    int64(toInt(r[0])),
		Name:  toString(r[1]),
		Email: toString(r[2]),
	}
}

// rowToItem converts an itemColumns row.
func rowToItem(r []any) Item {
	return Item{
		ID:          int64(toInt(r[0])),
		Name:        toString(r[1]),
		Description: toString(r[2]),
		Available:   toBool(r[3]),
		OwnerID:     int64(toInt(r[4])),
	}
}

func rowsToItems(rows [][]any) []Item {
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToItem(r))
	}
	return out
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, bool, string); nil for NULL.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
