package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dusk-indust/lendit/internal/browse"
	"github.com/dusk-indust/lendit/internal/catalog"
	"github.com/dusk-indust/lendit/internal/config"
)

// app is one CLI invocation with its backend opened.
type app struct {
	cfg  *config.ProjectConfig
	cat  catalog.Catalog
	term terminal
	yes  bool
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "users":
		return a.runUsers(ctx)
	case "user":
		return a.runUser(ctx, args)
	case "profile":
		return a.runProfile(ctx, args)
	case "items":
		return a.runItems(ctx, args)
	case "item":
		return a.runItem(ctx, args)
	case "search":
		return a.runSearch(ctx, args)
	case "watch":
		return a.runWatch(ctx)
	case "add-item":
		return a.runAddItem(ctx, args)
	case "edit-item":
		return a.runEditItem(ctx, args)
	case "set-available":
		return a.runSetAvailable(ctx, args)
	case "delete-item":
		return a.runDeleteItem(ctx, args)
	case "register":
		return a.runRegister(ctx, args)
	case "delete-user":
		return a.runDeleteUser(ctx, args)
	case "serve":
		return a.runServe(ctx, args)
	case "mcp":
		return a.runMCP(ctx, args)
	case "export":
		return a.runExport(ctx, args)
	default:
		return fmt.Errorf("unknown command %q (run 'lendit help')", cmd)
	}
}

// session returns a browse session for the acting user with terminal
// notifications and prompts.
func (a *app) session() *browse.Session {
	opts := []browse.SessionOption{browse.WithSessionNotifier(a.notifier())}
	if !a.yes {
		opts = append(opts, browse.WithConfirmer(newPrompt(a.term)))
	}
	return browse.NewSession(a.cat, a.cfg.ActingUser, opts...)
}

func (a *app) notifier() browse.Notifier {
	return browse.NotifierFunc(func(n browse.Notification) {
		fmt.Fprintln(a.term.err, browse.FormatNotification(n))
	})
}

func (a *app) requireUser() error {
	if a.cfg.ActingUser == 0 {
		return fmt.Errorf("acting user required: pass -user <id> or set LENDIT_USER")
	}
	return nil
}

func (a *app) runUsers(ctx context.Context) error {
	users, err := a.cat.ListUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.term.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return tw.Flush()
}

func (a *app) runUser(ctx context.Context, args []string) error {
	id, err := idArg(args, "user <id>")
	if err != nil {
		return err
	}
	u, err := a.cat.GetUser(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.term.out, "%d  %s <%s>\n", u.ID, u.Name, u.Email)
	return nil
}

func (a *app) runProfile(ctx context.Context, args []string) error {
	s := a.session()
	id := a.cfg.ActingUser
	if len(args) > 0 {
		var err error
		if id, err = idArg(args, "profile [id]"); err != nil {
			return err
		}
	} else if err := a.requireUser(); err != nil {
		return err
	}

	p, err := s.ProfileOf(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.term.out, "%s <%s>\n\n", p.User.Name, p.User.Email)
	return a.printItems(p.Items, nil)
}

func (a *app) runItems(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("items", flag.ContinueOnError)
	fs.SetOutput(a.term.err)
	owner := fs.Int64("owner", 0, "only items owned by this user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *owner != 0 {
		items, err := a.cat.ListItems(ctx, catalog.OwnedBy(*owner))
		if err != nil {
			return err
		}
		return a.printItems(items, nil)
	}

	listings, err := a.session().Catalog(ctx)
	if err != nil {
		return err
	}
	items := make([]catalog.Item, 0, len(listings))
	owners := make(map[int64]string, len(listings))
	for _, l := range listings {
		items = append(items, l.Item)
		owners[l.Item.ID] = l.OwnerName()
	}
	return a.printItems(items, owners)
}

func (a *app) runItem(ctx context.Context, args []string) error {
	id, err := idArg(args, "item <id>")
	if err != nil {
		return err
	}
	l, err := a.session().Item(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.term.out, "%d  %s (%s)\n", l.Item.ID, l.Item.Name, availability(l.Item.Available))
	fmt.Fprintf(a.term.out, "owner: %s\n", l.OwnerName())
	fmt.Fprintf(a.term.out, "%s\n", l.Item.Description)
	return nil
}

func (a *app) runSearch(ctx context.Context, args []string) error {
	items, err := a.session().Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.term.out, "No items found.")
		return nil
	}
	return a.printItems(items, nil)
}

func (a *app) runAddItem(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-item", flag.ContinueOnError)
	fs.SetOutput(a.term.err)
	unavailable := fs.Bool("unavailable", false, "mark the item as currently lent out")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: lendit add-item [-unavailable] <name> <description>")
	}
	if err := a.requireUser(); err != nil {
		return err
	}

	it, err := a.session().AddItem(ctx, browse.ItemForm{
		Name:        fs.Arg(0),
		Description: fs.Arg(1),
		Available:   !*unavailable,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.term.out, it.ID)
	return nil
}

func (a *app) runEditItem(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit-item", flag.ContinueOnError)
	fs.SetOutput(a.term.err)
	unavailable := fs.Bool("unavailable", false, "mark the item as currently lent out")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: lendit edit-item [-unavailable] <id> <name> <description>")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := a.requireUser(); err != nil {
		return err
	}

	_, err = a.session().EditItem(ctx, id, browse.ItemForm{
		Name:        fs.Arg(1),
		Description: fs.Arg(2),
		Available:   !*unavailable,
	})
	return err
}

func (a *app) runSetAvailable(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: lendit set-available <id> <true|false>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	available, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("invalid availability %q", args[1])
	}
	if err := a.requireUser(); err != nil {
		return err
	}
	_, err = a.session().SetAvailable(ctx, id, available)
	return err
}

func (a *app) runDeleteItem(ctx context.Context, args []string) error {
	id, err := idArg(args, "delete-item <id>")
	if err != nil {
		return err
	}
	return a.session().DeleteItem(ctx, id)
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: lendit register <name> <email>")
	}
	u, err := a.session().Register(ctx, browse.UserForm{Name: args[0], Email: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.term.out, u.ID)
	return nil
}

func (a *app) runDeleteUser(ctx context.Context, args []string) error {
	id, err := idArg(args, "delete-user <id>")
	if err != nil {
		return err
	}
	return a.session().DeleteUser(ctx, id)
}

// printItems writes items as a table. owners maps item id to owner name;
// when nil the owner id is shown instead.
func (a *app) printItems(items []catalog.Item, owners map[int64]string) error {
	tw := tabwriter.NewWriter(a.term.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tSTATUS\tDESCRIPTION")
	for _, it := range items {
		owner := strconv.FormatInt(it.OwnerID, 10)
		if owners != nil {
			owner = owners[it.ID]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.Name, owner, availability(it.Available), it.Description)
	}
	return tw.Flush()
}

func availability(available bool) string {
	if available {
		return "available"
	}
	return "lent"
}

func idArg(args []string, form string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: lendit %s", form)
	}
	return parseID(args[0])
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
