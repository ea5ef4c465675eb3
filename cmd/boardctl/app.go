package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/client"
	"github.com/ArturoRiosMock/CRMAIRE/internal/gateway"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/validation"
)

// usageError marks bad command lines; main exits with status 2 on them.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

type app struct {
	session   *gateway.Session
	remote    *client.Client
	imports   *importer.Importer
	validator *validation.Validator
	out       io.Writer
	now       func() time.Time
}

type command struct {
	usage string
	// offline commands talk to the server directly and skip the session.
	offline bool
	run     func(a *app, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"show":     {usage: "show [-q text] [-tag tag]... [-notes]", run: (*app).show},
		"add":      {usage: "add [-name n] [-phone p] [-email e] [-tag tag]... [-amount usd] [-follow-up date] <column> <username>", run: (*app).add},
		"edit":     {usage: "edit [-name n] [-username u] [-phone p] [-email e] [-amount usd] [-follow-up date] <follower>", run: (*app).edit},
		"rm":       {usage: "rm <follower>", run: (*app).remove},
		"move":     {usage: "move <follower> <column> [index]", run: (*app).move},
		"reorder":  {usage: "reorder <column> <from> <to>", run: (*app).reorder},
		"drag":     {usage: "drag [-q text] [-tag tag]... <follower> <to-column> <to-index>", run: (*app).drag},
		"note":     {usage: "note <follower> <text>...", run: (*app).note},
		"tag":      {usage: "tag list | create <name> <color> | rename <tag> <name> [color] | delete <tag> | toggle <follower> <tag>", run: (*app).tag},
		"column":   {usage: "column add <title> | rename <column> <title> | delete <column> | reorder <column>...", run: (*app).column},
		"import":   {usage: "import <file>...", run: (*app).importFiles},
		"lookup":   {usage: "lookup [-fresh]", run: (*app).lookup},
		"export":   {usage: "export [-o file]", run: (*app).export},
		"restore":  {usage: "restore <file>", run: (*app).restore},
		"reset":    {usage: "reset", run: (*app).reset},
		"snapshot": {usage: "snapshot list | create | restore [-dry-run] <id>", offline: true, run: (*app).snapshot},
	}
}

var commandOrder = []string{
	"show", "add", "edit", "rm", "move", "reorder", "drag", "note",
	"tag", "column", "import", "lookup", "export", "restore", "reset", "snapshot",
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: boardctl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "  discover")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Followers are named by id or username, columns by id or title and tags by id or name.")
}

// run executes one command: load the board, apply the change, flush it.
func (a *app) run(ctx context.Context, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return usagef("unknown command %q", args[0])
	}
	if cmd.offline {
		return cmd.run(a, ctx, args[1:])
	}

	if _, err := a.session.Start(ctx); err != nil {
		return err
	}
	if err := cmd.run(a, ctx, args[1:]); err != nil {
		return err
	}
	if err := a.session.Flush(ctx); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// flags returns a flag set for a subcommand whose errors are returned
// rather than printed.
func flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s: %v", fs.Name(), err)
	}
	return nil
}

func wantArgs(fs *flag.FlagSet, minArgs, maxArgs int) error {
	n := fs.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		return usagef("usage: boardctl %s", commands[fs.Name()].usage)
	}
	return nil
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func (a *app) filter(query string, tags []string) (board.Filter, error) {
	b := a.session.Board()
	f := board.Filter{Query: query}
	for _, ref := range tags {
		tid, err := resolveTag(b, ref)
		if err != nil {
			return f, err
		}
		f.TagIDs = append(f.TagIDs, tid)
	}
	return f, nil
}

func (a *app) show(_ context.Context, args []string) error {
	fs := flags("show")
	query := fs.String("q", "", "Show followers whose name or username contains text")
	var tags multiFlag
	fs.Var(&tags, "tag", "Show followers holding the tag (repeatable)")
	notes := fs.Bool("notes", false, "Include notes, newest first")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, 0); err != nil {
		return err
	}

	f, err := a.filter(*query, tags)
	if err != nil {
		return err
	}
	return renderBoard(a.out, a.session.Board(), f, *notes)
}

// followerFlags registers the editable follower fields on fs.
type followerFlags struct {
	name, username, phone, email, amount, followUp *string
}

func newFollowerFlags(fs *flag.FlagSet, withUsername bool) followerFlags {
	ff := followerFlags{
		name:     fs.String("name", "", "Display name"),
		phone:    fs.String("phone", "", "Phone number"),
		email:    fs.String("email", "", "Email address"),
		amount:   fs.String("amount", "", "Proposal amount in USD"),
		followUp: fs.String("follow-up", "", "Follow-up date (YYYY-MM-DD)"),
	}
	if withUsername {
		ff.username = fs.String("username", "", "Instagram username")
	}
	return ff
}

func parseAmount(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil || v < 0 {
		return nil, usagef("invalid amount %q", s)
	}
	return &v, nil
}

func parseFollowUp(s string) (*string, error) {
	if s == "" {
		return nil, nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return nil, usagef("invalid follow-up date %q, want YYYY-MM-DD", s)
	}
	return &s, nil
}

func (a *app) add(_ context.Context, args []string) error {
	fs := flags("add")
	ff := newFollowerFlags(fs, false)
	var tags multiFlag
	fs.Var(&tags, "tag", "Tag to apply (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2, 2); err != nil {
		return err
	}

	b := a.session.Board()
	cid, err := resolveColumn(b, fs.Arg(0))
	if err != nil {
		return err
	}
	amount, err := parseAmount(*ff.amount)
	if err != nil {
		return err
	}
	followUp, err := parseFollowUp(*ff.followUp)
	if err != nil {
		return err
	}
	fields := board.FollowerFields{
		Name:              *ff.name,
		Username:          fs.Arg(1),
		Phone:             *ff.phone,
		Email:             *ff.email,
		ProposalAmountUSD: amount,
		FollowUpAt:        followUp,
	}
	for _, ref := range tags {
		tid, err := resolveTag(b, ref)
		if err != nil {
			return err
		}
		fields.Tags = append(fields.Tags, tid)
	}
	if err := a.validator.Validate(fields); err != nil {
		return usagef("%v", err)
	}

	fid, err := a.session.AddFollower(cid, fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s\n", fid)
	return nil
}

func (a *app) edit(_ context.Context, args []string) error {
	fs := flags("edit")
	ff := newFollowerFlags(fs, true)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1, 1); err != nil {
		return err
	}
	fid, err := resolveFollower(a.session.Board(), fs.Arg(0))
	if err != nil {
		return err
	}

	var patch board.FollowerPatch
	var perr error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			patch.Name = ff.name
		case "username":
			patch.Username = ff.username
		case "phone":
			patch.Phone = ff.phone
		case "email":
			patch.Email = ff.email
		case "amount":
			// An empty amount clears the proposal.
			v, err := parseAmount(*ff.amount)
			if err != nil {
				perr = err
			}
			patch.ProposalAmountUSD = &v
		case "follow-up":
			v, err := parseFollowUp(*ff.followUp)
			if err != nil {
				perr = err
			}
			patch.FollowUpAt = &v
		}
	})
	if perr != nil {
		return perr
	}
	return a.session.UpdateFollower(fid, patch)
}

func (a *app) remove(_ context.Context, args []string) error {
	fs := flags("rm")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1, 1); err != nil {
		return err
	}
	fid, err := resolveFollower(a.session.Board(), fs.Arg(0))
	if err != nil {
		return err
	}
	return a.session.DeleteFollower(fid)
}

func atoi(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usagef("invalid %s %q", what, s)
	}
	return n, nil
}

func (a *app) move(_ context.Context, args []string) error {
	fs := flags("move")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2, 3); err != nil {
		return err
	}
	b := a.session.Board()
	fid, err := resolveFollower(b, fs.Arg(0))
	if err != nil {
		return err
	}
	cid, err := resolveColumn(b, fs.Arg(1))
	if err != nil {
		return err
	}
	index := -1
	if fs.NArg() == 3 {
		if index, err = atoi(fs.Arg(2), "index"); err != nil {
			return err
		}
	}
	return a.session.MoveFollower(fid, cid, index)
}

func (a *app) reorder(_ context.Context, args []string) error {
	fs := flags("reorder")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 3, 3); err != nil {
		return err
	}
	cid, err := resolveColumn(a.session.Board(), fs.Arg(0))
	if err != nil {
		return err
	}
	from, err := atoi(fs.Arg(1), "index")
	if err != nil {
		return err
	}
	to, err := atoi(fs.Arg(2), "index")
	if err != nil {
		return err
	}
	return a.session.ReorderWithinColumn(cid, from, to)
}

// drag replays a drop the way the board view reports it: indices count only
// the followers visible under the filter.
func (a *app) drag(_ context.Context, args []string) error {
	fs := flags("drag")
	query := fs.String("q", "", "Filter text active during the drag")
	var tags multiFlag
	fs.Var(&tags, "tag", "Filter tag active during the drag (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 3, 3); err != nil {
		return err
	}

	f, err := a.filter(*query, tags)
	if err != nil {
		return err
	}
	b := a.session.Board()
	fid, err := resolveFollower(b, fs.Arg(0))
	if err != nil {
		return err
	}
	cid, err := resolveColumn(b, fs.Arg(1))
	if err != nil {
		return err
	}
	to, err := atoi(fs.Arg(2), "index")
	if err != nil {
		return err
	}
	src, ok := visibleLocation(f.Visible(b), fid)
	if !ok {
		return fmt.Errorf("follower %s is hidden by the filter", fs.Arg(0))
	}

	outcome := a.session.Drag(board.DragEvent{
		ItemID:      fid,
		Source:      src,
		Destination: &board.Location{ListID: cid, Index: to},
	}, f)
	fmt.Fprintln(a.out, outcome)
	return nil
}

func (a *app) note(_ context.Context, args []string) error {
	fs := flags("note")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2, -1); err != nil {
		return err
	}
	fid, err := resolveFollower(a.session.Board(), fs.Arg(0))
	if err != nil {
		return err
	}
	return a.session.AddNote(fid, strings.Join(fs.Args()[1:], " "))
}

func (a *app) tag(_ context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("usage: boardctl %s", commands["tag"].usage)
	}
	b := a.session.Board()
	sub, rest := args[0], args[1:]

	switch {
	case sub == "list" && len(rest) == 0:
		return renderTags(a.out, b)

	case sub == "create" && len(rest) == 2:
		tid, err := a.session.CreateTag(rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created %s\n", tid)
		return nil

	case sub == "rename" && (len(rest) == 2 || len(rest) == 3):
		tid, err := resolveTag(b, rest[0])
		if err != nil {
			return err
		}
		color := ""
		if len(rest) == 3 {
			color = rest[2]
		}
		return a.session.RenameTag(tid, rest[1], color)

	case sub == "delete" && len(rest) == 1:
		tid, err := resolveTag(b, rest[0])
		if err != nil {
			return err
		}
		return a.session.DeleteTag(tid)

	case sub == "toggle" && len(rest) == 2:
		fid, err := resolveFollower(b, rest[0])
		if err != nil {
			return err
		}
		tid, err := resolveTag(b, rest[1])
		if err != nil {
			return err
		}
		return a.session.ToggleFollowerTag(fid, tid)
	}
	return usagef("usage: boardctl %s", commands["tag"].usage)
}

func (a *app) column(_ context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("usage: boardctl %s", commands["column"].usage)
	}
	b := a.session.Board()
	sub, rest := args[0], args[1:]

	switch {
	case sub == "add" && len(rest) >= 1:
		cid, err := a.session.AddColumn(strings.Join(rest, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added %s\n", cid)
		return nil

	case sub == "rename" && len(rest) >= 2:
		cid, err := resolveColumn(b, rest[0])
		if err != nil {
			return err
		}
		return a.session.RenameColumn(cid, strings.Join(rest[1:], " "))

	case sub == "delete" && len(rest) == 1:
		cid, err := resolveColumn(b, rest[0])
		if err != nil {
			return err
		}
		return a.session.DeleteColumn(cid)

	case sub == "reorder" && len(rest) >= 1:
		ids := make([]string, 0, len(rest))
		for _, ref := range rest {
			cid, err := resolveColumn(b, ref)
			if err != nil {
				return err
			}
			ids = append(ids, cid)
		}
		return a.session.ReorderColumns(ids)
	}
	return usagef("usage: boardctl %s", commands["column"].usage)
}

func (a *app) importFiles(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("usage: boardctl %s", commands["import"].usage)
	}
	usernames, err := a.imports.ReadFiles(ctx, args)
	if err != nil {
		return err
	}
	added := a.session.ApplyImport(usernames)
	fmt.Fprintf(a.out, "%d usernames read, %d followers added\n", len(usernames), added)
	return nil
}

// lookup asks the server to merge its export folders and adopts the result.
func (a *app) lookup(ctx context.Context, args []string) error {
	fs := flags("lookup")
	fresh := fs.Bool("fresh", false, "Merge into a fresh board instead of the stored one")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, 0); err != nil {
		return err
	}

	res, err := a.remote.LookupImport(ctx, *fresh)
	if err != nil {
		return err
	}
	if err := a.session.Replace(res.Board); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d usernames found in %s, %d followers added\n", res.Count, res.Folder, res.Added)
	return nil
}

func backupFileName(now time.Time) string {
	return "crm-seguidores-backup-" + now.Format(time.DateOnly) + ".json"
}

func (a *app) export(_ context.Context, args []string) error {
	fs := flags("export")
	out := fs.String("o", "", `Output file, "-" for stdout (default crm-seguidores-backup-<date>.json)`)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, 0); err != nil {
		return err
	}

	now := a.now()
	data, err := a.session.ExportBackup(now)
	if err != nil {
		return err
	}
	path := *out
	if path == "-" {
		_, err := a.out.Write(data)
		return err
	}
	if path == "" {
		path = backupFileName(now)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Fprintf(a.out, "exported %d followers to %s\n", len(a.session.Board().Followers), path)
	return nil
}

func (a *app) restore(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("usage: boardctl %s", commands["restore"].usage)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if !a.session.Import(data) {
		return errors.New("not a valid board document, board left unchanged")
	}
	fmt.Fprintf(a.out, "restored %d followers\n", len(a.session.Board().Followers))
	return nil
}

func (a *app) reset(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usagef("usage: boardctl %s", commands["reset"].usage)
	}
	a.session.Reset(ctx)
	fmt.Fprintln(a.out, "board reset")
	return nil
}

func (a *app) snapshot(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("usage: boardctl %s", commands["snapshot"].usage)
	}
	switch args[0] {
	case "list":
		list, err := a.remote.Backups(ctx)
		if err != nil {
			return err
		}
		return renderBackups(a.out, list)

	case "create":
		res, err := a.remote.CreateBackup(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created %s (%d followers, %d pruned)\n", res.ID, res.LeadCount, res.Pruned)
		return nil

	case "restore":
		fs := flags("snapshot")
		dryRun := fs.Bool("dry-run", false, "Validate without restoring")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return usagef("usage: boardctl %s", commands["snapshot"].usage)
		}
		res, err := a.remote.RestoreBackup(ctx, fs.Arg(0), *dryRun)
		if err != nil {
			return err
		}
		verb := "restored"
		if res.DryRun {
			verb = "would restore"
		}
		fmt.Fprintf(a.out, "%s %s (%d followers, %d columns)\n", verb, res.ID, res.LeadCount, res.Columns)
		return nil
	}
	return usagef("usage: boardctl %s", commands["snapshot"].usage)
}
