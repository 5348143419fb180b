package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nomis52/activities/activity"
	"github.com/nomis52/activities/registry"
)

// cliControl is reported as the delete target for deletes started here.
const cliControl = "cli"

type command struct {
	summary string
	run     func(ctx context.Context, reg *registry.Registry, args []string, stdout, stderr io.Writer) error
}

var commands = map[string]command{
	"list":   {summary: "List activities grouped by day", run: runList},
	"show":   {summary: "Show a single activity", run: runShow},
	"create": {summary: "Create an activity", run: runCreate},
	"edit":   {summary: "Edit fields of an activity", run: runEdit},
	"delete": {summary: "Delete an activity", run: runDelete},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runList(ctx context.Context, reg *registry.Registry, args []string, stdout, stderr io.Writer) error {
	if len(args) != 0 {
		return fmt.Errorf("list takes no arguments")
	}
	if err := reg.LoadAll(ctx); err != nil {
		return err
	}

	groups := reg.ActivitiesByDate()
	if len(groups) == 0 {
		fmt.Fprintln(stdout, "No activities")
		return nil
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintln(stdout, g.Date)
		for _, a := range g.Activities {
			fmt.Fprintf(stdout, "  %-5s  %s  [%s]\n", clock(a), summary(a), a.ID)
		}
	}
	return nil
}

func runShow(ctx context.Context, reg *registry.Registry, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show ID")
	}
	id := args[0]
	if err := reg.LoadOne(ctx, id); err != nil {
		return err
	}
	a, ok := reg.Get(id)
	if !ok {
		return fmt.Errorf("activity %s not found", id)
	}
	printActivity(stdout, a)
	return nil
}

// fieldFlags binds the editable activity fields to fs.
type fieldFlags struct {
	title, date, description, category, city, venue *string
}

func newFieldFlags(fs *flag.FlagSet) fieldFlags {
	return fieldFlags{
		title:       fs.String("title", "", "Title"),
		date:        fs.String("date", "", "Start time, e.g. 2024-05-01T10:00:00"),
		description: fs.String("description", "", "Description"),
		category:    fs.String("category", "", "Category"),
		city:        fs.String("city", "", "City"),
		venue:       fs.String("venue", "", "Venue"),
	}
}

// apply copies the flags that were set on the command line onto a.
func (f fieldFlags) apply(fs *flag.FlagSet, a *activity.Activity) int {
	n := 0
	fs.Visit(func(fl *flag.Flag) {
		n++
		switch fl.Name {
		case "title":
			a.Title = *f.title
		case "date":
			a.Date = *f.date
		case "description":
			a.Description = *f.description
		case "category":
			a.Category = *f.category
		case "city":
			a.City = *f.city
		case "venue":
			a.Venue = *f.venue
		}
	})
	return n
}

func runCreate(ctx context.Context, reg *registry.Registry, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fields := newFieldFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *fields.title == "" {
		return fmt.Errorf("create requires -title")
	}

	a := activity.New(*fields.title, *fields.date)
	fields.apply(fs, &a)
	if err := reg.Create(ctx, a); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created %s\n", a.ID)
	return nil
}

func runEdit(ctx context.Context, reg *registry.Registry, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("usage: edit ID [-title ...] [-date ...]")
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fields := newFieldFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	if err := reg.LoadOne(ctx, id); err != nil {
		return err
	}
	a, ok := reg.Get(id)
	if !ok {
		return fmt.Errorf("activity %s not found", id)
	}
	if fields.apply(fs, &a) == 0 {
		return fmt.Errorf("edit needs at least one field to change")
	}
	if err := reg.Update(ctx, a); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Updated %s\n", a.ID)
	return nil
}

func runDelete(ctx context.Context, reg *registry.Registry, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete ID")
	}
	if err := reg.Delete(ctx, args[0], cliControl); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %s\n", args[0])
	return nil
}

// clock returns the time of day of a, or "--:--" when its date has none.
func clock(a activity.Activity) string {
	t, ok := activity.ParseDate(a.Date)
	if !ok || !strings.Contains(a.Date, "T") {
		return "--:--"
	}
	return t.Format("15:04")
}

func summary(a activity.Activity) string {
	var b strings.Builder
	b.WriteString(a.Title)
	if a.Category != "" {
		fmt.Fprintf(&b, " (%s)", a.Category)
	}
	if where := place(a); where != "" {
		fmt.Fprintf(&b, " @ %s", where)
	}
	return b.String()
}

func place(a activity.Activity) string {
	switch {
	case a.Venue != "" && a.City != "":
		return a.Venue + ", " + a.City
	case a.Venue != "":
		return a.Venue
	default:
		return a.City
	}
}

func printActivity(w io.Writer, a activity.Activity) {
	rows := []struct{ label, value string }{
		{"ID", a.ID},
		{"Title", a.Title},
		{"Date", a.Date},
		{"Category", a.Category},
		{"Venue", a.Venue},
		{"City", a.City},
		{"Description", a.Description},
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(w, "%-12s %s\n", r.label+":", r.value)
	}
}
