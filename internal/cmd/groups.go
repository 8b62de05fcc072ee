package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/anonto42/yatube/internal/cmd/flags"
	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/repositories"
)

func groupsCmd() *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "Manage post groups",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print every group",
				Action: listGroups,
			},
			{
				Name:   "create",
				Usage:  "Create a group",
				Flags:  []cli.Flag{flags.Title(), flags.Slug(), flags.Description()},
				Action: createGroup,
			},
			{
				Name:      "delete",
				Usage:     "Delete a group, keeping its posts",
				ArgsUsage: "<slug>",
				Action:    deleteGroup,
			},
		},
	}
}

func listGroups(ctx context.Context, c *cli.Command) error {
	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.close()

	groups, err := e.blog().Groups(ctx)
	if err != nil {
		return err
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Slug < groups[j].Slug })
	for _, group := range groups {
		fmt.Fprintf(c.Root().Writer, "%s\t%s\n", group.Slug, group.Title)
	}
	return nil
}

func createGroup(ctx context.Context, c *cli.Command) error {
	form := forms.NewGroupForm()
	form.Title = c.String("title")
	form.Slug = c.String("slug")
	form.Description = c.String("description")
	if !form.Validate(forms.NewValidator()) {
		return formError(form.Errors)
	}

	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.close()

	group, err := e.blog().CreateGroup(ctx, form)
	if errors.Is(err, repositories.ErrDuplicateSlug) {
		form.DuplicateSlug()
		return formError(form.Errors)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Root().Writer, "Created group %s\n", group.Slug)
	return nil
}

func deleteGroup(ctx context.Context, c *cli.Command) error {
	slug := c.Args().First()
	if slug == "" {
		return cli.Exit("a group slug is required", 2)
	}

	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.blog().DeleteGroup(ctx, slug); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return cli.Exit(fmt.Sprintf("no group with slug %q", slug), 1)
		}
		return err
	}
	fmt.Fprintf(c.Root().Writer, "Deleted group %s\n", slug)
	return nil
}

// formError flattens form errors into one message
func formError(errs forms.Errors) error {
	var joined []error
	for _, name := range errs.Names() {
		for _, msg := range errs[name] {
			joined = append(joined, fmt.Errorf("%s: %s", name, msg))
		}
	}
	return errors.Join(joined...)
}
