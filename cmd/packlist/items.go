package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/packlist"
	"github.com/aretw0/packlist/pkg/session"
)

// editList selects the list named by ref and runs fn against it.
func (c *cli) editList(cmd *cobra.Command, ref string, fn func(ctx context.Context, app *packlist.App, l packlist.List) error) error {
	ctx, cancel := c.context(cmd)
	defer cancel()

	return c.signedIn(ctx, func(app *packlist.App, st session.State) error {
		l, err := resolveList(st, ref)
		if err != nil {
			return err
		}
		app.Session.SelectList(l.ID)
		return fn(ctx, app, l)
	})
}

// waitForNewNode waits until the store confirms a node that was not part of
// before, inside categoryID when it is set.
func waitForNewNode(ctx context.Context, app *packlist.App, listID, categoryID string, before []packlist.Node) (packlist.Node, error) {
	ids := func(nodes []packlist.Node) []string {
		out := make([]string, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, n.NodeID())
		}
		return out
	}
	scope := func(items []packlist.Node) []packlist.Node {
		if categoryID == "" {
			return items
		}
		for _, n := range items {
			if c, ok := n.(packlist.Category); ok && c.ID == categoryID {
				out := make([]packlist.Node, 0, len(c.Items))
				for _, it := range c.Items {
					out = append(out, it)
				}
				return out
			}
		}
		return nil
	}

	known := ids(scope(before))
	var added packlist.Node
	_, err := app.Session.WaitFor(ctx, func(st session.State) bool {
		l, ok := st.FindList(listID)
		if !ok {
			return false
		}
		for _, n := range scope(l.Items) {
			if !slices.Contains(known, n.NodeID()) {
				added = n
				return true
			}
		}
		return false
	})
	return added, err
}

func newAddCmd(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add LIST NAME",
		Short: "Add an item to a list or to one of its categories",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := joinArgs(args[1:])
			if name == "" {
				return fmt.Errorf("item name cannot be empty")
			}
			return c.editList(cmd, args[0], func(ctx context.Context, app *packlist.App, l packlist.List) error {
				var err error
				catID := ""
				if category != "" {
					cat, rerr := resolveCategory(l.Items, category)
					if rerr != nil {
						return rerr
					}
					catID = cat.ID
					err = app.Session.AddItemToCategory(ctx, catID, name)
				} else {
					err = app.Session.AddItem(ctx, name)
				}
				if err != nil {
					return sessionError(app, err)
				}

				n, err := waitForNewNode(ctx, app, l.ID, catID, l.Items)
				if err != nil {
					return fmt.Errorf("waiting for confirmation: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s) to %s\n", n.NodeName(), n.NodeID(), l.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	return cmd
}

func newCategoryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "category LIST NAME",
		Short: "Add a category to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := joinArgs(args[1:])
			if name == "" {
				return fmt.Errorf("category name cannot be empty")
			}
			return c.editList(cmd, args[0], func(ctx context.Context, app *packlist.App, l packlist.List) error {
				if err := app.Session.AddCategory(ctx, name); err != nil {
					return sessionError(app, err)
				}
				n, err := waitForNewNode(ctx, app, l.ID, "", l.Items)
				if err != nil {
					return fmt.Errorf("waiting for confirmation: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added category %q (%s) to %s\n", n.NodeName(), n.NodeID(), l.Name)
				return nil
			})
		},
	}
}

func newCheckCmd(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "check LIST NODE",
		Short: "Toggle the checked flag of an item or category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editList(cmd, args[0], func(ctx context.Context, app *packlist.App, l packlist.List) error {
				nodeID, catID, err := resolveNode(l.Items, args[1], category)
				if err != nil {
					return err
				}
				if err := app.Session.ToggleCheck(ctx, nodeID, catID); err != nil {
					return sessionError(app, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Toggled %s\n", args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name holding the item")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "remove LIST NODE",
		Aliases: []string{"rm"},
		Short:   "Remove an item or a category",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editList(cmd, args[0], func(ctx context.Context, app *packlist.App, l packlist.List) error {
				nodeID, catID, err := resolveNode(l.Items, args[1], category)
				if err != nil {
					return err
				}
				if err := app.Session.DeleteNode(ctx, nodeID, catID); err != nil {
					return sessionError(app, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name holding the item")
	return cmd
}

func newCollapseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "collapse LIST CATEGORY",
		Short: "Toggle whether a category shows its items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editList(cmd, args[0], func(ctx context.Context, app *packlist.App, l packlist.List) error {
				cat, err := resolveCategory(l.Items, args[1])
				if err != nil {
					return err
				}
				if err := app.Session.ToggleCollapse(ctx, cat.ID); err != nil {
					return sessionError(app, err)
				}
				state := "collapsed"
				if cat.IsCollapsed {
					state = "expanded"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Category %q %s\n", cat.Name, state)
				return nil
			})
		},
	}
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import TARGET SOURCE",
		Short: "Copy SOURCE into TARGET as a new category",
		Long: `Copy every item of SOURCE into a new category of TARGET named after SOURCE.
Categories of SOURCE are flattened into plain items. SOURCE is not modified.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editList(cmd, args[0], func(ctx context.Context, app *packlist.App, target packlist.List) error {
				source, err := resolveList(app.Session.Snapshot(), args[1])
				if err != nil {
					return err
				}
				if err := app.Session.ImportList(ctx, source.ID); err != nil {
					return sessionError(app, err)
				}
				n, err := waitForNewNode(ctx, app, target.ID, "", target.Items)
				if err != nil {
					return fmt.Errorf("waiting for confirmation: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s as category %s\n", source.Name, target.Name, n.NodeID())
				return nil
			})
		},
	}
}
