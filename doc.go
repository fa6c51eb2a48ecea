// Package packlist is the composition root of the packing-list manager.
//
// It wires a document store (filesystem, SQLite or in-memory), a local
// identity provider and the list store into a session that front-ends
// observe and drive.
//
// A packing list is a tree at most two levels deep: top-level items and
// categories ("sublists"), where categories hold plain items only. Every
// edit replaces the whole tree of a list, and every change in the store is
// pushed back to the session as a fresh snapshot of the user's lists.
//
// Usage:
//
//	app, err := packlist.New("./trip",
//		packlist.WithAdapter("sqlite"),
//		packlist.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	if err := app.Start(ctx); err != nil {
//		return err
//	}
//	_ = app.Session.SignIn(ctx, "ana@example.com", "secret1")
package packlist
