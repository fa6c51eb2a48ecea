package packlist_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/packlist"
	"github.com/aretw0/packlist/pkg/session"
)

// Example_basic signs up, creates a list and adds an item, then reads the
// confirmed state back from the session.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "packlist-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	app, err := packlist.New(tmpDir, packlist.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatal(err)
	}
	if err := app.Session.SignUp(ctx, "gopher@example.com", "secret1"); err != nil {
		log.Fatal(err)
	}
	if _, err := app.Session.WaitFor(ctx, func(st session.State) bool {
		return st.SignedIn() && !st.LoadingLists
	}); err != nil {
		log.Fatal(err)
	}

	if _, err := app.Session.CreateList(ctx, "Camping"); err != nil {
		log.Fatal(err)
	}
	if _, err := app.Session.WaitFor(ctx, func(st session.State) bool {
		_, ok := st.CurrentList()
		return ok
	}); err != nil {
		log.Fatal(err)
	}
	if err := app.Session.AddItem(ctx, "Tent"); err != nil {
		log.Fatal(err)
	}

	st, err := app.Session.WaitFor(ctx, func(st session.State) bool {
		l, ok := st.CurrentList()
		return ok && len(l.Items) == 1
	})
	if err != nil {
		log.Fatal(err)
	}
	l, _ := st.CurrentList()
	fmt.Printf("%s: %s\n", l.Name, l.Items[0].NodeName())
	// Output:
	// Camping: Tent
}

// ExampleImportAsCategory merges one list into another as a new category.
func ExampleImportAsCategory() {
	camping := packlist.List{
		Name: "Camping",
		Items: []packlist.Node{
			packlist.Item{ID: "1", Name: "Tent"},
			packlist.Category{ID: "2", Name: "Kitchen", Items: []packlist.Item{
				{ID: "3", Name: "Stove", Checked: true},
			}},
		},
	}
	trip := packlist.List{
		Name:  "Trip",
		Items: []packlist.Node{packlist.Item{ID: "9", Name: "Passport"}},
	}

	cat, items := packlist.ImportAsCategory(camping, trip)

	fmt.Println(len(items), cat.Name)
	for _, it := range cat.Items {
		fmt.Println(it.Name, it.Checked)
	}
	// Output:
	// 2 Camping
	// Tent false
	// Stove true
}
