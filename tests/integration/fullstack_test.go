// Integration tests running the coordinator against a real server:
// HTTP client adapter, REST handlers, and SQLite store in one process.
package integration

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/FrancescoXX/userstack/cmd/userd/handlers"
	"github.com/FrancescoXX/userstack/internal/app"
	"github.com/FrancescoXX/userstack/internal/client"
	"github.com/FrancescoXX/userstack/internal/db"
	"github.com/FrancescoXX/userstack/internal/models"
	_ "modernc.org/sqlite"
)

// setupStack brings up a store server over an in-memory database and
// returns a coordinator connected to it through the HTTP adapter.
func setupStack(t *testing.T) (*app.Coordinator, *client.Client) {
	testDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	migrator := db.NewMigrator(testDB)
	if err := migrator.Initialize(); err != nil {
		t.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo := db.NewRepository(testDB)
	server := httptest.NewServer(handlers.NewRouter(repo, nil, nil))

	storeClient := client.New(server.URL)
	coordinator := app.New(storeClient)

	t.Cleanup(func() {
		coordinator.Close()
		server.Close()
		repo.Close()
		testDB.Close()
	})

	return coordinator, storeClient
}

func createUser(t *testing.T, c *app.Coordinator, name, email string) {
	t.Helper()
	c.UpdateDraft(app.FieldName, name)
	c.UpdateDraft(app.FieldEmail, email)
	<-c.SubmitCreate(context.Background())
}

func TestInsertAndFetchRoundTrip(t *testing.T) {
	coordinator, _ := setupStack(t)

	createUser(t, coordinator, "AAA", "aaa@mail.com")

	state := coordinator.State()
	if state.Status != app.StatusCreated {
		t.Errorf("Expected %q, got %q", app.StatusCreated, state.Status)
	}
	if len(state.Users) != 1 {
		t.Fatalf("Expected 1 user, got %d", len(state.Users))
	}
	user := state.Users[0]
	if user.Name != "AAA" || user.Email != "aaa@mail.com" {
		t.Errorf("Unexpected user: %+v", user)
	}
	if user.ID == nil {
		t.Error("Persisted user should have a non-null id")
	}
	if state.Buffer != (app.EditBuffer{}) {
		t.Errorf("Buffer should be cleared, got %+v", state.Buffer)
	}
}

func TestInsertThreeUsersSequentialIDs(t *testing.T) {
	coordinator, _ := setupStack(t)

	createUser(t, coordinator, "AAA", "aaa@mail.com")
	createUser(t, coordinator, "BBB", "bbb@mail.com")
	createUser(t, coordinator, "CCC", "ccc@mail.com")

	state := coordinator.State()
	if len(state.Users) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(state.Users))
	}

	seen := make(map[int64]bool)
	var last int64
	for i, u := range state.Users {
		if u.ID == nil {
			t.Fatalf("User %d has null id", i)
		}
		if seen[*u.ID] {
			t.Errorf("Duplicate id %d", *u.ID)
		}
		seen[*u.ID] = true
		if *u.ID <= last {
			t.Errorf("Ids not assigned in insertion order: %d after %d", *u.ID, last)
		}
		last = *u.ID
	}
}

func TestReplaceUpdatesOnlyTarget(t *testing.T) {
	coordinator, _ := setupStack(t)

	createUser(t, coordinator, "AAA", "aaa@mail.com")
	createUser(t, coordinator, "BBB", "bbb@mail.com")
	createUser(t, coordinator, "CCC", "ccc@mail.com")

	coordinator.BeginEdit(2)
	coordinator.UpdateDraft(app.FieldName, "Francesco")
	coordinator.UpdateDraft(app.FieldEmail, "francesco@mail")
	<-coordinator.SubmitUpdate(context.Background())

	state := coordinator.State()
	if state.Status != app.StatusUpdated {
		t.Errorf("Expected %q, got %q", app.StatusUpdated, state.Status)
	}
	if len(state.Users) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(state.Users))
	}
	if state.Users[1].Name != "Francesco" || state.Users[1].Email != "francesco@mail" {
		t.Errorf("Replace not applied: %+v", state.Users[1])
	}
	if *state.Users[0].ID != 1 || *state.Users[2].ID != 3 {
		t.Error("Other ids changed by replace")
	}
	if state.Users[0].Name != "AAA" || state.Users[2].Name != "CCC" {
		t.Error("Other records changed by replace")
	}
}

func TestRemoveAndDoubleRemove(t *testing.T) {
	coordinator, _ := setupStack(t)

	createUser(t, coordinator, "AAA", "aaa@mail.com")
	createUser(t, coordinator, "BBB", "bbb@mail.com")

	<-coordinator.SubmitDelete(context.Background(), 1)

	state := coordinator.State()
	if state.Status != app.StatusDeleted {
		t.Errorf("Expected %q, got %q", app.StatusDeleted, state.Status)
	}
	if len(state.Users) != 1 {
		t.Fatalf("Expected 1 user after delete, got %d", len(state.Users))
	}
	if *state.Users[0].ID != 2 {
		t.Errorf("Wrong user removed, remaining id %d", *state.Users[0].ID)
	}

	// Removing an already-removed id fails; the snapshot keeps its value
	<-coordinator.SubmitDelete(context.Background(), 1)

	state = coordinator.State()
	if state.Status != app.StatusDeleteFailed {
		t.Errorf("Expected %q, got %q", app.StatusDeleteFailed, state.Status)
	}
	if len(state.Users) != 1 {
		t.Errorf("Snapshot should be unchanged after failed delete, got %d users", len(state.Users))
	}
}

func TestClientSeesServerAssignedList(t *testing.T) {
	coordinator, storeClient := setupStack(t)

	// Writes through the raw adapter are visible to the coordinator on
	// its next fetch, the store being the single source of truth.
	users, err := storeClient.Insert(context.Background(), models.UserParams{
		Name:  "direct",
		Email: "direct@mail.com",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("Insert response should carry the full list, got %d entries", len(users))
	}

	<-coordinator.FetchList(context.Background())

	state := coordinator.State()
	if len(state.Users) != 1 || state.Users[0].Name != "direct" {
		t.Errorf("Coordinator snapshot out of sync: %+v", state.Users)
	}
}
