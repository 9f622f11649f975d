// Package app implements the client-side list-edit coordinator.
//
// The coordinator owns three pieces of state: the in-progress edit buffer,
// a status message, and the last-fetched list of users. All mutations run
// on a single goroutine; network calls are dispatched in the background and
// their completions are applied back on that same goroutine. In-flight
// calls have no ordering relative to each other, so two overlapping fetches
// resolve in whichever order the responses arrive.
package app

import (
	"context"
	"sync"

	"github.com/FrancescoXX/userstack/internal/logging"
	"github.com/FrancescoXX/userstack/internal/models"
)

// RecordStore is the network-addressable CRUD endpoint the coordinator
// mediates access to. client.Client implements it.
type RecordStore interface {
	List(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, params models.UserParams) ([]models.User, error)
	Replace(ctx context.Context, id int64, params models.UserParams) ([]models.User, error)
	Remove(ctx context.Context, id int64) error
}

// Field selects a draft field for UpdateDraft.
type Field int

const (
	FieldName Field = iota
	FieldEmail
)

// EditBuffer holds the form's current draft. A nil EditingID means the
// next submit creates a new user; otherwise it replaces that user.
type EditBuffer struct {
	NameDraft  string
	EmailDraft string
	EditingID  *int64
}

// State is a consistent copy of the coordinator's three state cells.
type State struct {
	Buffer EditBuffer
	Status string
	Users  []models.User
}

// Status messages. Every failure cause is folded into the one fixed string
// for its operation; the underlying cause goes to the log only.
const (
	StatusFetchFailed  = "Failed to fetch users"
	StatusCreated      = "User created successfully"
	StatusCreateFailed = "Failed to create user"
	StatusUpdated      = "User updated successfully"
	StatusUpdateFailed = "Failed to update user"
	StatusDeleted      = "User deleted successfully"
	StatusDeleteFailed = "Failed to delete user"
)

// Coordinator mediates between user input events and the record store.
type Coordinator struct {
	store RecordStore

	ops       chan func()
	quit      chan struct{}
	closeOnce sync.Once

	// Owned by the loop goroutine; never touched elsewhere.
	buffer EditBuffer
	status string
	users  []models.User
}

// New creates a Coordinator and starts its state loop.
func New(store RecordStore) *Coordinator {
	c := &Coordinator{
		store: store,
		ops:   make(chan func()),
		quit:  make(chan struct{}),
	}
	go c.loop()
	return c
}

// Close stops the state loop. Operations posted after Close are discarded
// and their done channels never close.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
}

func (c *Coordinator) loop() {
	for {
		select {
		case f := <-c.ops:
			f()
		case <-c.quit:
			return
		}
	}
}

// post schedules f on the state loop. Reports whether it was accepted.
func (c *Coordinator) post(f func()) bool {
	select {
	case c.ops <- f:
		return true
	case <-c.quit:
		return false
	}
}

// State returns a copy of the three state cells, read on the state loop so
// it never observes a half-applied mutation.
func (c *Coordinator) State() State {
	reply := make(chan State, 1)
	ok := c.post(func() {
		users := make([]models.User, len(c.users))
		copy(users, c.users)

		buffer := c.buffer
		if c.buffer.EditingID != nil {
			id := *c.buffer.EditingID
			buffer.EditingID = &id
		}

		reply <- State{Buffer: buffer, Status: c.status, Users: users}
	})
	if !ok {
		return State{}
	}
	select {
	case s := <-reply:
		return s
	case <-c.quit:
		return State{}
	}
}

// FetchList refreshes the list snapshot from the store. On success the
// snapshot is replaced wholesale and the status message is untouched; on
// any failure the status reports the fixed fetch error and the snapshot
// keeps its previous value. The returned channel closes once the response
// has been applied.
func (c *Coordinator) FetchList(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	c.post(func() { c.startFetch(ctx, done) })
	return done
}

// startFetch dispatches a list request. Must run on the state loop.
func (c *Coordinator) startFetch(ctx context.Context, done chan struct{}) {
	go func() {
		users, err := c.store.List(ctx)
		c.post(func() {
			defer close(done)
			if err != nil {
				logging.Error("list fetch failed", err, map[string]interface{}{"op": "fetch-list"})
				c.status = StatusFetchFailed
				return
			}
			c.users = users
		})
	}()
}

// SubmitCreate sends the current drafts as a new user. The edit buffer is
// cleared regardless of outcome; on success the list is refreshed. The
// returned channel closes after the full effect, including any triggered
// refresh, has been applied.
func (c *Coordinator) SubmitCreate(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	c.post(func() {
		params := models.UserParams{Name: c.buffer.NameDraft, Email: c.buffer.EmailDraft}
		go func() {
			_, err := c.store.Insert(ctx, params)
			c.post(func() {
				if err != nil {
					logging.Error("create failed", err, map[string]interface{}{"op": "submit-create"})
					c.status = StatusCreateFailed
					c.buffer = EditBuffer{}
					close(done)
					return
				}
				c.status = StatusCreated
				refreshed := make(chan struct{})
				c.startFetch(ctx, refreshed)
				c.buffer = EditBuffer{}
				go func() {
					<-refreshed
					close(done)
				}()
			})
		}()
	})
	return done
}

// SubmitUpdate replaces the user being edited with the current drafts.
// When nothing is being edited this is a no-op: no request is sent and no
// state changes. Otherwise the buffer clears regardless of outcome and a
// successful replace triggers a refresh.
func (c *Coordinator) SubmitUpdate(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	c.post(func() {
		if c.buffer.EditingID == nil {
			close(done)
			return
		}
		id := *c.buffer.EditingID
		params := models.UserParams{Name: c.buffer.NameDraft, Email: c.buffer.EmailDraft}
		go func() {
			_, err := c.store.Replace(ctx, id, params)
			c.post(func() {
				if err != nil {
					logging.Error("update failed", err, map[string]interface{}{"op": "submit-update", "id": id})
					c.status = StatusUpdateFailed
					c.buffer = EditBuffer{}
					close(done)
					return
				}
				c.status = StatusUpdated
				refreshed := make(chan struct{})
				c.startFetch(ctx, refreshed)
				c.buffer = EditBuffer{}
				go func() {
					<-refreshed
					close(done)
				}()
			})
		}()
	})
	return done
}

// SubmitDelete removes user id. The edit buffer is never touched, even
// when the deleted user is the one being edited.
func (c *Coordinator) SubmitDelete(ctx context.Context, id int64) <-chan struct{} {
	done := make(chan struct{})
	c.post(func() {
		go func() {
			err := c.store.Remove(ctx, id)
			c.post(func() {
				if err != nil {
					logging.Error("delete failed", err, map[string]interface{}{"op": "submit-delete", "id": id})
					c.status = StatusDeleteFailed
					close(done)
					return
				}
				c.status = StatusDeleted
				refreshed := make(chan struct{})
				c.startFetch(ctx, refreshed)
				go func() {
					<-refreshed
					close(done)
				}()
			})
		}()
	})
	return done
}

// BeginEdit copies user id's fields into the edit buffer. When id is not
// in the current snapshot this is a silent no-op. There is no cancel-edit
// transition; only a submit returns the buffer to create mode.
func (c *Coordinator) BeginEdit(id int64) {
	c.post(func() {
		for _, user := range c.users {
			if user.ID != nil && *user.ID == id {
				editing := id
				c.buffer = EditBuffer{
					NameDraft:  user.Name,
					EmailDraft: user.Email,
					EditingID:  &editing,
				}
				return
			}
		}
	})
}

// UpdateDraft mutates one draft field. Local only, never touches the store.
func (c *Coordinator) UpdateDraft(field Field, value string) {
	c.post(func() {
		switch field {
		case FieldName:
			c.buffer.NameDraft = value
		case FieldEmail:
			c.buffer.EmailDraft = value
		}
	})
}
