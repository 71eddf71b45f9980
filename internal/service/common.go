package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"brass-inventory/internal/lock"
	"brass-inventory/internal/ws"

	"github.com/google/uuid"
)

// Actor is the authenticated caller, taken from the access token.
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) auditID() string {
	if a.ID == "" {
		return "system"
	}
	return a.ID
}

func (a Actor) displayName() string {
	if a.Name == "" {
		return "Someone"
	}
	return a.Name
}

func (a Actor) eventUser() *ws.EventUser {
	return &ws.EventUser{ID: a.ID, Name: a.Name, Email: a.Email}
}

// Notifier receives events once the transaction that produced them has committed.
type Notifier interface {
	Publish(evt ws.Event)
}

func publish(n Notifier, events ...ws.Event) {
	if n == nil {
		return
	}
	for _, evt := range events {
		n.Publish(evt)
	}
}

func productKey(id uuid.UUID) string { return "product:" + id.String() }

// lockProducts serializes stock mutations per product across requests.
func lockProducts(ctx context.Context, l lock.Locker, ids ...uuid.UUID) (func(), error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	return lockKeys(ctx, l, keys...)
}

func lockKeys(ctx context.Context, l lock.Locker, keys ...string) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	release, err := l.Acquire(ctx, keys...)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return nil, ErrBusy
		}
		return nil, err
	}
	return release, nil
}

// Date is a request date that accepts "2006-01-02" as well as RFC 3339.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	str := strings.Trim(string(b), `"`)
	if str == "" || str == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, str); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", str)
}

// documentDate defaults to now and is stored in UTC.
func documentDate(d *Date) time.Time {
	if d == nil || d.IsZero() {
		return time.Now().UTC()
	}
	return d.UTC()
}

// optionalDate returns nil for an absent or empty date.
func optionalDate(d *Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.UTC()
	return &t
}

// Patch is a partial update body keyed by JSON field name.
type Patch map[string]json.RawMessage

// only rejects the patch when it names a field outside allowed.
func (p Patch) only(allowed ...string) error {
	if len(p) == 0 {
		return invalid("nothing to update")
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		permitted := false
		for _, a := range allowed {
			if k == a {
				permitted = true
				break
			}
		}
		if !permitted {
			return invalid("field %q cannot be changed after creation", k)
		}
	}
	return nil
}

// decode unmarshals p[key] into dst and reports whether the key was present.
func (p Patch) decode(key string, dst interface{}) (bool, error) {
	raw, ok := p[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, invalid("%s: %v", key, err)
	}
	return true, nil
}
