package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type mutationPolicy int

const (
	// ownerOrAdmin lets the record's owner or any admin mutate it.
	ownerOrAdmin mutationPolicy = iota
	adminOnly
)

func (p mutationPolicy) allows(who Identity, owner string) bool {
	if who.IsAdmin() {
		return true
	}
	return p == ownerOrAdmin && who.AccountID != "" && who.AccountID == owner
}

func newBase() Base {
	now := time.Now().UTC()
	return Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// catalog is the shared CRUD core behind the portfolio collections.
type catalog[T any] struct {
	resource string
	key      string
	repo     Repository[T]
	policy   mutationPolicy
	sort     []Sort
	cache    *listCache
	ownerOf  func(*T) string
}

func (c *catalog[T]) List(ctx context.Context) ([]T, error) {
	return cachedList(c.cache, c.key, func() ([]T, error) {
		return c.repo.List(ctx, ListOptions{Sort: c.sort})
	})
}

func (c *catalog[T]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := c.repo.Get(ctx, id)
	if errors.Is(err, errNoRecord) {
		return nil, notFound(c.resource)
	}
	return rec, err
}

// authorize loads the record and checks the caller may mutate it. Existence is
// checked first so a missing record is always a not-found.
func (c *catalog[T]) authorize(ctx context.Context, who Identity, id, action string) (*T, error) {
	rec, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.policy.allows(who, c.ownerOf(rec)) {
		return nil, forbidden(action, c.resource)
	}
	return rec, nil
}

// CanUpdate runs the same checks as an update without changing anything.
func (c *catalog[T]) CanUpdate(ctx context.Context, who Identity, id string) error {
	_, err := c.authorize(ctx, who, id, "update")
	return err
}

func (c *catalog[T]) insert(ctx context.Context, rec *T) error {
	if err := c.repo.Create(ctx, rec); err != nil {
		return err
	}
	c.cache.invalidate(c.key)
	return nil
}

// patch writes only the changed fields and returns the stored record.
func (c *catalog[T]) patch(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := update(ctx, c.repo, id, fields); err != nil {
			if errors.Is(err, errNoRecord) {
				return nil, notFound(c.resource)
			}
			return nil, err
		}
		c.cache.invalidate(c.key)
	}
	return c.Get(ctx, id)
}

func (c *catalog[T]) Delete(ctx context.Context, who Identity, id string) error {
	if _, err := c.authorize(ctx, who, id, "delete"); err != nil {
		return err
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errNoRecord) {
			return notFound(c.resource)
		}
		return err
	}
	c.cache.invalidate(c.key)
	return nil
}
