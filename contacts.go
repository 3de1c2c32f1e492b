package main

import (
	"context"
	"errors"
	"strings"
	"time"
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactMeta is captured from the request, never from the body.
type ContactMeta struct {
	IPAddress string
	UserAgent string
}

// ContactReceipt is the public view returned to the submitter.
type ContactReceipt struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type ContactSummary struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Read     int64 `json:"read"`
	Replied  int64 `json:"replied"`
	Archived int64 `json:"archived"`
}

type ContactPage struct {
	Items []ContactSubmission
	Total int64
	Page  int
	Limit int
}

func validateContact(c *ContactSubmission) error {
	var errs FieldErrors
	if errs.required("name", c.Name) {
		errs.maxLen("name", c.Name, 100)
	}
	if errs.required("email", c.Email) {
		errs.email("email", c.Email)
	}
	errs.maxLen("phone", c.Phone, 32)
	if errs.required("subject", c.Subject) {
		errs.maxLen("subject", c.Subject, 200)
	}
	if errs.required("message", c.Message) {
		errs.minLen("message", c.Message, 10)
		errs.maxLen("message", c.Message, 5000)
	}
	return errs.orNil()
}

type ContactService struct {
	repo   Repository[ContactSubmission]
	notify *notifier
}

func NewContactService(repo Repository[ContactSubmission], n *notifier) *ContactService {
	return &ContactService{repo: repo, notify: n}
}

// Submit stores the submission as new and only then hands it to the notifier.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, meta ContactMeta) (*ContactReceipt, error) {
	c := ContactSubmission{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if err := validateContact(&c); err != nil {
		return nil, err
	}

	c.Base = newBase()
	c.IPAddress = meta.IPAddress
	c.UserAgent = meta.UserAgent
	c.Status = StatusNew
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	contactSubmissionsTotal.Inc()

	if s.notify != nil {
		s.notify.contactReceived(&c)
	}
	return &ContactReceipt{ID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt}, nil
}

// List returns newest first. An empty status lists every submission.
func (s *ContactService) List(ctx context.Context, status string, page, limit int) (*ContactPage, error) {
	var filter Filter
	if status != "" {
		st, ok := parseContactStatus(status)
		if !ok {
			return nil, badRequest("Invalid status value")
		}
		filter = Filter{"status": st}
	}
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = 10
	case limit > 100:
		limit = 100
	}

	items, err := s.repo.List(ctx, ListOptions{
		Filter: filter,
		Sort:   []Sort{{Field: "created_at", Desc: true}},
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ContactPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ContactService) get(ctx context.Context, id string) (*ContactSubmission, error) {
	c, err := s.repo.Get(ctx, id)
	if errors.Is(err, errNoRecord) {
		return nil, notFound("Contact")
	}
	return c, err
}

// Open returns a submission for viewing and marks it read if it was new.
// The transition is conditional on the stored status so it happens once.
func (s *ContactService) Open(ctx context.Context, id string) (*ContactSubmission, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusNew {
		return c, nil
	}
	now := time.Now().UTC()
	changed, err := s.repo.UpdateIf(ctx, id, Filter{"status": StatusNew},
		map[string]any{"status": StatusRead, "updated_at": now})
	if err != nil {
		return nil, err
	}
	if changed {
		c.Status = StatusRead
		c.UpdatedAt = now
		return c, nil
	}
	return s.get(ctx, id)
}

// SetStatus moves a submission to one of the four states. The value is checked
// before the record is looked up; archived is terminal.
func (s *ContactService) SetStatus(ctx context.Context, id, status string) (*ContactSubmission, error) {
	st, ok := parseContactStatus(status)
	if !ok {
		return nil, badRequest("Invalid status value")
	}
	cur, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status == st {
		return cur, nil
	}
	if cur.Status == StatusArchived {
		return nil, badRequest("Archived contacts cannot change status")
	}
	err = update(ctx, s.repo, id, map[string]any{"status": st, "updated_at": time.Now().UTC()})
	if errors.Is(err, errNoRecord) {
		return nil, notFound("Contact")
	}
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, errNoRecord) {
		return notFound("Contact")
	}
	return err
}

// Summary counts each state; the total is their sum so the two always agree.
func (s *ContactService) Summary(ctx context.Context) (*ContactSummary, error) {
	counts := make(map[ContactStatus]int64, len(contactStatuses))
	for _, st := range contactStatuses {
		n, err := s.repo.Count(ctx, Filter{"status": st})
		if err != nil {
			return nil, err
		}
		counts[st] = n
	}
	sum := &ContactSummary{
		New:      counts[StatusNew],
		Read:     counts[StatusRead],
		Replied:  counts[StatusReplied],
		Archived: counts[StatusArchived],
	}
	sum.Total = sum.New + sum.Read + sum.Replied + sum.Archived
	return sum, nil
}
