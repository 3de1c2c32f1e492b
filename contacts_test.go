package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContact() ContactInput {
	return ContactInput{
		Name:    "A",
		Email:   " A@B.com ",
		Subject: "Hi",
		Message: "0123456789",
	}
}

func newContactService(t *testing.T, m Mailer) (*ContactService, *notifier, *Store) {
	t.Helper()
	store := newTestStore(t)
	n := newNotifier(m, "owner@example.com", discardLogger())
	return NewContactService(store.Contacts, n), n, store
}

func TestContactService_SubmitStoresNewAndNotifiesOnce(t *testing.T) {
	mailer := &fakeMailer{}
	svc, n, store := newContactService(t, mailer)
	ctx := context.Background()

	receipt, err := svc.Submit(ctx, validContact(), ContactMeta{IPAddress: "10.0.0.1", UserAgent: "curl/8"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", receipt.Email)
	n.Wait()

	stored, err := store.Contacts.Get(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, stored.Status)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
	assert.Equal(t, "curl/8", stored.UserAgent)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "owner@example.com", sent[0].To)
	assert.Equal(t, "a@b.com", sent[0].ReplyTo)
	assert.Equal(t, "New Contact Form Submission: Hi", sent[0].Subject)
}

func TestContactService_NotificationFailureDoesNotFailSubmit(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc, n, store := newContactService(t, mailer)
	ctx := context.Background()

	receipt, err := svc.Submit(ctx, validContact(), ContactMeta{})
	require.NoError(t, err)
	n.Wait()

	assert.Len(t, mailer.Sent(), 1)
	_, err = store.Contacts.Get(ctx, receipt.ID)
	assert.NoError(t, err, "submission is kept when the email fails")
}

func TestContactService_InvalidSubmissionIsNotStored(t *testing.T) {
	mailer := &fakeMailer{}
	svc, n, store := newContactService(t, mailer)
	ctx := context.Background()

	in := validContact()
	in.Message = "short"
	_, err := svc.Submit(ctx, in, ContactMeta{})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	n.Wait()

	count, err := store.Contacts.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, mailer.Sent())
}

func TestContactService_OpenMarksReadOnce(t *testing.T) {
	svc, n, _ := newContactService(t, &fakeMailer{})
	ctx := context.Background()
	receipt, err := svc.Submit(ctx, validContact(), ContactMeta{})
	require.NoError(t, err)
	n.Wait()

	c, err := svc.Open(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRead, c.Status)

	_, err = svc.SetStatus(ctx, receipt.ID, "replied")
	require.NoError(t, err)

	c, err = svc.Open(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReplied, c.Status, "opening again does not reset the status")

	_, err = svc.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactService_SetStatus(t *testing.T) {
	svc, n, store := newContactService(t, &fakeMailer{})
	ctx := context.Background()
	receipt, err := svc.Submit(ctx, validContact(), ContactMeta{})
	require.NoError(t, err)
	n.Wait()

	_, err = svc.SetStatus(ctx, receipt.ID, "bogus")
	assert.ErrorIs(t, err, ErrBadRequest)
	stored, err := store.Contacts.Get(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, stored.Status)

	_, err = svc.SetStatus(ctx, "missing", "read")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.SetStatus(ctx, "missing", "bogus")
	assert.ErrorIs(t, err, ErrBadRequest, "the value is checked before the record")

	c, err := svc.SetStatus(ctx, receipt.ID, "replied")
	require.NoError(t, err)
	assert.Equal(t, StatusReplied, c.Status)

	c, err = svc.SetStatus(ctx, receipt.ID, "archived")
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, c.Status)

	_, err = svc.SetStatus(ctx, receipt.ID, "new")
	assert.ErrorIs(t, err, ErrBadRequest)

	c, err = svc.SetStatus(ctx, receipt.ID, "archived")
	require.NoError(t, err, "setting the same status is a no-op")
	assert.Equal(t, StatusArchived, c.Status)
}

func TestContactService_SummaryAndList(t *testing.T) {
	svc, n, _ := newContactService(t, &fakeMailer{})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		in := validContact()
		in.Subject = fmt.Sprintf("Subject %d", i)
		r, err := svc.Submit(ctx, in, ContactMeta{})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	n.Wait()

	_, err := svc.Open(ctx, ids[0])
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, ids[1], "replied")
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, ids[2], "archived")
	require.NoError(t, err)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContactSummary{Total: 5, New: 2, Read: 1, Replied: 1, Archived: 1}, *sum)
	assert.Equal(t, sum.Total, sum.New+sum.Read+sum.Replied+sum.Archived)

	page, err := svc.List(ctx, "new", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Subject 4", page.Items[0].Subject, "newest first")

	page, err = svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page)

	page, err = svc.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)

	page, err = svc.List(ctx, "", 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Len(t, page.Items, 5)

	_, err = svc.List(ctx, "bogus", 1, 10)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestContactService_Delete(t *testing.T) {
	svc, n, _ := newContactService(t, &fakeMailer{})
	ctx := context.Background()
	r, err := svc.Submit(ctx, validContact(), ContactMeta{})
	require.NoError(t, err)
	n.Wait()

	require.NoError(t, svc.Delete(ctx, r.ID))
	assert.ErrorIs(t, svc.Delete(ctx, r.ID), ErrNotFound)
}

func TestNotifier_SkipsWithoutMailbox(t *testing.T) {
	mailer := &fakeMailer{}
	n := newNotifier(mailer, "", discardLogger())
	n.contactReceived(&ContactSubmission{Base: Base{ID: "c1"}, Subject: "Hi"})
	n.Wait()
	assert.Empty(t, mailer.Sent())
}
