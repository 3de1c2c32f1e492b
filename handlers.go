package main

// handlers.go this is our HTTP layer over the services

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"message":   "Portfolio API is running",
		"status":    "active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ---- auth ----

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var loginData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &loginData); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.auth.Login(r.Context(), loginData.Email, loginData.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"data":      res.Account,
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	acc, err := s.auth.Me(r.Context(), who)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, acc)
}

// ---- catalog resources ----

func listHandler[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeList(w, items)
	}
}

func getHandler[T any](get func(context.Context, string) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, rec)
	}
}

func createHandler[In, T any](create func(context.Context, Identity, In) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, _ := identityFrom(r.Context())
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		rec, err := create(r.Context(), who, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, rec)
	}
}

// updateHandler resolves the record and the caller's right to change it
// before the body is read, so a missing id is a 404 whatever the body holds.
func updateHandler[In, T any](
	check func(context.Context, Identity, string) error,
	update func(context.Context, Identity, string, In) (*T, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, _ := identityFrom(r.Context())
		id := chi.URLParam(r, "id")
		if err := check(r.Context(), who, id); err != nil {
			writeError(w, r, err)
			return
		}
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		rec, err := update(r.Context(), who, id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, rec)
	}
}

func deleteHandler(del func(context.Context, Identity, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, _ := identityFrom(r.Context())
		if err := del(r.Context(), who, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, struct{}{})
	}
}

// ---- contacts ----

func (s *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	var in ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := s.contacts.Submit(r.Context(), in, ContactMeta{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Thank you for contacting! We will get back to you soon.",
		"data":    receipt,
	})
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := s.contacts.List(r.Context(), q.Get("status"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pages := (res.Total + int64(res.Limit) - 1) / int64(res.Limit)
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"count":   len(res.Items),
		"data":    res.Items,
		"pagination": envelope{
			"total": res.Total,
			"page":  res.Page,
			"pages": pages,
			"limit": res.Limit,
		},
	})
}

func (s *Server) openContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) setContactStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.contacts.SetStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Status updated successfully", "data": c})
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Contact deleted successfully"})
}

func (s *Server) contactSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.contacts.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sum)
}

// ---- settings ----

func (s *Server) putSetting(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	var in SettingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	st, created, err := s.settings.Put(r.Context(), who, chi.URLParam(r, "key"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeData(w, status, st)
}

func (s *Server) deleteSetting(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	if err := s.settings.Delete(r.Context(), who, chi.URLParam(r, "key")); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, struct{}{})
}

// clientIP prefers the first X-Forwarded-For hop, as the site runs behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
