// Package testutil provides an in-memory fake of the Brokemate backend for tests.
//
// The fake follows the backend's REST contract closely enough to exercise the session
// and expense layers end to end: OAuth2 password login, bearer validation with the
// real "Could not validate credentials" answer, per-user expense lists sorted by date
// and the red/green flag encoding.
//
// Example:
//
//	backend := testutil.NewBackend(t)
//	backend.AddUser("user@example.com", "password123")
//	client, _ := api.NewClient(api.Config{BaseURL: backend.URL()})
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/brokemate/internal/model"
	"github.com/shopspring/decimal"
)

// CredentialDetail is the detail the backend sends for a rejected token.
const CredentialDetail = "Could not validate credentials"

// Failure is a canned error answer for the next request to a path.
type Failure struct {
	Detail string
	Raw    string
	Status int
}

// Backend is a fake backend served over httptest.
type Backend struct {
	server    *httptest.Server
	users     map[string]string
	tokens    map[string]string
	expenses  map[string][]model.Expense
	failures  map[string]Failure
	hits      map[string]int
	auth      []string
	analysis  string
	mu        sync.Mutex
	nextToken int
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		users:    make(map[string]string),
		tokens:   make(map[string]string),
		expenses: make(map[string][]model.Expense),
		failures: make(map[string]Failure),
		hits:     make(map[string]int),
		analysis: "Hello! Food is your highest spending category.",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", b.handleToken)
	mux.HandleFunc("POST /register", b.handleRegister)
	mux.HandleFunc("GET /expenses", b.authed(b.handleList))
	mux.HandleFunc("POST /add-expense", b.authed(b.handleAdd))
	mux.HandleFunc("PUT /edit-expense/{id}", b.authed(b.handleEdit))
	mux.HandleFunc("DELETE /delete-expense/{id}", b.authed(b.handleDelete))
	mux.HandleFunc("POST /flag-expense", b.authed(b.handleFlag))
	mux.HandleFunc("POST /analyze", b.authed(b.handleAnalyze))
	mux.HandleFunc("POST /chat", b.authed(b.handleChat))

	b.server = httptest.NewServer(b.intercept(mux))
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL of the fake.
func (b *Backend) URL() string {
	return b.server.URL
}

// Close stops the server so that further requests fail at the transport level.
func (b *Backend) Close() {
	b.server.Close()
}

// AddUser registers a user directly.
func (b *Backend) AddUser(username, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = password
	b.expenses[username] = nil
}

// IssueToken returns a valid token for username without going through /token.
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(username)
}

// RevokeTokens invalidates every issued token.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]string)
}

// Seed appends expenses for username, assigning ids to records without one.
func (b *Backend) Seed(username string, expenses ...model.Expense) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range expenses {
		if e.ID == 0 {
			e.ID = b.nextIDLocked(username)
		}
		b.expenses[username] = append(b.expenses[username], e)
	}
}

// Expenses returns the stored expenses of username.
func (b *Backend) Expenses(username string) []model.Expense {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Expense(nil), b.expenses[username]...)
}

// FailNext makes the next request to path answer with f.
func (b *Backend) FailNext(path string, f Failure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = f
}

// SetAnalysis sets the text returned by /analyze.
func (b *Backend) SetAnalysis(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.analysis = text
}

// Hits returns how many requests reached path.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// AuthHeaders returns every Authorization header received, in order.
func (b *Backend) AuthHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.auth...)
}

func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if strings.HasPrefix(path, "/edit-expense/") {
			path = "/edit-expense"
		} else if strings.HasPrefix(path, "/delete-expense/") {
			path = "/delete-expense"
		}

		b.mu.Lock()
		b.hits[path]++
		b.auth = append(b.auth, r.Header.Get("Authorization"))
		failure, failing := b.failures[path]
		if failing {
			delete(b.failures, path)
		}
		b.mu.Unlock()

		if failing {
			if failure.Raw != "" {
				w.WriteHeader(failure.Status)
				_, _ = w.Write([]byte(failure.Raw))
				return
			}
			writeError(w, failure.Status, failure.Detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, username string)

func (b *Backend) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		username, valid := b.tokens[token]
		b.mu.Unlock()
		if !ok || !valid {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, CredentialDetail)
			return
		}
		h(w, r, username)
	}
}

func (b *Backend) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	b.mu.Lock()
	stored, exists := b.users[username]
	var token string
	if exists && stored == password {
		token = b.issueLocked(username)
	}
	b.mu.Unlock()

	if token == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	_, exists := b.users[req.Username]
	if !exists {
		b.users[req.Username] = req.Password
		b.expenses[req.Username] = nil
	}
	b.mu.Unlock()

	if exists {
		writeError(w, http.StatusBadRequest, "Username already registered")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (b *Backend) handleList(w http.ResponseWriter, _ *http.Request, username string) {
	b.mu.Lock()
	list := append([]model.Expense{}, b.expenses[username]...)
	b.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date.Time)
	})
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) handleAdd(w http.ResponseWriter, r *http.Request, username string) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	expense := model.Expense{
		ID:          b.nextIDLocked(username),
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        draft.Date,
	}
	b.expenses[username] = append(b.expenses[username], expense)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, expense)
}

func (b *Backend) handleEdit(w http.ResponseWriter, r *http.Request, username string) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.expenses[username] {
		if e.ID == model.ExpenseID(id) {
			e.Amount = draft.Amount
			e.Category = draft.Category
			e.Description = draft.Description
			e.Date = draft.Date
			b.expenses[username][i] = e
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Expense not found")
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request, username string) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.expenses[username]
	for i, e := range list {
		if e.ID == model.ExpenseID(id) {
			b.expenses[username] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Expense not found")
}

func (b *Backend) handleFlag(w http.ResponseWriter, r *http.Request, username string) {
	var req struct {
		ID   model.ExpenseID `json:"id"`
		Flag model.Flag      `json:"flag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Flag.Settable() {
		writeError(w, http.StatusUnprocessableEntity, "invalid flag")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.expenses[username] {
		if e.ID == req.ID {
			b.expenses[username][i].Flag = req.Flag
			writeJSON(w, http.StatusOK, b.expenses[username][i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Expense not found")
}

func (b *Backend) handleAnalyze(w http.ResponseWriter, _ *http.Request, username string) {
	b.mu.Lock()
	empty := len(b.expenses[username]) == 0
	text := b.analysis
	b.mu.Unlock()

	if empty {
		text = "There's no data to analyze. Add some expenses first!"
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}

func (b *Backend) handleChat(w http.ResponseWriter, r *http.Request, _ string) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": "You asked: " + req.Query})
}

func (b *Backend) issueLocked(username string) string {
	b.nextToken++
	token := fmt.Sprintf("token-%d-%s", b.nextToken, username)
	b.tokens[token] = username
	return token
}

func (b *Backend) nextIDLocked(username string) model.ExpenseID {
	var maxID model.ExpenseID
	for _, e := range b.expenses[username] {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (model.Expense, bool) {
	var req struct {
		Description *string     `json:"description"`
		Category    string      `json:"category"`
		Date        model.Date  `json:"date"`
		Amount      json.Number `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return model.Expense{}, false
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil || !amount.IsPositive() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "amount"}, "msg": "Input should be greater than 0"}},
		})
		return model.Expense{}, false
	}
	e := model.Expense{Amount: amount, Category: model.Category(req.Category), Date: req.Date}
	if req.Description != nil {
		e.Description = *req.Description
	}
	return e, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
