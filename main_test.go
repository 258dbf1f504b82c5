package main

import (
	"strings"
	"testing"

	"library-portal/portal"
)

func loggedInSession(t *testing.T) *portal.SessionStore {
	t.Helper()
	session := portal.NewSessionStore(portal.NewMemoryStorage(), portal.WithLogger(portal.NopLogger()))
	if err := session.Login("testuser", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return session
}

// The detail view offers borrow and reserve together only while a book is
// available and unheld; once held, only the matching release action shows.
func TestAvailableActionsExclusivity(t *testing.T) {
	session := loggedInSession(t)
	book := portal.Book{ID: 1, Title: "Cosmos", Type: portal.Physical, Available: true}

	actions := availableActions(book, session)
	if len(actions) != 2 || actions[0] != "borrow" || actions[1] != "reserve" {
		t.Fatalf("available unheld book: want [borrow reserve], got %v", actions)
	}

	session.BorrowBook(book.ID)
	actions = availableActions(book, session)
	if len(actions) != 1 || actions[0] != "return" {
		t.Fatalf("borrowed book: want [return], got %v", actions)
	}
	session.ReturnBook(book.ID)

	session.ReserveBook(book.ID)
	actions = availableActions(book, session)
	if len(actions) != 1 || actions[0] != "cancel" {
		t.Fatalf("reserved book: want [cancel], got %v", actions)
	}
	session.CancelReservation(book.ID)

	book.Available = false
	if actions = availableActions(book, session); len(actions) != 0 {
		t.Fatalf("unavailable unheld book: want no actions, got %v", actions)
	}
}

func TestAvailableActionsEbook(t *testing.T) {
	session := loggedInSession(t)
	ebook := portal.Book{ID: 4, Title: "Principios de Programación", Type: portal.Ebook, Available: true}

	if actions := availableActions(ebook, session); len(actions) != 0 {
		t.Fatalf("ebooks have no circulation actions, got %v", actions)
	}
}

func TestTruncateStringMultibyte(t *testing.T) {
	title := "El Laberinto de los Espíritus"

	got := truncateString(title, 25)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("missing ellipsis: %q", got)
	}
	if len([]rune(got)) != 25 {
		t.Fatalf("want 25 characters, got %d (%q)", len([]rune(got)), got)
	}
	// Cut right after the multibyte í; the rune must stay intact.
	got = truncateString(title, 27)
	if !strings.Contains(got, "í") || !strings.HasSuffix(got, "...") {
		t.Fatalf("rune split or truncated wrong: %q", got)
	}

	if got := truncateString("corto", 10); got != "corto" {
		t.Fatalf("short string should pass through, got %q", got)
	}
}
