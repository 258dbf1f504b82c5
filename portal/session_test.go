package portal

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testSession(t *testing.T) (*SessionStore, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	session := NewSessionStore(storage, WithLogger(NopLogger()))
	return session, storage
}

func mustLogin(t *testing.T, s *SessionStore) {
	t.Helper()
	if err := s.Login("testuser", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	session, storage := testSession(t)

	if _, ok := session.CurrentUser(); ok {
		t.Fatalf("fresh store should be logged out")
	}

	mustLogin(t, session)

	user, ok := session.CurrentUser()
	if !ok || user.Username != "testuser" {
		t.Fatalf("no session after login: %+v", user)
	}
	notifications := session.Notifications()
	if len(notifications) != 1 || !strings.HasPrefix(notifications[0].Message, "Inicio de sesión exitoso") {
		t.Fatalf("expected login notification, got %v", notifications)
	}

	session.Logout()

	if _, ok := session.CurrentUser(); ok {
		t.Fatalf("still logged in after logout")
	}
	if len(session.BorrowedBooks()) != 0 || len(session.ReservedBooks()) != 0 || len(session.Notifications()) != 0 {
		t.Fatalf("collections not cleared on logout")
	}

	// A fresh store over the same storage comes up logged out and empty.
	reloaded := NewSessionStore(storage, WithLogger(NopLogger()))
	if _, ok := reloaded.CurrentUser(); ok {
		t.Fatalf("logged-out session restored")
	}
	if len(reloaded.Notifications()) != 0 {
		t.Fatalf("notifications survived logout")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	session, _ := testSession(t)

	err := session.Login("testuser", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, ok := session.CurrentUser(); ok {
		t.Fatalf("failed login established a session")
	}
	if len(session.Notifications()) != 0 {
		t.Fatalf("failed login produced a notification")
	}
}

func TestRegisteredUserLogin(t *testing.T) {
	session, storage := testSession(t)

	user := User{Username: "mgarcia", FullName: "María García", Email: "m@example.com"}
	if err := session.RegisterUser(user, "secreta"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// The persisted record carries a hash, never the password.
	var registered []RegisteredUser
	if _, err := storage.Load(KeyUsers, &registered); err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(registered) != 1 || registered[0].PasswordHash == "secreta" || registered[0].PasswordHash == "" {
		t.Fatalf("password not hashed: %+v", registered)
	}

	if err := session.Login("mgarcia", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password accepted: %v", err)
	}
	if err := session.Login("mgarcia", "secreta"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got, _ := session.CurrentUser(); got.FullName != "María García" {
		t.Fatalf("wrong profile: %+v", got)
	}
}

// A registered account sharing the demo username must not block the demo
// fallback: matching is on username AND password together, so a password
// mismatch falls through to the hardcoded credential.
func TestDemoFallbackAfterRegisteredMismatch(t *testing.T) {
	session, _ := testSession(t)

	user := User{Username: "testuser", FullName: "Otra Persona"}
	if err := session.RegisterUser(user, "otherpassword"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := session.Login("testuser", "password123"); err != nil {
		t.Fatalf("demo fallback rejected: %v", err)
	}
	if got, _ := session.CurrentUser(); got.FullName != "Usuario de Prueba" {
		t.Fatalf("expected demo profile, got %+v", got)
	}
	session.Logout()

	// The registered credential still works on its own.
	if err := session.Login("testuser", "otherpassword"); err != nil {
		t.Fatalf("registered login rejected: %v", err)
	}
	if got, _ := session.CurrentUser(); got.FullName != "Otra Persona" {
		t.Fatalf("expected registered profile, got %+v", got)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	session, _ := testSession(t)

	user := User{Username: "jperez"}
	if err := session.RegisterUser(user, "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := session.RegisterUser(user, "pw2"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("want ErrUserExists, got %v", err)
	}
}

func TestBorrowIdempotence(t *testing.T) {
	session, _ := testSession(t)
	mustLogin(t, session)

	session.BorrowBook(3)
	session.BorrowBook(3)

	borrowed := session.BorrowedBooks()
	if len(borrowed) != 1 || borrowed[0] != 3 {
		t.Fatalf("want [3], got %v", borrowed)
	}
	// Exactly one borrow notification on top of the login one.
	notifications := session.Notifications()
	if len(notifications) != 2 {
		t.Fatalf("want 2 notifications, got %d", len(notifications))
	}
	if notifications[0].Message != "Has tomado prestado un nuevo libro (ID: 3)" {
		t.Fatalf("wrong message: %s", notifications[0].Message)
	}
}

// A return of a never-borrowed ID leaves the set unchanged but still
// appends a confirmation notification. Observed behavior, kept on purpose;
// changing it must change this test.
func TestReturnOfAbsentBookStillNotifies(t *testing.T) {
	session, _ := testSession(t)
	mustLogin(t, session)

	session.ReturnBook(5)

	if len(session.BorrowedBooks()) != 0 {
		t.Fatalf("borrowed set changed")
	}
	notifications := session.Notifications()
	if notifications[0].Message != "Has devuelto un libro (ID: 5)" {
		t.Fatalf("expected return notification, got %s", notifications[0].Message)
	}
}

func TestReserveAndCancelMirrorBorrowAndReturn(t *testing.T) {
	session, _ := testSession(t)
	mustLogin(t, session)

	session.ReserveBook(2)
	session.ReserveBook(2)
	if got := session.ReservedBooks(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("want [2], got %v", got)
	}

	session.CancelReservation(2)
	if got := session.ReservedBooks(); len(got) != 0 {
		t.Fatalf("reservation not removed: %v", got)
	}

	// Cancelling again still notifies.
	before := len(session.Notifications())
	session.CancelReservation(2)
	if len(session.Notifications()) != before+1 {
		t.Fatalf("cancel of absent reservation should still notify")
	}
}

func TestNotificationOrdering(t *testing.T) {
	session, _ := testSession(t)
	mustLogin(t, session)

	session.BorrowBook(1)
	session.ReserveBook(2)
	session.ReturnBook(1)

	notifications := session.Notifications()
	if len(notifications) != 4 {
		t.Fatalf("want 4 notifications, got %d", len(notifications))
	}
	if notifications[0].Message != "Has devuelto un libro (ID: 1)" {
		t.Fatalf("newest first violated: %s", notifications[0].Message)
	}
	if notifications[2].Message != "Has tomado prestado un nuevo libro (ID: 1)" {
		t.Fatalf("oldest action not last: %s", notifications[2].Message)
	}
	for i := 1; i < len(notifications); i++ {
		if notifications[i-1].ID <= notifications[i].ID {
			t.Fatalf("ids not strictly decreasing down the list: %v", notifications)
		}
	}
}

func TestNotificationIDsUniqueWithinSameMillisecond(t *testing.T) {
	storage := NewMemoryStorage()
	frozen := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	session := NewSessionStore(storage,
		WithLogger(NopLogger()),
		WithClock(func() time.Time { return frozen }))
	mustLogin(t, session)

	session.AddNotification("a")
	session.AddNotification("b")

	notifications := session.Notifications()
	seen := make(map[int64]bool)
	for _, n := range notifications {
		if seen[n.ID] {
			t.Fatalf("duplicate notification id %d", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestMarkNotificationAsRead(t *testing.T) {
	session, storage := testSession(t)
	mustLogin(t, session)

	id := session.Notifications()[0].ID
	session.MarkNotificationAsRead(id)

	if session.Notifications()[0].Read != true {
		t.Fatalf("notification not marked read")
	}
	if session.UnreadCount() != 0 {
		t.Fatalf("unread count should be 0")
	}

	// Persisted too.
	var persisted []Notification
	if _, err := storage.Load(KeyNotifications, &persisted); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !persisted[0].Read {
		t.Fatalf("read flag not persisted")
	}

	// Unknown ID is a no-op.
	session.MarkNotificationAsRead(99999)
}

func TestOperationsWhileLoggedOutAreNoOps(t *testing.T) {
	session, _ := testSession(t)

	session.BorrowBook(1)
	session.ReturnBook(1)
	session.ReserveBook(2)
	session.CancelReservation(2)
	session.AddNotification("stray")

	if len(session.BorrowedBooks()) != 0 || len(session.ReservedBooks()) != 0 || len(session.Notifications()) != 0 {
		t.Fatalf("logged-out operation mutated state")
	}
}

func TestSessionRestore(t *testing.T) {
	storage := NewMemoryStorage()
	session := NewSessionStore(storage, WithLogger(NopLogger()))
	mustLogin(t, session)
	session.BorrowBook(3)
	session.ReserveBook(7)

	restored := NewSessionStore(storage, WithLogger(NopLogger()))

	user, ok := restored.CurrentUser()
	if !ok || user.Username != "testuser" {
		t.Fatalf("session not restored: %+v", user)
	}
	if got := restored.BorrowedBooks(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("borrowed set not restored: %v", got)
	}
	if got := restored.ReservedBooks(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("reserved set not restored: %v", got)
	}
	if len(restored.Notifications()) != 3 {
		t.Fatalf("notifications not restored: %v", restored.Notifications())
	}

	// New notifications keep increasing past the restored ones.
	restored.AddNotification("after restore")
	notifications := restored.Notifications()
	if notifications[0].ID <= notifications[1].ID {
		t.Fatalf("restored id sequence not continued")
	}
}

// failingStorage rejects every write; reads come up empty.
type failingStorage struct{}

func (failingStorage) Load(string, any) (bool, error) { return false, nil }
func (failingStorage) Save(string, any) error         { return errors.New("quota exceeded") }
func (failingStorage) Delete(string) error            { return errors.New("quota exceeded") }
func (failingStorage) Close() error                   { return nil }

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	session := NewSessionStore(failingStorage{}, WithLogger(NopLogger()))
	mustLogin(t, session)

	session.BorrowBook(4)

	if _, ok := session.CurrentUser(); !ok {
		t.Fatalf("session lost on persist failure")
	}
	if got := session.BorrowedBooks(); len(got) != 1 || got[0] != 4 {
		t.Fatalf("in-memory state lost on persist failure: %v", got)
	}

	// Logout still clears memory even when deletes fail.
	session.Logout()
	if _, ok := session.CurrentUser(); ok {
		t.Fatalf("logout blocked by storage failure")
	}
}
