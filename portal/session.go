package portal

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned by Login when no registered user
	// matches and the demo credential does not either.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserExists is returned by RegisterUser for a duplicate username.
	ErrUserExists = errors.New("username already registered")
)

// Demo fallback credential, overridable via WithDemoCredentials.
const (
	demoUsername = "testuser"
	demoPassword = "password123"
)

// SessionStore owns the authentication state and the per-user
// borrow/reserve/notification ledger. All state is mirrored to the
// persistence port on every mutation; a failed write is logged and the
// in-memory state kept, so operations never propagate storage errors.
//
// A freshly constructed store restores a persisted session when one exists.
type SessionStore struct {
	mu      sync.Mutex
	storage Storage
	log     Logger
	now     func() time.Time

	demoUser string
	demoPass string

	current       *User
	borrowed      []int
	reserved      []int
	notifications []Notification
	lastNotifID   int64
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithLogger replaces the default logger.
func WithLogger(log Logger) SessionOption {
	return func(s *SessionStore) { s.log = log }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// WithDemoCredentials replaces the built-in demo fallback credential.
func WithDemoCredentials(username, password string) SessionOption {
	return func(s *SessionStore) {
		s.demoUser = username
		s.demoPass = password
	}
}

// NewSessionStore builds a store over the given storage and re-hydrates a
// persisted session if one exists.
func NewSessionStore(storage Storage, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		storage:  storage,
		log:      DefaultLogger(),
		now:      time.Now,
		demoUser: demoUsername,
		demoPass: demoPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

func (s *SessionStore) restore() {
	var user User
	found, err := s.storage.Load(KeyCurrentUser, &user)
	if err != nil {
		s.log.Error("restore session", "key", KeyCurrentUser, "error", err)
		return
	}
	if !found {
		return
	}
	s.current = &user
	s.borrowed = s.loadIDs(KeyBorrowedBooks)
	s.reserved = s.loadIDs(KeyReservedBooks)
	if _, err := s.storage.Load(KeyNotifications, &s.notifications); err != nil {
		s.log.Error("restore session", "key", KeyNotifications, "error", err)
	}
	for _, n := range s.notifications {
		if n.ID > s.lastNotifID {
			s.lastNotifID = n.ID
		}
	}
	s.log.Info("session restored", "username", user.Username)
}

func (s *SessionStore) loadIDs(key string) []int {
	ids := []int{}
	if _, err := s.storage.Load(key, &ids); err != nil {
		s.log.Error("restore session", "key", key, "error", err)
	}
	return ids
}

// persist mirrors one key to storage. Failures are logged and absorbed;
// the in-memory state stays authoritative for the rest of the session.
func (s *SessionStore) persist(key string, value any) {
	if err := s.storage.Save(key, value); err != nil {
		s.log.Error("persist failed, continuing in memory", "key", key, "error", err)
	}
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// Login checks the credentials against the registered users, then against
// the demo fallback. On success the session is established and persisted
// and a login notification is appended. On failure nothing changes.
func (s *SessionStore) Login(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.matchCredentials(username, password)
	if !ok {
		return ErrInvalidCredentials
	}

	s.current = &user
	s.persist(KeyCurrentUser, user)

	// Initialize any collection that has never been persisted, then take
	// whatever is stored as the session's starting state.
	for _, key := range []string{KeyBorrowedBooks, KeyReservedBooks} {
		var probe []int
		if found, err := s.storage.Load(key, &probe); err == nil && !found {
			s.persist(key, []int{})
		}
	}
	var probe []Notification
	if found, err := s.storage.Load(KeyNotifications, &probe); err == nil && !found {
		s.persist(KeyNotifications, []Notification{})
	}
	s.borrowed = s.loadIDs(KeyBorrowedBooks)
	s.reserved = s.loadIDs(KeyReservedBooks)
	s.notifications = nil
	if _, err := s.storage.Load(KeyNotifications, &s.notifications); err != nil {
		s.log.Error("load notifications", "error", err)
	}
	for _, n := range s.notifications {
		if n.ID > s.lastNotifID {
			s.lastNotifID = n.ID
		}
	}

	s.appendNotification(fmt.Sprintf("Inicio de sesión exitoso a las %s", s.now().Format("15:04:05")))
	s.log.Info("login", "username", user.Username)
	return nil
}

func (s *SessionStore) matchCredentials(username, password string) (User, bool) {
	var registered []RegisteredUser
	if _, err := s.storage.Load(KeyUsers, &registered); err != nil {
		s.log.Error("load registered users", "error", err)
	}
	// A registered record matches only on username AND password together;
	// a password mismatch still falls through to the demo credential.
	for _, r := range registered {
		if r.Username == username &&
			bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password)) == nil {
			return r.User, true
		}
	}

	if username == s.demoUser && password == s.demoPass {
		return User{
			Username:    username,
			FullName:    "Usuario de Prueba",
			Email:       "test@example.com",
			Department:  "Ingeniería de Software",
			MemberSince: "Enero 2024",
			Avatar:      "https://placehold.co/150x150/4B5563/FFFFFF?text=TP",
		}, true
	}
	return User{}, false
}

// Logout clears the session from memory and storage. Unconditional.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.borrowed = nil
	s.reserved = nil
	s.notifications = nil

	for _, key := range []string{KeyCurrentUser, KeyBorrowedBooks, KeyReservedBooks, KeyNotifications} {
		if err := s.storage.Delete(key); err != nil {
			s.log.Error("clear session key", "key", key, "error", err)
		}
	}
}

// CurrentUser returns the logged-in user, if any.
func (s *SessionStore) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

// RegisterUser provisions a member account with a bcrypt-hashed password.
// It does not log the new user in.
func (s *SessionStore) RegisterUser(user User, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var registered []RegisteredUser
	if _, err := s.storage.Load(KeyUsers, &registered); err != nil {
		return fmt.Errorf("load registered users: %w", err)
	}
	for _, r := range registered {
		if r.Username == user.Username {
			return ErrUserExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	registered = append(registered, RegisteredUser{User: user, PasswordHash: string(hash)})
	if err := s.storage.Save(KeyUsers, registered); err != nil {
		return fmt.Errorf("save registered users: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Borrow / reserve ledger
// ---------------------------------------------------------------------------

// BorrowedBooks returns the borrowed book IDs in insertion order.
func (s *SessionStore) BorrowedBooks() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.borrowed...)
}

// ReservedBooks returns the reserved book IDs in insertion order.
func (s *SessionStore) ReservedBooks() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.reserved...)
}

// BorrowBook records a loan. Adding an ID already in the borrowed set is a
// no-op: no duplicate entry, no second notification.
func (s *SessionStore) BorrowBook(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	if containsID(s.borrowed, id) {
		return
	}
	s.borrowed = append(s.borrowed, id)
	s.persist(KeyBorrowedBooks, s.borrowed)
	s.appendNotification(fmt.Sprintf("Has tomado prestado un nuevo libro (ID: %d)", id))
}

// ReturnBook removes a loan. The removal is idempotent, but a notification
// is appended even when the ID was never borrowed; callers relying on that
// confirmation should check membership first.
func (s *SessionStore) ReturnBook(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.borrowed = removeID(s.borrowed, id)
	s.persist(KeyBorrowedBooks, s.borrowed)
	s.appendNotification(fmt.Sprintf("Has devuelto un libro (ID: %d)", id))
}

// ReserveBook records a hold. Mirrors BorrowBook's idempotence.
func (s *SessionStore) ReserveBook(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	if containsID(s.reserved, id) {
		return
	}
	s.reserved = append(s.reserved, id)
	s.persist(KeyReservedBooks, s.reserved)
	s.appendNotification(fmt.Sprintf("Has reservado un nuevo libro (ID: %d)", id))
}

// CancelReservation removes a hold. Mirrors ReturnBook, including the
// unconditional notification.
func (s *SessionStore) CancelReservation(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.reserved = removeID(s.reserved, id)
	s.persist(KeyReservedBooks, s.reserved)
	s.appendNotification(fmt.Sprintf("Has cancelado la reserva de un libro (ID: %d)", id))
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

// Notifications returns the notification log, newest first.
func (s *SessionStore) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

// UnreadCount returns how many notifications are still unread.
func (s *SessionStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// AddNotification prepends a notification with a fresh ID and the current
// formatted timestamp, then persists the log.
func (s *SessionStore) AddNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.appendNotification(message)
}

// appendNotification requires s.mu held.
func (s *SessionStore) appendNotification(message string) {
	id := s.now().UnixMilli()
	// IDs are timestamp-derived but must stay strictly increasing even when
	// two notifications land in the same millisecond.
	if id <= s.lastNotifID {
		id = s.lastNotifID + 1
	}
	s.lastNotifID = id

	n := Notification{
		ID:        id,
		Message:   message,
		Timestamp: s.now().Format("02/01/2006 15:04"),
	}
	s.notifications = append([]Notification{n}, s.notifications...)
	s.persist(KeyNotifications, s.notifications)
}

// MarkNotificationAsRead flips the matching notification to read and
// persists. Unknown IDs are a no-op.
func (s *SessionStore) MarkNotificationAsRead(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			s.persist(KeyNotifications, s.notifications)
			return
		}
	}
}
