package portal

import "time"

// BookType distinguishes physical copies from e-books. Borrow/reserve only
// apply to physical books; e-books are always readable.
type BookType string

const (
	Physical BookType = "physical"
	Ebook    BookType = "ebook"
)

// Book is a catalog record. Identity fields are fixed for the process
// lifetime; only Available and ReservedBy change.
type Book struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ISBN        string   `json:"isbn"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Cover       string   `json:"cover"`
	Type        BookType `json:"type"`
	Available   bool     `json:"available"`
	ReservedBy  string   `json:"reservedBy,omitempty"`
}

// User is the profile of the currently logged-in member.
type User struct {
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	MemberSince string `json:"memberSince"`
	Avatar      string `json:"avatar"`
}

// RegisteredUser is a provisioned member account as persisted under the
// users key. The bcrypt hash never leaves the storage layer.
type RegisteredUser struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// Notification is one entry of the per-user activity log, newest first.
// Message and Timestamp are formatted at creation time.
type Notification struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// ToastType selects the visual treatment of a toast.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
	ToastInfo    ToastType = "info"
)

// DefaultToastDuration applies when ShowToast is called with a
// non-positive duration.
const DefaultToastDuration = 3 * time.Second

// Toast is a short-lived status message. At most one is active at a time.
type Toast struct {
	Message  string
	Type     ToastType
	Duration time.Duration
}
