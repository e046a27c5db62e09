package library

import (
	"time"

	"github.com/google/uuid"
)

// Loan statuses. Issuing always writes OnLoan; Overdue is only ever set by
// an explicit MarkOverdue and is counted by the dashboard.
const (
	StatusOnLoan   = "On Loan"
	StatusReturned = "Returned"
	StatusOverdue  = "Overdue"
)

// MembershipTypes lists the fixed set of membership tiers.
var MembershipTypes = []string{"Standard", "Premium", "Student", "Senior"}

// User is a staff account allowed to log in.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
}

// Author of one or more books. BirthYear 0 means unknown.
type Author struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Nationality string `json:"nationality"`
	BirthYear   int    `json:"birth_year"`
}

// Book is a catalogue entry. AuthorName is filled by list queries only.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	AuthorID        int64  `json:"author_id"` // 0 when the book has no author
	AuthorName      string `json:"author_name"`
	ISBN            string `json:"isbn"`
	Publisher       string `json:"publisher"`
	PublishedYear   int    `json:"published_year"`
	Genre           string `json:"genre"`
	CopiesAvailable int    `json:"copies_available"`
}

// Member is a registered library patron.
type Member struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	MembershipType string    `json:"membership_type"`
	JoinDate       time.Time `json:"join_date"` // zero when not recorded
}

// Bookclub is a reading group. Nothing else references it.
type Bookclub struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MeetingDay  string `json:"meeting_day"`
}

// Loan links one book copy to one member. BookTitle and MemberName are
// display columns filled by list queries.
type Loan struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	MemberID   int64      `json:"member_id"`
	BookTitle  string     `json:"book_title"`
	MemberName string     `json:"member_name"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	Status     string     `json:"status"`
}

// Choice is one entry of a selection list. ID 0 is the "nothing selected" entry.
type Choice struct {
	ID    int64
	Label string
}

// Stats holds the dashboard counters.
type Stats struct {
	Books        int
	Authors      int
	Members      int
	ActiveLoans  int
	OverdueLoans int
	OutOfStock   int
}

// Session is the identity of the logged-in user for the life of the process.
// It is a value type; copies cannot affect each other.
type Session struct {
	ID        uuid.UUID
	UserID    int64
	Username  string
	FullName  string
	Role      string
	StartedAt time.Time
}

// NewSession builds a session for u.
func NewSession(u *User, now time.Time) Session {
	return Session{
		ID:        uuid.New(),
		UserID:    u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		StartedAt: now,
	}
}

// DisplayName prefers the full name.
func (s Session) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Username
}
