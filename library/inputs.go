package library

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return strings.ToLower(f.Name)
	})
	return v
}

// AuthorInput carries the author form fields.
type AuthorInput struct {
	Name        string `label:"name" validate:"required"`
	Bio         string
	Nationality string
	BirthYear   int `label:"birth year" validate:"min=0,max=2200"`
}

func (in AuthorInput) author() (*Author, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Nationality = strings.TrimSpace(in.Nationality)
	if err := check("Author", in); err != nil {
		return nil, err
	}
	return &Author{Name: in.Name, Bio: in.Bio, Nationality: in.Nationality, BirthYear: in.BirthYear}, nil
}

// BookInput carries the book form fields. AuthorID 0 means no author; Copies 0
// is stored as 1.
type BookInput struct {
	Title         string `label:"title" validate:"required"`
	AuthorID      int64  `label:"author" validate:"min=0"`
	ISBN          string
	Publisher     string
	PublishedYear int `label:"published year" validate:"min=0,max=2200"`
	Genre         string
	Copies        int `label:"copies" validate:"min=0"`
}

func (in BookInput) book() (*Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Publisher = strings.TrimSpace(in.Publisher)
	in.Genre = strings.TrimSpace(in.Genre)
	if err := check("Book", in); err != nil {
		return nil, err
	}
	copies := in.Copies
	if copies == 0 {
		copies = 1
	}
	return &Book{
		Title:           in.Title,
		AuthorID:        in.AuthorID,
		ISBN:            in.ISBN,
		Publisher:       in.Publisher,
		PublishedYear:   in.PublishedYear,
		Genre:           in.Genre,
		CopiesAvailable: copies,
	}, nil
}

// MemberInput carries the member form fields. An empty membership type means
// Standard.
type MemberInput struct {
	Name           string `label:"name" validate:"required"`
	Email          string `label:"email" validate:"omitempty,email"`
	Phone          string
	MembershipType string `label:"membership type" validate:"omitempty,oneof=Standard Premium Student Senior"`
	JoinDate       time.Time
}

func (in MemberInput) member() (*Member, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.MembershipType = strings.TrimSpace(in.MembershipType)
	if err := check("Member", in); err != nil {
		return nil, err
	}
	if in.MembershipType == "" {
		in.MembershipType = MembershipTypes[0]
	}
	return &Member{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		MembershipType: in.MembershipType,
		JoinDate:       civilDate(in.JoinDate),
	}, nil
}

// BookclubInput carries the bookclub form fields.
type BookclubInput struct {
	Name        string `label:"name" validate:"required"`
	Description string
	MeetingDay  string
}

func (in BookclubInput) bookclub() (*Bookclub, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.MeetingDay = strings.TrimSpace(in.MeetingDay)
	if err := check("Bookclub", in); err != nil {
		return nil, err
	}
	return &Bookclub{Name: in.Name, Description: in.Description, MeetingDay: in.MeetingDay}, nil
}

// LoanRequest describes a loan to issue. A zero LoanDate means today.
type LoanRequest struct {
	BookID    int64 `label:"book" validate:"required"`
	MemberID  int64 `label:"member" validate:"required"`
	LoanDate  time.Time
	DueInDays int `label:"due days" validate:"min=0"`
}

func (req LoanRequest) validate() error {
	err := validate.Struct(req)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && verrs[0].Tag() == "required" {
		return &ValidationError{Field: verrs[0].Field(), Message: "Select both book and member"}
	}
	return check("Loan", req)
}

// check runs the struct validation and turns the first failure into a
// ValidationError worded for the user.
func check(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s %s is required", entity, fe.Field())}
	case "email":
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s %s is not a valid address", entity, fe.Field())}
	case "oneof":
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s %s must be one of %s", entity, fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))}
	default:
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("%s %s is out of range", entity, fe.Field())}
	}
}
