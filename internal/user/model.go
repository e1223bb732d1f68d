package user

import (
	"time"

	"github.com/uptrace/bun"
)

// Year values accepted at registration and profile update.
var Years = []string{"Freshman", "Sophomore", "Junior", "Senior", "Graduate"}

// Gender values accepted at registration.
const (
	GenderBrother = "Brother"
	GenderSister  = "Sister"
)

// Class is a single enrollment owned by a user, stored as an embedded
// sub-document inside the user row. CourseID is always in canonical form
// (uppercase, no whitespace); section and discussion codes are uppercase.
type Class struct {
	CourseID       string `json:"courseId"`
	SectionCode    string `json:"sectionCode"`
	DiscussionCode string `json:"discussionCode,omitempty"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               int     `bun:"id,pk,autoincrement" json:"id"`
	Name             string  `bun:"name,notnull" json:"name"`
	Email            string  `bun:"email,unique,notnull" json:"email"`
	Password         string  `bun:"password,notnull" json:"-"` // Never expose password hash in JSON
	PhoneNumber      string  `bun:"phone_number,notnull" json:"phoneNumber"`
	Major            string  `bun:"major,notnull" json:"major"`
	Year             string  `bun:"year,notnull" json:"year"`
	Gender           string  `bun:"gender,notnull" json:"gender"`
	GenderPreference bool    `bun:"gender_preference,notnull,default:false" json:"genderPreference"`
	Classes          []Class `bun:"classes,type:jsonb" json:"classes"`

	IsEmailConfirmed         bool      `bun:"is_email_confirmed,notnull,default:false" json:"isEmailConfirmed"`
	EmailConfirmationToken   string    `bun:"email_confirmation_token,nullzero" json:"-"`
	EmailConfirmationExpires time.Time `bun:"email_confirmation_expires,nullzero" json:"-"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// ClassFor returns the user's class entry for the given canonical course
// identifier, if any.
func (u *User) ClassFor(courseID string) (Class, bool) {
	for _, c := range u.Classes {
		if c.CourseID == courseID {
			return c, true
		}
	}
	return Class{}, false
}
