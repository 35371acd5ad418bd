// Package cohort is the cohort console's domain: records, the remote API,
// and the query and mutation definitions built on it.
package cohort

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Type of course a cohort runs.
type Type string

const (
	TypeMasteringBitcoin           Type = "MASTERING_BITCOIN"
	TypeLearningBitcoinCommandLine Type = "LEARNING_BITCOIN_FROM_COMMAND_LINE"
	TypeProgrammingBitcoin         Type = "PROGRAMMING_BITCOIN"
	TypeBitcoinProtocolDevelopment Type = "BITCOIN_PROTOCOL_DEVELOPMENT"
	TypeMasteringLightningNetwork  Type = "MASTERING_LIGHTNING_NETWORK"
)

// Types lists every cohort type in display order.
func Types() []Type {
	return []Type{
		TypeMasteringBitcoin,
		TypeLearningBitcoinCommandLine,
		TypeProgrammingBitcoin,
		TypeBitcoinProtocolDevelopment,
		TypeMasteringLightningNetwork,
	}
}

func typeValues() []any {
	types := Types()
	out := make([]any, len(types))
	for i, t := range types {
		out[i] = t
	}
	return out
}

// Role of a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTA      Role = "TA"
	RoleStudent Role = "STUDENT"
)

// Status of a cohort.
type Status string

const (
	StatusUpcoming Status = "UPCOMING"
	StatusActive   Status = "ACTIVE"
	StatusEnded    Status = "ENDED"
)

type Cohort struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	Season      int       `json:"season"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status,omitempty"`
}

type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      Role     `json:"role"`
	CohortIDs []string `json:"cohortIds"`
}

// IsEnrolled reports whether u belongs to the cohort.
func (u User) IsEnrolled(cohortID string) bool {
	for _, id := range u.CohortIDs {
		if id == cohortID {
			return true
		}
	}
	return false
}

type Enrollment struct {
	CohortID string    `json:"cohortId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Feedback struct {
	ID       string    `json:"id,omitempty"`
	CohortID string    `json:"cohortId"`
	UserID   string    `json:"userId,omitempty"`
	Week     int       `json:"week"`
	Rating   int       `json:"rating"`
	Comment  string    `json:"comment,omitempty"`
	Created  time.Time `json:"createdAt,omitempty"`
}

// Filter narrows a cohort listing. Zero fields match everything.
type Filter struct {
	Type   Type `json:"type,omitempty"`
	Season int  `json:"season,omitempty"`
}

func (f Filter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Type, validation.In(typeValues()...)),
		validation.Field(&f.Season, validation.Min(0)),
	)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, validation.Match(emailPattern)),
		validation.Field(&c.Password, validation.Required),
	)
}

// CreateInput is the payload of a new cohort.
type CreateInput struct {
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	Season      int       `json:"season"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description,omitempty"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&in.Type, validation.Required, validation.In(typeValues()...)),
		validation.Field(&in.Season, validation.Required, validation.Min(1)),
		validation.Field(&in.StartDate, validation.Required),
		validation.Field(&in.EndDate, validation.Required, validation.By(after(in.StartDate))),
		validation.Field(&in.Capacity, validation.Min(0)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
	)
}

// UpdateInput changes the non-nil fields of cohort ID.
type UpdateInput struct {
	ID          string     `json:"-"`
	Name        *string    `json:"name,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	Description *string    `json:"description,omitempty"`
}

func (in UpdateInput) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&in.ID, validation.Required),
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(1, 120)),
		validation.Field(&in.Capacity, validation.Min(0)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
	}
	if in.StartDate != nil && in.EndDate != nil {
		rules = append(rules, validation.Field(&in.EndDate, validation.By(after(*in.StartDate))))
	}
	return validation.ValidateStruct(&in, rules...)
}

// FeedbackInput is a student's weekly feedback.
type FeedbackInput struct {
	CohortID string `json:"-"`
	Week     int    `json:"week"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

func (in FeedbackInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CohortID, validation.Required),
		validation.Field(&in.Week, validation.Required, validation.Min(1)),
		validation.Field(&in.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&in.Comment, validation.Length(0, 2000)),
	)
}
