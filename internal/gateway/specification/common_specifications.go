package specification

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// FilterBy matches rows whose field equals the given value.
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(query url.Values) {
	query.Set(s.Field, fmt.Sprintf("eq.%v", s.Value))
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}

// FilterIsNull matches rows whose field is NULL.
type FilterIsNull struct {
	Field string
}

func (s FilterIsNull) Apply(query url.Values) {
	query.Set(s.Field, "is.null")
}

// OrderBy applies ordering.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(query url.Values) {
	direction := "asc"
	if s.Desc {
		direction = "desc"
	}
	query.Set("order", fmt.Sprintf("%s.%s", s.Field, direction))
}

// OwnedBy restricts rows to a single user. Row-level security enforces this
// remotely as well; sending it keeps the request explicit.
type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(query url.Values) {
	query.Set("user_id", fmt.Sprintf("eq.%s", s.UserID))
}
