// Package validation holds the declarative field rules for the employee form.
//
// A Schema maps each field to an ordered list of rules. The first failing
// rule of a field produces that field's message; fields are independent, so
// every failing field reports at once.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/kingrea/roster/internal/employee"
)

// ErrValidation is matched by errors.Is for any non-empty Errors value.
var ErrValidation = errors.New("validation failed")

// Field names a form field.
type Field string

const (
	FieldName   Field = "name"
	FieldEmail  Field = "email"
	FieldTitle  Field = "title"
	FieldSkills Field = "skills"
	FieldAge    Field = "age"
	FieldPhone  Field = "phone"
)

// Fields lists every field in form order.
var Fields = []Field{FieldName, FieldEmail, FieldTitle, FieldSkills, FieldAge, FieldPhone}

const (
	MinAge = 18
	MaxAge = 65
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// Values is the raw form state. Age stays a string so "not a number" can be
// reported instead of silently becoming zero.
type Values struct {
	Name   string
	Email  string
	Title  string
	Age    string
	Phone  string
	Skills []employee.Tag
}

// FromEmployee renders an employee into form values verbatim.
func FromEmployee(e employee.Employee) Values {
	v := Values{
		Name:  e.Name,
		Email: e.Email,
		Title: e.Title,
		Phone: e.Phone,
	}
	if e.Age != 0 {
		v.Age = strconv.Itoa(e.Age)
	}
	if len(e.Skills) > 0 {
		v.Skills = make([]employee.Tag, len(e.Skills))
		copy(v.Skills, e.Skills)
	}
	return v
}

// Employee converts values into a record with the given id. Callers validate
// first; an unparsable age becomes zero.
func (v Values) Employee(id string) employee.Employee {
	age, _ := strconv.Atoi(strings.TrimSpace(v.Age))
	skills := make([]employee.Tag, len(v.Skills))
	copy(skills, v.Skills)
	return employee.Employee{
		ID:     id,
		Name:   v.Name,
		Email:  v.Email,
		Title:  v.Title,
		Age:    age,
		Phone:  v.Phone,
		Skills: skills,
	}
}

// Rule is one predicate plus the message shown when it fails.
type Rule struct {
	Check   func(Values) bool
	Message string
}

// Schema maps fields to their rules.
type Schema map[Field][]Rule

// Errors carries the failing message per field.
type Errors map[Field]string

// OK reports whether no field failed.
func (e Errors) OK() bool { return len(e) == 0 }

// Field returns the message for f, or "".
func (e Errors) Field(f Field) string { return e[f] }

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range Fields {
		if msg, ok := e[f]; ok {
			parts = append(parts, string(f)+": "+msg)
		}
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e Errors) Is(target error) bool { return target == ErrValidation && len(e) > 0 }

// Validate evaluates every field of the schema.
func (s Schema) Validate(v Values) Errors {
	errs := Errors{}
	for field := range s {
		if msg := s.ValidateField(field, v); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateField returns the first failing message for field, or "".
func (s Schema) ValidateField(field Field, v Values) string {
	for _, rule := range s[field] {
		if !rule.Check(v) {
			return rule.Message
		}
	}
	return ""
}

// EmployeeSchema returns the rules for the employee form.
func EmployeeSchema() Schema {
	return Schema{
		FieldName: {
			{Check: func(v Values) bool { return notBlank(v.Name) }, Message: "Name is required"},
		},
		FieldEmail: {
			{Check: func(v Values) bool { return notBlank(v.Email) }, Message: "Email is required"},
			{Check: func(v Values) bool { return emailPattern.MatchString(v.Email) }, Message: "Invalid email address"},
		},
		FieldTitle: {
			{Check: func(v Values) bool { return notBlank(v.Title) }, Message: "Title is required"},
		},
		FieldSkills: {
			{Check: func(v Values) bool { return len(v.Skills) > 0 }, Message: "At least one skill is required"},
			{Check: skillsInCatalog, Message: "Unknown skill selected"},
		},
		FieldAge: {
			{Check: func(v Values) bool { return notBlank(v.Age) }, Message: "Age is required"},
			{Check: func(v Values) bool { _, err := parseAge(v.Age); return err == nil }, Message: "Age must be a whole number"},
			{Check: func(v Values) bool { n, _ := parseAge(v.Age); return n >= MinAge }, Message: "Minimum age is 18"},
			{Check: func(v Values) bool { n, _ := parseAge(v.Age); return n <= MaxAge }, Message: "Maximum age is 65"},
		},
		FieldPhone: {
			{Check: func(v Values) bool { return notBlank(v.Phone) }, Message: "Phone number is required"},
			{Check: func(v Values) bool { return phonePattern.MatchString(v.Phone) }, Message: "Invalid phone number"},
		},
	}
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

func parseAge(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func skillsInCatalog(v Values) bool {
	for _, tag := range v.Skills {
		if !employee.InCatalog(tag) {
			return false
		}
	}
	return true
}
