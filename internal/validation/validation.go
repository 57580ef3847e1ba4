// Package validation runs per-field rule lists over decoded request input.
//
// Static rules look only at the value. Autonomous rules (Unique, Exists) also
// query storage through a repository.Checker bound when the rule is built, so
// a handler can inject them without the pipeline knowing about repositories.
package validation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"forumapi/internal/repository"
)

// Message is the top-level text of a failed validation response.
const Message = "The given data was invalid."

var formats = validator.New()

// Rule checks a single field value. A halting rule stops the remaining rules
// of its field when it fails.
type Rule struct {
	name    string
	halts   bool
	check   func(ctx context.Context, value any) (bool, error)
	message func(attribute string, value any) string
}

func (r Rule) Name() string { return r.name }

// Set maps a field name to its ordered rules.
type Set map[string][]Rule

// Errors maps a field name to the messages of its failed rules.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Validate evaluates every field of the set against input. It returns the
// collected failures, which is empty when the input is valid. A non-nil error
// means a rule could not be evaluated (storage failure) and the result must
// not be trusted.
func Validate(ctx context.Context, input map[string]any, set Set) (Errors, error) {
	errs := Errors{}
	for _, field := range fields(set) {
		value, present := input[field]
		if err := validateField(ctx, errs, field, value, present, set[field]); err != nil {
			return nil, fmt.Errorf("validate %s: %w", field, err)
		}
	}
	return errs, nil
}

// validateField skips a field only when its key is missing and no Required
// rule is listed. A present but blank value (null, "" or spaces) is checked as
// null, so the type rules reject it.
func validateField(ctx context.Context, errs Errors, field string, value any, present bool, rules []Rule) error {
	attr := attribute(field)
	if Blank(value) {
		value = nil
		for _, r := range rules {
			if r.name == "required" {
				errs.Add(field, r.message(attr, value))
				return nil
			}
		}
		if !present {
			return nil
		}
	}
	for _, r := range rules {
		ok, err := r.check(ctx, value)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		errs.Add(field, r.message(attr, value))
		if r.halts {
			return nil
		}
	}
	return nil
}

func fields(set Set) []string {
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// Blank reports whether v is null or an all-space string.
func Blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func Required() Rule {
	return Rule{
		name:  "required",
		halts: true,
		check: func(_ context.Context, v any) (bool, error) { return !Blank(v), nil },
		message: func(attr string, _ any) string {
			return fmt.Sprintf("The %s field is required.", attr)
		},
	}
}

func String() Rule {
	return Rule{
		name:  "string",
		halts: true,
		check: func(_ context.Context, v any) (bool, error) {
			_, ok := v.(string)
			return ok, nil
		},
		message: func(attr string, _ any) string {
			return fmt.Sprintf("The %s must be a string.", attr)
		},
	}
}

// Integer accepts JSON numbers without a fractional part.
func Integer() Rule {
	return Rule{
		name:  "integer",
		halts: true,
		check: func(_ context.Context, v any) (bool, error) {
			_, ok := AsInt(v)
			return ok, nil
		},
		message: func(attr string, _ any) string {
			return fmt.Sprintf("The %s must be an integer.", attr)
		},
	}
}

func Email() Rule {
	return Rule{
		name:  "email",
		halts: true,
		check: func(_ context.Context, v any) (bool, error) {
			s, ok := v.(string)
			return ok && formats.Var(s, "email") == nil, nil
		},
		message: func(attr string, _ any) string {
			return fmt.Sprintf("The %s must be a valid email address.", attr)
		},
	}
}

// Min requires strings to be at least n characters long and numbers to be at
// least n.
func Min(n int) Rule {
	return Rule{
		name: "min",
		check: func(_ context.Context, v any) (bool, error) {
			switch x := v.(type) {
			case string:
				return utf8.RuneCountInString(x) >= n, nil
			case int64:
				return x >= int64(n), nil
			case int:
				return x >= n, nil
			case float64:
				return x >= float64(n), nil
			}
			return false, nil
		},
		message: func(attr string, v any) string {
			if _, ok := v.(string); ok {
				return fmt.Sprintf("The %s must be at least %d characters.", attr, n)
			}
			return fmt.Sprintf("The %s must be at least %d.", attr, n)
		},
	}
}

// Unique passes when no row other than ignoreID holds the value in column.
// Use ignoreID 0 on create.
func Unique(repo repository.Checker, column string, ignoreID int64) Rule {
	return Rule{
		name: "unique",
		check: func(ctx context.Context, v any) (bool, error) {
			return repo.ValueIsUnique(ctx, v, column, ignoreID)
		},
		message: func(attr string, _ any) string {
			return fmt.Sprintf("The %s value needs to be unique.", attr)
		},
	}
}

// Exists passes when at least one row holds the value in column.
func Exists(repo repository.Checker, column string) Rule {
	return Rule{
		name: "exists",
		check: func(ctx context.Context, v any) (bool, error) {
			return repo.ValueExists(ctx, v, column)
		},
		message: func(attr string, _ any) string {
			return fmt.Sprintf("The %s value does not exist.", attr)
		},
	}
}

// AsInt reports the integer held by a decoded JSON value.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x), true
		}
	}
	return 0, false
}
