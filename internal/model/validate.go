package model

import (
	"net/mail"
	"sort"
	"strings"
)

// ValidationError collects per-field problems with user input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

type fieldErrors map[string]string

func (f fieldErrors) check(ok bool, field, msg string) {
	if !ok {
		if _, seen := f[field]; !seen {
			f[field] = msg
		}
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Validate checks the login form rules.
func (r LoginRequest) Validate() error {
	f := fieldErrors{}
	f.check(validEmail(r.Email), "email", "Invalid email address.")
	f.check(len(r.Password) >= 8, "password", "Password must be at least 8 characters long.")
	return f.err()
}

// Validate checks the signup form rules.
func (r SignupRequest) Validate() error {
	f := fieldErrors{}
	f.check(len(strings.TrimSpace(r.Name)) >= 2, "name", "Name is required and must be at least 2 characters long.")
	f.check(validEmail(r.Email), "email", "Invalid email address.")
	f.check(len(r.Password) >= 8, "password", "Password must be at least 8 characters long.")
	return f.err()
}

// Validate checks the profile form. The password may be left empty to keep
// the current one.
func (u ProfileUpdate) Validate() error {
	f := fieldErrors{}
	f.check(len(strings.TrimSpace(u.Name)) >= 2, "name", "Name must be at least 2 characters long.")
	f.check(validEmail(u.Email), "email", "Invalid email address.")
	f.check(u.Password == "" || len(u.Password) >= 8, "password", "Password must be at least 8 characters long.")
	return f.err()
}

// Validate checks the admin product form rules.
func (in ProductInput) Validate() error {
	f := fieldErrors{}
	f.check(len(strings.TrimSpace(in.Name)) >= 3, "name", "Name must be at least 3 characters")
	f.check(len(strings.TrimSpace(in.Description)) >= 10, "description", "Description must be at least 10 characters")
	f.check(in.Price.Sign() > 0, "price", "Price must be greater than 0")
	f.check(in.Stock >= 0, "stock", "Stock cannot be negative")
	f.check(in.CategoryID >= 1, "categoryId", "Invalid category ID")
	return f.err()
}

// Normalized returns a copy with name and description trimmed.
func (in ProductInput) Normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
