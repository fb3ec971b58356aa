package comps

import (
	"fmt"
	"strings"
)

// Identifier is a namespaced id in the form namespace:path, such as
// "mymod:counter".
type Identifier string

// ParseIdentifier validates s and returns it as an Identifier.
// Namespaces may contain [a-z0-9_.-], paths additionally '/'.
func ParseIdentifier(s string) (Identifier, error) {
	ns, path, ok := strings.Cut(s, ":")
	if !ok {
		return "", fmt.Errorf("%w: %q has no namespace", ErrInvalidIdentifier, s)
	}
	if ns == "" || path == "" {
		return "", fmt.Errorf("%w: %q has an empty part", ErrInvalidIdentifier, s)
	}
	for _, r := range ns {
		if !validIdentifierRune(r, false) {
			return "", fmt.Errorf("%w: namespace of %q contains %q", ErrInvalidIdentifier, s, r)
		}
	}
	for _, r := range path {
		if !validIdentifierRune(r, true) {
			return "", fmt.Errorf("%w: path of %q contains %q", ErrInvalidIdentifier, s, r)
		}
	}
	return Identifier(s), nil
}

// MustParseIdentifier is like ParseIdentifier but panics on invalid input.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic("comps: " + err.Error())
	}
	return id
}

func validIdentifierRune(r rune, path bool) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	case r == '/':
		return path
	}
	return false
}

// Namespace returns the part before the colon.
func (id Identifier) Namespace() string {
	ns, _, _ := strings.Cut(string(id), ":")
	return ns
}

// Path returns the part after the colon.
func (id Identifier) Path() string {
	_, path, _ := strings.Cut(string(id), ":")
	return path
}

// String returns the identifier as a string.
func (id Identifier) String() string {
	return string(id)
}
