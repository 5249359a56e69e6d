package task

import (
	"regexp"
	"strings"

	masonerrors "github.com/masonbuild/mason/internal/errors"
)

// NameMatches reports whether any of the task's aliases satisfies the
// selection pattern. Patterns without '*' use exact matching; patterns
// with '*' are globs. A malformed glob returns ErrInvalidPattern, which
// must abort the run: the user's selection cannot be honored.
func (t *Task) NameMatches(pattern string) (bool, error) {
	if strings.ContainsRune(pattern, '*') {
		return t.nameMatchesGlob(pattern)
	}
	return t.nameMatchesString(pattern), nil
}

func (t *Task) nameMatchesString(pattern string) bool {
	for _, n := range t.names {
		if stringsMatch(n, pattern) {
			return true
		}
	}
	return false
}

func (t *Task) nameMatchesGlob(pattern string) (bool, error) {
	re, err := compileGlob(pattern)
	if err != nil {
		return false, err
	}

	for _, n := range t.names {
		if re.MatchString(strings.ReplaceAll(n, "_", "-")) {
			return true, nil
		}
	}

	return false, nil
}

// compileGlob translates a glob into an anchored, case-insensitive
// regexp: '*' means "zero or more characters" and underscores are
// normalized to dashes so the two are equivalent. Anything else passes
// through as regexp syntax, so an unbalanced bracket makes the pattern
// invalid rather than silently matching nothing.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	fixed := strings.ReplaceAll(pattern, "*", ".*")
	fixed = strings.ReplaceAll(fixed, "_", "-")

	re, err := regexp.Compile("(?i)^(?:" + fixed + ")$")
	if err != nil {
		return nil, masonerrors.Wrapf(masonerrors.ErrInvalidPattern, "bad glob %q", pattern)
	}

	return re, nil
}

// stringsMatch compares an alias to a pattern character by character:
// same length, case-insensitive, with '-' and '_' equivalent at each
// position. This runs once per alias per registered task per selection,
// so it stays allocation-free instead of going through a regexp.
func stringsMatch(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := 0; i < len(a); i++ {
		ac := a[i]
		bc := b[i]

		if (ac == '-' || ac == '_') && (bc == '-' || bc == '_') {
			continue
		}

		if lowerByte(ac) != lowerByte(bc) {
			return false
		}
	}

	return true
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
