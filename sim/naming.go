package sim

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ValidateName checks if a name follows the naming convention.
//
//  1. It must be organized in a hierarchical structure, with tokens separated
//     by dots. For example, "A.B.C" is valid, but "A.B.C." is not.
//  2. Individual tokens must not be empty. For example, "A..B" is not valid.
//  3. Individual tokens must start with a capital letter, as in CamelCase.
//  4. Elements in a series are indexed with square brackets, as in
//     "Queue[3].Ctrl".
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}

	for _, token := range strings.Split(name, ".") {
		if err := validateNameToken(token); err != nil {
			return fmt.Errorf("name %q is not valid: %w", name, err)
		}
	}

	return nil
}

func validateNameToken(token string) error {
	elemName, indices, hasIndex := strings.Cut(token, "[")
	if elemName == "" {
		return fmt.Errorf("empty token")
	}

	first := []rune(elemName)[0]
	if !unicode.IsUpper(first) {
		return fmt.Errorf("token %q must start with a capital letter", token)
	}

	for _, r := range elemName {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return fmt.Errorf("token %q contains invalid character %q",
				token, r)
		}
	}

	if !hasIndex {
		return nil
	}

	return validateIndices("[" + indices)
}

func validateIndices(s string) error {
	for s != "" {
		if s[0] != '[' {
			return fmt.Errorf("bracket must match in %q", s)
		}

		end := strings.IndexByte(s, ']')
		if end < 0 {
			return fmt.Errorf("bracket must match in %q", s)
		}

		if _, err := strconv.Atoi(s[1:end]); err != nil {
			return fmt.Errorf("index %q must be an integer", s[1:end])
		}

		s = s[end+1:]
	}

	return nil
}

// NameMustBeValid panics if the name does not follow the naming convention
// described in ValidateName.
func NameMustBeValid(name string) {
	if err := ValidateName(name); err != nil {
		panic(err.Error())
	}
}
