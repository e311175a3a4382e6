// Package password holds the account password complexity policy.
package password

// MinLength is the minimum accepted password length.
const MinLength = 12

// Validate reports whether a candidate password satisfies the policy:
// at least 12 characters with an uppercase letter, a lowercase letter,
// a digit and a character outside [A-Za-z0-9].
func Validate(candidate string) bool {
	if len(candidate) < MinLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range candidate {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}
