package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]{3,32}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	zipRegex      = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxMessageLen     = 2000
	maxSkillLen       = 64
	maxSkills         = 30
)

// Email validates an email address format.
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// Username validates a username: 3-32 chars, letters, digits, _ and -.
func Username(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 characters: letters, digits, underscore or hyphen")
	}
	return nil
}

// Password enforces a minimum password strength.
func Password(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// Phone validates an optional phone number in E.164-ish form.
func Phone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}

// ZipCode validates a US ZIP code.
func ZipCode(zip string) error {
	if !zipRegex.MatchString(zip) {
		return fmt.Errorf("invalid zip code")
	}
	return nil
}

// JobTitle validates a job title.
func JobTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("title must be at most %d characters", maxTitleLen)
	}
	return nil
}

// JobDescription validates a job description.
func JobDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLen)
	}
	return nil
}

// Budget validates an optional budget range.
func Budget(min, max *float64) error {
	if min != nil && *min < 0 {
		return fmt.Errorf("budget minimum cannot be negative")
	}
	if max != nil && *max < 0 {
		return fmt.Errorf("budget maximum cannot be negative")
	}
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("budget minimum cannot exceed maximum")
	}
	return nil
}

// ProposalPrice validates a quoted price.
func ProposalPrice(price float64) error {
	if price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if price > 1_000_000 {
		return fmt.Errorf("price is unreasonably large")
	}
	return nil
}

// ProposalMessage validates an optional cover message.
func ProposalMessage(message string) error {
	if utf8.RuneCountInString(message) > maxMessageLen {
		return fmt.Errorf("message must be at most %d characters", maxMessageLen)
	}
	return nil
}

// Skills validates a contractor skill list.
func Skills(skills []string) error {
	if len(skills) > maxSkills {
		return fmt.Errorf("at most %d skills allowed", maxSkills)
	}
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("skill cannot be empty")
		}
		if utf8.RuneCountInString(s) > maxSkillLen {
			return fmt.Errorf("skill %q is too long", s)
		}
	}
	return nil
}

// Rating validates a review rating value.
func Rating(rating float64) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
