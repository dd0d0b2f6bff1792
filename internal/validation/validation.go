// Package validation holds the explicit per-input-shape validators.
//
// Every validator checks all fields and returns every violation together;
// there is no short-circuit on the first failure.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"perch/internal/models"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// violations accumulates failed constraints for one input shape.
type violations struct {
	list []models.Violation
}

func (v *violations) add(field, constraint string) {
	v.list = append(v.list, models.Violation{Field: field, Constraint: constraint})
}

// err returns the aggregated validation error, or nil when everything passed.
func (v *violations) err() error {
	if len(v.list) == 0 {
		return nil
	}
	return models.NewFieldValidationError(v.list)
}

// Signup validates the signup input shape.
func Signup(username, displayName, email, password string) error {
	var v violations
	if !usernameRe.MatchString(username) {
		v.add("username", "must be 3-30 characters of letters, digits or underscore")
	}
	if displayName == "" {
		v.add("display_name", "required")
	} else if utf8.RuneCountInString(displayName) > 60 {
		v.add("display_name", "must be at most 60 characters")
	}
	if !emailRe.MatchString(email) {
		v.add("email", "must be a valid email address")
	}
	if len(password) < 8 {
		v.add("password", "must be at least 8 characters")
	}
	return v.err()
}

// UpdateUser validates the self-update input shape. Empty fields mean
// "leave unchanged" and are not violations.
func UpdateUser(displayName string, visibility string) error {
	var v violations
	if displayName != "" && utf8.RuneCountInString(displayName) > 60 {
		v.add("display_name", "must be at most 60 characters")
	}
	if visibility != "" {
		switch models.Visibility(visibility) {
		case models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityHidden:
		default:
			v.add("visibility", "must be one of public, private, hidden")
		}
	}
	return v.err()
}

// CreatePost validates the post/comment creation input shape.
func CreatePost(content string, images []string) error {
	var v violations
	if strings.TrimSpace(content) == "" {
		v.add("content", "required")
	} else if utf8.RuneCountInString(content) > models.MaxPostContentLen {
		v.add("content", "must be at most 240 characters")
	}
	if len(images) > models.MaxPostImages {
		v.add("images", "at most 4 image references allowed")
	}
	for _, img := range images {
		if strings.TrimSpace(img) == "" {
			v.add("images", "image references must be non-empty")
			break
		}
	}
	return v.err()
}

// Reaction validates a reaction input shape.
func Reaction(action string) error {
	var v violations
	if !models.ValidReactionAction(models.ReactionAction(action)) {
		v.add("action", "must be one of like, retweet")
	}
	return v.err()
}

// SendMessage validates the realtime message input shape.
func SendMessage(receiverID uint, content string) error {
	var v violations
	if receiverID == 0 {
		v.add("receiver_id", "required")
	}
	if strings.TrimSpace(content) == "" {
		v.add("content", "required")
	} else if utf8.RuneCountInString(content) > models.MaxMessageContentLen {
		v.add("content", "must be at most 1000 characters")
	}
	return v.err()
}
