package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

func TestValidateNewGroup(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		draft, err := ValidateNewGroup(GroupInput{Name: "G"})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultMaxMembers, draft.MaxMembers)
		assert.Equal(t, models.VisibilityPrivate, draft.Visibility)
	})

	t.Run("public", func(t *testing.T) {
		draft, err := ValidateNewGroup(GroupInput{Name: "G", Visibility: "public", MaxMembers: 50})
		require.NoError(t, err)
		assert.Equal(t, models.VisibilityPublic, draft.Visibility)
		assert.Equal(t, 50, draft.MaxMembers)
	})

	tests := []struct {
		name   string
		in     GroupInput
		reason string
	}{
		{"name required", GroupInput{Name: " "}, ReasonNameRequired},
		{"name too long", GroupInput{Name: strings.Repeat("n", 101)}, ReasonNameTooLong},
		{"description too long", GroupInput{Name: "G", Description: strings.Repeat("d", 501)}, ReasonDescriptionTooLong},
		{"max members 51", GroupInput{Name: "G", MaxMembers: 51}, ReasonMaxMembersTooMany},
		{"max members 1", GroupInput{Name: "G", MaxMembers: 1}, ReasonMaxMembersTooFew},
		{"negative max members", GroupInput{Name: "G", MaxMembers: -3}, ReasonMaxMembersTooFew},
		{"bad visibility", GroupInput{Name: "G", Visibility: "hidden"}, ReasonInvalidVisibility},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateNewGroup(tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.reason, apperr.ReasonOf(err))
		})
	}
}

func TestValidateComment(t *testing.T) {
	assert.NoError(t, ValidateComment("looks good"))
	assert.Equal(t, ReasonContentRequired, apperr.ReasonOf(ValidateComment("\n\t")))
	assert.Equal(t, ReasonContentTooLong, apperr.ReasonOf(ValidateComment(strings.Repeat("c", 2001))))
}

func TestValidateUser(t *testing.T) {
	assert.NoError(t, ValidateUser("alice@example.com", "secret123", "Alice"))
	assert.Equal(t, ReasonInvalidEmail, apperr.ReasonOf(ValidateUser("alice", "secret123", "Alice")))
	assert.Equal(t, ReasonPasswordTooShort, apperr.ReasonOf(ValidateUser("a@b.io", "short", "Alice")))
	assert.Equal(t, ReasonDisplayNameMissing, apperr.ReasonOf(ValidateUser("a@b.io", "secret123", "")))
	assert.Equal(t, ReasonDisplayNameTooLong, apperr.ReasonOf(ValidateUser("a@b.io", "secret123", strings.Repeat("x", 101))))
}

func TestEmailHelpers(t *testing.T) {
	assert.True(t, IsEmailShaped(" bob@example.com "))
	assert.False(t, IsEmailShaped("bob@example"))
	assert.False(t, IsEmailShaped("not an email"))
	assert.Equal(t, "bob@example.com", NormalizeEmail(" Bob@Example.COM "))
}
