package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
)

func ValidateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation(ReasonContentRequired)
	}
	if utf8.RuneCountInString(content) > MaxCommentLen {
		return apperr.Validation(ReasonContentTooLong)
	}
	return nil
}
