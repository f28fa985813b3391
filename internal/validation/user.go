package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/utils"
)

// IsEmailShaped 用户注册和邀请共用的邮箱格式判断
func IsEmailShaped(s string) bool {
	return utils.ValidateEmail(strings.TrimSpace(s))
}

// NormalizeEmail 去空白并转小写，邀请去重和成员匹配都基于它
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ValidateUser(email, password, displayName string) error {
	if !IsEmailShaped(email) {
		return apperr.Validation(ReasonInvalidEmail)
	}
	if !utils.ValidatePassword(password) {
		return apperr.Validation(ReasonPasswordTooShort)
	}
	return ValidateDisplayName(displayName)
}

// ValidateDisplayName 注册和修改资料共用
func ValidateDisplayName(displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return apperr.Validation(ReasonDisplayNameMissing)
	}
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLen {
		return apperr.Validation(ReasonDisplayNameTooLong)
	}
	return nil
}
