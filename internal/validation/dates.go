package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

var dueRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}( \d{2}:\d{2})?$`)

// ParseDue 解析截止时间，只接受 YYYY-MM-DD 或 YYYY-MM-DD HH:MM，按 UTC 处理。
// 空串返回 nil 表示没有截止时间。
func ParseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !dueRe.MatchString(s) {
		return nil, apperr.Parse(ReasonInvalidDate, fmt.Errorf("unsupported date format %q", s))
	}
	layout := DateLayout
	if len(s) > len(DateLayout) {
		layout = DateTimeLayout
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return nil, apperr.Parse(ReasonInvalidDate, err)
	}
	return &t, nil
}

// ParseDate 解析 YYYY-MM-DD 日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, apperr.Parse(ReasonInvalidDate, err)
	}
	return t, nil
}

// DateOf 截断到 UTC 日历日
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BeforeToday 截止日期的日历日严格早于 now 所在日
func BeforeToday(due, now time.Time) bool {
	return DateOf(due).Before(DateOf(now))
}
