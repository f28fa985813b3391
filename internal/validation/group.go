package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

// GroupInput 创建小组的原始输入，MaxMembers 为 0 时使用默认值
type GroupInput struct {
	Name        string
	Description string
	Visibility  string
	MaxMembers  int
}

type GroupDraft struct {
	Name        string
	Description string
	Visibility  models.GroupVisibility
	MaxMembers  int
}

func ValidateNewGroup(in GroupInput) (GroupDraft, error) {
	if strings.TrimSpace(in.Name) == "" {
		return GroupDraft{}, apperr.Validation(ReasonNameRequired)
	}
	if utf8.RuneCountInString(in.Name) > MaxGroupNameLen {
		return GroupDraft{}, apperr.Validation(ReasonNameTooLong)
	}
	if utf8.RuneCountInString(in.Description) > MaxGroupDescLen {
		return GroupDraft{}, apperr.Validation(ReasonDescriptionTooLong)
	}

	maxMembers := in.MaxMembers
	switch {
	case maxMembers > models.MaxMaxMembers:
		return GroupDraft{}, apperr.Validation(ReasonMaxMembersTooMany)
	case maxMembers == 0:
		maxMembers = models.DefaultMaxMembers
	case maxMembers < models.MinMaxMembers:
		return GroupDraft{}, apperr.Validation(ReasonMaxMembersTooFew)
	}

	visibility := models.VisibilityPrivate
	if strings.TrimSpace(in.Visibility) != "" {
		v, err := ValidateVisibility(in.Visibility)
		if err != nil {
			return GroupDraft{}, err
		}
		visibility = v
	}

	return GroupDraft{
		Name:        in.Name,
		Description: in.Description,
		Visibility:  visibility,
		MaxMembers:  maxMembers,
	}, nil
}

func (d GroupDraft) Apply(g *models.Group) {
	g.Name = d.Name
	g.Description = d.Description
	g.Visibility = d.Visibility
	g.MaxMembers = d.MaxMembers
}

func ValidateVisibility(s string) (models.GroupVisibility, error) {
	v, ok := models.ParseGroupVisibility(s)
	if !ok {
		return "", apperr.Validation(ReasonInvalidVisibility)
	}
	return v, nil
}

func ValidateRole(s string) (models.GroupRole, error) {
	r, ok := models.ParseGroupRole(s)
	if !ok {
		return "", apperr.Validation(ReasonInvalidRole)
	}
	return r, nil
}
