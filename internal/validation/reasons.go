package validation

// 对外暴露的原因文案，调用方和测试都按字面值比较
const (
	ReasonSuccess     = "Success"
	ReasonPastDueSave = "Warning allowed; saved"

	ReasonTitleRequired   = "Title is required"
	ReasonTitleTooLong    = "Title must be <= 200 chars"
	ReasonNotesTooLong    = "Notes must be <= 1000 chars"
	ReasonInvalidDate     = "Error: invalid date"
	ReasonInvalidPriority = "Priority must be LOW, MEDIUM or HIGH"
	ReasonCategoryTooLong = "Category must be <= 50 chars"
	ReasonInvalidStatus   = "Status must be OPEN, IN_PROGRESS or COMPLETED"

	ReasonNameRequired       = "Name is required"
	ReasonNameTooLong        = "Name must be <= 100 chars"
	ReasonDescriptionTooLong = "Description must be <= 500 chars"
	ReasonMaxMembersTooMany  = "Maximum members cannot exceed 50"
	ReasonMaxMembersTooFew   = "Maximum members must be at least 2"
	ReasonInvalidVisibility  = "Visibility must be PRIVATE or PUBLIC"
	ReasonInvalidRole        = "Role must be STUDENT or ADMIN"

	ReasonContentRequired = "Content is required"
	ReasonContentTooLong  = "Content must be <= 2000 chars"

	ReasonInvalidEmail       = "Invalid email"
	ReasonPasswordTooShort   = "Password must be at least 8 chars"
	ReasonDisplayNameMissing = "Display name is required"
	ReasonDisplayNameTooLong = "Display name must be <= 100 chars"
)

const (
	MaxTitleLen       = 200
	MaxNotesLen       = 1000
	MaxCategoryLen    = 50
	MaxGroupNameLen   = 100
	MaxGroupDescLen   = 500
	MaxCommentLen     = 2000
	MaxDisplayNameLen = 100
	MinPasswordLen    = 8
)
