package services

const (
	ReasonSuccess = "Success"

	ReasonEmailTaken    = "Email already registered"
	ReasonEditOtherUser = "Cannot edit another user"
	ReasonProfileSaved  = "Profile updated"

	ReasonNotGroupMember = "Not a member of this group"
	ReasonTaskForbidden  = "Not allowed to access this task"
	ReasonDeleteTask     = "Only the creator or a group admin can delete this task"

	ReasonGroupPrivate     = "Group is private; an invitation is required"
	ReasonCreatorCannotGo  = "Group creator cannot leave"
	ReasonLastAdminLeave   = "Last admin cannot leave"
	ReasonAdminVisibility  = "Only admins can change visibility"
	ReasonAdminRoles       = "Only admins can change roles"
	ReasonLastAdminDemote  = "Cannot demote the last admin"
	ReasonAdminDeleteGroup = "Only admins can delete the group"
	ReasonLeftGroup        = "Left group"
	ReasonJoinedGroup      = "Joined group"
	ReasonAdminRemove      = "Only admins can remove members"
	ReasonCreatorRemove    = "Group creator cannot be removed"
	ReasonLastAdminRemove  = "Cannot remove the last admin"
	ReasonMemberRemoved    = "User removed"

	ReasonAdminInvite     = "Only admins can invite members"
	ReasonInvalidInvitee  = "Invalid email/username"
	ReasonDuplicateInvite = "Duplicate invitation"
	ReasonInviteRecorded  = "Invitation recorded"
	ReasonInviteExpired   = "Invitation expired"
	ReasonInviteOtherUser = "Invitation belongs to another user"
	ReasonInviteAccepted  = "Invitation accepted"
	ReasonInviteUsed      = "Invitation already used"
	ReasonDeliveryRetry   = "Delivery error; retry"
	ReasonAlreadyMember   = "Already a member"

	ReasonGroupTaskOnly     = "Only group tasks can be assigned"
	ReasonAdminAssign       = "Only admins can assign tasks"
	ReasonNoAssignee        = "Select at least one assignee"
	ReasonAssigneeNotMember = "Assignee must be a group member"
	ReasonTaskAssigned      = "Task assigned"

	ReasonUnsupportedFormat = "Error: unsupported format"
	ReasonInvalidRange      = "Error: invalid date range"
	ReasonExportSuccess     = "Success: file downloaded"
	ReasonExportEmpty       = "Empty"
	ReasonExportFailure     = "Failure: export error"
)

// AssignmentMessage 分配通知文案
func AssignmentMessage(title string) string {
	return "Assigned: " + title
}
