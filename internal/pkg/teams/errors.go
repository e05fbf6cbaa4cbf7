package teams

import "errors"

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrAlreadyMember         = errors.New("user is already a member of this team")
	ErrNotMember             = errors.New("user is not a member of this team")
	ErrInvalidRole           = errors.New("role must be one of admin, member, viewer")
	ErrCannotRemoveOwner     = errors.New("the team owner cannot be removed")
	ErrCannotChangeOwnerRole = errors.New("the team owner's role cannot be changed")
	ErrForbidden             = errors.New("not allowed to perform this action on the team")
)
