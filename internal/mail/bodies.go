package mail

import "strconv"

// Subject is used for every outgoing message.
const Subject = "NAMELESS PROJECT"

// CodePurpose selects the wording of a confirmation-code message.
type CodePurpose string

const (
	CodeRegistration   CodePurpose = "registration"
	CodeDeleteAccount  CodePurpose = "delete-account"
	CodeChangeEmail    CodePurpose = "change-email"
	CodeChangePassword CodePurpose = "change-password"
)

var codePrefix = map[CodePurpose]string{
	CodeRegistration:   "Your verification code for account registration: ",
	CodeDeleteAccount:  "Your verification code for account deletion: ",
	CodeChangeEmail:    "Your verification code for changing your email address: ",
	CodeChangePassword: "Your verification code for changing your password: ",
}

// CodeBody renders the message carrying a confirmation code.
func CodeBody(purpose CodePurpose, code int) string {
	prefix, ok := codePrefix[purpose]
	if !ok {
		prefix = "Your verification code: "
	}
	return prefix + strconv.Itoa(code)
}

const supportHint = " If this was not you, please write to support."
const appealHint = " Write to support if you want to challenge this decision."

// Account notices sent after a confirmed change.
const (
	InfoRegistered      = "Your account has been successfully registered." + supportHint
	InfoAccountDeleted  = "Your account has been successfully deleted." + supportHint
	InfoUsernameChanged = "Your username has been successfully updated." + supportHint
	InfoEmailChanged    = "Your email address has been successfully updated." + supportHint
	InfoPasswordChanged = "Your password has been successfully updated." + supportHint
)

// Notices sent when staff act on someone's account or content.
const (
	ModeratorRenamedUser = "A moderator changed your username because the previous one did not follow the community rules." + appealHint
	ModeratorDeletedUser = "A moderator deleted your account for violating the community rules." + appealHint
	ModeratorEditedPost  = "A moderator edited one of your posts because it violated the community rules." + appealHint
	ModeratorDeletedPost = "A moderator deleted one of your posts because it violated the community rules." + appealHint
	AdminDeletedUser     = "An administrator deleted your account for violating the community rules." + appealHint
	AdminChangedRole     = "An administrator changed the role of your account to "
)
