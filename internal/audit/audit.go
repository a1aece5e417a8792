package audit

import (
	"context"

	"github.com/jserwatka/network/pkg/log"
)

// Audit actions.
const (
	ActionRegister      = "user.register"
	ActionLogin         = "user.login"
	ActionLoginFailed   = "user.login_failed"
	ActionUpdateProfile = "user.update_profile"
	ActionDeleteAccount = "user.delete_account"

	ActionPostCreate = "post.create"
	ActionPostEdit   = "post.edit"
	ActionPostDelete = "post.delete"

	ActionCommentCreate = "comment.create"
	ActionCommentEdit   = "comment.edit"
	ActionCommentDelete = "comment.delete"

	ActionReactionSet    = "reaction.set"
	ActionReactionRemove = "reaction.remove"

	ActionFollow   = "follow.create"
	ActionUnfollow = "follow.delete"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry naming the object acted on.
func LogTarget(ctx context.Context, action string, userID, targetID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Uint(FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID uint, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
