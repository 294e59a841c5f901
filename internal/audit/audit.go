package audit

import (
	"context"

	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
)

// Audit actions for the watch party service.
const (
	ActionConnect       = "watchparty.connect"
	ActionDisconnect    = "watchparty.disconnect"
	ActionAccessDenied  = "watchparty.access_denied"
	ActionSyncApplied   = "watchparty.sync_applied"
	ActionSyncDiscarded = "watchparty.sync_discarded"
	ActionChatRelayed   = "watchparty.chat_relayed"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, connectionID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldConnectionID, connectionID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, connectionID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldConnectionID, connectionID).
		Str(FieldDetail, detail).
		Msg(msg)
}
