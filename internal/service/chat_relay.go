package service

import (
	"context"
	"unicode/utf8"

	"github.com/weiawesome/wes-io-live/watchparty/internal/audit"
	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
)

// HandleChatMessage relays msg verbatim to everyone in the sender's room
// except the sender. Nothing is validated or kept.
func (s *watchPartyService) HandleChatMessage(ctx context.Context, conn Connection, msg domain.ChatMessage) error {
	recipients := s.fanout.Broadcast(conn.Room(), domain.NewChatMessageWS(msg), conn.ID())

	l := log.Ctx(ctx)
	l.Debug().Int("recipients", recipients).Msg("chat message relayed")
	audit.Log(ctx, audit.ActionChatRelayed, conn.ID(), "chat message relayed")

	s.activity.Record(pubsub.EventChatRelayed, conn.Room(), &pubsub.ChatRelayedPayload{
		ConnectionID: conn.ID(),
		Sender:       msg.Sender,
		TextLength:   utf8.RuneCountInString(msg.Text),
		Recipients:   recipients,
	})
	return nil
}
