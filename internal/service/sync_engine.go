package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/watchparty/internal/audit"
	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
)

// HandleConnect pushes the room's current state to the new connection only.
func (s *watchPartyService) HandleConnect(ctx context.Context, conn Connection) error {
	state := s.rooms.For(conn.Room()).Get()

	if s.fanout.ClientCount(conn.Room()) == 1 {
		s.presence.RoomOccupied(conn.Room())
	}
	audit.Log(ctx, audit.ActionConnect, conn.ID(), "participant connected")

	return conn.SendMessage(domain.NewPlaybackStateMessage(state))
}

// HandleDisconnect has no effect on other participants.
func (s *watchPartyService) HandleDisconnect(ctx context.Context, conn Connection) error {
	if s.fanout.ClientCount(conn.Room()) == 0 {
		s.presence.RoomEmptied(conn.Room())
	}
	audit.Log(ctx, audit.ActionDisconnect, conn.ID(), "participant disconnected")
	return nil
}

// HandleSyncIntent resolves, applies and rebroadcasts a playback intent.
// Intents whose url cannot be resolved are dropped without a trace on the
// wire.
func (s *watchPartyService) HandleSyncIntent(ctx context.Context, conn Connection, intent domain.SyncIntent) error {
	l := log.Ctx(ctx)

	patch := domain.PlaybackPatch{Playing: intent.Playing}
	if intent.URL != nil {
		media, err := s.extractor.Extract(*intent.URL)
		if err != nil {
			l.Debug().Err(err).Str("url", *intent.URL).Msg("discarding sync intent")
			audit.LogWithDetail(ctx, audit.ActionSyncDiscarded, conn.ID(), *intent.URL, "sync intent discarded")
			return nil
		}
		patch.Media = &media
	}

	state := s.rooms.For(conn.Room()).Apply(patch)
	recipients := s.fanout.Broadcast(conn.Room(), domain.NewPlaybackStateMessage(state), conn.ID())

	l.Info().
		Str("media_id", state.Media.String()).
		Bool("playing", state.Playing).
		Int("recipients", recipients).
		Msg("playback state updated")
	audit.LogWithDetail(ctx, audit.ActionSyncApplied, conn.ID(), state.Media.String(), "sync intent applied")

	s.activity.Record(pubsub.EventPlaybackChanged, conn.Room(), &pubsub.PlaybackChangedPayload{
		ConnectionID: conn.ID(),
		MediaID:      state.Media.String(),
		Playing:      state.Playing,
	})
	return nil
}

func (s *watchPartyService) OpenRoom(roomID string) error {
	return s.rooms.Open(roomID)
}

// Snapshot returns the state of an existing room and its participants.
func (s *watchPartyService) Snapshot(roomID string) (domain.RoomStateResponse, bool) {
	ps, ok := s.rooms.Lookup(roomID)
	if !ok {
		return domain.RoomStateResponse{}, false
	}
	state := ps.Get()
	return domain.RoomStateResponse{
		RoomID:       roomID,
		Media:        state.Media.URL(),
		MediaID:      state.Media.String(),
		Playing:      state.Playing,
		Participants: s.fanout.Participants(roomID),
	}, true
}
