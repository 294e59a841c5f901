package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty/internal/mediaref"
	"github.com/weiawesome/wes-io-live/watchparty/internal/mocks"
	"github.com/weiawesome/wes-io-live/watchparty/internal/store"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
	"go.uber.org/mock/gomock"
)

type fakeConn struct {
	id       string
	room     string
	received []interface{}
}

func (c *fakeConn) ID() string   { return c.id }
func (c *fakeConn) Room() string { return c.room }
func (c *fakeConn) SendMessage(message interface{}) error {
	c.received = append(c.received, message)
	return nil
}

// fakeFanout delivers synchronously to the connections it knows about.
type fakeFanout struct {
	rooms map[string][]*fakeConn
}

func newFakeFanout(conns ...*fakeConn) *fakeFanout {
	f := &fakeFanout{rooms: make(map[string][]*fakeConn)}
	for _, c := range conns {
		f.join(c)
	}
	return f
}

func (f *fakeFanout) join(c *fakeConn) {
	f.rooms[c.room] = append(f.rooms[c.room], c)
}

func (f *fakeFanout) leave(c *fakeConn) {
	conns := f.rooms[c.room]
	for i, other := range conns {
		if other == c {
			f.rooms[c.room] = append(conns[:i], conns[i+1:]...)
			return
		}
	}
}

func (f *fakeFanout) Broadcast(roomID string, message interface{}, exclude string) int {
	n := 0
	for _, c := range f.rooms[roomID] {
		if c.id == exclude {
			continue
		}
		c.SendMessage(message)
		n++
	}
	return n
}

func (f *fakeFanout) ClientCount(roomID string) int {
	return len(f.rooms[roomID])
}

func (f *fakeFanout) Participants(roomID string) []domain.ParticipantInfo {
	infos := make([]domain.ParticipantInfo, 0, len(f.rooms[roomID]))
	for _, c := range f.rooms[roomID] {
		infos = append(infos, domain.ParticipantInfo{ConnectionID: c.id})
	}
	return infos
}

type fixture struct {
	svc      WatchPartyService
	rooms    *store.Rooms
	fanout   *fakeFanout
	presence *mocks.MockPresence
	activity *mocks.MockActivity
	a, b, c  *fakeConn
}

// newFixture starts with A, B and C connected to the lobby.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		rooms:    store.NewRooms("lobby", domain.DefaultMediaID, 3),
		presence: mocks.NewMockPresence(ctrl),
		activity: mocks.NewMockActivity(ctrl),
		a:        &fakeConn{id: "A", room: "lobby"},
		b:        &fakeConn{id: "B", room: "lobby"},
		c:        &fakeConn{id: "C", room: "lobby"},
	}
	f.fanout = newFakeFanout(f.a, f.b, f.c)
	f.svc = NewWatchPartyService(f.rooms, f.fanout, mediaref.NewExtractor(), f.presence, f.activity)
	return f
}

func ptr[T any](v T) *T {
	return &v
}

func stateMessage(media domain.MediaID, playing bool) *domain.PlaybackStateMessage {
	return domain.NewPlaybackStateMessage(domain.PlaybackState{Media: media, Playing: playing})
}

func TestHandleSyncIntent_PlayBroadcastsToOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activity.EXPECT().Record(pubsub.EventPlaybackChanged, "lobby", &pubsub.PlaybackChangedPayload{
		ConnectionID: "A", MediaID: "dQw4w9WgXcQ", Playing: true,
	})

	// When A presses play
	err := f.svc.HandleSyncIntent(ctx, f.a, domain.SyncIntent{Playing: ptr(true)})

	// Then the store is playing and B, C (not A) get the full state
	require.NoError(t, err)
	require.Equal(t, domain.PlaybackState{Media: "dQw4w9WgXcQ", Playing: true}, f.rooms.For("lobby").Get())
	require.Equal(t, []interface{}{stateMessage("dQw4w9WgXcQ", true)}, f.b.received)
	require.Equal(t, []interface{}{stateMessage("dQw4w9WgXcQ", true)}, f.c.received)
	require.Empty(t, f.a.received)
}

func TestHandleSyncIntent_URLChangesMediaOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activity.EXPECT().Record(pubsub.EventPlaybackChanged, "lobby", gomock.Any()).Times(2)

	f.svc.HandleSyncIntent(ctx, f.a, domain.SyncIntent{Playing: ptr(true)})
	err := f.svc.HandleSyncIntent(ctx, f.a, domain.SyncIntent{URL: ptr("https://youtu.be/abc12345678")})

	require.NoError(t, err)
	require.Equal(t, domain.PlaybackState{Media: "abc12345678", Playing: true}, f.rooms.For("lobby").Get())
	require.Equal(t, stateMessage("abc12345678", true), f.b.received[1])
}

func TestHandleSyncIntent_MalformedURLIsDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.rooms.For("lobby").Get()

	// No activity expected: the mock fails the test on any Record call.
	err := f.svc.HandleSyncIntent(ctx, f.a, domain.SyncIntent{URL: ptr("not-a-video-link"), Playing: ptr(true)})

	require.NoError(t, err)
	require.Equal(t, before, f.rooms.For("lobby").Get())
	require.Empty(t, f.a.received)
	require.Empty(t, f.b.received)
	require.Empty(t, f.c.received)
}

func TestHandleSyncIntent_EmptyIntentStillBroadcasts(t *testing.T) {
	f := newFixture(t)
	f.activity.EXPECT().Record(pubsub.EventPlaybackChanged, "lobby", gomock.Any())

	require.NoError(t, f.svc.HandleSyncIntent(context.Background(), f.b, domain.SyncIntent{}))

	require.Equal(t, []interface{}{stateMessage("dQw4w9WgXcQ", false)}, f.a.received)
	require.Equal(t, []interface{}{stateMessage("dQw4w9WgXcQ", false)}, f.c.received)
	require.Empty(t, f.b.received)
}

func TestHandleSyncIntent_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activity.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	intent := domain.SyncIntent{URL: ptr("https://www.youtube.com/watch?v=xyz12345678"), Playing: ptr(true)}
	f.svc.HandleSyncIntent(ctx, f.a, intent)
	once := f.rooms.For("lobby").Get()
	f.svc.HandleSyncIntent(ctx, f.a, intent)

	require.Equal(t, once, f.rooms.For("lobby").Get())
	require.Equal(t, f.b.received[0], f.b.received[1])
}

func TestHandleSyncIntent_LastWriterWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activity.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	f.svc.HandleSyncIntent(ctx, f.a, domain.SyncIntent{Playing: ptr(true)})
	f.svc.HandleSyncIntent(ctx, f.b, domain.SyncIntent{Playing: ptr(false)})

	require.False(t, f.rooms.For("lobby").Get().Playing)
	// A hears about B's pause, B never hears its own.
	require.Equal(t, []interface{}{stateMessage("dQw4w9WgXcQ", false)}, f.a.received)
	require.Equal(t, []interface{}{stateMessage("dQw4w9WgXcQ", true)}, f.b.received)
}

func TestHandleSyncIntent_RoomsAreIndependent(t *testing.T) {
	f := newFixture(t)
	other := &fakeConn{id: "E", room: "cinema"}
	f.fanout.join(other)
	f.activity.EXPECT().Record(pubsub.EventPlaybackChanged, "cinema", gomock.Any())

	f.svc.HandleSyncIntent(context.Background(), other, domain.SyncIntent{Playing: ptr(true)})

	require.True(t, f.rooms.For("cinema").Get().Playing)
	require.False(t, f.rooms.For("lobby").Get().Playing)
	require.Empty(t, f.a.received)
}

func TestHandleConnect_SendsStateToNewcomerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rooms.For("lobby").Apply(domain.PlaybackPatch{Media: ptr(domain.MediaID("xyz12345678")), Playing: ptr(true)})

	// Given D joins a lobby that already has A, B and C
	d := &fakeConn{id: "D", room: "lobby"}
	f.fanout.join(d)

	require.NoError(t, f.svc.HandleConnect(ctx, d))

	require.Equal(t, []interface{}{stateMessage("xyz12345678", true)}, d.received)
	require.Empty(t, f.a.received)
	require.Empty(t, f.b.received)
	require.Empty(t, f.c.received)
}

func TestHandleConnect_FirstParticipantOccupiesRoom(t *testing.T) {
	f := newFixture(t)
	e := &fakeConn{id: "E", room: "cinema"}
	f.fanout.join(e)
	f.presence.EXPECT().RoomOccupied("cinema")

	require.NoError(t, f.svc.HandleConnect(context.Background(), e))
	require.Equal(t, []interface{}{stateMessage(domain.DefaultMediaID, false)}, e.received)
}

func TestHandleDisconnect_NoBroadcast(t *testing.T) {
	f := newFixture(t)
	f.fanout.leave(f.a)

	require.NoError(t, f.svc.HandleDisconnect(context.Background(), f.a))

	require.Empty(t, f.b.received)
	require.Empty(t, f.c.received)
}

func TestHandleDisconnect_LastParticipantEmptiesRoom(t *testing.T) {
	f := newFixture(t)
	f.presence.EXPECT().RoomEmptied("lobby")

	for _, c := range []*fakeConn{f.a, f.b, f.c} {
		f.fanout.leave(c)
		require.NoError(t, f.svc.HandleDisconnect(context.Background(), c))
	}
}

func TestHandleChatMessage_RelaysToOthersVerbatim(t *testing.T) {
	f := newFixture(t)
	f.activity.EXPECT().Record(pubsub.EventChatRelayed, "lobby", &pubsub.ChatRelayedPayload{
		ConnectionID: "A", Sender: "A", TextLength: 2, Recipients: 2,
	})

	err := f.svc.HandleChatMessage(context.Background(), f.a, domain.ChatMessage{Sender: "A", Text: "hi"})

	require.NoError(t, err)
	want := &domain.ChatMessageWS{Type: domain.MsgTypeChatMessage, Sender: "A", Text: "hi"}
	require.Equal(t, []interface{}{want}, f.b.received)
	require.Equal(t, []interface{}{want}, f.c.received)
	require.Empty(t, f.a.received)
}

func TestHandleChatMessage_NoValidation(t *testing.T) {
	f := newFixture(t)
	f.activity.EXPECT().Record(pubsub.EventChatRelayed, "lobby", gomock.Any())

	require.NoError(t, f.svc.HandleChatMessage(context.Background(), f.a, domain.ChatMessage{}))

	require.Equal(t, []interface{}{&domain.ChatMessageWS{Type: domain.MsgTypeChatMessage}}, f.b.received)
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)

	snap, ok := f.svc.Snapshot("lobby")
	require.True(t, ok)
	require.Equal(t, "lobby", snap.RoomID)
	require.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", snap.Media)
	require.Equal(t, "dQw4w9WgXcQ", snap.MediaID)
	require.False(t, snap.Playing)
	require.Len(t, snap.Participants, 3)

	_, ok = f.svc.Snapshot("nowhere")
	require.False(t, ok)
}

func TestOpenRoom_Limit(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.OpenRoom("lobby"))
	require.NoError(t, f.svc.OpenRoom("cinema"))
	require.NoError(t, f.svc.OpenRoom("theater"))
	require.ErrorIs(t, f.svc.OpenRoom("arcade"), store.ErrRoomLimit)

	_, ok := f.svc.Snapshot("arcade")
	require.False(t, ok)
}
