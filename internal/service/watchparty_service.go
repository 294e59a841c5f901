package service

import (
	"github.com/weiawesome/wes-io-live/watchparty/internal/mediaref"
	"github.com/weiawesome/wes-io-live/watchparty/internal/store"
)

type watchPartyService struct {
	rooms     *store.Rooms
	fanout    Fanout
	extractor mediaref.Extractor
	presence  Presence
	activity  Activity
}

func NewWatchPartyService(
	rooms *store.Rooms,
	fanout Fanout,
	extractor mediaref.Extractor,
	presence Presence,
	activity Activity,
) WatchPartyService {
	return &watchPartyService{
		rooms:     rooms,
		fanout:    fanout,
		extractor: extractor,
		presence:  presence,
		activity:  activity,
	}
}
