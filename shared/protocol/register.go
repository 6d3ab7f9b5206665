package protocol

import (
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetPawn        uint = 10
	SyncIDNetDesiredView uint = 11
)

// RegisterComponents registers the periodically synced components with necs.
// This must be called by both server and client before any network operations.
//
// Desired position is absent: it travels only on the explicit
// broadcast path. Neither component is interpolated by necs since the
// smoother already eases live state toward whatever arrives.
func RegisterComponents() error {
	if err := esync.RegisterComponent(
		SyncIDNetPawn,
		netcomponents.NetPawnData{},
		netcomponents.NetPawn,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetDesiredView,
		netcomponents.NetDesiredViewData{},
		netcomponents.NetDesiredView,
	); err != nil {
		return err
	}

	return nil
}
