package systems

import (
	"fmt"

	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/messages"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
)

// ReplicationMode selects how desired state reaches observers.
type ReplicationMode int

const (
	// ReplicationSplit sends position on a reliable broadcast after every
	// authoritative change, while yaw and zoom only travel with the periodic
	// sync. An observer can therefore hold a new position next to a yaw that
	// is up to one sync interval old.
	ReplicationSplit ReplicationMode = iota
	// ReplicationVersioned sends the whole desired state on every change,
	// tagged with a per-pawn version. Observers drop anything not newer than
	// what they last applied, and the periodic round re-sends the current
	// version so a lost event heals.
	ReplicationVersioned
)

func (m ReplicationMode) String() string {
	switch m {
	case ReplicationSplit:
		return "split"
	case ReplicationVersioned:
		return "versioned"
	default:
		return fmt.Sprintf("ReplicationMode(%d)", int(m))
	}
}

// ParseReplicationMode accepts the names returned by String.
func ParseReplicationMode(s string) (ReplicationMode, error) {
	switch s {
	case "split", "":
		return ReplicationSplit, nil
	case "versioned":
		return ReplicationVersioned, nil
	default:
		return 0, fmt.Errorf("unknown replication mode %q", s)
	}
}

// Replicator moves desired state between the host and its observers. The host
// side needs a Downlink; an observer-only replicator is built with a nil one.
// All methods must be called from the goroutine that owns the world.
type Replicator struct {
	world    donburi.World
	mode     ReplicationMode
	downlink Downlink
	log      *zap.SugaredLogger
}

func NewReplicator(world donburi.World, mode ReplicationMode, downlink Downlink) *Replicator {
	return &Replicator{
		world:    world,
		mode:     mode,
		downlink: downlink,
		log:      logging.Named("replicator"),
	}
}

func (r *Replicator) Mode() ReplicationMode {
	return r.mode
}

// Publish sends a pawn's desired state after an authoritative change.
func (r *Replicator) Publish(entry *donburi.Entry) error {
	if r.downlink == nil {
		return ErrNotAuthoritative
	}

	id := PawnID(entry)
	switch r.mode {
	case ReplicationVersioned:
		pawn := netcomponents.NetPawn.Get(entry)
		pawn.Version++
		evt := stateEvent(id, pawn.Version, netcomponents.Desired(entry))
		if err := r.downlink.BroadcastDesiredState(evt); err != nil {
			return fmt.Errorf("broadcast desired state: %w", err)
		}
	default:
		pos := netcomponents.Desired(entry).Position
		if err := r.downlink.BroadcastDesiredPosition(messages.NewDesiredPositionEvent(id, pos)); err != nil {
			return fmt.Errorf("broadcast desired position: %w", err)
		}
	}
	return nil
}

// PeriodicSync runs one sync round. In split mode it publishes every pawn's
// yaw and zoom; in versioned mode it re-sends every pawn's current versioned
// state without bumping the version.
func (r *Replicator) PeriodicSync() error {
	if r.downlink == nil {
		return ErrNotAuthoritative
	}

	if r.mode == ReplicationVersioned {
		var firstErr error
		PawnQuery.Each(r.world, func(entry *donburi.Entry) {
			pawn := netcomponents.NetPawn.Get(entry)
			evt := stateEvent(pawn.ID, pawn.Version, netcomponents.Desired(entry))
			if err := r.downlink.BroadcastDesiredState(evt); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("resend desired state: %w", err)
			}
		})
		return firstErr
	}

	if err := r.downlink.PublishViews(r.Views()); err != nil {
		return fmt.Errorf("publish views: %w", err)
	}
	return nil
}

// Views collects the yaw and zoom of every pawn.
func (r *Replicator) Views() []messages.ViewSync {
	var views []messages.ViewSync
	PawnQuery.Each(r.world, func(entry *donburi.Entry) {
		view := netcomponents.NetDesiredView.Get(entry)
		views = append(views, messages.ViewSync{
			PawnID: PawnID(entry),
			Yaw:    view.Yaw,
			Zoom:   view.Zoom,
		})
	})
	return views
}

// ApplyDesiredPosition overwrites the mirrored position. Last write wins.
func (r *Replicator) ApplyDesiredPosition(evt messages.DesiredPositionEvent) error {
	entry, err := LookupPawn(r.world, evt.PawnID)
	if err != nil {
		return err
	}
	netcomponents.SetDesiredPosition(entry, evt.Position())
	return nil
}

// ApplyViewSync overwrites the mirrored yaw and zoom. It is a no-op in
// versioned mode, where yaw and zoom only change together with a version.
func (r *Replicator) ApplyViewSync(v messages.ViewSync) error {
	if r.mode == ReplicationVersioned {
		return nil
	}
	entry, err := LookupPawn(r.world, v.PawnID)
	if err != nil {
		return err
	}
	netcomponents.NetDesiredView.SetValue(entry, netcomponents.NetDesiredViewData{Yaw: v.Yaw, Zoom: v.Zoom})
	return nil
}

// ApplyViews applies one sync round. Views for pawns this world has not
// spawned yet are skipped; the next round repeats them.
func (r *Replicator) ApplyViews(views []messages.ViewSync) {
	for _, v := range views {
		if err := r.ApplyViewSync(v); err != nil {
			r.log.Debugw("skipping view sync", "pawn", v.PawnID, "error", err)
		}
	}
}

// ApplyDesiredState applies a versioned update and reports whether it was
// newer than the last one applied.
func (r *Replicator) ApplyDesiredState(evt messages.DesiredStateEvent) (bool, error) {
	entry, err := LookupPawn(r.world, evt.PawnID)
	if err != nil {
		return false, err
	}
	pawn := netcomponents.NetPawn.Get(entry)
	if evt.Version <= pawn.Version {
		return false, nil
	}
	pawn.Version = evt.Version
	netcomponents.SetDesired(entry, gamemath.DesiredState{
		Position: evt.Position(),
		Yaw:      evt.Yaw,
		Zoom:     evt.Zoom,
	})
	return true, nil
}

// ApplySpawn mirrors a pawn announced by the host. Announcing a pawn that
// already exists only refreshes its desired state.
func (r *Replicator) ApplySpawn(evt messages.PawnSpawnEvent, tuning gamemath.Tuning, local bool) *donburi.Entry {
	desired := gamemath.DesiredState{
		Position: mgl64.Vec3{evt.X, evt.Y, evt.Z},
		Yaw:      evt.Yaw,
		Zoom:     evt.Zoom,
	}
	if entry, ok := FindPawn(r.world, evt.PawnID); ok {
		netcomponents.SetDesired(entry, desired)
		return entry
	}
	return SpawnPawn(r.world, PawnSpec{
		ID:      evt.PawnID,
		Owner:   evt.Owner,
		IsLocal: local,
		Desired: desired,
		Tuning:  tuning,
	})
}

// ApplyDespawn removes a mirrored pawn.
func (r *Replicator) ApplyDespawn(evt messages.PawnDespawnEvent) bool {
	return RemovePawn(r.world, evt.PawnID)
}

// SpawnEvent describes an existing pawn for observers.
func SpawnEvent(entry *donburi.Entry) messages.PawnSpawnEvent {
	pawn := netcomponents.NetPawn.Get(entry)
	ds := netcomponents.Desired(entry)
	return messages.PawnSpawnEvent{
		PawnID: pawn.ID,
		Owner:  pawn.Owner,
		X:      ds.Position.X(),
		Y:      ds.Position.Y(),
		Z:      ds.Position.Z(),
		Yaw:    ds.Yaw,
		Zoom:   ds.Zoom,
	}
}

func stateEvent(id uint32, version uint64, ds gamemath.DesiredState) messages.DesiredStateEvent {
	return messages.DesiredStateEvent{
		PawnID:  id,
		Version: version,
		X:       ds.Position.X(),
		Y:       ds.Position.Y(),
		Z:       ds.Position.Z(),
		Yaw:     ds.Yaw,
		Zoom:    ds.Zoom,
	}
}
