package transport

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/skylight-games/scenesync/internal/protocol"
	"github.com/skylight-games/scenesync/internal/settings"
)

// flushUpdate flushes the manager and decodes the resulting envelope.
func flushUpdate(t *testing.T, u *UpdateManager) protocol.ServerUpdate {
	t.Helper()

	msg, ok, err := u.Flush()
	if err != nil {
		t.Fatalf("flushing: %v", err)
	}
	if !ok {
		t.Fatal("expected a pending update")
	}

	var env protocol.Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshalling envelope: %v", err)
	}
	testutil.AssertEqual(t, "envelope tag", env.Type, protocol.MsgServerUpdate)

	var upd protocol.ServerUpdate
	if err := json.Unmarshal(env.Payload, &upd); err != nil {
		t.Fatalf("unmarshalling server update: %v", err)
	}
	return upd
}

func TestUpdateManagerFlushEmpty(t *testing.T) {
	u := NewUpdateManager()

	msg, ok, err := u.Flush()
	if err != nil {
		t.Fatalf("flushing: %v", err)
	}
	testutil.AssertEqual(t, "pending", ok, false)
	testutil.AssertEqual(t, "message length", len(msg), 0)
}

func TestUpdateManagerCoalesce(t *testing.T) {
	u := NewUpdateManager()

	// Setter updates keep one entry per subject, last write wins.
	u.UpdatePlayerPosition(1, protocol.Vec2{X: 1})
	u.UpdatePlayerPosition(1, protocol.Vec2{X: 2})
	u.UpdatePlayerPosition(2, protocol.Vec2{X: 9})
	u.UpdatePlayerScale(1, protocol.Vec2{X: 0.5})

	upd := flushUpdate(t, u)
	testutil.AssertEqual(t, "position entries", len(upd.Positions), 2)
	byId := map[uint16]protocol.Vec2{}
	for _, p := range upd.Positions {
		byId[p.Id] = p.Position
	}
	testutil.AssertEqual(t, "player 1 position", byId[1], protocol.Vec2{X: 2})
	testutil.AssertEqual(t, "player 2 position", byId[2], protocol.Vec2{X: 9})
	testutil.AssertEqual(t, "scale entries", len(upd.Scales), 1)
}

func TestUpdateManagerAppends(t *testing.T) {
	u := NewUpdateManager()

	// Notices accumulate; nothing is overwritten.
	u.AddPlayerConnect(1, "alice")
	u.AddPlayerConnect(2, "bob")
	u.AddPlayerDisconnect(3, "carol", true)
	u.AddPlayerDeath(1)
	u.AddPlayerLeaveScene(2)

	upd := flushUpdate(t, u)
	testutil.AssertEqual(t, "connects", len(upd.PlayerConnects), 2)
	testutil.AssertEqual(t, "disconnects", len(upd.PlayerDisconnects), 1)
	testutil.AssertEqual(t, "disconnect timeout", upd.PlayerDisconnects[0].Timeout, true)
	testutil.AssertEqual(t, "deaths", len(upd.PlayerDeaths), 1)
	testutil.AssertEqual(t, "leaves", len(upd.PlayerLeaveScenes), 1)
}

func TestUpdateManagerAnimationSequence(t *testing.T) {
	u := NewUpdateManager()

	// Animation frames are a sequence, so repeats for the same player
	// are all kept, in order.
	u.UpdatePlayerAnimation(1, 10, 0, nil)
	u.UpdatePlayerAnimation(1, 10, 1, nil)
	u.UpdatePlayerAnimation(1, 12, 0, []byte{0x01})

	upd := flushUpdate(t, u)
	testutil.AssertEqual(t, "frames", len(upd.Animations), 3)
	testutil.AssertEqual(t, "first clip", upd.Animations[0].ClipId, uint16(10))
	testutil.AssertEqual(t, "last clip", upd.Animations[2].ClipId, uint16(12))
}

func TestUpdateManagerEntityCoalesce(t *testing.T) {
	u := NewUpdateManager()

	u.UpdateEntityPosition(3, 7, protocol.Vec2{X: 1})
	u.UpdateEntityPosition(3, 7, protocol.Vec2{X: 4})
	u.UpdateEntityPosition(3, 8, protocol.Vec2{X: 2})
	u.UpdateEntityState(3, 7, 1)
	u.UpdateEntityState(3, 7, 2)

	upd := flushUpdate(t, u)
	testutil.AssertEqual(t, "entity positions", len(upd.EntityPositions), 2)
	testutil.AssertEqual(t, "entity states", len(upd.EntityStates), 1)
	testutil.AssertEqual(t, "entity state value", upd.EntityStates[0].State, uint8(2))
}

func TestUpdateManagerFlushClears(t *testing.T) {
	u := NewUpdateManager()

	u.AddPlayerConnect(1, "alice")
	flushUpdate(t, u)

	_, ok, err := u.Flush()
	if err != nil {
		t.Fatalf("flushing: %v", err)
	}
	testutil.AssertEqual(t, "pending after flush", ok, false)
}

func TestUpdateManagerSettingsAndShutdown(t *testing.T) {
	u := NewUpdateManager()

	u.UpdateGameSettings(&settings.GameSettings{TeamsEnabled: true})
	u.SetShutdown()
	u.AddAlreadyInScene(nil, true)

	upd := flushUpdate(t, u)
	if upd.Settings == nil {
		t.Fatal("expected settings in update")
	}
	testutil.AssertEqual(t, "teams enabled", upd.Settings.TeamsEnabled, true)
	testutil.AssertEqual(t, "shutdown", upd.Shutdown, true)
	if upd.AlreadyInScene == nil {
		t.Fatal("expected catch-up batch in update")
	}
	testutil.AssertEqual(t, "scene empty", upd.AlreadyInScene.SceneEmpty, true)
}
