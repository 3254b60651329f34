package settings

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBroadcastMapIcons(t *testing.T) {
	tests := map[string]struct {
		settings GameSettings
		exp      bool
	}{
		"neither flag":     {GameSettings{}, false},
		"always show":      {GameSettings{AlwaysShowMapIcons: true}, true},
		"marker item only": {GameSettings{OnlyBroadcastMapIconWithMarkerItem: true}, true},
		"both flags": {
			GameSettings{AlwaysShowMapIcons: true, OnlyBroadcastMapIconWithMarkerItem: true},
			true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "broadcast", tc.settings.BroadcastMapIcons(), tc.exp)
		})
	}
}

func TestClone(t *testing.T) {
	orig := &GameSettings{TeamsEnabled: true}

	c := orig.Clone()
	c.TeamsEnabled = false
	c.AllowSkins = true

	testutil.AssertEqual(t, "original teams", orig.TeamsEnabled, true)
	testutil.AssertEqual(t, "original skins", orig.AllowSkins, false)
}
