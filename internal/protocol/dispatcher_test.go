package protocol

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestDispatcherRegister(t *testing.T) {
	noop := func(uint16, []byte) {}

	tests := map[string]struct {
		setup  func(t *testing.T, d *Dispatcher)
		tag    string
		h      HandlerFunc
		expErr string
	}{
		"valid registration": {
			tag: MsgHello,
			h:   noop,
		},
		"empty tag": {
			tag:    "",
			h:      noop,
			expErr: "cannot be empty",
		},
		"nil handler": {
			tag:    MsgHello,
			expErr: "cannot be nil",
		},
		"duplicate tag": {
			setup: func(t *testing.T, d *Dispatcher) {
				if err := d.Register(MsgHello, noop); err != nil {
					t.Fatalf("seeding handler: %v", err)
				}
			},
			tag:    MsgHello,
			h:      noop,
			expErr: "already registered",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDispatcher()
			if tc.setup != nil {
				tc.setup(t, d)
			}

			err := d.Register(tc.tag, tc.h)
			if tc.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tc.expErr)
		})
	}
}

func TestDispatcherDispatch(t *testing.T) {
	d := NewDispatcher()

	var gotId uint16
	var gotPayload []byte
	if err := d.Register(MsgPlayerUpdate, func(connId uint16, payload []byte) {
		gotId = connId
		gotPayload = payload
	}); err != nil {
		t.Fatalf("registering handler: %v", err)
	}

	payload := json.RawMessage(`{"update_types":1}`)
	d.Dispatch(42, Envelope{Type: MsgPlayerUpdate, Payload: payload})

	testutil.AssertEqual(t, "conn id", gotId, uint16(42))
	testutil.AssertEqual(t, "payload", string(gotPayload), string(payload))

	// Unknown tags are dropped without panicking.
	d.Dispatch(42, Envelope{Type: "no-such-tag"})
}
