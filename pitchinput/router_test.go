// router_test.go - Tests for the host boundary accessor

package pitchinput

import "testing"

func TestRouter_NoEngineUsesHost(t *testing.T) {
	host := newFakeHost()
	host.held["jump"] = true
	host.pressed["fire"] = true
	host.released["duck"] = true

	r := NewRouter(host)
	if r.Engine() != nil {
		t.Fatal("expected no engine before Attach")
	}
	if !r.GetKey("jump") || !r.GetKeyDown("fire") || !r.GetKeyUp("duck") {
		t.Fatal("expected host answers with no engine attached")
	}
	if r.GetKeyDown("jump") || r.GetKeyUp("fire") || r.GetKey("duck") {
		t.Fatal("unexpected host answers")
	}
}

func TestRouter_NoneAlwaysFalse(t *testing.T) {
	host := newFakeHost()
	host.held[NoneKey] = true
	host.pressed[NoneKey] = true
	host.released[NoneKey] = true

	r := NewRouter(host)
	if r.GetKey(NoneKey) || r.GetKeyDown(NoneKey) || r.GetKeyUp(NoneKey) {
		t.Fatal("none must be false without an engine")
	}
	r.Attach(NewInputEngine(nil, host))
	if r.GetKey(NoneKey) || r.GetKeyDown(NoneKey) || r.GetKeyUp(NoneKey) {
		t.Fatal("none must be false with an engine")
	}
}

func TestRouter_AttachDetach(t *testing.T) {
	host := newFakeHost()
	r := NewRouter(host)
	e := NewInputEngine(nil, host)
	if err := e.MapPitch(60, 72, "jump"); err != nil {
		t.Fatal(err)
	}

	r.Attach(e)
	if r.Engine() != e {
		t.Fatal("expected attached engine")
	}
	e.UpdateObserved(65)
	if !r.GetKeyDown("jump") {
		t.Fatal("expected engine answer through router")
	}
	e.UpdateObserved(65)
	if !r.GetKeyCode(keyCode("JUMP")) {
		t.Fatal("expected held through key code")
	}

	r.Detach()
	if r.GetKey("jump") {
		t.Fatal("expected host-only answer after Detach")
	}
}

func TestRouter_NilHost(t *testing.T) {
	r := NewRouter(nil)
	if r.GetKey("a") || r.GetKeyCodeDown(keyCode("A")) || r.GetKeyCodeUp(keyCode("A")) {
		t.Fatal("expected false from the default host")
	}
}
