// router.go - Key queries over an optionally attached engine

package pitchinput

import (
	"fmt"
	"sync/atomic"
)

// Router answers key queries for game code. Until an engine is attached,
// every query is answered by the host keys alone.
type Router struct {
	host   HostKeys
	engine atomic.Pointer[InputEngine]
}

func NewRouter(host HostKeys) *Router {
	if host == nil {
		host = NoHostKeys{}
	}
	return &Router{host: host}
}

func (r *Router) Attach(e *InputEngine) {
	r.engine.Store(e)
}

func (r *Router) Detach() {
	r.engine.Store(nil)
}

// Engine returns the attached engine or nil.
func (r *Router) Engine() *InputEngine {
	return r.engine.Load()
}

func (r *Router) GetKey(name string) bool {
	if name == NoneKey {
		return false
	}
	if e := r.engine.Load(); e != nil {
		return e.GetKey(name)
	}
	return r.host.KeyHeld(name)
}

func (r *Router) GetKeyDown(name string) bool {
	if name == NoneKey {
		return false
	}
	if e := r.engine.Load(); e != nil {
		return e.GetKeyDown(name)
	}
	return r.host.KeyPressed(name)
}

func (r *Router) GetKeyUp(name string) bool {
	if name == NoneKey {
		return false
	}
	if e := r.engine.Load(); e != nil {
		return e.GetKeyUp(name)
	}
	return r.host.KeyReleased(name)
}

func (r *Router) GetKeyCode(code fmt.Stringer) bool     { return r.GetKey(KeyName(code)) }
func (r *Router) GetKeyCodeDown(code fmt.Stringer) bool { return r.GetKeyDown(KeyName(code)) }
func (r *Router) GetKeyCodeUp(code fmt.Stringer) bool   { return r.GetKeyUp(KeyName(code)) }
