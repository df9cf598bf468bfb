// input_api.go - Process-wide key queries for game code

package main

import (
	"fmt"
	"sync/atomic"

	"github.com/intuitionamiga/IntuitionPitch/pitchinput"
)

var activeRouter atomic.Pointer[pitchinput.Router]

func setActiveRouter(r *pitchinput.Router) {
	activeRouter.Store(r)
}

// installHostRouter answers queries from the host's physical keys until an
// engine is attached.
func installHostRouter(keys pitchinput.HostKeys) *pitchinput.Router {
	r := pitchinput.NewRouter(keys)
	setActiveRouter(r)
	return r
}

// GetKey reports whether the named key is held, by pitch or physically.
// Before any host is installed every query answers false.
func GetKey(name string) bool {
	if r := activeRouter.Load(); r != nil {
		return r.GetKey(name)
	}
	return false
}

func GetKeyDown(name string) bool {
	if r := activeRouter.Load(); r != nil {
		return r.GetKeyDown(name)
	}
	return false
}

func GetKeyUp(name string) bool {
	if r := activeRouter.Load(); r != nil {
		return r.GetKeyUp(name)
	}
	return false
}

func GetKeyCode(code fmt.Stringer) bool {
	return GetKey(pitchinput.KeyName(code))
}

func GetKeyCodeDown(code fmt.Stringer) bool {
	return GetKeyDown(pitchinput.KeyName(code))
}

func GetKeyCodeUp(code fmt.Stringer) bool {
	return GetKeyUp(pitchinput.KeyName(code))
}
