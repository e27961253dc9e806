package demo

import (
	"github.com/louisbranch/loadguard/internal/loader"
)

// Request kinds started by the profile panel.
const (
	KindFetchUser     loader.RequestState = "FETCH_USER"
	KindFetchSettings loader.RequestState = "FETCH_SETTINGS"
)

// LoadAction asks the worker to load one piece of profile data.
type LoadAction struct {
	Type string        `json:"type"`
	Tag  loader.Marker `json:"tag"`
}

var panelTag = loader.NewMarker("profile-panel")

// Actions returns the panel's load actions. FETCH_USER is listed twice; the
// loader dispatches it once.
func Actions() []loader.Action {
	return []loader.Action{
		LoadAction{Type: string(KindFetchUser), Tag: panelTag},
		LoadAction{Type: string(KindFetchSettings), Tag: panelTag},
		LoadAction{Type: string(KindFetchUser), Tag: loader.NewMarker("profile-panel")},
	}
}

// Watched returns the request kinds that keep the panel's placeholder up.
func Watched() []loader.RequestState {
	return []loader.RequestState{KindFetchUser, KindFetchSettings}
}

// requestStateOf maps a dispatched action to the request kind it starts.
func requestStateOf(action any) (string, bool) {
	a, ok := action.(LoadAction)
	if !ok || a.Type == "" {
		return "", false
	}
	return a.Type, true
}

// result returns the state entry a finished load writes.
func result(a LoadAction) (key, value string, ok bool) {
	switch loader.RequestState(a.Type) {
	case KindFetchUser:
		return "user", "ada", true
	case KindFetchSettings:
		return "theme", "dark", true
	default:
		return "", "", false
	}
}
