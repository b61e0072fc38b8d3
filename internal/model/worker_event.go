package model

import "time"

const (
	EventStarted   = "started"
	EventReady     = "ready"
	EventExited    = "exited"
	EventRestarted = "restarted"
	EventStopped   = "stopped"
)

type WorkerEvent struct {
	Id       int64     `json:"id"`
	WorkerId int       `json:"worker_id"`
	Pid      int       `json:"pid"`
	Event    string    `json:"event"`
	Detail   string    `json:"detail,omitempty"`
	Time     time.Time `json:"time"`
}
