package supervisor

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

const (
	workerMarkerEnv = "SUPERVISED_WORKER"
	workerIdEnv     = "WORKER_ID"

	// The listener is the first entry in ExtraFiles; stdin, stdout and
	// stderr occupy 0-2.
	listenerFd = 3
)

// InheritedListener recovers the shared listener in a supervised worker.
// It returns nil without error when the process was started directly.
func InheritedListener() (net.Listener, error) {
	if os.Getenv(workerMarkerEnv) == "" {
		return nil, nil
	}

	file := os.NewFile(listenerFd, "listener")
	if file == nil {
		return nil, fmt.Errorf("supervised worker is missing the inherited listener")
	}

	listener, err := net.FileListener(file)
	if err != nil {
		return nil, fmt.Errorf("failed to recover inherited listener: %w", err)
	}
	file.Close()

	return listener, nil
}

// WorkerId reports this worker's slot, or -1 when not supervised.
func WorkerId() int {
	raw := os.Getenv(workerIdEnv)
	if raw == "" {
		return -1
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return id
}
