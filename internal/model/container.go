package model

import "time"

// Container is one entry of the local lab context
type Container struct {
	ID      string
	Name    string
	Image   string
	Status  string
	State   string
	Created time.Time
	Ports   []Port
}

// Running reports whether the daemon lists the container as running.
func (c Container) Running() bool {
	return c.State == "running"
}

// Port is a published container port
type Port struct {
	Private int
	Public  int
	Type    string
}

// CountRunning returns how many containers are running
func CountRunning(containers []Container) int {
	running := 0
	for _, c := range containers {
		if c.Running() {
			running++
		}
	}
	return running
}
