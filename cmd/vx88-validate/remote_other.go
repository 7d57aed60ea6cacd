//go:build !linux

package main

import (
	"fmt"

	"github.com/8088lab/vx88/bridge"
)

func openRemote(port string, baud int) (bridge.RemoteCPU, error) {
	return nil, fmt.Errorf("vx88-validate: serial bridge is only supported on linux, got --port %q", port)
}
