//go:build linux

package main

import (
	"github.com/8088lab/vx88/bridge"
)

func openRemote(port string, baud int) (bridge.RemoteCPU, error) {
	sp, err := bridge.OpenSerialPort(port, baud)
	if err != nil {
		return nil, err
	}
	return bridge.NewSerialCPU(sp), nil
}
