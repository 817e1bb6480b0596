package net

import (
	"fmt"
	"net"
	"strconv"

	"ParallaxSketch/internal/logging"
)

// GetOutgoingIP finds the preferred local IP address to show to the phone.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstIPv4(), nil
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// firstIPv4 is used on networks without a default route.
func firstIPv4() string {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4().String()
			}
		}
	}
	logging.Logger().Warn("no LAN address found; companion link uses loopback")
	return "127.0.0.1"
}

// CompanionURL returns the address a phone on the same network opens to
// stream its orientation. listenAddr is the server's bound address.
func CompanionURL(listenAddr string) (string, error) {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "", fmt.Errorf("companion url: %w", err)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("companion url: bad port %q", port)
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		if host, err = GetOutgoingIP(); err != nil {
			return "", err
		}
	}
	return "http://" + net.JoinHostPort(host, port) + "/", nil
}
