package laz

import "fmt"

// ServerAddr identifies the RPC server to talk to.
type ServerAddr struct {
	Host string
	Port int
}

// BaseURL returns the root URL for all requests to this server.
func (a ServerAddr) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", a.Host, a.Port)
}
