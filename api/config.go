// Package api provides the HTTP API server for chatting with the assistant
// and inspecting its memory.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":5000")
	ListenAddr string

	// DisableMCP skips mounting the MCP server at /mcp.
	DisableMCP bool
}
