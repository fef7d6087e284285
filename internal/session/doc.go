// Package session keeps MCP Streamable HTTP sessions in memory.
//
// A session is minted on initialize and named by the Mcp-Session-Id header on
// every later request. Sessions carry no tool state; they exist so clients
// get 404 and re-initialize after a restart, idle expiry, or DELETE.
//
//	store := session.New(30*time.Minute, 1000)
//	defer store.Close()
//
//	sess := store.Create("2025-06-18", "claude-desktop")
//	if _, ok := store.Get(sess.ID); !ok {
//	    // expired or evicted
//	}
package session
