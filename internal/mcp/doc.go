// Package mcp implements the Model Context Protocol server for the MSU
// transaction-query tool.
//
// # Overview
//
// The server exposes a single tool, query_transaction, to MCP clients such as
// Claude Desktop. Each invocation becomes one form-encoded POST to the MSU
// gateway. The JSON reply is returned as pretty-printed text, with every
// ERRnnnnn code inside it annotated by a sibling "<key>_explanation" field.
//
// # Layers
//
//   - Dispatcher: tool discovery and invocation, independent of JSON-RPC.
//   - Handler: JSON-RPC 2.0 routing (initialize, ping, tools/list, tools/call).
//   - Transports: StdioServer (newline-delimited stdin/stdout), HTTPServer
//     (Streamable HTTP with Mcp-Session-Id sessions) and NATSServer
//     (request/reply on a subject).
//
// # Tool Execution
//
// Clients call tools/call:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "query_transaction",
//	    "arguments": {"start_date": "01-01-2024 00:00", "end_date": "31-01-2024 23:59"}
//	  },
//	  "id": 2
//	}
//
// Failures (unknown tool, bad arguments, network errors, non-2xx gateway
// status, unparseable bodies) are JSON-RPC errors whose data carries a "kind"
// and a "request_id" for log correlation. Error codes inside a successful
// gateway reply are not failures; they are annotated in place.
package mcp
