// Package protocol defines the wire format between the slipway CLI and
// the daemon.
//
// Messages are newline-delimited JSON envelopes carrying a command name
// and an optional payload. Each connection is a single request-response
// exchange. Responses reuse the envelope with [CmdOK] or [CmdError] as
// the command.
//
// Example usage:
//
//	line, err := protocol.Encode(protocol.CmdBuild, &protocol.BuildRequest{
//	    ManifestPath: "slipway.toml",
//	    Output:       "dist",
//	})
//
//	env, payload, err := protocol.Decode(line)
//	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
package protocol
