// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package face carries interests and data packets over a Unix socket.
//
// Each connection holds exactly one exchange. The requester writes one
// CBOR [Interest]; the server answers with one CBOR [Frame] holding the
// encoded data packet, optionally compressed, or closes the connection
// without writing anything when it has no data for the name. There is
// no negative acknowledgement on the wire: a requester sees a drop as
// EOF and [Client.Express] reports it as [ErrNoData].
//
// [Server] dispatches one interest at a time into its [Responder], so
// the responder never runs concurrently with itself even though many
// connections may be open.
package face
