// Package network talks to a ledger node: Client submits signed
// transactions over REST and looks up account history, and Hub fans the
// node's confirmation feed out to per-address subscriptions.
//
// Two feed transports are available: Listener (plain websocket) and
// SocketIOSource (socket.io). NewEndpoint picks one from shared.Config.
package network
