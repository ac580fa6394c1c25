// Package natsbus implements the wirebus backend port on NATS. Topic
// names map onto NATS subjects by replacing the slash hierarchy with
// subject tokens under a configurable prefix, so "/robot/cmd_vel"
// becomes "wirebus.robot.cmd_vel".
//
// Durability maps onto the two delivery planes NATS offers: volatile
// endpoints ride core NATS publish/subscribe, while transient-local
// endpoints go through a JetStream stream whose per-subject message
// limit carries the history depth. Keep-all history on a volatile
// endpoint has no NATS equivalent and is rejected as unsupported.
//
// Reliability selects the publish confirmation. Durable publishes wait
// for the JetStream ack. Reliable volatile publishes flush the
// connection after sending, so the call does not return until the
// server has received the message. Best-effort publishes return as
// soon as the message is written to the connection.
//
// Matched-endpoint counts are process-local. Counting remote endpoints
// would need NATS system-account introspection, which the backend does
// not assume is available.
package natsbus
