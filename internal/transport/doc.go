// Package transport moves velocity messages in and thrust commands out.
//
// A [Broker] is a minimal topic pub/sub. [Bus] is the in-process broker used by
// simulation and tests; [MQTT] talks to a real broker through paho. [Ingress]
// decodes the two inbound topics into shared cells, and [ThrustPublisher] or
// [SerialThrust] emit the loop's thrust commands.
package transport
