// Package messaging provides a broker-agnostic publisher.
//
// Business code depends on the Messaging interface; the driver (Kafka, NATS,
// NSQ or the in-process log driver) is picked from configuration.
package messaging
