package messaging

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Driver names accepted by messaging.driver.
const (
	DriverNSQ   = "nsq"
	DriverNATS  = "nats"
	DriverKafka = "kafka"
	DriverLog   = "log" // slog only, nothing leaves the process
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions groups config for every backend; only the selected one is read.
type FactoryOptions struct {
	NSQ   NSQConfig
	Kafka KafkaConfig
	NATS  NATSConfig
	Log   LogConfig
}

var drivers = map[string]func(FactoryOptions) (Messaging, error){
	DriverNSQ:   func(o FactoryOptions) (Messaging, error) { return NewNSQ(o.NSQ) },
	DriverKafka: func(o FactoryOptions) (Messaging, error) { return NewKafka(o.Kafka) },
	DriverNATS:  func(o FactoryOptions) (Messaging, error) { return NewNATS(o.NATS) },
	DriverLog:   func(o FactoryOptions) (Messaging, error) { return NewLog(o.Log), nil },
}

// Drivers lists the accepted driver names in sorted order.
func Drivers() []string {
	names := lo.Keys(drivers)
	slices.Sort(names)
	return names
}

// NewFromDriver builds the backend named by driver, case-insensitively. An
// empty driver selects DriverLog.
func NewFromDriver(driver string, opts FactoryOptions) (Messaging, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = DriverLog
	}

	build, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q, want one of %s", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}

	return build(opts)
}
