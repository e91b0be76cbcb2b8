package employee

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDStrategy names an id generator in config.
type IDStrategy string

const (
	IDStrategyUUID      IDStrategy = "uuid"
	IDStrategyTimestamp IDStrategy = "timestamp"
)

// IDGenerator produces a new employee id. It is called once per create session.
type IDGenerator func() string

// NewUUID returns a random 128-bit identifier.
func NewUUID() string {
	return uuid.NewString()
}

// NewTimestampID encodes the current Unix milliseconds in base 36. Two calls in
// the same millisecond collide, which is why it is not the default.
func NewTimestampID() string {
	return TimestampID(time.Now())
}

// TimestampID encodes t the same way NewTimestampID does.
func TimestampID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 36)
}

// GeneratorFor maps a configured strategy to its generator.
func GeneratorFor(strategy IDStrategy) (IDGenerator, error) {
	switch IDStrategy(strings.ToLower(strings.TrimSpace(string(strategy)))) {
	case "", IDStrategyUUID:
		return NewUUID, nil
	case IDStrategyTimestamp:
		return NewTimestampID, nil
	default:
		return nil, fmt.Errorf("employee: unknown id strategy %q", strategy)
	}
}
