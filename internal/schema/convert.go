package schema

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// JSSEpochToTime converts the source's epoch-milliseconds timestamps
// (sent as numbers or numeric strings) into UTC times.
func JSSEpochToTime(value any) (any, error) {
	if t, ok := value.(time.Time); ok {
		return t, nil
	}
	ms, err := cast.ToInt64E(value)
	if err != nil {
		return nil, fmt.Errorf("epoch milliseconds: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
