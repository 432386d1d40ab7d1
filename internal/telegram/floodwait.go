package telegram

import (
	"fmt"
	"strings"
)

// FloodWaitSeconds extracts the wait from a FLOOD_WAIT error, returning 0
// when err is nil or not a flood wait.
//
// gotd wraps RPC errors in several layers, so matching the error text
// (e.g. "rpc error code 420: FLOOD_WAIT_15") is the most reliable check
// without deep coupling to the gotd error types.
func FloodWaitSeconds(err error) int {
	if err == nil {
		return 0
	}

	str := err.Error()
	idx := strings.Index(str, "FLOOD_WAIT_")
	if idx < 0 {
		return 0
	}

	var seconds int
	numStr := strings.TrimSpace(str[idx+len("FLOOD_WAIT_"):])
	// the number may be followed by a suffix like " (caused by ...)"
	_, _ = fmt.Sscanf(numStr, "%d", &seconds)
	return seconds
}
