package telegram

import (
	"errors"
	"fmt"
	"testing"
)

func TestFloodWaitSeconds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, 0},
		{"plain flood wait", errors.New("FLOOD_WAIT_15"), 15},
		{"wrapped rpc error", errors.New("rpc error code 420: FLOOD_WAIT_42"), 42},
		{"wrapped twice", fmt.Errorf("forward messages: %w", errors.New("FLOOD_WAIT_7")), 7},
		{"trailing context", errors.New("FLOOD_WAIT_30 (caused by messages.forwardMessages)"), 30},
		{"unrelated error", errors.New("PEER_ID_INVALID"), 0},
		{"prefix without number", errors.New("FLOOD_WAIT_"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FloodWaitSeconds(tt.err); got != tt.want {
				t.Errorf("FloodWaitSeconds(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
