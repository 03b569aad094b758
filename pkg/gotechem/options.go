package gotechem

import (
	"context"

	internalopts "gitlab.com/d21d3q/gotechem/internal/options"
)

// AnalyzeOptions configures parsing. RSSI is the receiver-reported signal
// quality attached to the SignalStrength record; KeyHex is an optional
// AES-128 key for mode 5 encrypted payloads.
type AnalyzeOptions struct {
	KeyHex string
	RSSI   int
}

func (opts AnalyzeOptions) toInternal(ctx context.Context) (context.Context, []byte, error) {
	key, err := internalopts.ParseKeyHex(opts.KeyHex)
	if err != nil {
		return ctx, nil, err
	}
	ctx = internalopts.WithSecurityKey(ctx, key)
	return ctx, key, nil
}
