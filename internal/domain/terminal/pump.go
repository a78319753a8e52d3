package terminal

import (
	"context"
	"errors"
	"time"

	"github.com/GriffinCanCode/termhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termhost/internal/shared/id"
	"go.uber.org/zap"
)

// endNotifyTimeout bounds the Ended call.
const endNotifyTimeout = 2 * time.Second

// pump drains one backend into one subscriber.
type pump struct {
	id      id.SessionID
	backend Backend
	sub     Subscriber
	logger  *zap.Logger
	metrics *monitoring.Metrics

	dec Decoder
	seq uint64
}

// run reads until the backend is exhausted or ctx is cancelled and returns
// the resulting End. It does not call Ended.
func (p *pump) run(ctx context.Context) End {
	end := End{SessionID: p.id}
	for {
		data, err := p.backend.ReadChunk()
		if len(data) > 0 {
			out, decodeErr := p.dec.Decode(data)
			p.deliver(ctx, out, decodeErr)
		}

		switch {
		case ctx.Err() != nil:
			end.Reason = EndClosed
		case err == nil:
			continue
		case errors.Is(err, ErrClosed):
			end.Reason = EndExited
		default:
			end.Reason = EndFailed
			end.Err = err
			p.logger.Warn("Session read failed", zap.Error(err))
		}
		break
	}

	// A caller-closed session drops the held-back tail: it is at most an
	// incomplete character and nobody reads the stream after close.
	if end.Reason != EndClosed {
		rest, decodeErr := p.dec.Flush()
		p.deliver(ctx, rest, decodeErr)
	}
	return end
}

func (p *pump) deliver(ctx context.Context, data []byte, decodeErr error) {
	if len(data) == 0 {
		return
	}

	chunk := Chunk{SessionID: p.id, Seq: p.seq, Data: data}
	p.seq++
	if decodeErr != nil {
		chunk.Invalid = true
		chunk.Text = sanitize(data)
		p.metrics.IncDecodeErrors()
		p.logger.Warn("Malformed output", zap.Uint64("seq", chunk.Seq), zap.Error(decodeErr))
	} else {
		chunk.Text = string(data)
	}

	if err := p.sub.Deliver(ctx, chunk); err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Output delivery failed", zap.Uint64("seq", chunk.Seq), zap.Error(err))
		}
		return
	}
	p.metrics.AddOutput(len(data))
}

// notify sends the End with its own deadline; the session context is
// usually already cancelled by now.
func (p *pump) notify(end End) {
	ctx, cancel := context.WithTimeout(context.Background(), endNotifyTimeout)
	defer cancel()
	p.sub.Ended(ctx, end)
}
