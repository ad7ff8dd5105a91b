package telemetry

import (
	"context"
	"log"

	"fleet-tracker-backend/internal/model"
	"fleet-tracker-backend/internal/store"
)

// Recorder is the slice of the store the pipeline writes through.
type Recorder interface {
	RecordTelemetryPosition(ctx context.Context, in store.TelemetryPosition) (*model.Position, error)
}

// Pipeline drains parsed telemetry messages and persists them. Each message
// is an independent, commutative insert: failures are logged and the next
// message is processed, nothing is retried or retracted.
type Pipeline struct {
	store Recorder
	in    <-chan PositionMessage
}

// NewPipeline wires a message source to the store.
func NewPipeline(store Recorder, in <-chan PositionMessage) *Pipeline {
	return &Pipeline{store: store, in: in}
}

// Run consumes until the context is cancelled or the source closes.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("telemetry: pipeline shutting down")
			return
		case msg, ok := <-p.in:
			if !ok {
				log.Println("telemetry: message source closed, pipeline stopping")
				return
			}
			p.handle(ctx, msg)
		}
	}
}

func (p *Pipeline) handle(ctx context.Context, msg PositionMessage) {
	_, err := p.store.RecordTelemetryPosition(ctx, store.TelemetryPosition{
		VehicleID: msg.VehicleID,
		Latitude:  msg.Lat,
		Longitude: msg.Lng,
		Speed:     msg.Speed,
		Battery:   msg.Battery,
	})
	if err != nil {
		log.Printf("telemetry: failed to persist position for vehicle %d: %v", msg.VehicleID, err)
	}
}
