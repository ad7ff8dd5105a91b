package telemetry

import (
	"encoding/json"
	"fmt"
)

// PositionMessage is the JSON payload carried on the vehicle/position
// topic. Speed and battery are optional device-dependent fields.
type PositionMessage struct {
	VehicleID int64    `json:"vehicleId"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Speed     *float64 `json:"speed,omitempty"`
	Battery   *float64 `json:"battery,omitempty"`
}

// ParsePositionMessage decodes and validates a raw telemetry payload.
// A missing or non-numeric vehicleId makes the message undeliverable; the
// channel is fire-and-forget, so callers drop such messages with a logged
// warning instead of surfacing an error.
func ParsePositionMessage(body []byte) (PositionMessage, error) {
	var msg PositionMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return PositionMessage{}, fmt.Errorf("malformed payload: %w", err)
	}
	if msg.VehicleID <= 0 {
		return PositionMessage{}, fmt.Errorf("missing or invalid vehicleId")
	}
	return msg, nil
}
