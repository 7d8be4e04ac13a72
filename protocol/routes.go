package protocol

import (
	"encoding/json"
)

// RouterIdWidth is the width of the reporting router id at the start of a control payload.
const RouterIdWidth = 2

// Vector is a distance vector on the wire: destination -> reporting router -> cost.
type Vector map[string]map[string]uint32

// EncodeRoutes builds a control payload: the reporting router id followed by the
// JSON form of its routing table. encoding/json sorts map keys, so equal tables
// produce identical payloads.
func EncodeRoutes(router string, vec Vector) ([]byte, error) {
	if len(router) != RouterIdWidth {
		return nil, formatErr("router id %q must be %d characters", router, RouterIdWidth)
	}
	body, err := json.Marshal(vec)
	if err != nil {
		return nil, formatErr("encode routes: %v", err)
	}
	return append([]byte(router), body...), nil
}

// DecodeRoutes splits a control payload into the reporting router and its vector.
func DecodeRoutes(data []byte) (string, Vector, error) {
	if len(data) < RouterIdWidth {
		return "", nil, formatErr("control payload of length %d has no router id", len(data))
	}
	router := string(data[:RouterIdWidth])
	vec := make(Vector)
	if err := json.Unmarshal(data[RouterIdWidth:], &vec); err != nil {
		return "", nil, formatErr("decode routes from %s: %v", router, err)
	}
	return router, vec, nil
}
