package billrpc

import "encoding/json"

// Codec is a Connect codec for the plain Go message structs in this package.
// It registers under the "json" name, so Connect clients and curl requests
// with Content-Type application/json work unchanged.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
