package command

type StatusConfig struct {
	// Port for the status/admin HTTP API. Zero disables the API.
	Port uint16 `json:"port,omitempty"`
}

// Enabled reports whether the status API should be served.
func (c *StatusConfig) Enabled() bool {
	return c.Port != 0
}
