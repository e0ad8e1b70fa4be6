package broadcast

// Stats is a snapshot of the router state
type Stats struct {
	Running     bool           `json:"running"`
	Connections int            `json:"connections"`
	Channels    map[string]int `json:"channels"`
	Delivered   uint64         `json:"delivered"`
	Dropped     uint64         `json:"dropped"`
}
