package agent

// Config points the agent at its data directory and the user-driven
// configuration file. Only the device config file is live-reloaded.
type Config struct {
	DataDir      string `json:"dataDir"`
	DeviceConfig string `json:"deviceConfig"`
}
