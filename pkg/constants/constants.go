package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	EnvPrefix = "MEDCHART"
	AppName   = "medchart"
)
