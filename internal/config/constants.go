package config

// Container runtimes
const (
	RuntimeAuto   = "auto"
	RuntimeDocker = "docker"
	RuntimePodman = "podman"
)

// Network modes
const (
	NetworkDefault = ""
	NetworkBridge  = "bridge"
	NetworkHost    = "host"
	NetworkNone    = "none"
)

// Image defaults
const (
	DefaultImageName  = "amplifier-claude:latest"
	DefaultDockerfile = "Dockerfile"
)

// Mount defaults
const (
	DefaultDataDir      = "./amplifier-data"
	DefaultSettingsFile = ".claude/settings.local.json"
)
