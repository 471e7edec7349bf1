package config

import (
	"fmt"
	"os"
)

func Template() string {
	return agentTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(agentTemplate), 0o600)
}

const agentTemplate = `[agent]
addr = "127.0.0.1:8080"
single_connection = true
# metrics_addr = "127.0.0.1:9464"
# notify_command = ["notify-send", "--app-name=mc-connect"]
allow_launch = false
launch_wait = false

[client]
addr = "127.0.0.1:8080"
dial_timeout = "5s"
max_dial_attempts = 5

[session]
max_frame_bytes = 8388608

[session.backoff]
initial = "250ms"
multiplier = 2.0
max = "5s"
jitter = true

[log]
level = "info"
format = "auto"
`
