package redisx

import "time"

const (
	// Cached per-account machine view: machine_view:{account_id} -> JSON
	KeyMachineView = "machine_view:%s"

	// Cached user profile: user:{id} -> JSON
	KeyUser = "user:%s"
)

var (
	TTLMachineView = 5 * time.Minute
	TTLUser        = 15 * time.Minute
)
