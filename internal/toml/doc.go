// Package toml provides a TOML implementation of config.Loader, accepting
// the same project settings as the HCL loader:
//
//	data_directories = ["assets"]
//	prelude          = "prelude.scene"
//
//	[bindings]
//	quality = "high"
//
//	[settings]
//	unit_scale = 0.01
//
//	[events]
//	url = "ws://localhost:3000"
package toml
