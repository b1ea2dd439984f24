// Package hcl provides the HCL implementation of config.Loader. It decodes
// project files such as:
//
//	data_directories = ["assets", "/opt/shared"]
//	bindings         = { quality = "high" }
//	prelude          = "prelude.scene"
//
//	settings {
//	  unit_scale = 0.01
//	}
//
//	events {
//	  url = "ws://localhost:3000"
//	}
//
// Relative paths are resolved against the directory of the project file.
package hcl
