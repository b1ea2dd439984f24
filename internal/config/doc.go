// Package config defines the format-agnostic project configuration: extra
// data directories, default script bindings, builder settings and the
// optional events endpoint. Concrete loaders, such as the HCL one, live in
// separate packages.
package config
