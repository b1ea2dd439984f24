// Package hclscript executes scene scripts written in HCL.
//
// A script is a sequence of top-level blocks run in source order:
//
//	settings { unit_scale = 0.01 }
//	material "stone" { base_color = [0.5, 0.5, 0.5] }
//	import "props/chair.scene" {}
//	node "props.chair[0]" {
//	  mesh     = "models/chair.obj"
//	  material = scene_builder.settings.default_material
//	}
//
// Expressions see every importer binding as a variable (the builder as
// `scene_builder`) and a small function library including data_path, which
// resolves a relative path through the data directories. Relative import
// paths and mesh paths are resolved the same way, so they find files next
// to the script that mentions them first.
package hclscript
