package hclscript

import (
	"fmt"
	"os"

	"github.com/vk/scenegridgo/internal/datapath"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// dataPathFunc resolves a relative path through the data directories.
func dataPathFunc(dirs *datapath.Directories) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			resolved, err := dirs.Find(args[0].AsString())
			if err != nil {
				return cty.UnknownVal(cty.String), err
			}
			return cty.StringVal(resolved), nil
		},
	})
}

// envFunc returns an environment variable, or the optional second argument
// when it is unset.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	VarParam: &function.Parameter{Name: "default", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		if len(args) > 2 {
			return cty.UnknownVal(cty.String), fmt.Errorf("env takes at most one default, got %d", len(args)-1)
		}
		if v, ok := os.LookupEnv(args[0].AsString()); ok {
			return cty.StringVal(v), nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return cty.StringVal(""), nil
	},
})

func functions(dirs *datapath.Directories) map[string]function.Function {
	return map[string]function.Function{
		"data_path": dataPathFunc(dirs),
		"env":       envFunc,
		"upper":     stdlib.UpperFunc,
		"lower":     stdlib.LowerFunc,
		"format":    stdlib.FormatFunc,
		"concat":    stdlib.ConcatFunc,
		"join":      stdlib.JoinFunc,
		"length":    stdlib.LengthFunc,
		"min":       stdlib.MinFunc,
		"max":       stdlib.MaxFunc,
		"coalesce":  stdlib.CoalesceFunc,
	}
}
