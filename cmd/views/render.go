package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"impractical.co/views"
)

type renderFlags struct {
	dataPath string
	sets     []string
	escape   string
	source   bool
}

func renderCmd(configPath *string) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <view>",
		Short: "Render a view and print the output",
		Long: `Render a view and print the output.

Data comes from a YAML file (--data) and from --set name=value pairs,
which win over the file. With --string, the argument is template source
instead of a view name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}

			escape := cfg.Views.EscapeContext()
			if flags.escape != "" {
				escape, err = views.ParseContext(flags.escape)
				if err != nil {
					return err
				}
			}

			data, err := readData(flags.dataPath, flags.sets)
			if err != nil {
				return err
			}

			r, err := views.New(cfg.Views.FS(), cfg.Views.Options()...)
			if err != nil {
				return err
			}
			r.SetData(data, escape)

			var out string
			if flags.source {
				out, err = r.RenderString(ctx, args[0])
			} else {
				out, err = r.Render(ctx, args[0])
			}
			if err != nil {
				return errors.Wrap(err, "render failed")
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.dataPath, "data", "d", "", "YAML file of data to render with")
	cmd.Flags().StringArrayVarP(&flags.sets, "set", "s", nil, "set a variable, as name=value (repeatable)")
	cmd.Flags().StringVarP(&flags.escape, "escape", "e", "", "context to escape data for (html, attr, js, css, url, raw)")
	cmd.Flags().BoolVar(&flags.source, "string", false, "treat the argument as template source")
	return cmd
}

// readData loads the YAML file at path, if there is one, and applies sets
// on top of it.
func readData(path string, sets []string) (views.Data, error) {
	data := views.Data{}
	if path != "" {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed reading data file: %s", path)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(bytes, &raw); err != nil {
			return nil, errors.Wrapf(err, "failed unmarshalling data file: %s", path)
		}
		for k, v := range raw {
			data[k] = normalize(v)
		}
	}
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid --set %q, expected name=value", set)
		}
		data[name] = value
	}
	return data, nil
}

// normalize turns the map[interface{}]interface{} values yaml.v2 produces
// into map[string]any, so templates and the escaper can walk them.
func normalize(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
