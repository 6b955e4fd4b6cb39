package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"connsettings/internal/loader"
	"connsettings/internal/schemadoc"
	"connsettings/internal/setting"
)

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered setting types in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := setting.Default
			type typeInfo struct {
				Name     string `json:"name"`
				Priority uint32 `json:"priority"`
				Base     bool   `json:"base"`
			}
			var out []typeInfo
			for _, info := range reg.Types() {
				out = append(out, typeInfo{Name: info.Name, Priority: info.Priority, Base: reg.IsBaseType(info.Type)})
			}
			if jsonMode(cmd) {
				return printJSON(cmd.OutOrStdout(), out)
			}
			for _, ti := range out {
				base := ""
				if ti.Base {
					base = " (base)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %3d%s\n", ti.Name, ti.Priority, base)
			}
			return nil
		},
	}
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [type]",
		Short: "Print the JSON Schema of a setting type, or of a whole connection document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				s, err := schemadoc.ForConnection(setting.Default)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			}
			s, err := schemadoc.ForType(setting.Default, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
}

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check connection documents for errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalize, _ := cmd.Flags().GetBool("normalize")

			type result struct {
				Path       string `json:"path"`
				Valid      bool   `json:"valid"`
				Normalized bool   `json:"normalized,omitempty"`
				Error      string `json:"error,omitempty"`
			}
			var results []result
			failed := 0
			for _, path := range args {
				r := result{Path: path}
				conn, err := loader.LoadFile(path)
				if err == nil && normalize {
					r.Normalized, err = conn.Normalize()
				}
				if err == nil {
					err = conn.Verify()
				}
				if err != nil {
					r.Error = err.Error()
					failed++
				} else {
					r.Valid = true
				}
				results = append(results, r)
			}

			if jsonMode(cmd) {
				if err := printJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					switch {
					case r.Error != "":
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Path, r.Error)
					case r.Normalized:
						fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (normalized)\n", r.Path)
					default:
						fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", r.Path)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().Bool("normalize", false, "Fix up normalizable problems before verifying")
	return cmd
}

func newConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite a connection document in the format named by the output extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			noSecrets, _ := cmd.Flags().GetBool("no-secrets")
			normalize, _ := cmd.Flags().GetBool("normalize")

			conn, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}
			if normalize {
				if _, err := conn.Normalize(); err != nil {
					return err
				}
			}
			if err := conn.Verify(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if noSecrets {
				conn.ClearSecrets()
			}
			if err := loader.SaveFile(args[1], conn, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
			return nil
		},
	}
	cmd.Flags().Bool("no-secrets", false, "Drop secret values from the output")
	cmd.Flags().Bool("normalize", false, "Fix up normalizable problems before writing")
	return cmd
}

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two connection documents property by property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, _ := cmd.Flags().GetStringSlice("flags")
			flags, err := setting.ParseCompareFlags(names...)
			if err != nil {
				return err
			}

			a, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}
			b, err := loader.LoadFile(args[1])
			if err != nil {
				return err
			}

			diff := a.Diff(b, flags)
			if jsonMode(cmd) {
				out := make(map[string]map[string]string, len(diff))
				for name, props := range diff {
					out[name] = make(map[string]string, len(props))
					for prop, f := range props {
						out[name][prop] = f.String()
					}
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"same":        len(diff) == 0,
					"differences": out,
				})
			}

			if len(diff) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "identical")
				return nil
			}
			settingNames := make([]string, 0, len(diff))
			for name := range diff {
				settingNames = append(settingNames, name)
			}
			sort.Strings(settingNames)
			for _, name := range settingNames {
				props := diff[name]
				if len(props) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
					continue
				}
				propNames := make([]string, 0, len(props))
				for p := range props {
					propNames = append(propNames, p)
				}
				sort.Strings(propNames)
				for _, p := range propNames {
					fmt.Fprintf(cmd.OutOrStdout(), "%s.%s: %s\n", name, p, props[p])
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("flags", nil, "Compare flags: fuzzy, ignore-id, ignore-secrets, ignore-agent-owned-secrets, ignore-not-saved-secrets, inferrable")
	return cmd
}
