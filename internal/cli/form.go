package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/progress"
	"github.com/matthewbaird/intake/internal/rules"
	"github.com/matthewbaird/intake/internal/taxonomy"
)

// definitions are the embedded intake definitions every form command needs.
type definitions struct {
	catalog  *intake.Catalog
	taxonomy *taxonomy.Taxonomy
	rules    *rules.Set
	est      *progress.Estimator
}

func loadDefinitions() (*definitions, error) {
	c, err := intake.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load intake catalog: %w", err)
	}
	t, err := taxonomy.Load()
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	set, err := rules.Load()
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	est, err := progress.New(c, set)
	if err != nil {
		return nil, err
	}
	return &definitions{catalog: c, taxonomy: t, rules: set, est: est}, nil
}

func readRecord(path string) (*intake.Record, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	rec := intake.NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return rec, nil
}

// RulesReport is the outcome of rules check.
type RulesReport struct {
	Rules    int `json:"rules"`
	Fields   int `json:"fields"`
	Sections int `json:"sections"`
}

// NewRulesCommand creates the rules command and its check subcommand.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the visibility rules",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the catalog, taxonomy and rule set",
		Long: `Loads the embedded field catalog, matter taxonomy and visibility rules,
rejecting rule cycles, unknown section gates and dangling taxonomy keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions()
			if err != nil {
				return err
			}
			if err := defs.taxonomy.Check(); err != nil {
				return err
			}
			report := RulesReport{
				Rules:    defs.est.Rules().Len(),
				Fields:   len(defs.catalog.Fields()),
				Sections: len(defs.catalog.Sections),
			}
			return output(cmd.OutOrStdout(), rootOpts, report, func(w io.Writer) {
				fmt.Fprintf(w, "ok: %d rules, %d fields, %d sections\n", report.Rules, report.Fields, report.Sections)
			})
		},
	})
	return cmd
}

// Visibility lists what the form presents for one record.
type Visibility struct {
	ShownSections []int            `json:"shown_sections"`
	Fields        map[int][]string `json:"fields"`
}

// NewVisibleCommand creates the visible command.
func NewVisibleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "visible <record.json>",
		Short: "List the sections and fields shown for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions()
			if err != nil {
				return err
			}
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			v := Visibility{ShownSections: defs.est.ShownSections(rec), Fields: map[int][]string{}}
			for _, n := range v.ShownSections {
				v.Fields[n] = defs.est.VisibleFields(rec, n)
			}
			return output(cmd.OutOrStdout(), rootOpts, v, func(w io.Writer) {
				for _, n := range v.ShownSections {
					fmt.Fprintf(w, "section %d: %s\n", n, strings.Join(v.Fields[n], ", "))
				}
			})
		},
	}
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	var section int
	cmd := &cobra.Command{
		Use:   "progress <record.json>",
		Short: "Show section completion for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions()
			if err != nil {
				return err
			}
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			var sections []progress.Section
			if section > 0 {
				if _, ok := defs.catalog.Section(section); !ok {
					return fmt.Errorf("unknown section %d", section)
				}
				sections = []progress.Section{defs.est.Section(rec, section)}
			} else {
				sections = defs.est.All(rec)
			}
			return output(cmd.OutOrStdout(), rootOpts, sections, func(w io.Writer) {
				for _, s := range sections {
					fmt.Fprintf(w, "section %d: %d%% (%d/%d)\n", s.Number, s.Percent, s.Filled, s.Visible)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&section, "section", "s", 0, "section number (default: all sections)")
	return cmd
}

// Options is the taxonomy lookup result.
type Options struct {
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories,omitempty"`
	MatterType    string   `json:"matter_type,omitempty"`
}

// NewOptionsCommand creates the options command.
func NewOptionsCommand(rootOpts *RootOptions) *cobra.Command {
	var typeOfLaw, subtype, category string
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Look up category and subcategory options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := taxonomy.Load()
			if err != nil {
				return fmt.Errorf("load taxonomy: %w", err)
			}
			o := Options{Categories: t.Categories(typeOfLaw, subtype)}
			if category != "" {
				o.Subcategories = t.Subcategories(typeOfLaw, subtype, category)
				o.MatterType, _ = t.MatterType(category)
			}
			if o.Categories == nil {
				o.Categories = []string{}
			}
			return output(cmd.OutOrStdout(), rootOpts, o, func(w io.Writer) {
				fmt.Fprintf(w, "categories: %s\n", strings.Join(o.Categories, ", "))
				if category != "" {
					fmt.Fprintf(w, "subcategories: %s\n", strings.Join(o.Subcategories, ", "))
					fmt.Fprintf(w, "matter type: %s\n", o.MatterType)
				}
			})
		},
	}
	cmd.Flags().StringVar(&typeOfLaw, "type", "", "type of law")
	cmd.Flags().StringVar(&subtype, "subtype", "", "type of civil law")
	cmd.Flags().StringVar(&category, "category", "", "category")
	return cmd
}
