package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/pgql/cli/internal/ui"
	"github.com/satishbabariya/pgql/graph"
	"github.com/satishbabariya/pgql/query/bind"
	"github.com/satishbabariya/pgql/query/filter"
	"github.com/satishbabariya/pgql/query/sqlgen"
)

// compileResult is the output of `pgql compile`.
type compileResult struct {
	Entity  string   `json:"entity"`
	Dialect string   `json:"dialect"`
	Where   string   `json:"where"`
	Params  []any    `json:"params"`
	Kinds   []string `json:"kinds"`
	Select  string   `json:"select"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(a *app) *cobra.Command {
	var (
		jsonFilter string
		expr       string
		dialect    string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "compile <entity>",
		Short: "Compile a filter to SQL",
		Long: `Compile a users or posts filter into its WHERE clause and parameters.

The filter is given either as GraphQL-style JSON (--json) or as an expression (--expr):

  pgql compile users --json '{"id":{"gt":1},"or":[{"id":{"equals":2}},{"name":{"equals":"Test"}}]}'
  pgql compile users --expr 'id > 1 and (id = 2 or name = "Test")'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dialect == "" {
				dialect = a.cfg.Database.Provider
			}
			res, err := compileFilter(args[0], dialect, jsonFilter, expr)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printCompileResult(ui.New(cmd.OutOrStdout()), res)
		},
	}

	cmd.Flags().StringVar(&jsonFilter, "json", "", "Filter as JSON")
	cmd.Flags().StringVar(&expr, "expr", "", "Filter as an expression")
	cmd.Flags().StringVar(&dialect, "dialect", "", "SQL dialect: postgres, mysql or sqlite (default database.provider)")
	cmd.Flags().BoolVar(&asJSON, "output-json", false, "Print the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("json", "expr")

	return cmd
}

func compileFilter(entityName, dialectName, jsonFilter, expr string) (*compileResult, error) {
	entity, err := graph.EntityByName(entityName)
	if err != nil {
		return nil, err
	}

	var node *filter.Node
	switch {
	case jsonFilter != "" && expr != "":
		return nil, errors.New("use either --json or --expr, not both")
	case expr != "":
		node, err = filter.ParseExpr(entity, expr)
	default:
		node, err = decodeJSONFilter(entity, jsonFilter)
	}
	if err != nil {
		return nil, err
	}

	d := sqlgen.DialectFor(dialectName)
	clause := sqlgen.NewCompiler(d).Compile(node)

	kinds := bind.Kinds(clause.Params)
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}

	return &compileResult{
		Entity:  entity.Name,
		Dialect: d.Name(),
		Where:   clause.SQL(),
		Params:  bind.Args(clause.Args()),
		Kinds:   names,
		Select:  sqlgen.Select{Table: entity.Table, Where: clause}.Build(d).SQL,
	}, nil
}

func decodeJSONFilter(entity *filter.Entity, src string) (*filter.Node, error) {
	if strings.TrimSpace(src) == "" {
		return entity.Decode(nil)
	}

	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid filter JSON: %w", err)
	}
	return entity.Decode(raw)
}

func printCompileResult(p *ui.Printer, res *compileResult) error {
	p.Label("entity", res.Entity)
	p.Label("dialect", res.Dialect)
	if err := p.SQL(res.Select); err != nil {
		return err
	}
	if len(res.Params) == 0 {
		p.Warning("no conditions, every row matches")
		return nil
	}

	rows := make([][]string, len(res.Params))
	for i, v := range res.Params {
		rows[i] = []string{strconv.Itoa(i + 1), fmt.Sprint(v), res.Kinds[i]}
	}
	return p.Table([]string{"#", "Value", "Type"}, rows)
}
