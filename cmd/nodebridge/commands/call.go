package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

const defaultAbsentToken = "null"

func (a *app) newCallCmd() *cobra.Command {
	var (
		absentToken string
		messageArgs []int
		cold        bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "call <method> [args...]",
		Short: "Run a client command and print its result",
		Long: `Run a MultiChain client command against the selected chain.

Arguments are typed before encoding: true and false become booleans, JSON
objects and arrays are passed as structured values and the absent token
(default "null") leaves an optional positional argument empty. Everything
else is passed as a string. Arguments listed with --message are signed-message
text and have their spaces replaced with the configured sentinel.`,
		Example: `  nodebridge call getinfo --chain chain1
  nodebridge call listpermissions send null true --chain chain1
  nodebridge call signmessage 1Abc... "hello world" --message 1 --chain chain1`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := a.chainID()
			if err != nil {
				return err
			}
			params, err := parseParams(args[1:], absentToken, messageArgs)
			if err != nil {
				return err
			}

			client := a.orch.Client(chain, roleFor(cold))
			result := rpc.Call[json.RawMessage](cmd.Context(), client, args[0], params...)
			if !result.OK() {
				return result.Err
			}
			if asJSON {
				a.log.SetJSONMode(true)
				a.log.Println("%s", renderJSON(result.Value))
				return nil
			}
			a.log.Println("%s", renderResult(result.Value))
			return nil
		},
	}

	cmd.Flags().StringVar(&absentToken, "absent", defaultAbsentToken,
		"Token that marks an omitted optional argument")
	cmd.Flags().IntSliceVar(&messageArgs, "message", nil,
		"Zero-based positions (after the method) of signed-message arguments")
	cmd.Flags().BoolVar(&cold, "cold", false,
		"Address the cold node (-cold <chain> <method> ...)")
	cmd.Flags().BoolVar(&asJSON, "json", false,
		"Print the result as one line of JSON; bare text becomes a JSON string")
	return cmd
}

// parseParams types raw command-line tokens.
func parseParams(tokens []string, absentToken string, messageArgs []int) ([]rpc.Param, error) {
	for _, i := range messageArgs {
		if i < 0 || i >= len(tokens) {
			return nil, &usageError{err: fmt.Errorf("--message %d is out of range (have %d arguments)", i, len(tokens))}
		}
	}

	params := make([]rpc.Param, 0, len(tokens))
	for i, tok := range tokens {
		switch {
		case slices.Contains(messageArgs, i):
			params = append(params, rpc.Message(tok))
		case absentToken != "" && tok == absentToken:
			params = append(params, rpc.Absent())
		case tok == "true" || tok == "false":
			params = append(params, rpc.Bool(tok == "true"))
		case looksLikeJSON(tok):
			params = append(params, rpc.Object(json.RawMessage(tok)))
		default:
			params = append(params, rpc.String(tok))
		}
	}
	return params, nil
}

func looksLikeJSON(tok string) bool {
	t := strings.TrimSpace(tok)
	if !strings.HasPrefix(t, "{") && !strings.HasPrefix(t, "[") {
		return false
	}
	return json.Valid([]byte(t))
}

// renderResult prints strings bare and indents JSON documents. Output that is
// not JSON is shown as is.
func renderResult(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var s string
	if trimmed[0] == '"' && json.Unmarshal(trimmed, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// renderJSON compacts a JSON result onto one line and quotes anything else.
func renderJSON(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	var buf bytes.Buffer
	if len(trimmed) > 0 && json.Compact(&buf, trimmed) == nil {
		return buf.String()
	}
	quoted, _ := json.Marshal(string(trimmed))
	return string(quoted)
}
