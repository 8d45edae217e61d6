package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/binary"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/rpc"
)

// PrintCallError renders a failed command: its kind, the node's error code
// and the raw diagnostic text, plus every path tried when an executable was
// missing.
func (l *Logger) PrintCallError(err error) {
	if err == nil {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	gray := color.New(color.FgHiBlack)

	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) {
		red.Fprintf(l.errOut, "Error: %v\n", err)
		return
	}

	header := rpcErr.Kind.String()
	if rpcErr.Method != "" {
		header = rpcErr.Method + ": " + header
	}
	red.Fprintf(l.errOut, "Error: %s\n", header)
	if rpcErr.Code != nil {
		gray.Fprintf(l.errOut, "  code: %d\n", *rpcErr.Code)
	}

	var notFound *binary.NotFoundError
	if errors.As(err, &notFound) {
		gray.Fprintf(l.errOut, "  tried:\n")
		for _, p := range notFound.Tried {
			gray.Fprintf(l.errOut, "    %s\n", p)
		}
		return
	}

	if msg := strings.TrimRight(rpcErr.Message, "\n"); msg != "" {
		for _, line := range strings.Split(msg, "\n") {
			fmt.Fprintf(l.errOut, "  %s\n", line)
		}
	}
}
