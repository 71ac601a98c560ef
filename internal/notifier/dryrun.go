package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DryRunNotifier prints the digest without delivering it anywhere
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to stdout
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{out: os.Stdout}
}

// NewDryRunNotifierTo creates a dry-run notifier writing to w
func NewDryRunNotifierTo(w io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: w}
}

// Notify prints the digest preview
func (n *DryRunNotifier) Notify(_ context.Context, d *Digest) error {
	text := FormatText(d)
	fmt.Fprintln(n.out, "--- Digest Preview ---")
	fmt.Fprintln(n.out, text)
	fmt.Fprintf(n.out, "(Length: %d characters, %d picks)\n", len(text), len(d.Picks))
	return nil
}
