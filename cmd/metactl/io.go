package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	metadata "github.com/ban-nobuhiro/metadata-manager"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// addInputFlag registers --file on cmd. Without it the JSON input is read
// from stdin.
func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read the JSON object from this file (default: stdin)")
}

func readInput(cmd *cobra.Command) (*tree.Node, error) {
	var r io.Reader = cmd.InOrStdin()
	if name, _ := cmd.Flags().GetString("file"); name != "" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	n, err := tree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return n, nil
}

func writeJSON(cmd *cobra.Command, n *tree.Node) error {
	data, err := n.Indent()
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func writeID(cmd *cobra.Command, id metadata.ObjectID) error {
	n := tree.NewObject()
	n.Set("id", tree.NewInt(int64(id)))
	return writeJSON(cmd, n)
}

// addKeyFlag registers --id on cmd, switching the lookup from name to id.
func addKeyFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("id", false, "Treat the argument as an object id instead of a name")
}

func lookupKey(cmd *cobra.Command, arg string) (metadata.Key, string) {
	if byID, _ := cmd.Flags().GetBool("id"); byID {
		return metadata.KeyID, arg
	}
	return metadata.KeyName, arg
}

func parseID(arg, what string) (metadata.ObjectID, error) {
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || v <= 0 {
		return metadata.InvalidObjectID, fmt.Errorf("invalid %s: %q", what, arg)
	}
	return metadata.ObjectID(v), nil
}

func parsePosition(arg string) (int64, error) {
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid ordinal position: %q", arg)
	}
	return v, nil
}
