// internal/cli/dump.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
)

// dumpIdentity flattens DeviceIdentity to plain strings for every encoder.
type dumpIdentity struct {
	SerialNumber    string `json:"serial_number" yaml:"serial_number" cbor:"serial_number"`
	FirmwareVersion string `json:"firmware_version" yaml:"firmware_version" cbor:"firmware_version"`
	ModelCode       string `json:"model_code" yaml:"model_code" cbor:"model_code"`
	Manufacturer    string `json:"manufacturer" yaml:"manufacturer" cbor:"manufacturer"`
}

type dumpDocument struct {
	Identity *dumpIdentity `json:"identity,omitempty" yaml:"identity,omitempty" cbor:"identity,omitempty"`

	luxtronik.Document `yaml:",inline"`
}

func newDumpDocument(snap luxtronik.Snapshot, id luxtronik.DeviceIdentity, ok bool) dumpDocument {
	doc := dumpDocument{Document: snap.Document()}
	if ok {
		doc.Identity = &dumpIdentity{
			SerialNumber:    id.SerialNumber,
			FirmwareVersion: id.FirmwareVersion.String(),
			ModelCode:       id.ModelCode,
			Manufacturer:    id.Manufacturer,
		}
	}
	return doc
}

func encodeDump(w io.Writer, format string, doc dumpDocument) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		return cbor.NewEncoder(w).Encode(doc)
	}
	return fmt.Errorf("dump: unknown format %q (json, yaml or cbor)", format)
}

func newDumpCmd(o *options) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write every raw section and the device identity to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case "json", "yaml", "cbor":
			default:
				return fmt.Errorf("dump: unknown format %q (json, yaml or cbor)", format)
			}

			sess, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			snap, err := sess.read(cmd.Context())
			if err != nil {
				return err
			}
			id, ok := sess.client.Identity()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("dump: %w", err)
				}
				defer f.Close()
				w = f
			} else if format == "cbor" && isTerminal(w) {
				return fmt.Errorf("dump: refusing to write cbor to a terminal, use --out")
			}

			return encodeDump(w, format, newDumpDocument(snap, id, ok))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, yaml or cbor")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
