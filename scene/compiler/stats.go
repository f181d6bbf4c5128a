package compiler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of compiled scene statistics.
func (sc *Scene) Stats() string {
	rendered := 0
	for i := range sc.Objects {
		if sc.Objects[i].Rendered() {
			rendered++
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Buffer", "Entries", "Size"})
	table.Append([]string{"Objects", fmt.Sprintf("%d", len(sc.Objects)), fmtSize(len(sc.Objects) * ObjectRecordSize)})
	table.Append([]string{"  top-level", fmt.Sprintf("%d", rendered), ""})
	table.Append([]string{"  register slots", fmt.Sprintf("%d", sc.SlotCount), ""})
	table.Append([]string{"Materials", fmt.Sprintf("%d", len(sc.Materials)), fmtSize(len(sc.Materials) * MaterialRecordSize)})
	table.SetFooter([]string{"Total", "", strings.TrimLeft(fmtSize(len(sc.Objects)*ObjectRecordSize+len(sc.Materials)*MaterialRecordSize), " ")})

	table.Render()
	return buf.String()
}

// Format a byte count with the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}
