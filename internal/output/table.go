package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/temirov/cdigest/internal/tree"
	"github.com/temirov/cdigest/internal/utils"
)

const (
	largestTableTitle  = "Largest non-ignored entries"
	kindColumnHeader   = "Kind"
	pathColumnHeader   = "Path"
	sizeColumnHeader   = "Size"
	bytesColumnHeader  = "Bytes"
	fileKindLabel      = "file"
	directoryKindLabel = "directory"
	emptyTableCell     = "-"
)

// LargestEntriesTable renders the count largest non-ignored files followed by
// the count largest non-ignored directories as a console table.
func LargestEntriesTable(root *tree.Node, count int) string {
	tableWriter := table.NewWriter()
	tableWriter.SetTitle(largestTableTitle)
	tableWriter.SetStyle(table.StyleLight)
	tableWriter.AppendHeader(table.Row{kindColumnHeader, pathColumnHeader, sizeColumnHeader, bytesColumnHeader})
	tableWriter.SetColumnConfigs([]table.ColumnConfig{
		{Name: sizeColumnHeader, Align: text.AlignRight},
		{Name: bytesColumnHeader, Align: text.AlignRight},
	})

	appendRows := func(kindLabel string, nodes []*tree.Node) {
		if len(nodes) == 0 {
			tableWriter.AppendRow(table.Row{kindLabel, emptyTableCell, emptyTableCell, emptyTableCell})
			return
		}
		for _, node := range nodes {
			size := node.Size()
			tableWriter.AppendRow(table.Row{kindLabel, node.FullPath(), utils.FormatFileSize(size), size})
		}
	}
	appendRows(fileKindLabel, root.LargestFiles(count))
	tableWriter.AppendSeparator()
	appendRows(directoryKindLabel, root.LargestDirectories(count))
	return tableWriter.Render()
}
