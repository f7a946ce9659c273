package console

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

const progressWidth = 20

func (c *Console) progress(message string) {
	filled := progressWidth * 4 / 5
	c.printf("\n%s\n[%s%s] Done.\n", message, strings.Repeat("=", filled), strings.Repeat(" ", progressWidth-filled))
}

func (c *Console) accountTable(members []string) {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.AppendHeader(table.Row{"#", "Account"})
	t.AppendSeparator()
	for i, m := range members {
		t.AppendRow(table.Row{i + 1, m})
	}
	t.Render()
}

// summary prints the operations of this session, if any.
func (c *Console) summary() {
	rows, err := c.metrics.Summary()
	if err != nil {
		c.log.Warn("session summary", "err", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetTitle("Session summary")
	t.AppendHeader(table.Row{"Operation", "Outcome", "Count"})
	t.AppendSeparator()
	for _, r := range rows {
		t.AppendRow(table.Row{r.Op, r.Outcome, r.Count})
	}
	t.Render()
}
