package main

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"debateroom/internal/debate"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderTopics(w io.Writer, topics []debate.Snapshot) {
	table := newTable(w, "ID", "Title", "Creator", "State", "For", "Against", "Created")
	for _, topic := range topics {
		table.Append([]string{
			topic.ID,
			topic.Title,
			topic.Creator,
			topic.State.String(),
			strconv.Itoa(len(topic.For)) + " " + roster(topic.For),
			strconv.Itoa(len(topic.Against)) + " " + roster(topic.Against),
			topic.CreatedAt.Format(time.DateTime),
		})
	}
	table.Render()
}

func renderTranscript(w io.Writer, messages []debate.ChatMessage) {
	table := newTable(w, "Time", "Username", "Side", "Event", "Message")
	for _, msg := range messages {
		side := string(msg.Side)
		if side == "" {
			side = "-"
		}
		table.Append([]string{
			msg.Timestamp.Format(time.TimeOnly),
			msg.Username,
			side,
			string(msg.Kind),
			msg.Text,
		})
	}
	table.Render()
}

func roster(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "(" + strings.Join(names, ", ") + ")"
}
