package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"debateroom/internal/viewmodel"
)

// HomePage lists the open topics with their roster sizes.
func HomePage(data viewmodel.HomePage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := templ.EscapeString(data.Title)
		if _, err := fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body><h1>%s</h1>", title, title); err != nil {
			return err
		}
		if len(data.Topics) == 0 {
			if _, err := io.WriteString(w, "<p>No debates yet.</p>"); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, "<ul class=\"topics\">"); err != nil {
				return err
			}
			for _, topic := range data.Topics {
				if err := topicItem(topic).Render(ctx, w); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul>"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

func topicItem(topic viewmodel.TopicCard) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<li data-topic=\"%s\" data-state=\"%s\"><strong>%s</strong> by %s <span>%d for / %d against</span> <time>%s</time></li>",
			templ.EscapeString(topic.ID),
			templ.EscapeString(topic.State),
			templ.EscapeString(topic.Title),
			templ.EscapeString(topic.Creator),
			topic.ForCount,
			topic.AgainstCount,
			templ.EscapeString(topic.CreatedAt),
		)
		return err
	})
}
