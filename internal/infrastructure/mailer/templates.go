package mailer

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/janhq/library-api/internal/domain/notification"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Body    string
}

type templateData struct {
	Name     string
	Title    string
	Type     string
	Author   string
	DueDate  string
	Returned string
	DaysLate int
}

const dateLayout = "Monday, January 2, 2006"

var funcs = template.FuncMap{
	"plural": func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	},
}

type pair struct {
	subject *template.Template
	body    *template.Template
}

func mustPair(name, subject, body string) pair {
	return pair{
		subject: template.Must(template.New(name + "-subject").Funcs(funcs).Parse(subject)),
		body:    template.Must(template.New(name + "-body").Funcs(funcs).Parse(body)),
	}
}

var templates = map[notification.Kind]pair{
	notification.KindBorrowConfirmation: mustPair("borrow",
		`You borrowed "{{.Title}}"`,
		`Hi {{.Name}},

You borrowed the {{.Type}} "{{.Title}}"{{if .Author}} by {{.Author}}{{end}}.
Please return it by {{.DueDate}}.

Enjoy!
`),
	notification.KindReturnConfirmation: mustPair("return",
		`Thanks for returning "{{.Title}}"`,
		`Hi {{.Name}},

We received "{{.Title}}" back on {{.Returned}}.{{if gt .DaysLate 0}}
It came back {{plural .DaysLate "day"}} late.{{end}}

Thank you!
`),
	notification.KindDueSoon: mustPair("due-soon",
		`"{{.Title}}" is due on {{.DueDate}}`,
		`Hi {{.Name}},

A friendly reminder that "{{.Title}}" is due on {{.DueDate}}.
Please return it on time to avoid late fees.
`),
	notification.KindLate: mustPair("late",
		`"{{.Title}}" is overdue`,
		`Hi {{.Name}},

"{{.Title}}" was due on {{.DueDate}} and is now {{plural .DaysLate "day"}} late.
Late fees accrue for every day until it is returned.
`),
}

// Render produces the email for a notification kind.
func Render(kind notification.Kind, to notification.Recipient, item notification.MediaDescriptor, loc *time.Location) (*Message, error) {
	tpl, ok := templates[kind]
	if !ok {
		return nil, fmt.Errorf("no template for notification kind %q", kind)
	}
	if loc == nil {
		loc = time.UTC
	}

	data := templateData{
		Name:     to.Name,
		Title:    item.Title,
		Type:     item.Type,
		Author:   item.Author,
		DueDate:  item.DueAt.In(loc).Format(dateLayout),
		DaysLate: item.DaysLate,
	}
	if data.Name == "" {
		data.Name = "there"
	}
	if item.ReturnedAt != nil {
		data.Returned = item.ReturnedAt.In(loc).Format(dateLayout)
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	return &Message{Subject: subject.String(), Body: body.String()}, nil
}
