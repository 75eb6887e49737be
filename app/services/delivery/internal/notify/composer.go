package notify

import (
	"bytes"
	"html/template"
	"strings"

	"DigiMart/app/common/money"
)

const Subject = "Your purchase is ready"

type Link struct {
	DisplayName string
	URL         string
}

type Credential struct {
	ProductID   int64
	ProductName string
	Code        string
}

type CredentialBlock struct {
	ProductName string
	Codes       []string
}

type ComposeInput struct {
	OrderID      string
	Total        money.Money
	Links        []Link
	Blocks       []CredentialBlock
	SupportEmail string
}

type Document struct {
	Subject string
	HTML    string
}

var mailTemplate = template.Must(template.New("delivery").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`<div style="font-family:Arial,Helvetica,sans-serif;line-height:1.4">
<h2>Thanks for your purchase</h2>
<p>Order ID: <strong>{{.OrderID}}</strong></p>
<p>Amount: <strong>{{.Total}}</strong></p>
{{- if .Links}}
<h3>eBooks</h3>
<ul>
{{- range .Links}}
<li><a href="{{.URL}}">{{.DisplayName}}</a></li>
{{- end}}
</ul>
<p><small>Links expire in 24 hours. Contact support if you lose access.</small></p>
{{- end}}
{{- if .Blocks}}
<h3>Premium / Subscription Codes</h3>
{{- range .Blocks}}
<div style="margin-bottom:12px"><strong>{{.ProductName}}</strong>
<pre style="background:#f5f5f5;padding:8px;border-radius:4px">{{join .Codes "\n"}}</pre>
</div>
{{- end}}
{{- end}}
<hr/>
<p>If something looks wrong, reply to this email{{if .SupportEmail}} or write to {{.SupportEmail}}{{else}} or contact support{{end}}.</p>
</div>`))

type view struct {
	OrderID      string
	Total        string
	Links        []Link
	Blocks       []CredentialBlock
	SupportEmail string
}

// Compose renders the single delivery mail for an order. It has no side effects.
func Compose(in ComposeInput) (Document, error) {
	var buf bytes.Buffer
	err := mailTemplate.Execute(&buf, view{
		OrderID:      in.OrderID,
		Total:        in.Total.String(),
		Links:        in.Links,
		Blocks:       in.Blocks,
		SupportEmail: in.SupportEmail,
	})
	if err != nil {
		return Document{}, err
	}
	return Document{Subject: Subject, HTML: buf.String()}, nil
}

// GroupCodes collects codes per product, products in first-seen order.
func GroupCodes(creds []Credential) []CredentialBlock {
	index := make(map[int64]int, len(creds))
	blocks := make([]CredentialBlock, 0)
	for _, c := range creds {
		i, ok := index[c.ProductID]
		if !ok {
			name := c.ProductName
			if name == "" {
				name = "Premium"
			}
			blocks = append(blocks, CredentialBlock{ProductName: name})
			i = len(blocks) - 1
			index[c.ProductID] = i
		}
		blocks[i].Codes = append(blocks[i].Codes, c.Code)
	}
	return blocks
}
